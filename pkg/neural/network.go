// Package neural implements the small feed-forward network that learns from
// every conversation turn.
package neural

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"unicode/utf8"

	"dinotidus/pkg/nlp"
)

const (
	fallbackResponse = "Обучаюсь на вашем сообщении... Задайте ещё вопросы для улучшения качества ответов."
	topWords         = 3
)

// Rand is the source used to initialize weights. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Understander produces replies from rule-based text analysis. When one is
// passed to GenerateResponse it takes over the wording entirely.
type Understander interface {
	ClassifyMessageType(text string) nlp.MessageType
	DetectTopic(text string) nlp.Topic
	AnalyzeEmotionalTone(text string) nlp.Tone
	Synthesize(text string, topic nlp.Topic, messageType nlp.MessageType) string
}

// Pair is one training example.
type Pair struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Config holds the network dimensions and training constants.
type Config struct {
	VocabSize    int     `json:"vocab_size"`
	InputSize    int     `json:"input_size"`
	HiddenSize   int     `json:"hidden_size"`
	OutputSize   int     `json:"output_size"`
	LearningRate float64 `json:"learning_rate"`
	Epochs       int     `json:"epochs"`
}

// DefaultConfig returns the 50-20-50 network with a 1000 token vocabulary.
func DefaultConfig() Config {
	return Config{
		VocabSize:    1000,
		InputSize:    50,
		HiddenSize:   20,
		OutputSize:   50,
		LearningRate: 0.1,
		Epochs:       3,
	}
}

// Validate checks that every dimension is usable.
func (c Config) Validate() error {
	switch {
	case c.VocabSize < 1:
		return NewError(ErrCodeInvalidNetwork, "invalid network configuration", fmt.Sprintf("vocab size %d", c.VocabSize))
	case c.InputSize < 1 || c.HiddenSize < 1 || c.OutputSize < 1:
		return NewError(ErrCodeInvalidNetwork, "invalid network configuration",
			fmt.Sprintf("dimensions %dx%dx%d must be positive", c.InputSize, c.HiddenSize, c.OutputSize))
	case c.LearningRate <= 0:
		return NewError(ErrCodeInvalidNetwork, "invalid network configuration", fmt.Sprintf("learning rate %g", c.LearningRate))
	case c.Epochs < 1:
		return NewError(ErrCodeInvalidNetwork, "invalid network configuration", fmt.Sprintf("epochs %d", c.Epochs))
	}
	return nil
}

// Option configures a Network.
type Option func(*Network)

// WithRand sets the source used for weight initialization.
func WithRand(r Rand) Option {
	return func(n *Network) {
		if r != nil {
			n.rng = r
		}
	}
}

// Network is a two layer perceptron with a sigmoid hidden layer and a
// softmax output. It is not safe for concurrent use.
type Network struct {
	cfg   Config
	vocab *Vocabulary
	rng   Rand

	w0 [][]float64 // hidden x input
	w1 [][]float64 // output x hidden
	b0 []float64
	b1 []float64
}

// Activation holds the layer outputs of one forward pass.
type Activation struct {
	Hidden []float64
	Output []float64
}

// New creates a randomly initialized network.
func New(cfg Config, opts ...Option) (*Network, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := &Network{
		cfg:   cfg,
		vocab: NewVocabulary(cfg.VocabSize),
		rng:   globalRand{},
	}
	for _, opt := range opts {
		opt(n)
	}

	n.w0 = n.randomMatrix(cfg.HiddenSize, cfg.InputSize)
	n.w1 = n.randomMatrix(cfg.OutputSize, cfg.HiddenSize)
	n.b0 = n.randomBias(cfg.HiddenSize)
	n.b1 = n.randomBias(cfg.OutputSize)
	return n, nil
}

func (n *Network) randomMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = n.rng.Float64()*0.2 - 0.1
		}
	}
	return m
}

func (n *Network) randomBias(size int) []float64 {
	b := make([]float64, size)
	for i := range b {
		b[i] = n.rng.Float64()*0.1 - 0.05
	}
	return b
}

// Config returns the dimensions the network currently has.
func (n *Network) Config() Config { return n.cfg }

// Vocabulary exposes the vocabulary. Callers must not use it concurrently
// with training.
func (n *Network) Vocabulary() *Vocabulary { return n.vocab }

// BuildVocabulary replaces the vocabulary with the most frequent tokens.
func (n *Network) BuildVocabulary(texts []string) { n.vocab.Build(texts) }

// UpdateVocabulary grows the vocabulary with unseen tokens.
func (n *Network) UpdateVocabulary(texts []string) { n.vocab.Update(texts) }

// Vectorize encodes text with the network's vocabulary and input width.
func (n *Network) Vectorize(text string) []float64 {
	return Vectorize(text, n.vocab, n.cfg.InputSize)
}

// Forward runs the input through both layers.
func (n *Network) Forward(input []float64) Activation {
	hidden := make([]float64, len(n.w0))
	for i, row := range n.w0 {
		hidden[i] = sigmoid(dot(row, input) + n.b0[i])
	}

	raw := make([]float64, len(n.w1))
	for j, row := range n.w1 {
		raw[j] = dot(row, hidden) + n.b1[j]
	}

	return Activation{Hidden: hidden, Output: softmax(raw)}
}

// Train performs a single backpropagation step from question towards answer.
func (n *Network) Train(question, answer string) {
	input := n.Vectorize(question)

	target := make([]float64, n.cfg.OutputSize)
	copy(target, n.Vectorize(answer))

	act := n.Forward(input)
	n.backward(input, target, act)
}

func (n *Network) backward(input, target []float64, act Activation) {
	lr := n.cfg.LearningRate

	outErr := make([]float64, len(act.Output))
	for j, o := range act.Output {
		outErr[j] = target[j] - o
	}

	// Hidden error must see W1 before it is updated.
	hidErr := make([]float64, len(act.Hidden))
	for i, h := range act.Hidden {
		var sum float64
		for j, row := range n.w1 {
			sum += row[i] * outErr[j]
		}
		hidErr[i] = sum * sigmoidDerivative(h)
	}

	for j, row := range n.w1 {
		for i := range row {
			row[i] += lr * outErr[j] * act.Hidden[i]
		}
		n.b1[j] += lr * outErr[j]
	}

	for i, row := range n.w0 {
		for k := range row {
			if k < len(input) {
				row[k] += lr * hidErr[i] * input[k]
			}
		}
		n.b0[i] += lr * hidErr[i]
	}
}

// TrainBatch rebuilds the vocabulary from pairs and then trains on every pair
// in order for the configured number of epochs.
func (n *Network) TrainBatch(pairs []Pair) {
	n.TrainBatchProgress(pairs, nil)
}

// TrainBatchProgress is TrainBatch with a callback after every step.
func (n *Network) TrainBatchProgress(pairs []Pair, progress func(step, total int)) {
	texts := make([]string, 0, len(pairs)*2)
	for _, p := range pairs {
		texts = append(texts, p.Question, p.Answer)
	}
	n.vocab.Build(texts)

	total := n.cfg.Epochs * len(pairs)
	step := 0
	for epoch := 0; epoch < n.cfg.Epochs; epoch++ {
		for _, p := range pairs {
			n.Train(p.Question, p.Answer)
			step++
			if progress != nil {
				progress(step, total)
			}
		}
	}
}

// GenerateResponse replies to question. With an Understander the reply comes
// from it alone; otherwise the most probable output tokens are listed.
func (n *Network) GenerateResponse(question string, u Understander) string {
	if u != nil {
		return u.Synthesize(question, u.DetectTopic(question), u.ClassifyMessageType(question))
	}

	words := n.topWords(question)
	if len(words) == 0 {
		return fallbackResponse
	}
	return fmt.Sprintf("Анализируя \"%s\", я думаю о: %s. Моя нейросеть обновила веса и готова к дальнейшему обучению!",
		question, strings.Join(words, ", "))
}

func (n *Network) topWords(question string) []string {
	out := n.Forward(n.Vectorize(question)).Output

	indices := make([]int, len(out))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return out[indices[a]] > out[indices[b]]
	})
	if len(indices) > topWords {
		indices = indices[:topWords]
	}

	var words []string
	for _, idx := range indices {
		if idx == 0 {
			continue
		}
		tok, ok := n.vocab.Token(idx)
		if !ok || utf8.RuneCountInString(tok) <= 2 {
			continue
		}
		words = append(words, tok)
	}
	return words
}

// NetworkSize is the parameter count divided by 1000.
func (n *Network) NetworkSize() float64 {
	total := len(n.b0) + len(n.b1)
	for _, row := range n.w0 {
		total += len(row)
	}
	for _, row := range n.w1 {
		total += len(row)
	}
	return float64(total) / 1000
}

// QualityScore blends vocabulary fill and network size into a display gauge
// within [0.001, 0.95].
func (n *Network) QualityScore() float64 {
	vocabRatio := min(1, float64(n.vocab.Len())/float64(n.cfg.VocabSize))
	sizeRatio := min(1, n.NetworkSize()/5)
	score := 0.6*vocabRatio + 0.4*sizeRatio
	return max(0.001, min(0.95, score))
}
