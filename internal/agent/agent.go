// Package agent runs conversation turns against one network and classifier
// pair and keeps a registry of independent sessions.
package agent

import (
	"fmt"
	"math/rand"
	"time"

	"dinotidus/internal/config"
	"dinotidus/internal/logging"
	"dinotidus/pkg/neural"
	"dinotidus/pkg/nlp"
)

// Welcome is the first message a new conversation shows.
const Welcome = "Привет! Я Dino Tidus - русская нейросеть. Умею рисовать, создавать видео и обучаться в реальном времени. О чём поговорим?"

// QuickPrompts are ready-made messages offered by the chat front-ends.
var QuickPrompts = []string{
	"Нарисуй картину в стиле импрессионизма",
	"Создай 10-секундное видео с анимацией",
	"Расскажи о своих возможностях обучения",
}

// Reply is the outcome of one conversation turn.
type Reply struct {
	Text        string          `json:"text"`
	MessageType nlp.MessageType `json:"message_type"`
	Topic       nlp.Topic       `json:"topic"`
	Tone        nlp.Tone        `json:"tone"`
	Keywords    []string        `json:"keywords"`
	FollowUps   []string        `json:"follow_ups"`
	Size        float64         `json:"size"`
	Quality     float64         `json:"quality"`
}

// Stats is a snapshot of the agent gauges.
type Stats struct {
	Size       float64 `json:"size"`
	Quality    float64 `json:"quality"`
	Vocabulary int     `json:"vocabulary"`
	Turns      int     `json:"turns"`
	Examples   int     `json:"examples"`
}

// Option configures an Agent.
type Option func(*Agent)

func WithLogger(l *logging.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.log = l
		}
	}
}

// WithRand drives both weight initialization and template selection.
func WithRand(r *rand.Rand) Option {
	return func(a *Agent) {
		if r != nil {
			a.rng = r
		}
	}
}

// Agent owns one network and classifier. It is not safe for concurrent use;
// see Registry for shared access.
type Agent struct {
	model      config.ModelConfig
	cfg        config.AgentConfig
	log        *logging.Logger
	rng        *rand.Rand
	net        *neural.Network
	classifier *nlp.Classifier
	examples   []neural.Pair
	turns      int
}

func New(model config.ModelConfig, cfg config.AgentConfig, opts ...Option) (*Agent, error) {
	a := &Agent{
		model: model,
		cfg:   cfg,
		log:   logging.Nop(),
	}
	if cfg.Seed != 0 {
		a.rng = rand.New(rand.NewSource(cfg.Seed))
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.init(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Agent) init() error {
	var netOpts []neural.Option
	var nlpOpts []nlp.Option
	if a.rng != nil {
		netOpts = append(netOpts, neural.WithRand(a.rng))
		nlpOpts = append(nlpOpts, nlp.WithRand(a.rng))
	}

	net, err := neural.New(a.model.Network(), netOpts...)
	if err != nil {
		return fmt.Errorf("failed to create network: %w", err)
	}
	a.net = net
	a.classifier = nlp.NewClassifier(nlpOpts...)
	a.examples = nil
	a.turns = 0
	return nil
}

// Respond runs one turn: the text and the reply both grow the vocabulary and
// the pair is used for a training step.
func (a *Agent) Respond(text string) Reply {
	a.net.UpdateVocabulary([]string{text})

	var u neural.Understander
	if a.cfg.UseClassifier {
		u = a.classifier
	}
	answer := a.net.GenerateResponse(text, u)

	a.net.UpdateVocabulary([]string{answer})
	a.net.Train(text, answer)
	a.record(neural.Pair{Question: text, Answer: answer})
	a.turns++

	analysis := a.classifier.Analyze(text)
	reply := Reply{
		Text:        answer,
		MessageType: analysis.MessageType,
		Topic:       analysis.Topic,
		Tone:        analysis.Tone,
		Keywords:    analysis.Keywords,
		FollowUps:   a.classifier.FollowUpQuestions(analysis.Topic),
		Size:        a.net.NetworkSize(),
		Quality:     a.net.QualityScore(),
	}
	a.log.Debug("turn %d: type=%s topic=%s tone=%s size=%.3f quality=%.3f",
		a.turns, reply.MessageType, reply.Topic, reply.Tone, reply.Size, reply.Quality)
	return reply
}

// Train performs one training step on an explicit pair.
func (a *Agent) Train(question, answer string) {
	a.net.UpdateVocabulary([]string{question, answer})
	a.net.Train(question, answer)
	a.record(neural.Pair{Question: question, Answer: answer})
}

// TrainBatch rebuilds the vocabulary from pairs and trains on them.
// progress may be nil.
func (a *Agent) TrainBatch(pairs []neural.Pair, progress func(step, total int)) {
	a.net.TrainBatchProgress(pairs, progress)
	for _, p := range pairs {
		a.record(p)
	}
	a.log.Info("trained on %d pairs, vocabulary %d, quality %.3f",
		len(pairs), a.net.Vocabulary().Len(), a.net.QualityScore())
}

func (a *Agent) record(p neural.Pair) {
	if a.cfg.HistoryLimit <= 0 {
		return
	}
	a.examples = append(a.examples, p)
	if over := len(a.examples) - a.cfg.HistoryLimit; over > 0 {
		a.examples = append([]neural.Pair(nil), a.examples[over:]...)
	}
}

// Examples returns the most recent training pairs, oldest first.
func (a *Agent) Examples() []neural.Pair {
	return append([]neural.Pair(nil), a.examples...)
}

func (a *Agent) Size() float64    { return a.net.NetworkSize() }
func (a *Agent) Quality() float64 { return a.net.QualityScore() }
func (a *Agent) Turns() int       { return a.turns }

func (a *Agent) Stats() Stats {
	return Stats{
		Size:       a.net.NetworkSize(),
		Quality:    a.net.QualityScore(),
		Vocabulary: a.net.Vocabulary().Len(),
		Turns:      a.turns,
		Examples:   len(a.examples),
	}
}

// Save returns the network snapshot.
func (a *Agent) Save() (string, error) {
	return a.net.Save()
}

// Load replaces the network with a snapshot. On error the current network is
// kept.
func (a *Agent) Load(data string) error {
	if err := a.net.Load(data); err != nil {
		a.log.Warn("rejected model snapshot: %v", err)
		return err
	}
	a.log.Info("loaded model snapshot, vocabulary %d", a.net.Vocabulary().Len())
	return nil
}

// Reset starts over with a freshly initialized network.
func (a *Agent) Reset() error {
	return a.init()
}

// Network exposes the underlying network.
func (a *Agent) Network() *neural.Network { return a.net }

// Classifier exposes the text classifier.
func (a *Agent) Classifier() *nlp.Classifier { return a.classifier }

// ThinkDelay is the pause front-ends show before a reply.
func (a *Agent) ThinkDelay() time.Duration { return a.cfg.ThinkDelay }
