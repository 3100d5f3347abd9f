package neural

import (
	"encoding/json"
	"fmt"
)

// snapshot is the persisted form of a network:
// {"weights":[W0,W1],"biases":[B0,B1],"vocabulary":[["<UNK>",0],...]}
type snapshot struct {
	Weights    [][][]float64 `json:"weights"`
	Biases     [][]float64   `json:"biases"`
	Vocabulary []vocabEntry  `json:"vocabulary"`
}

type vocabEntry struct {
	Token string
	Index int
}

func (e vocabEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Token, e.Index})
}

func (e *vocabEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("vocabulary entry has %d elements, want 2", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.Token); err != nil {
		return fmt.Errorf("vocabulary token: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.Index); err != nil {
		return fmt.Errorf("vocabulary index: %w", err)
	}
	return nil
}

// Save serializes weights, biases and vocabulary to JSON.
func (n *Network) Save() (string, error) {
	s := snapshot{
		Weights: [][][]float64{n.w0, n.w1},
		Biases:  [][]float64{n.b0, n.b1},
	}
	for _, e := range n.vocab.Entries() {
		s.Vocabulary = append(s.Vocabulary, vocabEntry{Token: e.Token, Index: e.Index})
	}

	data, err := json.Marshal(s)
	if err != nil {
		return "", NewError(ErrCodeSerialization, "network serialization failed", err.Error())
	}
	return string(data), nil
}

// Load replaces the network state with a snapshot produced by Save. The
// snapshot is fully validated first; on error the network is unchanged.
func (n *Network) Load(data string) error {
	var s snapshot
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return deserializationError("%v", err)
	}

	if len(s.Weights) != 2 {
		return deserializationError("expected 2 weight matrices, got %d", len(s.Weights))
	}
	if len(s.Biases) != 2 {
		return deserializationError("expected 2 bias vectors, got %d", len(s.Biases))
	}

	w0, w1 := s.Weights[0], s.Weights[1]
	hidden, input, err := matrixShape(w0)
	if err != nil {
		return deserializationError("hidden weights: %v", err)
	}
	output, cols, err := matrixShape(w1)
	if err != nil {
		return deserializationError("output weights: %v", err)
	}
	if cols != hidden {
		return deserializationError("output weights have %d columns, hidden layer has %d units", cols, hidden)
	}
	if len(s.Biases[0]) != hidden {
		return deserializationError("hidden bias has %d entries, want %d", len(s.Biases[0]), hidden)
	}
	if len(s.Biases[1]) != output {
		return deserializationError("output bias has %d entries, want %d", len(s.Biases[1]), output)
	}

	vocab, err := n.restoreVocabulary(s.Vocabulary)
	if err != nil {
		return err
	}

	n.w0 = copyMatrix(w0)
	n.w1 = copyMatrix(w1)
	n.b0 = append([]float64(nil), s.Biases[0]...)
	n.b1 = append([]float64(nil), s.Biases[1]...)
	n.vocab = vocab
	n.cfg.InputSize = input
	n.cfg.HiddenSize = hidden
	n.cfg.OutputSize = output
	return nil
}

func (n *Network) restoreVocabulary(entries []vocabEntry) (*Vocabulary, error) {
	if len(entries) == 0 {
		return nil, deserializationError("vocabulary is empty")
	}
	if len(entries) > n.cfg.VocabSize {
		return nil, deserializationError("vocabulary has %d entries, limit is %d", len(entries), n.cfg.VocabSize)
	}

	tokens := make([]string, len(entries))
	filled := make([]bool, len(entries))
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		if e.Index < 0 || e.Index >= len(entries) {
			return nil, deserializationError("vocabulary index %d out of range", e.Index)
		}
		if filled[e.Index] {
			return nil, deserializationError("vocabulary index %d used twice", e.Index)
		}
		if _, dup := index[e.Token]; dup {
			return nil, deserializationError("vocabulary token %q used twice", e.Token)
		}
		filled[e.Index] = true
		tokens[e.Index] = e.Token
		index[e.Token] = e.Index
	}
	if tokens[0] != UnknownToken {
		return nil, deserializationError("index 0 is %q, want %q", tokens[0], UnknownToken)
	}

	return &Vocabulary{maxSize: n.cfg.VocabSize, index: index, tokens: tokens}, nil
}

func matrixShape(m [][]float64) (rows, cols int, err error) {
	if len(m) == 0 || len(m[0]) == 0 {
		return 0, 0, fmt.Errorf("matrix is empty")
	}
	cols = len(m[0])
	for i, row := range m {
		if len(row) != cols {
			return 0, 0, fmt.Errorf("row %d has %d columns, want %d", i, len(row), cols)
		}
	}
	return len(m), cols, nil
}

func copyMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
