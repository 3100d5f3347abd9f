package neural

import "dinotidus/pkg/tokenizer"

// Vectorize encodes text as a one-hot style vector of length inputSize.
// Tokens whose index does not fit are dropped, and unknown tokens set
// position 0.
func Vectorize(text string, vocab *Vocabulary, inputSize int) []float64 {
	vec := make([]float64, inputSize)
	for _, tok := range tokenizer.Tokenize(text) {
		if idx := vocab.Lookup(tok); idx < inputSize {
			vec[idx] = 1
		}
	}
	return vec
}
