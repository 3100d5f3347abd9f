package neural

import (
	"sort"

	"dinotidus/pkg/tokenizer"
)

// UnknownToken is the sentinel stored at index 0.
const UnknownToken = "<UNK>"

// Vocabulary is a bounded token to index mapping. Index 0 is always the
// unknown token and indices are contiguous from 0.
type Vocabulary struct {
	maxSize int
	index   map[string]int
	tokens  []string
}

// Entry is one (token, index) pair.
type Entry struct {
	Token string
	Index int
}

// NewVocabulary returns a vocabulary holding only the unknown token.
func NewVocabulary(maxSize int) *Vocabulary {
	if maxSize < 1 {
		maxSize = 1
	}
	v := &Vocabulary{maxSize: maxSize}
	v.reset()
	return v
}

func (v *Vocabulary) reset() {
	v.index = map[string]int{UnknownToken: 0}
	v.tokens = []string{UnknownToken}
}

// Build replaces the vocabulary with the most frequent tokens of corpus.
// Ties keep first-seen order.
func (v *Vocabulary) Build(corpus []string) {
	counts := make(map[string]int)
	var order []string
	for _, text := range corpus {
		for _, tok := range tokenizer.Tokenize(text) {
			if _, seen := counts[tok]; !seen {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	v.reset()
	for _, tok := range order {
		if len(v.tokens) >= v.maxSize {
			break
		}
		v.add(tok)
	}
}

// Update appends unseen tokens from texts until the vocabulary is full.
func (v *Vocabulary) Update(texts []string) {
	for _, text := range texts {
		for _, tok := range tokenizer.Tokenize(text) {
			if len(v.tokens) >= v.maxSize {
				return
			}
			if _, ok := v.index[tok]; !ok {
				v.add(tok)
			}
		}
	}
}

func (v *Vocabulary) add(tok string) {
	v.index[tok] = len(v.tokens)
	v.tokens = append(v.tokens, tok)
}

// Lookup returns the index of token, or 0 when it is unknown.
func (v *Vocabulary) Lookup(token string) int {
	return v.index[token]
}

// Token returns the token stored at index.
func (v *Vocabulary) Token(index int) (string, bool) {
	if index < 0 || index >= len(v.tokens) {
		return "", false
	}
	return v.tokens[index], true
}

func (v *Vocabulary) Len() int     { return len(v.tokens) }
func (v *Vocabulary) MaxSize() int { return v.maxSize }

// Entries returns all pairs in index order.
func (v *Vocabulary) Entries() []Entry {
	out := make([]Entry, len(v.tokens))
	for i, tok := range v.tokens {
		out[i] = Entry{Token: tok, Index: i}
	}
	return out
}
