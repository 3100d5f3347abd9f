// Package nlp implements the rule-based Russian language classifier and the
// templated response synthesizer.
package nlp

import (
	"math/rand"
	"strings"
	"unicode/utf8"

	"dinotidus/pkg/tokenizer"
)

// Rand is the source of randomness used to pick templates and topic sentences.
// *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

// Option configures a Classifier.
type Option func(*Classifier)

// WithRand sets the random source used by Synthesize.
func WithRand(r Rand) Option {
	return func(c *Classifier) {
		if r != nil {
			c.rng = r
		}
	}
}

// Classifier analyses Russian text with fixed word lists. Its rule tables are
// shared and never mutated; the only per-instance state is the random source.
type Classifier struct {
	rng Rand
}

// Analysis is the full classification of one message.
type Analysis struct {
	MessageType MessageType `json:"message_type"`
	Topic       Topic       `json:"topic"`
	Tone        Tone        `json:"tone"`
	Keywords    []string    `json:"keywords"`
}

// NewClassifier returns a classifier using the process-wide random source
// unless WithRand is given.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{rng: globalRand{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClassifyMessageType returns the first matching type in the order greeting,
// farewell, positive, negative, question, falling back to default.
func (c *Classifier) ClassifyMessageType(text string) MessageType {
	lower := tokenizer.Lower(text)
	switch {
	case containsAny(lower, greetingWords):
		return MessageGreeting
	case containsAny(lower, farewellWords):
		return MessageFarewell
	case containsAny(lower, positiveWords):
		return MessagePositive
	case containsAny(lower, negativeWords):
		return MessageNegative
	case containsAny(lower, questionWords):
		return MessageQuestion
	}
	return MessageDefault
}

// DetectTopic returns the first topic whose keyword list has a substring hit.
func (c *Classifier) DetectTopic(text string) Topic {
	lower := tokenizer.Lower(text)
	for _, t := range topicKeywords {
		if containsAny(lower, t.keywords) {
			return t.topic
		}
	}
	return TopicGeneral
}

// AnalyzeEmotionalTone counts positive and negative list hits. Ties are neutral.
func (c *Classifier) AnalyzeEmotionalTone(text string) Tone {
	lower := tokenizer.Lower(text)
	pos := countHits(lower, positiveWords)
	neg := countHits(lower, negativeWords)
	switch {
	case pos > neg:
		return TonePositive
	case neg > pos:
		return ToneNegative
	}
	return ToneNeutral
}

// ExtractKeywords returns tokens longer than two characters that are not stop
// words, in input order with duplicates kept.
func (c *Classifier) ExtractKeywords(text string) []string {
	tokens := tokenizer.Tokenize(text)
	keywords := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) <= 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		keywords = append(keywords, tok)
	}
	return keywords
}

// FollowUpQuestions returns questions that keep the dialogue going. Topics
// without a dedicated pool get the general one.
func (c *Classifier) FollowUpQuestions(topic Topic) []string {
	pool, ok := followUpQuestions[topic]
	if !ok {
		pool = followUpQuestions[TopicGeneral]
	}
	out := make([]string, len(pool))
	copy(out, pool)
	return out
}

// Synthesize builds a templated reply for text.
func (c *Classifier) Synthesize(text string, topic Topic, messageType MessageType) string {
	templates, ok := responseTemplates[messageType]
	if !ok {
		templates = responseTemplates[MessageDefault]
	}
	base := templates[c.rng.Intn(len(templates))]

	keywords := c.ExtractKeywords(text)

	if messageType == MessageQuestion {
		if sentences := topicSentences[topic]; len(sentences) > 0 {
			return base + " " + sentences[c.rng.Intn(len(sentences))]
		}
	}

	if len(keywords) > 0 {
		if len(keywords) > 3 {
			keywords = keywords[:3]
		}
		return base + " " + keywordPhrasePrefix + strings.Join(keywords, ", ") + "."
	}

	return base
}

// Analyze runs every classifier on text.
func (c *Classifier) Analyze(text string) Analysis {
	return Analysis{
		MessageType: c.ClassifyMessageType(text),
		Topic:       c.DetectTopic(text),
		Tone:        c.AnalyzeEmotionalTone(text),
		Keywords:    c.ExtractKeywords(text),
	}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func countHits(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}
