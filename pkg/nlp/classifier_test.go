package nlp

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand always picks the same position, wrapped to the pool size.
type fixedRand int

func (f fixedRand) Intn(n int) int { return int(f) % n }

func TestClassifyMessageType(t *testing.T) {
	c := NewClassifier()
	tests := []struct {
		text string
		want MessageType
	}{
		{"привет, как дела?", MessageGreeting},
		{"ПРИВЕТ", MessageGreeting},
		{"Добрый вечер всем", MessageGreeting},
		{"До свидания", MessageFarewell},
		{"пока-пока", MessageFarewell},
		{"это отлично", MessagePositive},
		{"мне грустно", MessageNegative},
		{"Где находится Москва?", MessageQuestion},
		{"Сегодня солнечно", MessageDefault},
		{"", MessageDefault},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ClassifyMessageType(tt.text))
		})
	}
}

func TestDetectTopic(t *testing.T) {
	c := NewClassifier()
	tests := []struct {
		text string
		want Topic
	}{
		{"расскажи про нейросеть и технологии", TopicTechnology},
		{"ФИЗИКА это сложно", TopicScience},
		{"моя семья большая", TopicLife},
		{"Люблю готовить, нужен рецепт", TopicFood},
		{"смысл бытия", TopicPhilosophy},
		{"хочу на море", TopicNature},
		{"вчера смотрел футбол", TopicSport},
		{"ничего особенного", TopicGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, c.DetectTopic(tt.text))
		})
	}
}

func TestAnalyzeEmotionalTone(t *testing.T) {
	c := NewClassifier()
	tests := []struct {
		name string
		text string
		want Tone
	}{
		{"tie", "хорошо, но и плохо", ToneNeutral},
		{"empty", "", ToneNeutral},
		{"positive", "отлично и супер", TonePositive},
		{"negative", "ненавижу, бесит", ToneNegative},
		{"negation counts both lists", "мне не нравится", ToneNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.AnalyzeEmotionalTone(tt.text))
		})
	}
}

func TestExtractKeywords(t *testing.T) {
	c := NewClassifier()

	kw := c.ExtractKeywords("что такое искусственный интеллект")
	assert.NotContains(t, kw, "что")
	assert.Equal(t, []string{"такое", "искусственный", "интеллект"}, kw)

	assert.Equal(t, []string{"кошка", "кошка"}, c.ExtractKeywords("Кошка, кошка ел!"))
	assert.Empty(t, c.ExtractKeywords("   "))
	assert.Empty(t, c.ExtractKeywords("для при это"))
}

func TestFollowUpQuestions(t *testing.T) {
	c := NewClassifier()

	science := c.FollowUpQuestions(TopicScience)
	require.Len(t, science, 3)
	assert.Equal(t, "Какая область науки вам наиболее интересна?", science[0])

	assert.Equal(t, c.FollowUpQuestions(TopicGeneral), c.FollowUpQuestions(TopicNature))

	science[0] = "changed"
	assert.NotEqual(t, "changed", c.FollowUpQuestions(TopicScience)[0])
}

func TestSynthesize(t *testing.T) {
	c := NewClassifier(WithRand(fixedRand(0)))

	tests := []struct {
		name        string
		text        string
		topic       Topic
		messageType MessageType
		want        string
	}{
		{
			name:        "greeting with keyword",
			text:        "привет",
			topic:       TopicGeneral,
			messageType: MessageGreeting,
			want:        "Привет! Как дела? Интересно говорить о: привет.",
		},
		{
			name:        "question with topic sentence",
			text:        "как работает нейросеть",
			topic:       TopicTechnology,
			messageType: MessageQuestion,
			want:        "Интересный вопрос! Размышляю... Технологии меняют нашу жизнь каждый день.",
		},
		{
			name:        "question without topic sentences",
			text:        "что такое искусственный интеллект",
			topic:       TopicGeneral,
			messageType: MessageQuestion,
			want:        "Интересный вопрос! Размышляю... Интересно говорить о: такое, искусственный, интеллект.",
		},
		{
			name:        "first three keywords",
			text:        "один два три четыре пять",
			topic:       TopicGeneral,
			messageType: MessageDefault,
			want:        "Понимаю вас. Интересная тема! Интересно говорить о: один, два, три.",
		},
		{
			name:        "unknown type without keywords",
			text:        "",
			topic:       TopicGeneral,
			messageType: MessageType("bogus"),
			want:        "Понимаю вас. Интересная тема!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Synthesize(tt.text, tt.topic, tt.messageType))
		})
	}
}

func TestSynthesizeUsesRandomSource(t *testing.T) {
	second := NewClassifier(WithRand(fixedRand(1)))
	assert.Equal(t, "Пока! Увидимся позже!", second.Synthesize("", TopicGeneral, MessageFarewell))

	seeded := NewClassifier(WithRand(rand.New(rand.NewSource(7))))
	pool := responseTemplates[MessageNegative]
	for i := 0; i < 50; i++ {
		reply := seeded.Synthesize("", TopicGeneral, MessageNegative)
		assert.Contains(t, pool, reply)
	}

	a := NewClassifier(WithRand(rand.New(rand.NewSource(99))))
	b := NewClassifier(WithRand(rand.New(rand.NewSource(99))))
	for i := 0; i < 10; i++ {
		assert.Equal(t,
			a.Synthesize("как дела в науке", TopicScience, MessageQuestion),
			b.Synthesize("как дела в науке", TopicScience, MessageQuestion))
	}
}

func TestAnalyze(t *testing.T) {
	c := NewClassifier()
	a := c.Analyze("Привет! Я обожаю программирование")
	assert.Equal(t, MessageGreeting, a.MessageType)
	assert.Equal(t, TopicTechnology, a.Topic)
	assert.Equal(t, TonePositive, a.Tone)
	assert.True(t, strings.Contains(strings.Join(a.Keywords, " "), "программирование"))
}
