package ui

import (
	"context"
	"errors"
	"math/rand"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dinotidus/internal/agent"
	"dinotidus/internal/client"
	"dinotidus/internal/config"
	"dinotidus/internal/corpus"
	"dinotidus/internal/server"
	"dinotidus/pkg/neural"
	"dinotidus/pkg/nlp"
)

type fakeBackend struct {
	reply   agent.Reply
	stats   agent.Stats
	model   string
	loaded  string
	trained []neural.Pair
	err     error
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Respond(_ context.Context, text string) (agent.Reply, error) {
	return f.reply, f.err
}

func (f *fakeBackend) TrainBatch(_ context.Context, pairs []neural.Pair) (agent.Stats, error) {
	f.trained = pairs
	return f.stats, f.err
}

func (f *fakeBackend) Stats(context.Context) (agent.Stats, error) { return f.stats, f.err }

func (f *fakeBackend) Examples(context.Context) ([]neural.Pair, error) { return f.trained, f.err }

func (f *fakeBackend) Save(context.Context) (string, error) { return f.model, f.err }

func (f *fakeBackend) Load(_ context.Context, model string) (agent.Stats, error) {
	f.loaded = model
	return f.stats, f.err
}

func (f *fakeBackend) Reset(context.Context) (agent.Stats, error) { return f.stats, f.err }

func newFake() *fakeBackend {
	return &fakeBackend{
		reply: agent.Reply{
			Text:        "Привет! Рад тебя видеть!",
			MessageType: nlp.MessageGreeting,
			Topic:       nlp.TopicGeneral,
			Tone:        nlp.ToneNeutral,
			FollowUps:   []string{"Что тебя интересует?"},
			Size:        2.07,
			Quality:     0.3,
		},
		stats: agent.Stats{Size: 2.07, Quality: 0.25, Vocabulary: 42, Turns: 3, Examples: 3},
		model: `{"weights":[],"biases":[],"vocabulary":[]}`,
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func last(m Model) string {
	return m.Transcript[len(m.Transcript)-1]
}

// TestChatViewInitialization verifies that chat view is properly initialized
func TestChatViewInitialization(t *testing.T) {
	model := NewModel(newFake(), 0)

	assert.NotEmpty(t, model.ChatHistory, "Chat history should not be empty")
	assert.Contains(t, model.ChatHistory[0], "Dino Tidus", "Initial welcome message missing")
	assert.Contains(t, model.ChatView.View(), "Привет!", "Chat view should display initial content")
	assert.Equal(t, agent.QuickPrompts, model.Suggestions)
	assert.Contains(t, model.LogView.View(), "backend: fake")
}

// TestChatUpdate directly tests the chat update functionality
func TestChatUpdate(t *testing.T) {
	model := NewModel(newFake(), 0)

	testMessage := "Hello, world!"
	model.appendChat(userMessageStyle.Render("Вы: ")+testMessage, "Вы: "+testMessage)

	assert.Contains(t, model.ChatView.View(), testMessage, "Chat view should contain the new message")
	assert.Equal(t, "Вы: "+testMessage, last(model))
}

func TestRenderGauge(t *testing.T) {
	tests := []struct {
		size float64
		want string
	}{
		{0, "░░░░░░░░░░"},
		{-1, "░░░░░░░░░░"},
		{2.5, "█████░░░░░"},
		{5, "██████████"},
		{12, "██████████"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, renderGauge(tt.size, 10), "size %v", tt.size)
	}
}

func TestSendMessage(t *testing.T) {
	fake := newFake()
	model := NewModel(fake, 0)
	model.Input.SetValue("привет")

	model, cmd := update(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, model.Thinking)
	assert.Equal(t, "Вы: привет", last(model))
	assert.Empty(t, model.Input.Value())
	assert.Contains(t, model.statusLine(), "печатает")

	msg := model.respond("привет")()
	reply, ok := msg.(replyMsg)
	require.True(t, ok)
	assert.Equal(t, fake.reply, reply.reply)

	model, _ = update(t, model, reply)
	assert.False(t, model.Thinking)
	assert.Equal(t, "Dino Tidus: "+fake.reply.Text, last(model))
	assert.Equal(t, 2.07, model.Size)
	assert.Equal(t, 0.3, model.Quality)
	assert.Equal(t, fake.reply.FollowUps, model.Suggestions)
	assert.Contains(t, model.headerText(), "Качество 30%")
}

func TestMessageDroppedWhileThinking(t *testing.T) {
	model := NewModel(newFake(), 0)
	model.Thinking = true
	n := len(model.ChatHistory)

	cmd := model.handleInput("ещё")
	assert.Nil(t, cmd)
	assert.Len(t, model.ChatHistory, n)
}

func TestReplyError(t *testing.T) {
	model := NewModel(newFake(), 0)
	model.Thinking = true

	model, _ = update(t, model, replyMsg{err: errors.New("boom")})
	assert.False(t, model.Thinking)
	assert.Equal(t, "Ошибка: boom", last(model))
}

func TestQuickPromptKey(t *testing.T) {
	model := NewModel(newFake(), 0)

	model, cmd := update(t, model, tea.KeyMsg{Type: tea.KeyF2})
	require.NotNil(t, cmd)
	assert.Equal(t, "Вы: "+agent.QuickPrompts[1], last(model))
}

func TestSlashCommands(t *testing.T) {
	fake := newFake()
	model := NewModel(fake, 0)

	t.Run("quit", func(t *testing.T) {
		cmd := model.handleInput("/quit")
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})

	t.Run("help", func(t *testing.T) {
		m := model
		assert.Nil(t, m.handleInput("/help"))
		assert.Contains(t, last(m), "/train")
	})

	t.Run("stats", func(t *testing.T) {
		m := model
		msg := m.handleInput("/stats")()
		m, _ = update(t, m, msg)
		assert.Contains(t, last(m), "Словарь: 42")
		assert.Equal(t, 0.25, m.Quality)
	})

	t.Run("train default corpus", func(t *testing.T) {
		m := model
		msg := m.handleInput("/train")()
		m, _ = update(t, m, msg)
		assert.Len(t, fake.trained, len(corpus.Default()))
		assert.Contains(t, last(m), "Обучено на")
	})

	t.Run("train missing file", func(t *testing.T) {
		m := model
		msg := m.handleInput("/train " + filepath.Join(t.TempDir(), "none.json"))()
		m, _ = update(t, m, msg)
		assert.Contains(t, last(m), "Обучение:")
	})

	t.Run("save and load", func(t *testing.T) {
		m := model
		path := filepath.Join(t.TempDir(), "model.json")

		m, _ = update(t, m, m.handleInput("/save "+path)())
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, fake.model, string(data))

		m, _ = update(t, m, m.handleInput("/load "+path)())
		assert.Equal(t, fake.model, fake.loaded)
		assert.Contains(t, last(m), "Модель загружена")
	})

	t.Run("save without file", func(t *testing.T) {
		m := model
		assert.Nil(t, m.handleInput("/save"))
		assert.Contains(t, last(m), "/save <файл>")
	})

	t.Run("unknown", func(t *testing.T) {
		m := model
		assert.Nil(t, m.handleInput("/dance"))
		assert.Contains(t, last(m), "Неизвестная команда: /dance")
	})
}

func TestResize(t *testing.T) {
	model := NewModel(newFake(), 0)
	model, _ = update(t, model, tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 116, model.ChatView.Width)
	assert.Equal(t, 20, model.ChatView.Height)
	assert.Equal(t, 10, model.LogView.Height)
	assert.NotEmpty(t, model.View())
}

func TestLocalBackend(t *testing.T) {
	cfg := config.Default()
	a, err := agent.New(cfg.Model, cfg.Agent, agent.WithRand(rand.New(rand.NewSource(7))))
	require.NoError(t, err)
	b := NewLocalBackend(a)
	ctx := context.Background()

	reply, err := b.Respond(ctx, "Привет!")
	require.NoError(t, err)
	assert.NotEmpty(t, reply.Text)
	assert.Equal(t, nlp.MessageGreeting, reply.MessageType)

	snapshot, err := b.Save(ctx)
	require.NoError(t, err)
	stats, err := b.Reset(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Turns)

	stats, err = b.Load(ctx, snapshot)
	require.NoError(t, err)
	assert.Greater(t, stats.Vocabulary, 1)

	_, err = b.Load(ctx, "{")
	assert.ErrorIs(t, err, neural.ErrDeserialization)
}

func TestRemoteBackend(t *testing.T) {
	cfg := config.Default()
	registry := agent.NewRegistry(cfg.Model, cfg.Agent, nil)
	ts := httptest.NewServer(server.New(registry, nil).Router(gin.TestMode))
	defer ts.Close()

	ctx := context.Background()
	b, err := NewRemoteBackend(ctx, client.New(ts.URL))
	require.NoError(t, err)
	assert.True(t, registry.Exists(b.SessionID()))
	assert.Equal(t, ts.URL, b.Name())

	reply, err := b.Respond(ctx, "Как дела?")
	require.NoError(t, err)
	assert.NotEmpty(t, reply.Text)

	stats, err := b.TrainBatch(ctx, corpus.Default())
	require.NoError(t, err)
	assert.Greater(t, stats.Vocabulary, 1)

	examples, err := b.Examples(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, examples)

	require.NoError(t, b.Close(ctx))
	assert.False(t, registry.Exists(b.SessionID()))
}
