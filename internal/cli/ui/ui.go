package ui

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	psutil "github.com/shirou/gopsutil/v3/cpu"
	psmem "github.com/shirou/gopsutil/v3/mem"

	"dinotidus/internal/agent"
	"dinotidus/internal/cli/chat"
	"dinotidus/internal/corpus"
	"dinotidus/pkg/neural"
)

const (
	botName  = "Dino Tidus"
	userName = "Вы"

	// gaugeMax is the network size at which the header gauge is full.
	gaugeMax   = 5.0
	gaugeWidth = 12

	maxLogLines    = 50
	requestTimeout = 30 * time.Second
)

// Styles
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#34D399")).
			Padding(0, 2).
			Bold(true).
			Width(80)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4B5563")).
			Padding(0, 2).
			Width(80)

	chatViewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#9CA3AF"))

	logViewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4B5563"))

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#60A5FA")).
				Bold(true)

	botMessageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34D399"))

	copyNoticeStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#10B981")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 2).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF")).
			Italic(true)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2563EB")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#60A5FA"))
)

// Model is the chat screen.
type Model struct {
	Backend    Backend
	ThinkDelay time.Duration

	ChatView viewport.Model
	LogView  viewport.Model
	Input    textarea.Model
	Spinner  spinner.Model

	ChatHistory []string // rendered messages
	Transcript  []string // plain text of the same messages, for copying
	Logs        []string
	Suggestions []string // sent with F1-F3

	Size     float64
	Quality  float64
	Thinking bool

	ResourceData   string
	ShowCopyNotice bool
	Width          int
	Height         int
}

// NewModel creates the chat screen for backend. Replies are shown after
// thinkDelay.
func NewModel(backend Backend, thinkDelay time.Duration) Model {
	chatView := viewport.New(76, 10)
	chatView.KeyMap = scrollKeys()

	logView := viewport.New(76, 5)
	logView.KeyMap = viewport.KeyMap{}

	input := textarea.New()
	input.Placeholder = "Напишите сообщение (/help - команды, /quit - выход)..."
	input.Focus()
	input.Prompt = ""
	input.SetHeight(1)
	input.SetWidth(74)
	input.ShowLineNumbers = false
	input.KeyMap.InsertNewline.SetEnabled(false)
	input.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#2563EB"))

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	spin.Style = helpStyle

	m := Model{
		Backend:     backend,
		ThinkDelay:  thinkDelay,
		ChatView:    chatView,
		LogView:     logView,
		Input:       input,
		Spinner:     spin,
		Logs:        []string{fmt.Sprintf("[%s] backend: %s", timestamp(), backend.Name())},
		Suggestions: append([]string(nil), agent.QuickPrompts...),
		Width:       80,
		Height:      24,
	}
	m.appendChat(botMessageStyle.Render(botName+": ")+agent.Welcome, botName+": "+agent.Welcome)
	m.updateLogView()
	return m
}

var suggestionKeys = map[tea.KeyType]int{tea.KeyF1: 0, tea.KeyF2: 1, tea.KeyF3: 2}

func scrollKeys() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		Up:       key.NewBinding(key.WithKeys("up")),
		Down:     key.NewBinding(key.WithKeys("down")),
	}
}

// Init starts the resource ticker and fetches the initial gauges.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.ClearScreen,
		textarea.Blink,
		updateResourceData(),
		m.refreshGauges(),
	)
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			input := m.Input.Value()
			m.Input.Reset()
			if strings.TrimSpace(input) != "" {
				cmds = append(cmds, m.handleInput(input))
			}
			return m, tea.Batch(cmds...)
		case tea.KeyF1, tea.KeyF2, tea.KeyF3:
			i := suggestionKeys[msg.Type]
			if i < len(m.Suggestions) {
				cmds = append(cmds, m.handleInput(m.Suggestions[i]))
			}
			return m, tea.Batch(cmds...)
		}

		m.ChatView, cmd = m.ChatView.Update(msg)
		cmds = append(cmds, cmd)
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonRight && msg.Action == tea.MouseActionPress {
			cmds = append(cmds, copyTranscript(m.Transcript))
		}
		m.ChatView, cmd = m.ChatView.Update(msg)
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		m.handleResize(msg)

	case spinner.TickMsg:
		if m.Thinking {
			m.Spinner, cmd = m.Spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case updateResourceDataMsg:
		m.ResourceData = msg.data
		cmds = append(cmds, updateResourceData())

	case thinkDoneMsg:
		cmds = append(cmds, m.respond(msg.text))

	case replyMsg:
		m.Thinking = false
		if msg.err != nil {
			m.appendLog("reply error: %v", msg.err)
			m.appendError("Ошибка: " + msg.err.Error())
			break
		}
		r := msg.reply
		m.Size, m.Quality = r.Size, r.Quality
		if len(r.FollowUps) > 0 {
			m.Suggestions = r.FollowUps
		}
		m.appendChat(botMessageStyle.Render(botName+": ")+r.Text, botName+": "+r.Text)
		m.appendLog("reply in %s: type=%s topic=%s tone=%s keywords=%v",
			msg.latency.Round(time.Millisecond), r.MessageType, r.Topic, r.Tone, r.Keywords)

	case statsMsg:
		if msg.err != nil && msg.title == "" {
			m.appendLog("stats: %v", msg.err)
			break
		}
		if msg.err != nil {
			m.appendLog("%s: %v", msg.title, msg.err)
			m.appendError(msg.title + ": " + msg.err.Error())
			break
		}
		m.Size, m.Quality = msg.stats.Size, msg.stats.Quality
		if msg.title != "" {
			text := msg.title + "\n" + formatStats(msg.stats)
			m.appendChat(infoStyle.Render(text), text)
			m.appendLog("%s", msg.title)
		}

	case examplesMsg:
		if msg.err != nil {
			m.appendError("Ошибка: " + msg.err.Error())
			break
		}
		text := formatExamples(msg.pairs)
		m.appendChat(infoStyle.Render(text), text)

	case noticeMsg:
		if msg.err != nil {
			m.appendLog("%v", msg.err)
			m.appendError("Ошибка: " + msg.err.Error())
			break
		}
		m.appendChat(infoStyle.Render(msg.text), msg.text)
		m.appendLog("%s", msg.text)

	case copiedMsg:
		if msg.err != nil {
			m.appendLog("clipboard: %v", msg.err)
			break
		}
		m.ShowCopyNotice = true
		cmds = append(cmds, startCopyNoticeTimer())

	case hideCopyNoticeMsg:
		m.ShowCopyNotice = false
	}

	return m, tea.Batch(cmds...)
}

// handleInput dispatches a slash command or sends the text as a chat turn.
func (m *Model) handleInput(input string) tea.Cmd {
	name, arg, quit := chat.ParseInput(input)
	if quit {
		return tea.Quit
	}

	backend := m.Backend
	switch name {
	case "":
		if m.Thinking {
			m.appendLog("still thinking, message dropped: %s", input)
			return nil
		}
		text := strings.TrimSpace(input)
		m.appendChat(userMessageStyle.Render(userName+": ")+text, userName+": "+text)
		m.appendLog("sending: %s", text)
		m.Thinking = true
		return tea.Batch(m.Spinner.Tick, m.think(text))

	case chat.CmdHelp:
		m.appendChat(helpStyle.Render(chat.HelpText), chat.HelpText)
		return nil

	case chat.CmdStats:
		return withTimeout(func(ctx context.Context) tea.Msg {
			s, err := backend.Stats(ctx)
			return statsMsg{title: "Статистика", stats: s, err: err}
		})

	case chat.CmdExamples:
		return withTimeout(func(ctx context.Context) tea.Msg {
			pairs, err := backend.Examples(ctx)
			return examplesMsg{pairs: pairs, err: err}
		})

	case chat.CmdTrain:
		m.appendLog("training on %s", corpusName(arg))
		return withTimeout(func(ctx context.Context) tea.Msg {
			pairs := corpus.Default()
			if arg != "" {
				var err error
				if pairs, err = corpus.Load(arg); err != nil {
					return statsMsg{title: "Обучение", err: err}
				}
			}
			s, err := backend.TrainBatch(ctx, pairs)
			return statsMsg{title: fmt.Sprintf("Обучено на %d парах", len(pairs)), stats: s, err: err}
		})

	case chat.CmdSave:
		if arg == "" {
			m.appendError("Укажите файл: /save <файл>")
			return nil
		}
		return withTimeout(func(ctx context.Context) tea.Msg {
			model, err := backend.Save(ctx)
			if err == nil {
				err = chat.WriteFile(arg, model)
			}
			return noticeMsg{text: "Модель сохранена в " + arg, err: err}
		})

	case chat.CmdLoad:
		if arg == "" {
			m.appendError("Укажите файл: /load <файл>")
			return nil
		}
		return withTimeout(func(ctx context.Context) tea.Msg {
			model, err := chat.ReadFile(arg)
			if err != nil {
				return statsMsg{title: "Загрузка", err: err}
			}
			s, err := backend.Load(ctx, model)
			return statsMsg{title: "Модель загружена из " + arg, stats: s, err: err}
		})

	case chat.CmdReset:
		m.Suggestions = append([]string(nil), agent.QuickPrompts...)
		return withTimeout(func(ctx context.Context) tea.Msg {
			s, err := backend.Reset(ctx)
			return statsMsg{title: "Нейросеть сброшена", stats: s, err: err}
		})

	case chat.CmdCopy:
		return copyTranscript(m.Transcript)

	case chat.CmdUnknown:
		m.appendError("Неизвестная команда: " + arg + " (/help - список команд)")
	}
	return nil
}

// think holds the reply back for the thinking delay.
func (m Model) think(text string) tea.Cmd {
	if m.ThinkDelay <= 0 {
		return m.respond(text)
	}
	return tea.Tick(m.ThinkDelay, func(time.Time) tea.Msg {
		return thinkDoneMsg{text: text}
	})
}

func (m Model) respond(text string) tea.Cmd {
	backend := m.Backend
	return withTimeout(func(ctx context.Context) tea.Msg {
		start := time.Now()
		reply, err := backend.Respond(ctx, text)
		return replyMsg{reply: reply, err: err, latency: time.Since(start)}
	})
}

func (m Model) refreshGauges() tea.Cmd {
	backend := m.Backend
	return withTimeout(func(ctx context.Context) tea.Msg {
		s, err := backend.Stats(ctx)
		return statsMsg{stats: s, err: err}
	})
}

func withTimeout(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return fn(ctx)
	}
}

// View renders the UI
func (m Model) View() string {
	header := headerStyle.Width(m.Width).Render(m.headerText())

	footerText := m.ResourceData
	if m.ShowCopyNotice {
		footerText += " " + copyNoticeStyle.Render("✓ Скопировано")
	} else {
		footerText += " | PgUp/PgDn прокрутка | /copy копировать"
	}
	footer := footerStyle.Width(m.Width).Render(footerText)

	chatContent := chatViewStyle.Width(m.Width - 2).Render(m.ChatView.View())
	logContent := logViewStyle.Width(m.Width - 2).Render(m.LogView.View())

	status := m.statusLine()
	input := inputStyle.Width(m.Width - 4).Height(1).Render(m.Input.View())

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		chatContent,
		logContent,
		status,
		input,
		footer,
	)
}

func (m Model) headerText() string {
	left := fmt.Sprintf(" %s | %s", botName, m.Backend.Name())
	right := fmt.Sprintf("Размер %.2f %s | Качество %.0f%% ",
		m.Size, renderGauge(m.Size, gaugeWidth), m.Quality*100)

	padding := m.Width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if padding < 1 {
		padding = 1
	}
	return left + strings.Repeat(" ", padding) + right
}

// statusLine shows the typing indicator, or the F-key suggestions when idle.
func (m Model) statusLine() string {
	if m.Thinking {
		return m.Spinner.View() + helpStyle.Render(botName+" печатает...")
	}
	parts := make([]string, 0, len(m.Suggestions))
	for i, s := range m.Suggestions {
		if i >= 3 {
			break
		}
		parts = append(parts, fmt.Sprintf("F%d %s", i+1, s))
	}
	return helpStyle.Render(ansi.Truncate(strings.Join(parts, " | "), m.Width, "…"))
}

// renderGauge draws a bar filled in proportion to min(size/5, 1).
func renderGauge(size float64, width int) string {
	ratio := math.Max(0, math.Min(size/gaugeMax, 1))
	filled := int(math.Round(ratio * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// handleResize adjusts layout for window resizing
func (m *Model) handleResize(msg tea.WindowSizeMsg) {
	m.Width = msg.Width
	m.Height = msg.Height

	// header(1) + footer(1) + status(1) + input(3) + chat border(2) + log border(2) = 10
	contentHeight := msg.Height - 10
	if contentHeight < 6 {
		contentHeight = 6
	}
	logHeight := contentHeight / 3
	chatHeight := contentHeight - logHeight

	m.ChatView.Width = msg.Width - 4
	m.ChatView.Height = chatHeight
	m.LogView.Width = msg.Width - 4
	m.LogView.Height = logHeight
	m.Input.SetWidth(msg.Width - 6)

	m.updateChatView()
	m.updateLogView()
}

func (m *Model) appendChat(rendered, plain string) {
	m.ChatHistory = append(m.ChatHistory, rendered)
	m.Transcript = append(m.Transcript, plain)
	m.updateChatView()
}

func (m *Model) appendError(text string) {
	m.appendChat(errorStyle.Render(text), text)
}

func (m *Model) appendLog(format string, args ...interface{}) {
	m.Logs = append(m.Logs, fmt.Sprintf("[%s] ", timestamp())+fmt.Sprintf(format, args...))
	if len(m.Logs) > maxLogLines {
		m.Logs = m.Logs[len(m.Logs)-maxLogLines:]
	}
	m.updateLogView()
}

// updateChatView updates the chat view with history
func (m *Model) updateChatView() {
	width := m.ChatView.Width
	wrapped := make([]string, len(m.ChatHistory))
	for i, msg := range m.ChatHistory {
		wrapped[i] = ansi.Wordwrap(msg, width, " \t")
	}
	m.ChatView.SetContent(strings.Join(wrapped, "\n\n"))
	m.ChatView.GotoBottom()
}

func (m *Model) updateLogView() {
	width := m.LogView.Width
	wrapped := make([]string, len(m.Logs))
	for i, line := range m.Logs {
		wrapped[i] = ansi.Wordwrap(line, width, " \t")
	}
	m.LogView.SetContent(strings.Join(wrapped, "\n"))
	m.LogView.GotoBottom()
}

func formatStats(s agent.Stats) string {
	return fmt.Sprintf("Размер: %.2f | Качество: %.0f%% | Словарь: %d | Ходов: %d | Примеров: %d",
		s.Size, s.Quality*100, s.Vocabulary, s.Turns, s.Examples)
}

func formatExamples(pairs []neural.Pair) string {
	if len(pairs) == 0 {
		return "Обучающих примеров пока нет."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Последние примеры (%d):", len(pairs))
	for _, p := range pairs {
		fmt.Fprintf(&b, "\n  %s -> %s", p.Question, p.Answer)
	}
	return b.String()
}

func corpusName(path string) string {
	if path == "" {
		return "built-in corpus"
	}
	return path
}

func timestamp() string {
	return time.Now().Format("15:04:05")
}

// updateResourceData updates resource usage information
func updateResourceData() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		var cpu, ram float64
		if percents, err := psutil.Percent(0, false); err == nil && len(percents) > 0 {
			cpu = percents[0]
		}
		if memInfo, err := psmem.VirtualMemory(); err == nil {
			ram = memInfo.UsedPercent
		}
		return updateResourceDataMsg{fmt.Sprintf("CPU: %.1f%% | RAM: %.1f%% | Go: %s",
			cpu, ram, runtime.Version())}
	})
}

func copyTranscript(lines []string) tea.Cmd {
	text := strings.Join(lines, "\n\n")
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(text)}
	}
}

func startCopyNoticeTimer() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return hideCopyNoticeMsg{}
	})
}

// Messages
type updateResourceDataMsg struct {
	data string
}

type thinkDoneMsg struct {
	text string
}

type replyMsg struct {
	reply   agent.Reply
	err     error
	latency time.Duration
}

type statsMsg struct {
	title string // empty for a silent gauge refresh
	stats agent.Stats
	err   error
}

type examplesMsg struct {
	pairs []neural.Pair
	err   error
}

type noticeMsg struct {
	text string
	err  error
}

type copiedMsg struct {
	err error
}

type hideCopyNoticeMsg struct{}
