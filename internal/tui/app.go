// Package tui is the interactive chat shell: a bubbletea program with a
// viewport transcript, a textarea composer, and slash commands over the
// session collection and the turn engine.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pixenhq/pixen/internal/config"
	"github.com/pixenhq/pixen/internal/engine"
	"github.com/pixenhq/pixen/internal/provider"
	"github.com/pixenhq/pixen/internal/session"
)

type (
	// generationDoneMsg carries the raw outcome of a detached gateway
	// call. The engine applies it on the event loop, in Update, so session
	// state is only ever mutated on the goroutine that renders it.
	generationDoneMsg struct {
		call   *engine.Call
		result *provider.GenerateResult
		err    error
	}

	// enhanceDoneMsg carries the rewritten composer prompt.
	enhanceDoneMsg struct {
		prompt string
	}

	noticeExpireMsg struct {
		setAt time.Time
	}
)

type model struct {
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	sessions *session.Manager
	engine   *engine.Engine
	cfg      *config.Config

	width  int
	height int
	ready  bool

	mdRenderer *glamour.TermRenderer

	selector SessionSelectorState

	notice      string
	noticeSetAt time.Time
}

// Run starts the interactive shell and blocks until the user quits.
func Run(sessions *session.Manager, eng *engine.Engine, cfg *config.Config) error {
	p := tea.NewProgram(
		newModel(sessions, eng, cfg),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newModel(sessions *session.Manager, eng *engine.Engine, cfg *config.Config) model {
	ta := textarea.New()
	ta.Placeholder = "Describe an image, or /help"
	ta.Focus()
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetWidth(defaultWidth)
	ta.SetHeight(minTextareaHeight)
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.FocusedStyle.Prompt = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	ta.KeyMap.InsertNewline.SetEnabled(true)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		FPS:    80 * time.Millisecond,
	}
	sp.Style = thinkingStyle

	return model{
		textarea:   ta,
		spinner:    sp,
		sessions:   sessions,
		engine:     eng,
		cfg:        cfg,
		mdRenderer: createMarkdownRenderer(defaultWidth),
		selector:   NewSessionSelectorState(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

func (m *model) updateTextareaHeight() {
	lines := strings.Count(m.textarea.Value(), "\n") + 1
	if lines < minTextareaHeight {
		lines = minTextareaHeight
	}
	if lines > maxTextareaHeight {
		lines = maxTextareaHeight
	}
	m.textarea.SetHeight(lines)
}

func (m *model) updateViewportHeight() {
	if m.width == 0 || m.height == 0 {
		return
	}
	inputH := m.textarea.Height()
	chatH := m.height - inputH - 3 // separators + status line
	if chatH < 1 {
		chatH = 1
	}
	m.viewport.Height = chatH
}

func (m *model) setNotice(text string) tea.Cmd {
	m.notice = text
	m.noticeSetAt = time.Now()
	setAt := m.noticeSetAt
	return tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
		return noticeExpireMsg{setAt: setAt}
	})
}

func (m *model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case SessionSelectedMsg:
		m.sessions.Select(msg.SessionID)
		m.refreshTranscript()
		return m, nil

	case SessionSelectorCancelledMsg:
		return m, nil

	case generationDoneMsg:
		// A stale completion belongs to a superseded or deleted call and
		// must not touch the loading indicator; the transcript refresh is
		// keyed to the displayed session either way.
		state := m.engine.Finish(msg.call, msg.result, msg.err)
		if state.SessionID == m.sessions.SelectedID() {
			m.refreshTranscript()
		}
		return m, nil

	case enhanceDoneMsg:
		m.textarea.SetValue(msg.prompt)
		m.updateTextareaHeight()
		return m, nil

	case noticeExpireMsg:
		if msg.setAt.Equal(m.noticeSetAt) {
			m.notice = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.selector.IsActive() {
			return m, m.selector.HandleKeypress(msg)
		}
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			if msg.Alt {
				break // alt+enter inserts a newline
			}
			return m.handleSubmit()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textarea.SetWidth(msg.Width - 2)
		m.mdRenderer = createMarkdownRenderer(msg.Width)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, 1)
			m.ready = true
		}
		m.viewport.Width = msg.Width
		m.updateViewportHeight()
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	prevValue := m.textarea.Value()
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	if m.textarea.Value() != prevValue {
		m.updateTextareaHeight()
		m.updateViewportHeight()
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())

	if strings.HasPrefix(input, "/") {
		m.textarea.Reset()
		m.updateTextareaHeight()
		return m.dispatchCommand(input)
	}
	return m.startSend(input)
}

// startSend begins a send turn for the displayed session and launches
// the gateway call as a detached command.
func (m model) startSend(text string) (tea.Model, tea.Cmd) {
	id := m.sessions.SelectedID()
	call, err := m.engine.BeginSend(id, text)
	switch {
	case errors.Is(err, engine.ErrEmptyTurn):
		return m, nil
	case errors.Is(err, engine.ErrBusy):
		return m, m.setNotice("Still generating, hang on")
	case err != nil:
		return m, m.setNotice(err.Error())
	}

	m.textarea.Reset()
	m.updateTextareaHeight()
	m.updateViewportHeight()
	m.refreshTranscript()
	return m, tea.Batch(m.runGeneration(call), m.spinner.Tick)
}

// runGeneration executes the gateway call off the event loop. The call
// carries copies of everything the request needs, so the detached
// goroutine never touches session state; Update applies the outcome.
func (m model) runGeneration(call *engine.Call) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		result, err := eng.Generate(context.Background(), call)
		return generationDoneMsg{call: call, result: result, err: err}
	}
}

func (m model) View() string {
	if !m.ready {
		return "\n  Loading..."
	}

	if m.selector.IsActive() {
		return m.selector.Render()
	}

	chat := m.viewport.View()
	separator := separatorStyle.Render(strings.Repeat("─", m.width))

	prompt := inputPromptStyle.Render("❯ ")
	inputView := prompt + m.textarea.View()

	status := m.renderStatus()

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", chat, separator, inputView, separator, status)
}
