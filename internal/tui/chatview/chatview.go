// ABOUTME: Chat screen combining the transcript viewport, input box and typing spinner
// ABOUTME: Drives the chat controller from bubbletea commands so the UI never blocks

package chatview

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/companion/internal/chat"
	"github.com/markalston/companion/internal/tui/styles"
	"github.com/markalston/companion/internal/tui/transcript"
	"github.com/markalston/companion/internal/tui/widgets"
)

// User-facing notices
const (
	NoticeHistoryFailed = chat.NoticeHistoryFailed
	NoticeClearFailed   = chat.NoticeClearFailed
)

// Layout constants
const (
	inputHeight   = 3
	inputChrome   = 2 // input box border
	noticeHeight  = 1
	minViewHeight = 3
)

// HistoryLoadedMsg is sent when a history fetch completes
type HistoryLoadedMsg struct {
	Err error
}

// SentMsg is sent when a dispatched message completes
type SentMsg struct {
	Attempt *chat.SendAttempt
}

// ClearedMsg is sent when a confirmed clear completes
type ClearedMsg struct {
	Err error
}

// ClearRequestedMsg asks the app to confirm clearing the history
type ClearRequestedMsg struct{}

// LogoutRequestedMsg asks the app to end the session
type LogoutRequestedMsg struct{}

// Model is the chat screen
type Model struct {
	ctx        context.Context
	ctrl       *chat.Controller
	transcript *transcript.Transcript
	viewport   viewport.Model
	input      textarea.Model
	spinner    spinner.Model

	width   int
	height  int
	loading bool
	notice  string
}

// New creates the chat screen for ctrl. markdownStyle selects the glamour
// style for model replies; empty uses the default.
func New(ctx context.Context, ctrl *chat.Controller, markdownStyle string) *Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.ShowLineNumbers = false
	ta.Prompt = "│ "
	ta.CharLimit = 4096
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	m := &Model{
		ctx:        ctx,
		ctrl:       ctrl,
		transcript: transcript.New(80, markdownStyle),
		viewport:   viewport.New(80, 20),
		input:      ta,
		spinner:    sp,
	}
	m.SetSize(80, 24)
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.LoadHistory())
}

// LoadHistory fetches the server history in the background
func (m *Model) LoadHistory() tea.Cmd {
	m.loading = true
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return HistoryLoadedMsg{Err: ctrl.LoadHistory(ctx)}
	}
}

// Clear deletes the history. Only call after the user confirmed.
func (m *Model) Clear() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return ClearedMsg{Err: ctrl.ClearHistory(ctx, true)}
	}
}

// SetSize lays out the screen within width x height
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	viewHeight := height - inputHeight - inputChrome - noticeHeight
	if viewHeight < minViewHeight {
		viewHeight = minViewHeight
	}

	m.viewport.Width = width
	m.viewport.Height = viewHeight
	m.input.SetWidth(width - inputChrome - 2)
	m.transcript.SetWidth(width - 1)
	m.refresh()
}

// Notice returns the current error banner text
func (m *Model) Notice() string {
	return m.notice
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return m, m.send()
		case "ctrl+l":
			return m, func() tea.Msg { return ClearRequestedMsg{} }
		case "ctrl+o":
			return m, func() tea.Msg { return LogoutRequestedMsg{} }
		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if !m.ctrl.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case HistoryLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.notice = NoticeHistoryFailed
		} else {
			m.notice = ""
		}
		m.refresh()
		return m, nil

	case SentMsg:
		m.refresh()
		return m, nil

	case ClearedMsg:
		if msg.Err != nil {
			m.notice = NoticeClearFailed
		} else {
			m.notice = ""
		}
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send appends the user message immediately and dispatches it in the background.
// Input is not sent until the history load has finished.
func (m *Model) send() tea.Cmd {
	if m.loading {
		return nil
	}
	attempt, ok := m.ctrl.Begin(m.input.Value())
	if !ok {
		return nil
	}
	m.input.Reset()
	m.refresh()

	ctrl, ctx := m.ctrl, m.ctx
	dispatch := func() tea.Msg {
		ctrl.Dispatch(ctx, attempt)
		return SentMsg{Attempt: attempt}
	}
	return tea.Batch(m.spinner.Tick, dispatch)
}

// refresh re-renders the transcript into the viewport and scrolls to the end
func (m *Model) refresh() {
	typing := ""
	if m.ctrl.Pending() {
		typing = m.spinner.View()
	}
	m.viewport.SetContent(m.transcript.Render(m.ctrl.Transcript(), typing))
	m.viewport.GotoBottom()
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")

	switch {
	case m.notice != "":
		sb.WriteString(widgets.StatusText(m.notice, widgets.StatusCritical))
	case m.loading:
		sb.WriteString(styles.Timestamp.Render("Loading history..."))
	}
	sb.WriteString("\n")

	box := styles.InputBox
	if m.ctrl.Pending() {
		box = styles.InputBoxDisabled
	}
	sb.WriteString(box.Width(m.width - inputChrome).Render(m.input.View()))

	return sb.String()
}
