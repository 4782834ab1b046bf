// ABOUTME: Tests for the chat screen model
// ABOUTME: Drives the screen with key messages against a fake chat API

package chatview

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/markalston/companion/internal/chat"
	"github.com/markalston/companion/internal/client"
)

type fakeAPI struct {
	history  []client.HistoryMessage
	histErr  error
	reply    string
	sendErr  error
	clearErr error
	sent     []string
}

func (f *fakeAPI) History(ctx context.Context) ([]client.HistoryMessage, error) {
	return f.history, f.histErr
}

func (f *fakeAPI) SendChat(ctx context.Context, content string) (*client.ChatMessage, error) {
	f.sent = append(f.sent, content)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &client.ChatMessage{Content: f.reply}, nil
}

func (f *fakeAPI) ClearHistory(ctx context.Context) error {
	return f.clearErr
}

func newModel(api *fakeAPI) (*Model, *chat.Controller) {
	ctrl := chat.New(api)
	m := New(context.Background(), ctrl, "notty")
	m.SetSize(100, 30)
	return m, ctrl
}

// runBatch executes cmd and any batched commands, returning the messages produced
func runBatch(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runBatch(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

func TestSendShowsUserMessageBeforeReply(t *testing.T) {
	api := &fakeAPI{reply: "I'm here for you."}
	m, ctrl := newModel(api)

	m.input.SetValue("rough day")
	_, cmd := m.Update(enter())

	// Optimistic append is visible before the command runs
	if ctrl.Len() != 1 || !ctrl.Pending() {
		t.Fatalf("expected one pending user message, got len=%d pending=%v", ctrl.Len(), ctrl.Pending())
	}
	if m.input.Value() != "" {
		t.Errorf("expected input cleared, got %q", m.input.Value())
	}
	if !strings.Contains(m.View(), "rough day") {
		t.Error("expected user message in view")
	}
	if !strings.Contains(m.View(), "typing...") {
		t.Error("expected typing indicator while pending")
	}

	var sent bool
	for _, msg := range runBatch(cmd) {
		if _, ok := msg.(SentMsg); ok {
			sent = true
			m.Update(msg)
		}
	}
	if !sent {
		t.Fatal("expected SentMsg from dispatch")
	}
	if ctrl.Len() != 2 || ctrl.Pending() {
		t.Errorf("expected reply appended, got len=%d pending=%v", ctrl.Len(), ctrl.Pending())
	}
	if !strings.Contains(m.View(), "I'm here for you.") {
		t.Error("expected reply in view")
	}
}

func TestEnterWithBlankInputDoesNothing(t *testing.T) {
	api := &fakeAPI{}
	m, ctrl := newModel(api)

	m.input.SetValue("   ")
	_, cmd := m.Update(enter())

	if cmd != nil {
		t.Error("expected no command for blank input")
	}
	if ctrl.Len() != 0 || len(api.sent) != 0 {
		t.Error("expected no message and no request")
	}
}

func TestSendFailureShowsFallback(t *testing.T) {
	api := &fakeAPI{sendErr: errors.New("boom")}
	m, _ := newModel(api)

	m.input.SetValue("hello")
	_, cmd := m.Update(enter())
	for _, msg := range runBatch(cmd) {
		m.Update(msg)
	}

	if !strings.Contains(m.View(), chat.FallbackReply) {
		t.Error("expected fallback reply in view")
	}
}

func TestHistoryLoaded(t *testing.T) {
	api := &fakeAPI{history: []client.HistoryMessage{
		{Role: "user", Content: "earlier question"},
		{Role: "model", Content: "earlier answer"},
	}}
	m, _ := newModel(api)

	msg := m.LoadHistory()()
	if !strings.Contains(m.View(), "Loading history") {
		t.Error("expected loading indicator")
	}
	m.Update(msg)

	view := m.View()
	if !strings.Contains(view, "earlier question") || !strings.Contains(view, "earlier answer") {
		t.Errorf("expected history in view\n%s", view)
	}
	if m.Notice() != "" {
		t.Errorf("unexpected notice %q", m.Notice())
	}
}

func TestHistoryFailureShowsNotice(t *testing.T) {
	m, _ := newModel(&fakeAPI{histErr: &client.HTTPError{Status: 500}})

	m.Update(m.LoadHistory()())

	if m.Notice() != NoticeHistoryFailed {
		t.Errorf("expected history notice, got %q", m.Notice())
	}
}

func TestClear(t *testing.T) {
	tests := []struct {
		name       string
		clearErr   error
		wantNotice string
		wantLen    int
	}{
		{"success", nil, "", 0},
		{"failure", &client.HTTPError{Status: 500}, NoticeClearFailed, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAPI{reply: "ok", clearErr: tc.clearErr}
			m, ctrl := newModel(api)
			ctrl.Send(context.Background(), "hi")

			m.Update(m.Clear()())

			if m.Notice() != tc.wantNotice {
				t.Errorf("expected notice %q, got %q", tc.wantNotice, m.Notice())
			}
			if ctrl.Len() != tc.wantLen {
				t.Errorf("expected %d messages, got %d", tc.wantLen, ctrl.Len())
			}
		})
	}
}

func TestShortcutsEmitRequests(t *testing.T) {
	m, _ := newModel(&fakeAPI{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	if _, ok := cmd().(ClearRequestedMsg); !ok {
		t.Error("expected ctrl+l to request clear")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	if _, ok := cmd().(LogoutRequestedMsg); !ok {
		t.Error("expected ctrl+o to request logout")
	}
}

func TestEnterIgnoredWhileHistoryLoads(t *testing.T) {
	api := &fakeAPI{
		reply:   "hi there",
		history: []client.HistoryMessage{{Role: "user", Content: "old"}},
	}
	m, ctrl := newModel(api)

	load := m.LoadHistory()
	m.input.SetValue("hello")
	_, cmd := m.Update(enter())

	if cmd != nil || ctrl.Len() != 0 || ctrl.Pending() {
		t.Fatalf("expected send held back while loading, got len=%d pending=%v", ctrl.Len(), ctrl.Pending())
	}
	if m.input.Value() != "hello" {
		t.Errorf("expected input kept, got %q", m.input.Value())
	}

	m.Update(load())
	_, cmd = m.Update(enter())
	for _, msg := range runBatch(cmd) {
		m.Update(msg)
	}

	got := ctrl.Transcript()
	if len(got) != 3 || got[0].Content != "old" || got[1].Content != "hello" || got[2].Content != "hi there" {
		t.Errorf("expected history followed by the send, got %+v", got)
	}
}
