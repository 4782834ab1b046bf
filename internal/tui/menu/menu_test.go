// ABOUTME: Tests for the entry menu
// ABOUTME: Validates options and the choice messages the menu emits

package menu

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestMenuOptions(t *testing.T) {
	m := New()

	if len(m.options) != 3 {
		t.Errorf("expected 3 options, got %d", len(m.options))
	}
	if m.options[0].label != "Log in" {
		t.Errorf("expected first option 'Log in', got %s", m.options[0].label)
	}
	if m.selected != ChoiceLogin {
		t.Errorf("expected login preselected, got %s", m.selected)
	}
}

func TestMenuQuitKey(t *testing.T) {
	m := New()
	m.Init()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(ChoiceMsg)
	if !ok {
		t.Fatalf("expected ChoiceMsg, got %T", cmd())
	}
	if msg.Choice != ChoiceQuit {
		t.Errorf("expected quit, got %s", msg.Choice)
	}
}

func TestMenuViewListsOptions(t *testing.T) {
	m := New()
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	view := m.View()
	for _, want := range []string{"Log in", "Create an account", "Quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestChoiceString(t *testing.T) {
	tests := []struct {
		choice   Choice
		expected string
	}{
		{ChoiceLogin, "login"},
		{ChoiceSignup, "signup"},
		{ChoiceQuit, "quit"},
		{Choice(99), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			if got := tc.choice.String(); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
