// ABOUTME: Login and signup forms as bubbletea models built on huh
// ABOUTME: Forms only collect input; the app runs the session operation on submit

package authform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/markalston/companion/internal/tui/widgets"
)

// CancelledMsg is sent when the user backs out of a form
type CancelledMsg struct{}

// Notice is a one-line message rendered above a form
type Notice struct {
	Text  string
	Level widgets.StatusLevel
}

func (n Notice) render() string {
	if n.Text == "" {
		return ""
	}
	return widgets.StatusText(n.Text, n.Level) + "\n\n"
}

func cancel() tea.Msg { return CancelledMsg{} }

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
