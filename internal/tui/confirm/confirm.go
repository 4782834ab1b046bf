// ABOUTME: Yes/no confirmation dialog as a bubbletea model
// ABOUTME: Emits ResultMsg once the user answers or cancels

package confirm

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/markalston/companion/internal/tui/styles"
)

// ResultMsg reports the user's answer. Esc counts as no.
type ResultMsg struct {
	Confirmed bool
}

// Dialog asks a single yes/no question
type Dialog struct {
	form      *huh.Form
	confirmed bool
}

// New creates a dialog for question, defaulting to no
func New(question string) *Dialog {
	d := &Dialog{}
	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Yes").
				Negative("No").
				Value(&d.confirmed),
		),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
	return d
}

// Init implements tea.Model
func (d *Dialog) Init() tea.Cmd {
	return d.form.Init()
}

// Update implements tea.Model
func (d *Dialog) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return d, answer(false)
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	if d.form.State == huh.StateCompleted {
		return d, answer(d.confirmed)
	}
	return d, cmd
}

// View implements tea.Model
func (d *Dialog) View() string {
	return styles.ActivePanel.Render(d.form.View())
}

func answer(yes bool) tea.Cmd {
	return func() tea.Msg { return ResultMsg{Confirmed: yes} }
}
