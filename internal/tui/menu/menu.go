// ABOUTME: Entry menu shown when no session is held
// ABOUTME: Lets the user choose between logging in, signing up, or quitting

package menu

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/markalston/companion/internal/tui/styles"
)

// Choice represents the selected entry action
type Choice int

const (
	ChoiceLogin Choice = iota
	ChoiceSignup
	ChoiceQuit
)

// ChoiceMsg is sent when the user confirms a choice
type ChoiceMsg struct {
	Choice Choice
}

type option struct {
	label string
	value Choice
}

// Menu is the entry menu as a bubbletea model
type Menu struct {
	options  []option
	selected Choice
	form     *huh.Form
}

// New creates the entry menu with login preselected
func New() *Menu {
	m := &Menu{
		options: []option{
			{label: "Log in", value: ChoiceLogin},
			{label: "Create an account", value: ChoiceSignup},
			{label: "Quit", value: ChoiceQuit},
		},
		selected: ChoiceLogin,
	}
	m.form = m.createForm()
	return m
}

func (m *Menu) createForm() *huh.Form {
	var options []huh.Option[Choice]
	for _, opt := range m.options {
		options = append(options, huh.NewOption(opt.label, opt.value))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Choice]().
				Title("Welcome").
				Description("Your supportive companion is a message away").
				Options(options...).
				Value(&m.selected),
		),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "q" {
		return m, choose(ChoiceQuit)
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		choice := m.selected
		// Rebuild so the menu is usable again when the user comes back
		m.form = m.createForm()
		return m, tea.Batch(m.form.Init(), choose(choice))
	}

	return m, cmd
}

// View implements tea.Model
func (m *Menu) View() string {
	return m.form.View()
}

func choose(c Choice) tea.Cmd {
	return func() tea.Msg { return ChoiceMsg{Choice: c} }
}

// String returns the string representation of a Choice
func (c Choice) String() string {
	switch c {
	case ChoiceLogin:
		return "login"
	case ChoiceSignup:
		return "signup"
	case ChoiceQuit:
		return "quit"
	default:
		return "unknown"
	}
}
