// ABOUTME: Login form collecting email and password
// ABOUTME: Emits LoginSubmittedMsg when both fields are filled in

package authform

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/markalston/companion/internal/tui/styles"
)

// LoginSubmittedMsg carries the credentials the user entered
type LoginSubmittedMsg struct {
	Email    string
	Password string
}

// Login is the login form
type Login struct {
	form   *huh.Form
	notice Notice
	width  int

	email    string
	password string
}

// NewLogin creates a login form with email prefilled
func NewLogin(email string) *Login {
	l := &Login{email: email}
	l.form = l.createForm()
	return l
}

func (l *Login) createForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&l.email).
				Validate(required("Email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&l.password).
				Validate(required("Password")),
		).Title("Welcome Back").
			Description("Log in to continue your conversation"),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// SetNotice shows a message above the form
func (l *Login) SetNotice(n Notice) {
	l.notice = n
}

// Email returns the email field's current value
func (l *Login) Email() string {
	return l.email
}

// Init implements tea.Model
func (l *Login) Init() tea.Cmd {
	return l.form.Init()
}

// Update implements tea.Model
func (l *Login) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return l, cancel
		}
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}

	if l.form.State == huh.StateCompleted {
		submitted := LoginSubmittedMsg{
			Email:    strings.TrimSpace(l.email),
			Password: l.password,
		}
		return l, func() tea.Msg { return submitted }
	}

	return l, cmd
}

// View implements tea.Model
func (l *Login) View() string {
	return l.notice.render() + l.form.View()
}
