// ABOUTME: Two-step signup form with a progress indicator
// ABOUTME: Collects name, then email and password, and emits SignupSubmittedMsg

package authform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/companion/internal/session"
	"github.com/markalston/companion/internal/tui/icons"
	"github.com/markalston/companion/internal/tui/styles"
)

// SignupSubmittedMsg carries the completed signup form
type SignupSubmittedMsg struct {
	Request session.SignupRequest
}

// Step names for progress indicator
var stepNames = []string{"Your Name", "Account"}

// Signup manages the signup flow as a bubbletea model
type Signup struct {
	form   *huh.Form
	step   int
	width  int
	notice Notice

	firstName       string
	lastName        string
	email           string
	password        string
	confirmPassword string
}

// NewSignup creates a signup form. Name and email are prefilled from prev so
// a rejected attempt can be corrected without retyping; passwords never are.
func NewSignup(prev session.SignupRequest) *Signup {
	s := &Signup{
		step:      1,
		firstName: prev.FirstName,
		lastName:  prev.LastName,
		email:     prev.Email,
	}
	s.form = s.createStep1Form()
	return s
}

func (s *Signup) createStep1Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("First name").
				Value(&s.firstName).
				Validate(required("First name")),
			huh.NewInput().
				Title("Last name").
				Value(&s.lastName).
				Validate(required("Last name")),
		).Title("Step 1: Your Name").
			Description("Join to start chatting with your companion"),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

func (s *Signup) createStep2Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&s.email).
				Validate(required("Email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&s.password).
				Validate(required("Password")),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&s.confirmPassword).
				Validate(required("Password confirmation")),
		).Title("Step 2: Account").
			Description("Choose the email and password you will log in with"),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// SetNotice shows a message above the form
func (s *Signup) SetNotice(n Notice) {
	s.notice = n
}

// Step returns the current step, starting at 1
func (s *Signup) Step() int {
	return s.step
}

// Init implements tea.Model
func (s *Signup) Init() tea.Cmd {
	return s.form.Init()
}

// Update implements tea.Model
func (s *Signup) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return s, cancel
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		return s.advanceStep()
	}

	return s, cmd
}

func (s *Signup) advanceStep() (tea.Model, tea.Cmd) {
	switch s.step {
	case 1:
		s.step = 2
		s.form = s.createStep2Form()
		return s, s.form.Init()

	case 2:
		submitted := SignupSubmittedMsg{Request: s.request()}
		return s, func() tea.Msg { return submitted }
	}

	return s, nil
}

func (s *Signup) request() session.SignupRequest {
	return session.SignupRequest{
		FirstName:       strings.TrimSpace(s.firstName),
		LastName:        strings.TrimSpace(s.lastName),
		Email:           strings.TrimSpace(s.email),
		Password:        s.password,
		ConfirmPassword: s.confirmPassword,
	}
}

// View implements tea.Model
func (s *Signup) View() string {
	var sb strings.Builder

	sb.WriteString(s.renderProgress())
	sb.WriteString("\n\n")
	sb.WriteString(s.notice.render())
	sb.WriteString(s.form.View())

	return sb.String()
}

// renderProgress renders the step progress indicator
func (s *Signup) renderProgress() string {
	width := s.width - 1
	if width < 60 {
		width = 60
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary)

	var steps []string
	for i, name := range stepNames {
		stepNum := i + 1
		var indicator string
		var nameStyle lipgloss.Style

		if stepNum < s.step {
			indicator = lipgloss.NewStyle().Foreground(styles.Secondary).Render(icons.CheckOK.String())
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		} else if stepNum == s.step {
			indicator = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("●")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
		} else {
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("○")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		}

		steps = append(steps, fmt.Sprintf("%s %s", indicator, nameStyle.Render(name)))
	}

	stepsLine := strings.Join(steps, "    ")

	// "│  " + bar + " │" = 5 chars overhead
	barWidth := width - 5
	filledWidth := (s.step * barWidth) / len(stepNames)
	emptyWidth := barWidth - filledWidth

	filledBar := lipgloss.NewStyle().Foreground(styles.Primary).Render(strings.Repeat("━", filledWidth))
	emptyBar := lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("─", emptyWidth))

	styledTitle := titleStyle.Render("Create Account")
	titleWidth := lipgloss.Width("Create Account")

	// "┌─ " + title + " " + fill + "┐"
	topBorder := "┌─ " + styledTitle + " " + strings.Repeat("─", max(0, width-5-titleWidth)) + "┐"

	stepsPadding := max(0, width-4-lipgloss.Width(stepsLine))
	stepsLinePadded := "│ " + stepsLine + strings.Repeat(" ", stepsPadding) + " │"

	progressLinePadded := "│  " + filledBar + emptyBar + " │"

	bottomBorder := "└" + strings.Repeat("─", width-2) + "┘"

	return borderStyle.Render(strings.Join([]string{
		topBorder,
		stepsLinePadded,
		progressLinePadded,
		bottomBorder,
	}, "\n"))
}
