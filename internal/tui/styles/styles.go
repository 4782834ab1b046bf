// ABOUTME: Shared lipgloss styles for consistent TUI appearance
// ABOUTME: Defines colors, borders, text styles and the huh form theme used across components

package styles

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors - Core palette
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Danger    = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#6B7280") // Gray
	Text      = lipgloss.Color("#F9FAFB") // Light
	BgDark    = lipgloss.Color("#1F2937") // Dark gray

	// Colors - Extended palette
	Accent  = lipgloss.Color("#8B5CF6") // Lighter purple for highlights
	Surface = lipgloss.Color("#374151") // Elevated surface background
	Info    = lipgloss.Color("#3B82F6") // Blue - informational

	// Base styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			MarginBottom(1)

	// Status indicators
	StatusOK = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	StatusCritical = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	// Panels
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(1, 2)

	ActivePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Help text
	Help = lipgloss.NewStyle().
		Foreground(Muted).
		MarginTop(1)

	// Key style for keyboard shortcuts
	KeyStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	// Transcript speakers
	UserLabel = lipgloss.NewStyle().
			Foreground(Info).
			Bold(true)

	ModelLabel = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	UserText = lipgloss.NewStyle().
			Foreground(Text)

	Timestamp = lipgloss.NewStyle().
			Foreground(Muted)

	// Input box below the transcript
	InputBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Padding(0, 1)

	InputBoxDisabled = InputBox.
				BorderForeground(Surface)
)

// FormTheme returns the huh theme shared by every form in the app
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()

	cyan := lipgloss.Color("#06B6D4")      // Cyan-500 - primary
	cyanLight := lipgloss.Color("#22D3EE") // Cyan-400 - accents
	gray := lipgloss.Color("#9CA3AF")      // Gray-400 - muted
	grayLight := lipgloss.Color("#E5E7EB") // Gray-200 - text
	red := lipgloss.Color("#F87171")       // Red-400 - errors
	slate := lipgloss.Color("#334155")     // Slate-700 - borders

	// Group styles (section headers)
	t.Group.Title = lipgloss.NewStyle().
		Foreground(cyan).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	// Focused field styles
	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(cyan)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(cyanLight).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(red).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)

	// Select field styles
	t.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(cyan).
		SetString("> ")
	t.Focused.Option = lipgloss.NewStyle().
		Foreground(grayLight)
	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(cyan).
		Bold(true)

	// Text input styles
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(cyan)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(cyan)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(grayLight)

	// Button styles
	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(Primary).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(gray).
		Background(slate).
		Padding(0, 2).
		MarginRight(1)

	// Blurred field styles (inherit from focused with muted colors)
	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)
	t.Blurred.SelectSelector = lipgloss.NewStyle().
		Foreground(gray).
		SetString("  ")
	t.Blurred.Option = lipgloss.NewStyle().
		Foreground(gray)

	return t
}
