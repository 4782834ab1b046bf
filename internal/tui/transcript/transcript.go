// ABOUTME: Renders the chat transcript for the chat screen viewport
// ABOUTME: User messages are wrapped plain text, model replies are rendered as markdown

package transcript

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/companion/internal/chat"
	"github.com/markalston/companion/internal/tui/icons"
	"github.com/markalston/companion/internal/tui/styles"
)

// DefaultStyle is the glamour style used for model replies
const DefaultStyle = "dark"

// indent is the left margin applied to message bodies
const indent = 2

// Transcript renders chat messages at a fixed width
type Transcript struct {
	width    int
	style    string
	markdown *glamour.TermRenderer
}

// New creates a renderer. style is a glamour standard style name; empty
// selects DefaultStyle.
func New(width int, style string) *Transcript {
	if style == "" {
		style = DefaultStyle
	}
	t := &Transcript{style: style}
	t.SetWidth(width)
	return t
}

// SetWidth updates the wrap width, rebuilding the markdown renderer when it changes
func (t *Transcript) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width == t.width && t.markdown != nil {
		return
	}
	t.width = width

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(t.style),
		glamour.WithWordWrap(width-indent),
	)
	if err != nil {
		t.markdown = nil
		return
	}
	t.markdown = r
}

// Width returns the wrap width
func (t *Transcript) Width() int {
	return t.width
}

// Render draws msgs in order. When typing is non-empty a typing indicator
// using it as the spinner frame is drawn after the last message.
func (t *Transcript) Render(msgs []chat.Message, typing string) string {
	if len(msgs) == 0 && typing == "" {
		return styles.Subtitle.Render("No messages yet. Say hello!")
	}

	blocks := make([]string, 0, len(msgs)+1)
	for _, m := range msgs {
		blocks = append(blocks, t.renderMessage(m))
	}
	if typing != "" {
		blocks = append(blocks, speaker(chat.RoleModel)+"\n"+pad(typing+" "+styles.Timestamp.Render("typing...")))
	}

	return strings.Join(blocks, "\n\n")
}

func (t *Transcript) renderMessage(m chat.Message) string {
	header := speaker(m.Role)
	if !m.CreatedAt.IsZero() {
		header += "  " + styles.Timestamp.Render(m.CreatedAt.Local().Format("15:04"))
	}

	var body string
	switch {
	case m.Role == chat.RoleModel && m.Content == chat.FallbackReply:
		body = pad(styles.StatusWarning.Render(m.Content))
	case m.Role == chat.RoleModel:
		body = t.renderMarkdown(m.Content)
	default:
		body = pad(styles.UserText.Width(t.width - indent).Render(m.Content))
	}

	return header + "\n" + body
}

func (t *Transcript) renderMarkdown(content string) string {
	if t.markdown == nil {
		return pad(lipgloss.NewStyle().Width(t.width - indent).Render(content))
	}
	out, err := t.markdown.Render(content)
	if err != nil {
		return pad(content)
	}
	return strings.Trim(out, "\n")
}

func speaker(role chat.Role) string {
	switch role {
	case chat.RoleUser:
		return styles.UserLabel.Render(icons.User.String() + " You")
	case chat.RoleModel:
		return styles.ModelLabel.Render(icons.Model.String() + " Companion")
	default:
		return styles.Timestamp.Render(string(role))
	}
}

func pad(s string) string {
	return lipgloss.NewStyle().PaddingLeft(indent).Render(s)
}
