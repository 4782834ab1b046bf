// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Manages screen state, guards navigation and routes input to child components

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/companion/internal/chat"
	"github.com/markalston/companion/internal/route"
	"github.com/markalston/companion/internal/session"
	"github.com/markalston/companion/internal/tui/authform"
	"github.com/markalston/companion/internal/tui/chatview"
	"github.com/markalston/companion/internal/tui/confirm"
	"github.com/markalston/companion/internal/tui/icons"
	"github.com/markalston/companion/internal/tui/menu"
	"github.com/markalston/companion/internal/tui/recentlogins"
	"github.com/markalston/companion/internal/tui/styles"
	"github.com/markalston/companion/internal/tui/widgets"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenMenu Screen = iota
	ScreenLogin
	ScreenSignup
	ScreenChat
	ScreenConfirmClear
)

// ClearQuestion is asked before the chat history is deleted
const ClearQuestion = "Are you sure you want to clear the chat history?"

// Layout constants
const (
	minTerminalWidth = 80 // Frame never renders narrower than this
	frameOverhead    = 2  // Header and footer lines
)

// loginResultMsg is sent when a login attempt completes
type loginResultMsg struct {
	email   string
	outcome session.Outcome
	err     error
}

// signupResultMsg is sent when a signup attempt completes
type signupResultMsg struct {
	req     session.SignupRequest
	outcome session.Outcome
	err     error
}

var _ route.Navigator = (*App)(nil)

// Config holds the collaborators the app drives
type Config struct {
	Session *session.Manager
	Chat    *chat.Controller
	Recent  *recentlogins.RecentLogins
	// APIURL is shown in the header
	APIURL string
	// MarkdownStyle is the glamour style for model replies
	MarkdownStyle string
}

// App is the root model for the TUI
type App struct {
	ctx     context.Context
	session *session.Manager
	ctrl    *chat.Controller
	recent  *recentlogins.RecentLogins
	apiURL  string
	mdStyle string

	screen Screen
	width  int
	height int
	busy   string

	// Child models
	menu    *menu.Menu
	login   *authform.Login
	signup  *authform.Signup
	chat    *chatview.Model
	confirm *confirm.Dialog
}

// New creates the TUI application. A restored session opens the chat
// screen directly; otherwise the entry menu is shown.
func New(ctx context.Context, cfg Config) *App {
	a := &App{
		ctx:     ctx,
		session: cfg.Session,
		ctrl:    cfg.Chat,
		recent:  cfg.Recent,
		apiURL:  cfg.APIURL,
		mdStyle: cfg.MarkdownStyle,
		screen:  ScreenMenu,
		menu:    menu.New(),
	}
	if a.session.Authenticated() {
		a.Navigate(route.Chat)
	}
	return a
}

// Screen returns the active screen
func (a *App) Screen() Screen {
	return a.screen
}

// Navigate switches to the screen for to. Protected routes fall back to the
// login form when no session is held.
func (a *App) Navigate(to route.Route) {
	switch route.Guard(a.session, to) {
	case route.Login:
		a.login = authform.NewLogin(a.latestEmail())
		a.screen = ScreenLogin
	case route.Signup:
		a.signup = authform.NewSignup(session.SignupRequest{})
		a.screen = ScreenSignup
	case route.Chat:
		a.chat = chatview.New(a.ctx, a.ctrl, a.mdStyle)
		a.chat.SetSize(a.contentWidth(), a.contentHeight())
		a.screen = ScreenChat
	}
	a.resizeChildren()
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return a.initScreen()
}

// initScreen returns the Init command of the active child
func (a *App) initScreen() tea.Cmd {
	switch a.screen {
	case ScreenMenu:
		return a.menu.Init()
	case ScreenLogin:
		return a.login.Init()
	case ScreenSignup:
		return a.signup.Init()
	case ScreenChat:
		return a.chat.Init()
	case ScreenConfirmClear:
		return a.confirm.Init()
	}
	return nil
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.chat != nil {
			a.chat.SetSize(a.contentWidth(), a.contentHeight())
		}
		return a, a.resizeChildren()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case menu.ChoiceMsg:
		switch msg.Choice {
		case menu.ChoiceLogin:
			a.Navigate(route.Login)
		case menu.ChoiceSignup:
			a.Navigate(route.Signup)
		case menu.ChoiceQuit:
			return a, tea.Quit
		}
		return a, a.initScreen()

	case authform.CancelledMsg:
		a.screen = ScreenMenu
		return a, nil

	case authform.LoginSubmittedMsg:
		a.busy = "Logging in..."
		return a, a.doLogin(msg.Email, msg.Password)

	case loginResultMsg:
		return a.handleLoginResult(msg)

	case authform.SignupSubmittedMsg:
		a.busy = "Creating account..."
		return a, a.doSignup(msg.Request)

	case signupResultMsg:
		return a.handleSignupResult(msg)

	case chatview.ClearRequestedMsg:
		a.confirm = confirm.New(ClearQuestion)
		a.screen = ScreenConfirmClear
		return a, a.confirm.Init()

	case confirm.ResultMsg:
		a.confirm = nil
		a.screen = ScreenChat
		if msg.Confirmed && a.chat != nil {
			return a, a.chat.Clear()
		}
		return a, nil

	case chatview.LogoutRequestedMsg:
		out := a.session.Logout()
		a.endChat()
		a.Navigate(out.Route)
		return a, a.initScreen()

	case chatview.HistoryLoadedMsg, chatview.SentMsg, chatview.ClearedMsg, spinner.TickMsg:
		if a.chat == nil {
			return a, nil
		}
		_, cmd := a.chat.Update(msg)
		if !a.session.Authenticated() {
			return a, a.expire()
		}
		return a, cmd
	}

	return a.updateScreen(msg)
}

// updateScreen forwards msg to the active child
func (a *App) updateScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.screen {
	case ScreenMenu:
		_, cmd = a.menu.Update(msg)
	case ScreenLogin:
		_, cmd = a.login.Update(msg)
	case ScreenSignup:
		_, cmd = a.signup.Update(msg)
	case ScreenChat:
		_, cmd = a.chat.Update(msg)
	case ScreenConfirmClear:
		_, cmd = a.confirm.Update(msg)
	}
	return a, cmd
}

func (a *App) doLogin(email, password string) tea.Cmd {
	ctx, mgr := a.ctx, a.session
	return func() tea.Msg {
		out, err := mgr.Login(ctx, email, password)
		return loginResultMsg{email: email, outcome: out, err: err}
	}
}

func (a *App) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	a.busy = ""
	if msg.err != nil {
		a.login = authform.NewLogin(msg.email)
		a.login.SetNotice(authform.Notice{Text: noticeFor(msg.err), Level: widgets.StatusCritical})
		a.screen = ScreenLogin
		a.resizeChildren()
		return a, a.login.Init()
	}

	if a.recent != nil {
		if err := a.recent.Add(msg.email); err != nil {
			slog.Warn("Failed to remember login email", "error", err)
		}
	}
	a.Navigate(msg.outcome.Route)
	return a, a.initScreen()
}

func (a *App) doSignup(req session.SignupRequest) tea.Cmd {
	ctx, mgr := a.ctx, a.session
	return func() tea.Msg {
		out, err := mgr.Signup(ctx, req)
		return signupResultMsg{req: req, outcome: out, err: err}
	}
}

func (a *App) handleSignupResult(msg signupResultMsg) (tea.Model, tea.Cmd) {
	a.busy = ""
	if msg.err != nil {
		a.signup = authform.NewSignup(msg.req)
		a.signup.SetNotice(authform.Notice{Text: noticeFor(msg.err), Level: widgets.StatusCritical})
		a.screen = ScreenSignup
		a.resizeChildren()
		return a, a.signup.Init()
	}

	a.Navigate(msg.outcome.Route)
	if a.screen == ScreenLogin {
		a.login = authform.NewLogin(msg.req.Email)
		a.login.SetNotice(authform.Notice{Text: msg.outcome.Notice, Level: widgets.StatusOK})
		a.resizeChildren()
	}
	return a, a.initScreen()
}

// expire leaves the chat screen after the server rejected the session
func (a *App) expire() tea.Cmd {
	a.endChat()
	a.Navigate(route.Chat)
	if a.screen == ScreenLogin {
		a.login.SetNotice(authform.Notice{Text: session.NoticeSessionExpired, Level: widgets.StatusWarning})
	}
	return a.initScreen()
}

func (a *App) endChat() {
	a.ctrl.Reset()
	a.chat = nil
	a.confirm = nil
}

func (a *App) latestEmail() string {
	if a.recent == nil {
		return ""
	}
	return a.recent.Latest()
}

// resizeChildren forwards the content size to the form children
func (a *App) resizeChildren() tea.Cmd {
	if a.width == 0 {
		return nil
	}
	size := tea.WindowSizeMsg{Width: a.contentWidth(), Height: a.contentHeight()}

	var cmds []tea.Cmd
	if a.login != nil {
		_, cmd := a.login.Update(size)
		cmds = append(cmds, cmd)
	}
	if a.signup != nil {
		_, cmd := a.signup.Update(size)
		cmds = append(cmds, cmd)
	}
	_, cmd := a.menu.Update(size)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

// noticeFor maps a session error to the text shown above a form
func noticeFor(err error) string {
	var valErr *session.ValidationError
	var authErr *session.AuthError
	switch {
	case errors.As(err, &valErr):
		return valErr.Message
	case errors.As(err, &authErr):
		return authErr.Message
	default:
		return err.Error()
	}
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenMenu:
		content = a.menu.View()
	case ScreenLogin:
		content = a.login.View()
	case ScreenSignup:
		content = a.signup.View()
	case ScreenChat:
		content = a.chat.View()
	case ScreenConfirmClear:
		content = a.confirm.View()
	}

	return a.wrapWithFrame(content)
}

// frameWidth is one less than the terminal to prevent wrapping, clamped to the minimum
func (a *App) frameWidth() int {
	width := a.width - 1
	if width < minTerminalWidth {
		width = minTerminalWidth
	}
	return width
}

func (a *App) contentWidth() int {
	return a.frameWidth()
}

func (a *App) contentHeight() int {
	return a.height - frameOverhead
}

// renderHeader creates the header bar with app branding and session state
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("Companion"))

	rightText := " "
	if a.apiURL != "" {
		rightText += contextStyle.Render(a.apiURL) + " "
	}
	rightText += widgets.SessionBadge(a.session.Authenticated()) + " "

	fillWidth := width - 4 - lipgloss.Width(leftText) - lipgloss.Width(rightText) // -4 for ╭─ and ─╮
	if fillWidth < 0 {
		fillWidth = 0
	}

	return borderStyle.Render("╭─") + leftText + borderStyle.Render(strings.Repeat("─", fillWidth)) + rightText + borderStyle.Render("─╮")
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var shortcuts []string
	switch a.screen {
	case ScreenMenu:
		shortcuts = []string{"↑↓ Navigate", "Enter Select", "q Quit"}
	case ScreenLogin, ScreenSignup:
		shortcuts = []string{"Tab Next", "Enter Submit", "Esc Back"}
	case ScreenChat:
		shortcuts = []string{"Enter Send", "PgUp/PgDn Scroll", "^L Clear", "^O Logout", "^C Quit"}
	case ScreenConfirmClear:
		shortcuts = []string{"←→ Choose", "Enter Confirm", "Esc Cancel"}
	}

	var styledShortcuts []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styledShortcuts = append(styledShortcuts, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styledShortcuts = append(styledShortcuts, s)
		}
	}

	leftText := " " + strings.Join(styledShortcuts, "  ")
	leftPlainText := " " + strings.Join(shortcuts, "  ")

	rightText := ""
	rightPlainText := ""
	if a.busy != "" {
		rightText = statusStyle.Render(a.busy) + " "
		rightPlainText = a.busy + " "
	}

	fillWidth := width - 4 - lipgloss.Width(leftPlainText) - lipgloss.Width(rightPlainText) // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		fillWidth = 0
	}

	return borderStyle.Render("╰─") + leftText + borderStyle.Render(strings.Repeat("─", fillWidth)) + rightText + borderStyle.Render("─╯")
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI and blocks until the user quits or ctx is cancelled
func Run(ctx context.Context, cfg Config) error {
	app := New(ctx, cfg)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
