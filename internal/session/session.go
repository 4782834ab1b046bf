// ABOUTME: Session manager owning the bearer credential and its persistence
// ABOUTME: Login, signup and logout return navigation outcomes instead of navigating

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/markalston/companion/internal/client"
	"github.com/markalston/companion/internal/credstore"
	"github.com/markalston/companion/internal/route"
)

// User-facing notices
const (
	NoticeLoginFailed       = "Login failed! Please check your credentials."
	NoticeLoginUnreachable  = "Login failed! Could not reach the server."
	NoticePasswordMismatch  = "Passwords do not match!"
	NoticeSignupSucceeded   = "Signup successful! Please log in."
	NoticeSignupFailed      = "Signup failed! The email might already be registered."
	NoticeSignupUnreachable = "Signup failed! Could not reach the server."
	NoticeSessionExpired    = "Session expired. Please log in again."
)

// AuthAPI is the subset of the API client the session manager needs
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*client.TokenResponse, error)
	Signup(ctx context.Context, req *client.SignupRequest) error
}

// Outcome tells the caller where to navigate after an operation
type Outcome struct {
	Route  route.Route
	Notice string
}

// SignupRequest holds the account creation form
type SignupRequest struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Manager owns the session credential. Safe for concurrent use.
type Manager struct {
	mu    sync.RWMutex
	token string
	store credstore.Store
	api   AuthAPI
}

// New creates a manager and rehydrates the credential from store once
func New(store credstore.Store, api AuthAPI) *Manager {
	m := &Manager{store: store, api: api}

	token, err := store.Load()
	if err != nil {
		slog.Warn("Failed to load stored credential, starting logged out", "error", err)
		token = ""
	}
	m.token = token
	if token != "" {
		slog.Debug("Session restored from credential store")
	}
	return m
}

// SetAPI attaches the API used for login and signup.
// The API client itself reads Token from this manager, so the two are built in sequence.
func (m *Manager) SetAPI(api AuthAPI) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.api = api
}

// Token returns the current credential, or "" when logged out.
// It implements client.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Authenticated reports whether a credential is held. It implements route.Authenticator.
func (m *Manager) Authenticated() bool {
	return m.Token() != ""
}

// Login exchanges email and password for a credential and persists it.
// On failure the session is unchanged.
func (m *Manager) Login(ctx context.Context, email, password string) (Outcome, error) {
	tok, err := m.authAPI().Login(ctx, email, password)
	if err != nil {
		slog.Info("Login failed", "email", email, "error", err)
		return Outcome{}, authError("login", err, NoticeLoginFailed, NoticeLoginUnreachable)
	}

	m.mu.Lock()
	if err := m.store.Save(tok.AccessToken); err != nil {
		m.mu.Unlock()
		return Outcome{}, fmt.Errorf("failed to persist credential: %w", err)
	}
	m.token = tok.AccessToken
	m.mu.Unlock()

	slog.Info("Logged in", "email", email)
	return Outcome{Route: route.Chat}, nil
}

// Signup creates an account. It does not log the user in: a successful
// signup routes back to the login entry point.
func (m *Manager) Signup(ctx context.Context, req SignupRequest) (Outcome, error) {
	if req.Password != req.ConfirmPassword {
		return Outcome{}, &ValidationError{Field: "confirm_password", Message: NoticePasswordMismatch}
	}

	err := m.authAPI().Signup(ctx, &client.SignupRequest{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		slog.Info("Signup failed", "email", req.Email, "error", err)
		return Outcome{}, authError("signup", err, NoticeSignupFailed, NoticeSignupUnreachable)
	}

	slog.Info("Signed up", "email", req.Email)
	return Outcome{Route: route.Login, Notice: NoticeSignupSucceeded}, nil
}

// Logout clears the credential locally. It never contacts the service and
// always leaves the session unauthenticated.
func (m *Manager) Logout() Outcome {
	m.clear()
	slog.Info("Logged out")
	return Outcome{Route: route.Login}
}

// Expire drops a credential the service has rejected
func (m *Manager) Expire() Outcome {
	if !m.Authenticated() {
		return Outcome{Route: route.Login}
	}
	m.clear()
	slog.Warn("Credential rejected by server, session expired")
	return Outcome{Route: route.Login, Notice: NoticeSessionExpired}
}

func (m *Manager) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = ""
	if err := m.store.Clear(); err != nil {
		slog.Error("Failed to clear stored credential", "error", err)
	}
}

func (m *Manager) authAPI() AuthAPI {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.api == nil {
		return unconfiguredAPI{}
	}
	return m.api
}

type unconfiguredAPI struct{}

var errNoAPI = errors.New("session: no API client configured")

func (unconfiguredAPI) Login(context.Context, string, string) (*client.TokenResponse, error) {
	return nil, errNoAPI
}

func (unconfiguredAPI) Signup(context.Context, *client.SignupRequest) error {
	return errNoAPI
}

// authError classifies an API failure as unreachable or rejected
func authError(op string, err error, rejected, unreachable string) error {
	var netErr *client.NetworkError
	if errors.As(err, &netErr) {
		return &AuthError{Op: op, Message: unreachable, Unreachable: true, Err: err}
	}
	return &AuthError{Op: op, Message: rejected, Err: err}
}
