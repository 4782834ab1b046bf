// ABOUTME: Chat session controller owning the transcript and the send/fetch/clear protocol
// ABOUTME: Applies optimistic user appends and never leaves a partial entry on failure

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/markalston/companion/internal/client"
)

// FallbackReply is appended in place of the model reply when a send fails
const FallbackReply = "Sorry, something went wrong."

// Notices shown when history calls fail
const (
	NoticeHistoryFailed = "Could not load chat history."
	NoticeClearFailed   = "Could not clear chat history."
)

// DefaultSendTimeout bounds a single send
const DefaultSendTimeout = 60 * time.Second

// ErrNotConfirmed is returned by ClearHistory when the caller did not confirm
var ErrNotConfirmed = errors.New("clear history requires confirmation")

// ErrDiscarded is set on an attempt whose reply arrived after Reset
var ErrDiscarded = errors.New("reply discarded after reset")

// errEmptyReply is recorded when the service answers without content
var errEmptyReply = errors.New("empty reply from backend")

// API is the subset of the API client the controller needs
type API interface {
	History(ctx context.Context) ([]client.HistoryMessage, error)
	SendChat(ctx context.Context, content string) (*client.ChatMessage, error)
	ClearHistory(ctx context.Context) error
}

// Option configures a Controller
type Option func(*Controller)

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithSendTimeout bounds each send; zero disables the extra bound
func WithSendTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.sendTimeout = d
	}
}

// WithUnauthorizedHandler registers fn to run when a protected call is rejected with 401
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Controller) {
		c.onUnauthorized = fn
	}
}

// Controller owns the chat transcript. Safe for concurrent use.
type Controller struct {
	api            API
	now            func() time.Time
	sendTimeout    time.Duration
	onUnauthorized func()
	loads          singleflight.Group

	mu         sync.Mutex
	transcript []Message
	phase      Phase
	lastErr    error
	generation uint64 // bumped by Reset; older attempts are discarded
}

// New creates a controller with an empty transcript
func New(api API, opts ...Option) *Controller {
	c := &Controller{
		api:         api,
		now:         time.Now,
		sendTimeout: DefaultSendTimeout,
		transcript:  []Message{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transcript returns a copy of the current transcript
func (c *Controller) Transcript() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Len returns the transcript length
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.transcript)
}

// Phase returns the send state machine position
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Pending reports whether a send is outstanding
func (c *Controller) Pending() bool {
	return c.Phase() == PhaseSending
}

// LastError returns the most recent history, send or clear failure
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// DismissError clears the last error once the view has shown it
func (c *Controller) DismissError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = nil
}

// LoadHistory replaces the transcript with the server history.
// On failure the transcript is unchanged and the error is kept in LastError.
// Concurrent calls share one request, and a failure is recorded once.
func (c *Controller) LoadHistory(ctx context.Context) error {
	_, err, _ := c.loads.Do("history", func() (any, error) {
		history, err := c.api.History(ctx)
		if err != nil {
			c.fail("load history", err)
			return nil, err
		}

		msgs := FromHistory(history, c.now())
		c.mu.Lock()
		c.transcript = msgs
		c.lastErr = nil
		c.mu.Unlock()

		slog.Debug("Chat history loaded", "messages", len(msgs))
		return nil, nil
	})
	return err
}

// Begin validates content and, when accepted, appends the user message and
// enters the sending phase. It returns false for blank content or while
// another send is outstanding; nothing changes in that case.
func (c *Controller) Begin(content string) (*SendAttempt, bool) {
	if strings.TrimSpace(content) == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseSending {
		slog.Debug("Send ignored while another is outstanding")
		return nil, false
	}

	c.transcript = append(c.transcript, Message{
		Role:      RoleUser,
		Content:   content,
		CreatedAt: c.now(),
	})
	c.phase = PhaseSending
	return &SendAttempt{Content: content, generation: c.generation}, true
}

// Dispatch sends an accepted attempt and appends exactly one model entry:
// the reply on success, FallbackReply on any failure.
func (c *Controller) Dispatch(ctx context.Context, a *SendAttempt) {
	if a == nil || a.done {
		return
	}

	if c.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.sendTimeout)
		defer cancel()
	}

	reply, err := c.api.SendChat(ctx, a.Content)
	if err == nil && strings.TrimSpace(reply.Content) == "" {
		err = errEmptyReply
	}

	c.mu.Lock()
	if a.generation != c.generation {
		a.Err = ErrDiscarded
		a.done = true
		c.mu.Unlock()
		slog.Debug("Discarded reply for a reset transcript")
		return
	}
	msg := Message{Role: RoleModel, CreatedAt: c.now()}
	if err != nil {
		msg.Content = FallbackReply
		a.Err = err
		c.lastErr = fmt.Errorf("send message: %w", err)
		c.phase = PhaseFailed
	} else {
		msg.Content = reply.Content
		c.lastErr = nil
		c.phase = PhaseResolved
	}
	c.transcript = append(c.transcript, msg)
	a.Reply = &msg
	a.done = true
	c.mu.Unlock()

	if err != nil {
		slog.Warn("Send failed, appended fallback reply", "error", err)
		c.checkUnauthorized(err)
	}
}

// Send runs Begin and Dispatch back to back
func (c *Controller) Send(ctx context.Context, content string) (*SendAttempt, bool) {
	a, ok := c.Begin(content)
	if !ok {
		return nil, false
	}
	c.Dispatch(ctx, a)
	return a, true
}

// ClearHistory deletes the server history and then empties the transcript.
// confirmed must be true; the controller never prompts. On failure the
// transcript is unchanged.
func (c *Controller) ClearHistory(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}

	if err := c.api.ClearHistory(ctx); err != nil {
		c.fail("clear history", err)
		return err
	}

	c.mu.Lock()
	c.transcript = []Message{}
	c.lastErr = nil
	c.mu.Unlock()

	slog.Info("Chat history cleared")
	return nil
}

// Reset drops local state, used when the session ends. A send still in
// flight completes without touching the new transcript.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcript = []Message{}
	c.phase = PhaseIdle
	c.lastErr = nil
	c.generation++
}

func (c *Controller) fail(op string, err error) {
	c.mu.Lock()
	c.lastErr = fmt.Errorf("%s: %w", op, err)
	c.mu.Unlock()

	slog.Warn("Chat operation failed", "op", op, "error", err)
	c.checkUnauthorized(err)
}

func (c *Controller) checkUnauthorized(err error) {
	if c.onUnauthorized != nil && client.IsUnauthorized(err) {
		c.onUnauthorized()
	}
}
