// ABOUTME: Chat transcript value types
// ABOUTME: Messages are immutable once appended and kept in insertion order

package chat

import (
	"time"

	"github.com/markalston/companion/internal/client"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is a single transcript entry
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// FromHistory converts server history entries, stamping them with at
func FromHistory(history []client.HistoryMessage, at time.Time) []Message {
	msgs := make([]Message, 0, len(history))
	for _, h := range history {
		msgs = append(msgs, Message{
			Role:      Role(h.Role),
			Content:   h.Content,
			CreatedAt: at,
		})
	}
	return msgs
}

// Phase is the send state machine position
type Phase int

const (
	// PhaseIdle means no send has happened since the last reset
	PhaseIdle Phase = iota
	// PhaseSending means a user message was appended and the reply is outstanding
	PhaseSending
	// PhaseResolved means the last send appended the model reply
	PhaseResolved
	// PhaseFailed means the last send appended the fallback reply
	PhaseFailed
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSending:
		return "sending"
	case PhaseResolved:
		return "resolved"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SendAttempt tracks one accepted send from optimistic append to completion
type SendAttempt struct {
	Content string
	Reply   *Message
	Err     error
	done    bool

	generation uint64
}

// Done reports whether the attempt has completed
func (a *SendAttempt) Done() bool {
	return a.done
}

// Succeeded reports whether the model replied
func (a *SendAttempt) Succeeded() bool {
	return a.done && a.Err == nil
}
