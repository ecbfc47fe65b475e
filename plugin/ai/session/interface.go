// Package session keeps per-session conversation transcripts for the assistant.
package session

import (
	"context"
	"time"
)

// DefaultSessionID is used when a request does not name a session.
const DefaultSessionID = "default"

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents one conversation turn. Turns are immutable once appended.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Store defines the transcript store interface.
// Consumers: assistant message router.
type Store interface {
	// GetOrCreate returns a copy of the session's transcript, creating an
	// empty transcript on first access.
	GetOrCreate(ctx context.Context, sessionID string) []Message

	// Append adds a turn at the end of the session's transcript.
	Append(ctx context.Context, sessionID string, msg Message) error

	// Lock serializes work on one session. The returned function releases it.
	Lock(sessionID string) (unlock func())

	// Len returns the number of sessions held.
	Len() int
}

// UserMessage creates a user turn stamped now.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content, Timestamp: time.Now()}
}

// AssistantMessage creates an assistant turn stamped now.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content, Timestamp: time.Now()}
}
