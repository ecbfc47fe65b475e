// Package assistant routes chat messages to appointment listing, event
// booking or a general chat reply, recording both sides of every exchange
// in the session transcript.
package assistant

import "context"

// Handler answers one chat message.
// Consumers: HTTP chat endpoint.
type Handler interface {
	// Handle classifies message, runs the matching action and returns the
	// reply text. Dispatch failures become reply text, never an error.
	Handle(ctx context.Context, sessionID, message string) (string, error)
}
