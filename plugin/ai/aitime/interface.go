// Package aitime extracts event time intervals from free-text chat messages.
package aitime

import (
	"context"
	"errors"
	"time"
)

// DefaultDuration is the fixed length of every extracted interval.
const DefaultDuration = time.Hour

// ErrNoMatch is returned when the text carries no recognizable date or time.
// Callers treat it as "could not understand", never as a fault.
var ErrNoMatch = errors.New("no date or time found in message")

// Extractor defines the datetime extraction interface.
// Consumers: assistant router (booking path).
type Extractor interface {
	// Extract finds the first date/time expression in text and returns a
	// one-hour interval starting there, in the home timezone.
	// Returns ErrNoMatch when nothing can be parsed.
	Extract(ctx context.Context, text string) (TimeInterval, error)
}

// TimeInterval represents a proposed event's time span.
type TimeInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns End - Start.
func (t TimeInterval) Duration() time.Duration {
	return t.End.Sub(t.Start)
}
