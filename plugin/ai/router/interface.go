// Package router classifies chat messages into assistant intents.
package router

import "context"

// RouterService defines the intent routing service interface.
// Consumers: assistant message router.
type RouterService interface {
	// ClassifyIntent classifies user intent from input text.
	// Deterministic: the same input always yields the same intent.
	ClassifyIntent(ctx context.Context, input string) Intent

	// ExtractTitle derives an event title from text already classified
	// as IntentBookEvent.
	ExtractTitle(input string) string
}

// Intent represents the type of user intent.
type Intent string

const (
	IntentListAppointments Intent = "list_appointments"
	IntentBookEvent        Intent = "book_event"
	IntentGeneralChat      Intent = "general_chat"
)

// String implements fmt.Stringer.
func (i Intent) String() string {
	return string(i)
}

// Fixed keyword lists. Order matters for title extraction.
var (
	BookingActions = []string{"book", "schedule", "set up", "arrange", "create", "organize"}
	BookingTypes   = []string{"meeting", "call", "appointment", "event"}
)
