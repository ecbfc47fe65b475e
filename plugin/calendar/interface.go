// Package calendar reads and writes events on the user's remote calendar.
package calendar

import (
	"context"
	"time"

	"github.com/hrygo/calassist/server/timezone"
)

// Event is a calendar entry as seen by the assistant.
type Event struct {
	ID       string
	Summary  string
	Start    time.Time
	End      time.Time
	TimeZone string // IANA name the backend stores the event under
	HTMLLink string // link to the event in the backend UI, if any

	// StartRaw is the start value exactly as the backend stores it: an RFC 3339
	// date-time for timed events or a bare date for all-day events.
	StartRaw string
}

// Gateway defines the calendar backend interface.
// Consumers: assistant router (listing and booking paths).
type Gateway interface {
	// InsertEvent creates a new event and returns it as stored by the backend.
	InsertEvent(ctx context.Context, event Event) (*Event, error)

	// ListEvents returns single (expanded) events that overlap
	// [timeMin, timeMax], ordered by start time.
	ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]*Event, error)
}

// EventsForTomorrow lists the events of the day after now in loc,
// from 00:00:00 to 23:59:59.
func EventsForTomorrow(ctx context.Context, gw Gateway, loc *time.Location, now time.Time) ([]*Event, error) {
	from, to := timezone.TomorrowBounds(now, loc)
	return gw.ListEvents(ctx, from, to)
}
