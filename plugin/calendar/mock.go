package calendar

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MockGateway is an in-memory Gateway for testing.
type MockGateway struct {
	mu sync.Mutex

	Events []*Event
	// InsertErr and ListErr, when non-nil, fail the corresponding call.
	InsertErr error
	ListErr   error
	// Inserted records every event passed to InsertEvent.
	Inserted []Event
	// ListCalls records the [timeMin, timeMax] window of every ListEvents call.
	ListCalls [][2]time.Time
}

// NewMockGateway creates a MockGateway holding events.
func NewMockGateway(events ...*Event) *MockGateway {
	return &MockGateway{Events: events}
}

// InsertEvent implements Gateway.
func (m *MockGateway) InsertEvent(_ context.Context, event Event) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Inserted = append(m.Inserted, event)
	if m.InsertErr != nil {
		return nil, m.InsertErr
	}

	created := event
	created.ID = fmt.Sprintf("mock-%d", len(m.Inserted))
	if created.StartRaw == "" {
		created.StartRaw = event.Start.Format(time.RFC3339)
	}
	m.Events = append(m.Events, &created)
	return &created, nil
}

// ListEvents implements Gateway.
func (m *MockGateway) ListEvents(_ context.Context, timeMin, timeMax time.Time) ([]*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCalls = append(m.ListCalls, [2]time.Time{timeMin, timeMax})
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var out []*Event
	for _, e := range m.Events {
		if e.Start.Before(timeMin) || e.Start.After(timeMax) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// Ensure MockGateway implements Gateway
var _ Gateway = (*MockGateway)(nil)
