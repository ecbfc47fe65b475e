package session

import (
	"context"
	"sync"
)

// MockStore wraps an unbounded MemoryStore and can be told to fail appends.
type MockStore struct {
	*MemoryStore

	mu sync.Mutex
	// AppendErr, when non-nil, is returned by Append for any session.
	AppendErr error
	// AppendCalls counts Append invocations.
	AppendCalls int
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	store, _ := NewMemoryStore(0)
	return &MockStore{MemoryStore: store}
}

// Append records the call and delegates unless AppendErr is set.
func (m *MockStore) Append(ctx context.Context, sessionID string, msg Message) error {
	m.mu.Lock()
	m.AppendCalls++
	err := m.AppendErr
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return m.MemoryStore.Append(ctx, sessionID, msg)
}

// Ensure MockStore implements Store
var _ Store = (*MockStore)(nil)
