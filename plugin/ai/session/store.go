package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// MemoryStore implements Store in process memory.
//
// With capacity 0 the store is unbounded and keeps every session for the
// life of the process. With capacity > 0 the least recently used session is
// evicted once the limit is reached. Nothing is persisted.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionData          // capacity == 0
	bounded  *lru.Cache[string, *sessionData] // capacity > 0
	locks    *keyedMutex
}

type sessionData struct {
	messages   []Message
	lastAccess time.Time
}

// NewMemoryStore creates a new in-memory transcript store.
func NewMemoryStore(capacity int) (*MemoryStore, error) {
	s := &MemoryStore{
		locks: newKeyedMutex(),
	}
	if capacity <= 0 {
		s.sessions = make(map[string]*sessionData)
		return s, nil
	}

	cache, err := lru.NewWithEvict[string, *sessionData](capacity, func(sessionID string, data *sessionData) {
		slog.Debug("session evicted",
			"session_id", sessionID,
			"messages", len(data.messages))
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session cache")
	}
	s.bounded = cache
	return s, nil
}

// GetOrCreate returns a copy of the session's transcript.
func (s *MemoryStore) GetOrCreate(_ context.Context, sessionID string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.lookup(sessionID)
	data.lastAccess = time.Now()

	result := make([]Message, len(data.messages))
	copy(result, data.messages)
	return result
}

// Append adds a turn at the end of the session's transcript.
func (s *MemoryStore) Append(_ context.Context, sessionID string, msg Message) error {
	if msg.Role != RoleUser && msg.Role != RoleAssistant {
		return errors.Errorf("invalid message role %q", msg.Role)
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.lookup(sessionID)
	data.messages = append(data.messages, msg)
	data.lastAccess = time.Now()
	return nil
}

// Lock serializes work on one session.
func (s *MemoryStore) Lock(sessionID string) func() {
	return s.locks.Lock(sessionID)
}

// Len returns the number of sessions held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bounded != nil {
		return s.bounded.Len()
	}
	return len(s.sessions)
}

// EvictIdle removes sessions not accessed since cutoff.
// Returns the number of sessions removed.
func (s *MemoryStore) EvictIdle(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	if s.bounded != nil {
		for _, id := range s.bounded.Keys() {
			if data, ok := s.bounded.Peek(id); ok && data.lastAccess.Before(cutoff) {
				s.bounded.Remove(id)
				removed++
			}
		}
		return removed
	}

	for id, data := range s.sessions {
		if data.lastAccess.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// lookup returns the session, creating it on first access.
// Must be called with lock held.
func (s *MemoryStore) lookup(sessionID string) *sessionData {
	if s.bounded != nil {
		if data, ok := s.bounded.Get(sessionID); ok {
			return data
		}
		data := &sessionData{messages: []Message{}}
		s.bounded.Add(sessionID, data)
		return data
	}

	data, ok := s.sessions[sessionID]
	if !ok {
		data = &sessionData{messages: []Message{}}
		s.sessions[sessionID] = data
	}
	return data
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
