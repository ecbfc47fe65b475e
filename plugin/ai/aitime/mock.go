package aitime

import (
	"context"
	"sync"
)

// MockExtractor is a mock implementation of Extractor for testing.
type MockExtractor struct {
	mu sync.Mutex

	// Interval is returned for every call unless Err is set.
	Interval TimeInterval
	// Err, when non-nil, is returned instead of Interval.
	Err error
	// Calls records every input passed to Extract.
	Calls []string
}

// NewMockExtractor creates a MockExtractor that always reports ErrNoMatch.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{Err: ErrNoMatch}
}

// Extract returns the configured interval or error.
func (m *MockExtractor) Extract(_ context.Context, text string) (TimeInterval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, text)
	if m.Err != nil {
		return TimeInterval{}, m.Err
	}
	return m.Interval, nil
}

// Ensure MockExtractor implements Extractor
var _ Extractor = (*MockExtractor)(nil)
