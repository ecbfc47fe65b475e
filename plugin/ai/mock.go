package ai

import (
	"context"
	"sync"
)

// MockLLMService is a mock implementation of LLMService for testing.
type MockLLMService struct {
	mu sync.Mutex

	// Reply is returned for every call unless Err is set.
	Reply string
	// Err, when non-nil, is returned instead of Reply.
	Err error
	// Calls records a copy of every transcript passed to Chat.
	Calls [][]Message
}

// NewMockLLMService creates a MockLLMService that answers with reply.
func NewMockLLMService(reply string) *MockLLMService {
	return &MockLLMService{Reply: reply}
}

// Chat records the transcript and returns the configured reply or error.
func (m *MockLLMService) Chat(_ context.Context, messages []Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]Message, len(messages))
	copy(copied, messages)
	m.Calls = append(m.Calls, copied)

	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// Ensure MockLLMService implements LLMService
var _ LLMService = (*MockLLMService)(nil)
