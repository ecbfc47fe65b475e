package router

import (
	"context"
)

// MockRouterService is a mock implementation of RouterService for testing.
type MockRouterService struct {
	// IntentOverrides allows tests to override intent classification results
	IntentOverrides map[string]Intent
	// TitleOverrides allows tests to override extracted titles
	TitleOverrides map[string]string

	fallback *Service
}

// NewMockRouterService creates a new MockRouterService that falls back to
// the real rule table for inputs without overrides.
func NewMockRouterService() *MockRouterService {
	return &MockRouterService{
		IntentOverrides: make(map[string]Intent),
		TitleOverrides:  make(map[string]string),
		fallback:        NewService(),
	}
}

// ClassifyIntent returns the override for input, or the rule-based result.
func (m *MockRouterService) ClassifyIntent(ctx context.Context, input string) Intent {
	if intent, ok := m.IntentOverrides[input]; ok {
		return intent
	}
	return m.fallback.ClassifyIntent(ctx, input)
}

// ExtractTitle returns the override for input, or the rule-based result.
func (m *MockRouterService) ExtractTitle(input string) string {
	if title, ok := m.TitleOverrides[input]; ok {
		return title
	}
	return m.fallback.ExtractTitle(input)
}

// Ensure MockRouterService implements RouterService
var _ RouterService = (*MockRouterService)(nil)
