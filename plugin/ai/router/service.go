package router

import (
	"context"
	"log/slog"

	"github.com/hrygo/calassist/plugin/ai/timeout"
)

// Service implements RouterService with the ordered keyword rule table.
// There is no model behind it: routing is fully deterministic.
type Service struct {
	ruleMatcher *RuleMatcher
}

// NewService creates a new router service with the default rules.
func NewService() *Service {
	return &Service{
		ruleMatcher: NewRuleMatcher(),
	}
}

// ClassifyIntent classifies user intent from input text.
func (s *Service) ClassifyIntent(_ context.Context, input string) Intent {
	intent, rule := s.ruleMatcher.Match(input)
	slog.Debug("intent classified",
		"input", truncate(input, timeout.MaxTruncateLength),
		"intent", intent,
		"rule", rule)
	return intent
}

// ExtractTitle derives an event title from booking text.
func (s *Service) ExtractTitle(input string) string {
	return ExtractTitle(input)
}

// truncate truncates a string to maxLen bytes.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Ensure Service implements RouterService
var _ RouterService = (*Service)(nil)
