package aitime

import (
	"context"
	"log/slog"
	"time"
)

// Service implements Extractor with rule-based natural language search.
type Service struct {
	parser *Parser
}

// NewService creates a new extraction service for the given home timezone.
// An unknown timezone falls back to the local zone.
func NewService(homeTimezone string) *Service {
	loc, err := time.LoadLocation(homeTimezone)
	if err != nil {
		slog.Warn("unknown home timezone, using local", "timezone", homeTimezone, "error", err)
		loc = time.Local
	}
	return &Service{
		parser: NewParser(loc),
	}
}

// WithNow returns a copy of the service resolving relative phrases against
// the given clock.
func (s *Service) WithNow(now func() time.Time) *Service {
	p := s.parser.WithTimezone(s.parser.timezone)
	p.now = now
	return &Service{parser: p}
}

// Location returns the home timezone.
func (s *Service) Location() *time.Location {
	return s.parser.timezone
}

// Extract finds the first date/time in text and returns a one-hour interval.
func (s *Service) Extract(_ context.Context, text string) (TimeInterval, error) {
	m, ok := s.parser.Search(text)
	if !ok {
		return TimeInterval{}, ErrNoMatch
	}

	interval := TimeInterval{
		Start: m.Time,
		End:   m.Time.Add(DefaultDuration),
	}

	slog.Debug("parsed booking time",
		"expression", m.Text,
		"start", interval.Start.Format(time.RFC3339),
		"end", interval.End.Format(time.RFC3339))

	return interval, nil
}

// Ensure Service implements Extractor
var _ Extractor = (*Service)(nil)
