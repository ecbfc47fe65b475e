package aitime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Search_FirstMatchWins(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	fixedNow := time.Date(2026, 10, 19, 10, 0, 0, 0, loc)
	parser := NewParser(loc)
	parser.now = func() time.Time { return fixedNow }

	m, ok := parser.Search("book a meeting tomorrow, or maybe next friday")
	require.True(t, ok)
	assert.Equal(t, "2026-10-20", m.Time.Format("2006-01-02"))
	assert.Contains(t, m.Text, "tomorrow")
}

func TestParser_Search_PassedTimeRollsForward(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	fixedNow := time.Date(2026, 10, 19, 11, 0, 0, 0, loc)
	parser := NewParser(loc)
	parser.now = func() time.Time { return fixedNow }

	m, ok := parser.Search("set up a call at 9am")
	require.True(t, ok)
	assert.Equal(t, "2026-10-20 09:00", m.Time.Format("2006-01-02 15:04"))
}

func TestParser_Search_YearlessDateRollsToNextYear(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	fixedNow := time.Date(2026, 10, 19, 10, 0, 0, 0, loc)
	parser := NewParser(loc)
	parser.now = func() time.Time { return fixedNow }

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"passed month name", "create an event on january 5 at 3pm", "2027-01-05 15:00"},
		{"upcoming month name", "create an event on december 5 at 3pm", "2026-12-05 15:00"},
		{"explicit past year kept", "create an event on 5/1/2025 at 3pm", "2025-01-05 15:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := parser.Search(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, m.Time.Format("2006-01-02 15:04"))
		})
	}
}

func TestParser_Search_ISODate(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	fixedNow := time.Date(2026, 10, 19, 10, 0, 0, 0, loc)
	parser := NewParser(loc)
	parser.now = func() time.Time { return fixedNow }

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"date and clock time", "schedule a call on 2026-10-25 16:00", "2026-10-25 16:00"},
		{"T separator", "schedule a call on 2026-10-25T16:00", "2026-10-25 16:00"},
		{"date with am/pm", "schedule a call on 2026-10-25 at 4pm", "2026-10-25 16:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := parser.Search(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, m.Time.Format("2006-01-02 15:04"))
		})
	}
}

func TestNormalizeISODates(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"on 2026-10-25 16:00", "on 25/10/2026 16:00"},
		{"on 2026-10-25T16:00", "on 25/10/2026 16:00"},
		{"at 10-25", "at 10-25"},
		{"no dates here", "no dates here"},
	}

	for _, tt := range tests {
		got, err := normalizeISODates(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Len(t, got, len(tt.in))
	}
}

func TestPreferFuture(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	ref := time.Date(2026, 10, 19, 11, 0, 0, 0, loc)

	tests := []struct {
		name string
		in   time.Time
		text string
		want time.Time
	}{
		{
			name: "future time unchanged",
			in:   time.Date(2026, 10, 19, 15, 0, 0, 0, loc),
			text: "at 3pm",
			want: time.Date(2026, 10, 19, 15, 0, 0, 0, loc),
		},
		{
			name: "same instant unchanged",
			in:   ref,
			text: "now",
			want: ref,
		},
		{
			name: "earlier today moves to tomorrow",
			in:   time.Date(2026, 10, 19, 9, 0, 0, 0, loc),
			text: "at 9am",
			want: time.Date(2026, 10, 20, 9, 0, 0, 0, loc),
		},
		{
			name: "relative past unchanged",
			in:   time.Date(2026, 10, 16, 9, 0, 0, 0, loc),
			text: "last friday at 9am",
			want: time.Date(2026, 10, 16, 9, 0, 0, 0, loc),
		},
		{
			name: "month without year moves to next year",
			in:   time.Date(2026, 1, 5, 15, 0, 0, 0, loc),
			text: "january 5 at 3pm",
			want: time.Date(2027, 1, 5, 15, 0, 0, 0, loc),
		},
		{
			name: "month with explicit year unchanged",
			in:   time.Date(2025, 1, 5, 15, 0, 0, 0, loc),
			text: "january 5 2025",
			want: time.Date(2025, 1, 5, 15, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(preferFuture(tt.in, ref, tt.text)))
		})
	}
}

func TestNewParser_NilTimezone(t *testing.T) {
	p := NewParser(nil)
	assert.Equal(t, time.Local, p.timezone)
}
