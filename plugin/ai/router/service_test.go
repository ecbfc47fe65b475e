package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleMatcher_ListAppointments(t *testing.T) {
	matcher := NewRuleMatcher()

	tests := []struct {
		name  string
		input string
	}{
		{"plain", "Show me my appointments for tomorrow"},
		{"upper case", "SHOW APPOINTMENTS"},
		{"mixed with booking words", "show appointment and book a meeting"},
		{"substring match", "showcase the appointmentbook"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, rule := matcher.Match(tt.input)
			assert.Equal(t, IntentListAppointments, intent)
			assert.Equal(t, "list_appointments", rule)
		})
	}
}

func TestRuleMatcher_BookEvent(t *testing.T) {
	matcher := NewRuleMatcher()

	tests := []struct {
		name  string
		input string
	}{
		{"book meeting", "Can you book a meeting with John next Friday at 2 PM?"},
		{"schedule call", "schedule a call"},
		{"set up event", "Please SET UP an Event tomorrow"},
		{"arrange appointment", "arrange an appointment with the dentist"},
		{"create meeting", "create meeting"},
		{"organize call", "organize a call at 5pm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, rule := matcher.Match(tt.input)
			assert.Equal(t, IntentBookEvent, intent)
			assert.Equal(t, "book_event", rule)
		})
	}
}

func TestRuleMatcher_GeneralChat(t *testing.T) {
	matcher := NewRuleMatcher()

	tests := []struct {
		name  string
		input string
	}{
		{"weather", "What's the weather like?"},
		{"action without type", "book a table for two"},
		{"type without action", "how did the meeting go?"},
		{"show without appointment", "show me a joke"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, rule := matcher.Match(tt.input)
			assert.Equal(t, IntentGeneralChat, intent)
			assert.Empty(t, rule)
		})
	}
}

func TestRuleMatcher_CustomRules(t *testing.T) {
	matcher := NewRuleMatcherWithRules([]Rule{
		{Name: "greeting", Intent: IntentGeneralChat, Groups: [][]string{{"hello"}}},
		{Name: "never", Intent: IntentBookEvent},
	}, IntentListAppointments)

	intent, rule := matcher.Match("Hello there")
	assert.Equal(t, IntentGeneralChat, intent)
	assert.Equal(t, "greeting", rule)

	// A rule without groups never matches.
	intent, rule = matcher.Match("anything")
	assert.Equal(t, IntentListAppointments, intent)
	assert.Empty(t, rule)
}

func TestRuleMatcher_RulesIsCopy(t *testing.T) {
	matcher := NewRuleMatcher()
	rules := matcher.Rules()
	rules[0].Intent = IntentGeneralChat

	intent, _ := matcher.Match("show appointments")
	assert.Equal(t, IntentListAppointments, intent)
}

func TestService_ClassifyIntent(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	assert.Equal(t, IntentListAppointments, svc.ClassifyIntent(ctx, "Show me my appointments for tomorrow"))
	assert.Equal(t, IntentBookEvent, svc.ClassifyIntent(ctx, "schedule a call"))
	assert.Equal(t, IntentGeneralChat, svc.ClassifyIntent(ctx, "What's the weather like?"))
}

func TestMockRouterService_Overrides(t *testing.T) {
	mock := NewMockRouterService()
	mock.IntentOverrides["hi"] = IntentBookEvent
	mock.TitleOverrides["hi"] = "Custom"

	ctx := context.Background()
	assert.Equal(t, IntentBookEvent, mock.ClassifyIntent(ctx, "hi"))
	assert.Equal(t, "Custom", mock.ExtractTitle("hi"))
	assert.Equal(t, IntentGeneralChat, mock.ClassifyIntent(ctx, "hello"))
	assert.Equal(t, "Call", mock.ExtractTitle("schedule a call"))
}
