package router

import (
	"strings"
)

// Rule maps a keyword condition to an intent. Every group must contribute
// at least one keyword found in the lowercased input.
type Rule struct {
	Name   string
	Intent Intent
	Groups [][]string
}

// Matches reports whether all groups are satisfied by the lowercased input.
func (r Rule) Matches(lower string) bool {
	if len(r.Groups) == 0 {
		return false
	}
	for _, group := range r.Groups {
		if !containsAny(lower, group) {
			return false
		}
	}
	return true
}

// DefaultRules is the ordered rule table. First match wins.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:   "list_appointments",
			Intent: IntentListAppointments,
			Groups: [][]string{{"show"}, {"appointment"}},
		},
		{
			Name:   "book_event",
			Intent: IntentBookEvent,
			Groups: [][]string{BookingActions, BookingTypes},
		},
	}
}

// RuleMatcher implements keyword rule matching over an ordered table.
type RuleMatcher struct {
	rules    []Rule
	fallback Intent
}

// NewRuleMatcher creates a rule matcher with the default rule table and
// IntentGeneralChat as fallback.
func NewRuleMatcher() *RuleMatcher {
	return NewRuleMatcherWithRules(DefaultRules(), IntentGeneralChat)
}

// NewRuleMatcherWithRules creates a rule matcher over a custom table.
func NewRuleMatcherWithRules(rules []Rule, fallback Intent) *RuleMatcher {
	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &RuleMatcher{
		rules:    copied,
		fallback: fallback,
	}
}

// Match classifies input. Returns the intent and the name of the rule that
// matched ("" when the fallback was used).
func (m *RuleMatcher) Match(input string) (Intent, string) {
	lower := strings.ToLower(input)
	for _, rule := range m.rules {
		if rule.Matches(lower) {
			return rule.Intent, rule.Name
		}
	}
	return m.fallback, ""
}

// Rules returns a copy of the rule table.
func (m *RuleMatcher) Rules() []Rule {
	out := make([]Rule, len(m.rules))
	copy(out, m.rules)
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
