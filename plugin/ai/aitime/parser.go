package aitime

import (
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var (
	// isoDatePattern matches YYYY-MM-DD, optionally followed by a "T" time
	// separator.
	isoDatePattern = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})(T|\b)`)

	explicitYearPattern = regexp.MustCompile(`\b\d{4}\b`)
	monthNamePattern    = regexp.MustCompile(`(?i)\b` + en.MONTH_OFFSET_PATTERN)
)

// Match is one date/time expression found in a message.
type Match struct {
	Index int       // byte offset of the expression in the input
	Text  string    // the matched expression
	Time  time.Time // resolved time in the parser's timezone
}

// Parser searches free text for English date/time expressions.
type Parser struct {
	timezone *time.Location
	now      func() time.Time
	engine   *when.Parser
}

// NewParser creates a new parser resolving expressions in the given timezone.
func NewParser(timezone *time.Location) *Parser {
	if timezone == nil {
		timezone = time.Local
	}
	return &Parser{
		timezone: timezone,
		now:      time.Now,
		engine:   newEngine(),
	}
}

// newEngine builds the rule set: English phrases ("next friday", "2 pm",
// "tomorrow", "in 2 hours") plus numeric dates ("20/10/2026", "2026-10-20").
func newEngine() *when.Parser {
	w := when.New(nil)
	w.Use(normalizeISODates)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// normalizeISODates rewrites "2026-10-25" as "25/10/2026" so the slash date
// rule reads it whole. Without it the hour-minute rule claims "10-25" as a
// clock time. The rewrite keeps byte offsets unchanged.
func normalizeISODates(text string) (string, error) {
	return isoDatePattern.ReplaceAllStringFunc(text, func(s string) string {
		g := isoDatePattern.FindStringSubmatch(s)
		out := g[3] + "/" + g[2] + "/" + g[1]
		if g[4] == "T" {
			out += " "
		}
		return out
	}), nil
}

// WithTimezone returns a new parser with the given timezone.
func (p *Parser) WithTimezone(tz *time.Location) *Parser {
	return &Parser{
		timezone: tz,
		now:      p.now,
		engine:   p.engine,
	}
}

// Search returns the first date/time expression in scan order, resolved
// relative to now and biased toward the future. ok is false when the text
// has no parsable expression; library errors on malformed fragments are
// treated the same way.
func (p *Parser) Search(input string) (Match, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Match{}, false
	}

	ref := p.now().In(p.timezone)

	r, err := p.engine.Parse(input, ref)
	if err != nil || r == nil {
		return Match{}, false
	}

	// Rules resolve against ref, so the result already carries the home zone.
	t := r.Time.In(p.timezone).Truncate(time.Minute)
	t = preferFuture(t, ref.Truncate(time.Minute), r.Text)

	return Match{Index: r.Index, Text: r.Text, Time: t}, true
}

// preferFuture resolves an ambiguous expression that landed in the past:
// a month and day given without a year move to next year, and a time of day
// that already passed today moves to tomorrow. Expressions with an explicit
// year or a relative past ("last friday") are left alone.
func preferFuture(t, ref time.Time, text string) time.Time {
	if !t.Before(ref) {
		return t
	}
	if isYearlessDate(text) {
		return t.AddDate(1, 0, 0)
	}
	ty, tm, td := t.Date()
	ry, rm, rd := ref.Date()
	if ty == ry && tm == rm && td == rd {
		return t.AddDate(0, 0, 1)
	}
	return t
}

// isYearlessDate reports whether text names a calendar month without a year.
func isYearlessDate(text string) bool {
	return monthNamePattern.MatchString(text) && !explicitYearPattern.MatchString(text)
}
