package router

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTitle is used when no booking type keyword is present.
const DefaultTitle = "Meeting"

// withClausePatterns holds one "<type> with <subject>" pattern per booking type.
var withClausePatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(BookingTypes))
	for _, bt := range BookingTypes {
		m[bt] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(bt) + `\s+with\s+(.+)`)
	}
	return m
}()

// subjectStopWords end a subject: they usually start the date/time phrase.
var subjectStopWords = map[string]bool{
	"at": true, "on": true, "next": true, "this": true, "tomorrow": true,
	"today": true, "tonight": true, "in": true, "from": true, "for": true,
	"by": true, "around": true, "about": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// honorifics keep their trailing period inside a subject ("Dr. Rao").
var honorifics = map[string]bool{
	"dr": true, "mr": true, "mrs": true, "ms": true, "prof": true,
	"st": true, "jr": true, "sr": true,
}

// ExtractTitle derives an event title such as "Meeting John" from booking
// text. The booking type is chosen by keyword list order, not by position
// in the text.
func ExtractTitle(input string) string {
	lower := strings.ToLower(input)
	for _, bt := range BookingTypes {
		if !strings.Contains(lower, bt) {
			continue
		}
		caser := cases.Title(language.English)
		label := caser.String(bt)
		matches := withClausePatterns[bt].FindStringSubmatch(input)
		if len(matches) < 2 {
			return label
		}
		subject := cutSubject(matches[1])
		if subject == "" {
			return label
		}
		return label + " " + caser.String(subject)
	}
	return DefaultTitle
}

// cutSubject keeps the words of a "with" clause up to the first date/time
// boundary: punctuation, a digit-led word, or a stop word.
func cutSubject(clause string) string {
	var kept []string
	for _, word := range strings.Fields(clause) {
		trimmed := strings.TrimRightFunc(word, unicode.IsPunct)
		if trimmed == "" || subjectStopWords[strings.ToLower(trimmed)] {
			break
		}
		if r := []rune(trimmed)[0]; unicode.IsDigit(r) {
			break
		}
		if word == trimmed+"." && honorifics[strings.ToLower(trimmed)] {
			kept = append(kept, word)
			continue
		}
		kept = append(kept, trimmed)
		if trimmed != word {
			break
		}
	}
	return strings.Join(kept, " ")
}
