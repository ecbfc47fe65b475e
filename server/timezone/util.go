// Package timezone provides timezone utilities for the calendar assistant.
//
// This package handles timezone parsing, day boundaries and the display
// formats used in chat replies.
package timezone

import (
	"fmt"
	"strings"
	"time"
)

const (
	// TimezoneAsiaKolkata is the India Standard Time timezone.
	TimezoneAsiaKolkata = "Asia/Kolkata"

	// BookingLayout renders a confirmed booking start, e.g. "2026-10-23 02:00 PM".
	BookingLayout = "2006-01-02 03:04 PM"

	// RFC3339Minutes is the prefix length of an RFC 3339 date-time up to minutes.
	RFC3339Minutes = len("2006-01-02T15:04")
)

// ParseTimezone parses an IANA timezone identifier (e.g., "Asia/Kolkata").
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	if tz == "" || tz == "UTC" {
		return true
	}

	_, err := time.LoadLocation(tz)
	return err == nil
}

// FormatBooking formats a booking start for the confirmation reply.
func FormatBooking(t time.Time, tz *time.Location) string {
	if tz == nil {
		tz = time.UTC
	}
	return t.In(tz).Format(BookingLayout)
}

// FormatListingStart renders a raw start value as stored by the calendar:
// the first 16 characters with the date/time separator "T" replaced by a
// space. "2026-10-20T10:00:00+05:30" becomes "2026-10-20 10:00".
func FormatListingStart(raw string) string {
	if len(raw) > RFC3339Minutes {
		raw = raw[:RFC3339Minutes]
	}
	return strings.Replace(raw, "T", " ", 1)
}

// StartOfDay returns the start of the day (00:00:00) in the given timezone.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = time.UTC
	}
	t = t.In(tz)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, tz)
}

// EndOfDay returns the last whole second of the day (23:59:59) in the given timezone.
func EndOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = time.UTC
	}
	t = t.In(tz)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, tz)
}

// TomorrowBounds returns [00:00:00, 23:59:59] of the day after now in tz.
func TomorrowBounds(now time.Time, tz *time.Location) (time.Time, time.Time) {
	if tz == nil {
		tz = time.UTC
	}
	tomorrow := StartOfDay(now, tz).AddDate(0, 0, 1)
	return tomorrow, EndOfDay(tomorrow, tz)
}

// NowInTimezone returns the current time in the given timezone.
func NowInTimezone(tz *time.Location) time.Time {
	if tz == nil {
		tz = time.UTC
	}
	return time.Now().In(tz)
}
