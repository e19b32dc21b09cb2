// Package dates holds the calendar helpers shared by the backend client and the views. The
// backend speaks naive ISO timestamps; everything here keeps the wall-clock date of a value
// rather than converting it between zones, so a deadline entered as a calendar day is shown as
// the same calendar day.
package dates

import (
	"regexp"
	"strings"
	"time"
)

const (
	// DateLayout is the bare calendar date format used on the wire.
	DateLayout = "2006-01-02"
	// DisplayLayout is the DD.MM.YYYY format the views render.
	DisplayLayout = "02.01.2006"
	// DayMonthLayout labels the schedule day strip.
	DayMonthLayout = "02.01"

	endOfDay = "T23:59:59"
)

var bareDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// IsBareDate reports whether s is exactly YYYY-MM-DD.
func IsBareDate(s string) bool {
	return bareDate.MatchString(s)
}

// EndOfDay turns a bare YYYY-MM-DD into YYYY-MM-DDT23:59:59. Any other value is returned as is.
func EndOfDay(s string) string {
	s = strings.TrimSpace(s)
	if IsBareDate(s) {
		return s + endOfDay
	}
	return s
}

// Parse accepts a bare date or any of the timestamp shapes the backend emits. The returned time
// keeps the wall clock of the input.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if IsBareDate(s) {
		t, err := time.ParseInLocation(DateLayout, s, time.Local)
		return t, err == nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DatePart truncates "YYYY-MM-DDTHH:MM:SS..." to "YYYY-MM-DD".
func DatePart(s string) string {
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return s[:i]
	}
	return s
}

// Format renders s as DD.MM.YYYY. Empty input yields "" and unparseable input yields ok=false.
func Format(s string) (string, bool) {
	if strings.TrimSpace(s) == "" {
		return "", true
	}
	t, ok := Parse(s)
	if !ok {
		return "", false
	}
	return t.Format(DisplayLayout), true
}

// CalendarDate returns the YYYY-MM-DD calendar date of s, or "" when s cannot be parsed.
func CalendarDate(s string) string {
	t, ok := Parse(s)
	if !ok {
		return ""
	}
	return t.Format(DateLayout)
}

// DaysUntil counts whole calendar days from now until the date of s. Negative means overdue.
func DaysUntil(s string, now time.Time) (int, bool) {
	t, ok := Parse(s)
	if !ok {
		return 0, false
	}
	due := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(due.Sub(today).Hours() / 24), true
}

// ShortTime trims "HH:MM:SS[.ffffff]" to "HH:MM".
func ShortTime(s string) string {
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}

// WeekStart returns the Monday of the week containing t, at midnight.
func WeekStart(t time.Time) time.Time {
	offset := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		offset = 6
	}
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}
