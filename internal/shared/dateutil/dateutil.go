// Package dateutil parses the date and time notations accepted by the API and
// the spreadsheet importers.
package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// Day-first notations win over month-first ones for ambiguous input.
var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"01/02/2006",
	"02-01-2006",
	"02/01/2006 15:04",
	"2006-01-02 15:04",
	"01/02/2006 15:04",
	"02-01-2006 15:04",
	"02/01/2006 15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
	"02-01-2006 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"1/2/06",
	"01-02-06",
}

var clockLayouts = []string{"15:04", "15:04:05"}

// ParseDate accepts every supported layout and returns the instant in UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}

// ParseDay is ParseDate truncated to the calendar day.
func ParseDay(value string) (time.Time, error) {
	t, err := ParseDate(value)
	if err != nil {
		return time.Time{}, err
	}
	return StartOfDay(t), nil
}

// ParseClock parses "HH:MM" or "HH:MM:SS" into an offset from midnight.
func ParseClock(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("unrecognised time of day %q", value)
}

// StartOfDay drops the clock part, keeping the calendar day of t in UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// At places a time-of-day offset on the given day.
func At(day time.Time, clock time.Duration) time.Time {
	return StartOfDay(day).Add(clock)
}

// DaysInclusive counts calendar days from start to end, both included.
func DaysInclusive(start, end time.Time) int {
	return int(StartOfDay(end).Sub(StartOfDay(start)).Hours()/24) + 1
}

// FormatDay renders the canonical API date.
func FormatDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// FormatClock renders a timestamp's time of day as HH:MM.
func FormatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("15:04")
}
