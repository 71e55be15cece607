// Package dates handles hotel calendar dates. A calendar date is a
// time.Time pinned to 00:00:00 UTC so it can be stored, compared and
// iterated without timezone drift; the property's local timezone only
// matters when resolving "today" and wall-clock instants.
package dates

import (
	"fmt"
	"time"
)

// Date normalizes t to the calendar date it falls on in loc.
func Date(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// Parse reads a YYYY-MM-DD calendar date.
func Parse(s string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

func Format(d time.Time) string {
	return d.Format("2006-01-02")
}

func Next(d time.Time) time.Time {
	return d.AddDate(0, 0, 1)
}

// DaysBetween returns b - a in whole days.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}

// InstantOn resolves a wall-clock time of day (HH:MM) on a calendar
// date in loc.
func InstantOn(d time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	tod, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q: %w", hhmm, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), tod.Hour(), tod.Minute(), 0, 0, loc), nil
}
