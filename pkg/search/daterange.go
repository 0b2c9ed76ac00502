package search

import (
	"time"

	"github.com/Warky-Devs/backoffice/pkg/common"
)

const dayLayout = "2006-01-02"

// DateRangeCombinator merges startDate/endDate into one inclusive range over
// whole calendar days of Location. Bounds are emitted in UTC to match stored
// timestamps.
type DateRangeCombinator struct {
	Field    string
	Location *time.Location
}

// Combine returns false when neither bound is present or parsable.
func (c DateRangeCombinator) Combine(params Params) (common.Predicate, bool) {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}

	var lower, upper interface{}
	if raw, ok := params.lookup("startDate"); ok {
		if day, ok := parseDay(raw, loc); ok {
			lower = StartOfDay(day, loc).UTC()
		}
	}
	if raw, ok := params.lookup("endDate"); ok {
		if day, ok := parseDay(raw, loc); ok {
			upper = EndOfDay(day, loc).UTC()
		}
	}

	if lower == nil && upper == nil {
		return common.Predicate{}, false
	}
	return common.Range(c.Field, lower, upper), true
}

// StartOfDay is 00:00:00.000 of day in loc.
func StartOfDay(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EndOfDay is 23:59:59.999 of day in loc.
func EndOfDay(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
}

// parseDay accepts a bare calendar date or an RFC 3339 timestamp, whose date
// is taken in loc.
func parseDay(raw string, loc *time.Location) (time.Time, bool) {
	if t, err := time.ParseInLocation(dayLayout, raw, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.In(loc), true
	}
	return time.Time{}, false
}
