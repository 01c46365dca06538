// Package schedule implements recurring class schedule expansion: pure date
// arithmetic, recurrence rules, and materialization of concrete occurrences
// from a class definition. Nothing in this package touches the network or
// storage; persistence of rules and occurrences lives in the repository and
// service layers.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/flexfit/gym-api/pkg/errors"
)

const minutesPerDay = 24 * 60

// Clock is a time-of-day value with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" (seconds are accepted and discarded).
func ParseClock(raw string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return Clock{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid time %q, expected HH:MM", raw))
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return Clock{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid hour in %q", raw))
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return Clock{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid minute in %q", raw))
	}
	if len(parts) == 3 {
		if _, err := strconv.Atoi(parts[2]); err != nil {
			return Clock{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid second in %q", raw))
		}
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// String renders the clock back to "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// TotalMinutes returns minutes since midnight.
func (c Clock) TotalMinutes() int {
	return c.Hour*60 + c.Minute
}

// WeekdayIndex returns the weekday of t as an index in [0,6], 0 = Sunday.
func WeekdayIndex(t time.Time) int {
	return int(t.Weekday())
}

// DayDifference is the minimal non-negative number of days to add to a date
// whose weekday is from in order to reach the next date (possibly the same
// date) whose weekday is to.
func DayDifference(from, to int) int {
	return ((to-from)%7 + 7) % 7
}

// DurationMinutes computes the minutes between two same-day clock values.
// When end is earlier than start the result wraps modulo 24h: the pair is
// treated as clock times on one day, so callers must not expect a correct
// cross-midnight duration for overnight classes.
func DurationMinutes(start, end Clock) int {
	d := end.TotalMinutes() - start.TotalMinutes()
	if d < 0 {
		d += minutesPerDay
	}
	return d
}

// DateOf truncates t to its calendar date at midnight UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Combine merges a calendar date with a time-of-day into an absolute instant.
func Combine(date time.Time, c Clock) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, 0, 0, time.UTC)
}
