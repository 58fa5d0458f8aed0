package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/hsplan/internal/constants"
)

// ParseDate parses a date string (YYYY-MM-DD) as midnight UTC.
// Calendar arithmetic is done in UTC so that DST transitions never shift a day.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", dateStr, err)
	}
	return t, nil
}

// FormatDate formats a date in the standard format (YYYY-MM-DD).
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// TruncateToDate drops the time of day, keeping the calendar date of t in its own location.
func TruncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n calendar days after d.
func AddDays(d time.Time, n int) time.Time {
	return d.AddDate(0, 0, n)
}

// MinDate returns the earlier of two dates.
func MinDate(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

// MaxDate returns the later of two dates.
func MaxDate(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// TodayInTimezone returns today's date string (YYYY-MM-DD) in the given timezone.
func TodayInTimezone(timezone string) (string, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return "", fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc).Format(constants.DateFormat), nil
}

// ResolveDate accepts "today" or a YYYY-MM-DD string and returns the YYYY-MM-DD form.
func ResolveDate(value, timezone string) (string, error) {
	if value == "" || value == "today" {
		return TodayInTimezone(timezone)
	}
	if _, err := ParseDate(value); err != nil {
		return "", err
	}
	return value, nil
}
