// Package normalize converts raw spreadsheet cell values into canonical
// typed fields for course and student records. String fields are
// truncated to fixed byte caps rather than rejected; numeric, clock and
// date fields fail with an Error naming the offending column.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Error reports a single cell that could not be normalized.
type Error struct {
	Field  string
	Value  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("field %q: %s (value %q)", e.Field, e.Reason, e.Value)
}

func fieldErr(field, value, reason string) *Error {
	return &Error{Field: field, Value: value, Reason: reason}
}

// dateLayout is the only accepted source date format. No timezone
// handling: dates are calendar dates, the time component is discarded.
const dateLayout = "2006-01-02 15:04:05"

// Truncate caps s at n bytes without rejecting longer input.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// ParseClock converts a float-encoded integer clock value ("830",
// "1430.0") into its canonical "HH:MM" form.
func ParseClock(raw string) (string, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", fmt.Errorf("not a numeric clock value")
	}
	v := int(f)
	if float64(v) != f || v < 0 {
		return "", fmt.Errorf("not a whole clock value")
	}
	hour, minute := v/100, v%100
	if hour > 23 || minute > 59 {
		return "", fmt.Errorf("clock value out of range")
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// ParseDate parses the source's literal datetime format keeping the
// date part only.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("expected %s", dateLayout)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ParseCount parses a float-encoded non-negative integer ("25.0").
func ParseCount(raw string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("not a numeric value")
	}
	v := int(f)
	if float64(v) != f || v < 0 {
		return 0, fmt.Errorf("not a non-negative integer")
	}
	return v, nil
}

// FlipName reverses a "Last, First" instructor name into "First Last".
// Names without a comma pass through unchanged.
func FlipName(name string) string {
	last, first, found := strings.Cut(name, ",")
	if !found {
		return strings.TrimSpace(name)
	}
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
