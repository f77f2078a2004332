package timeline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// monthsPerYear is used for the integer encoding of months.
const monthsPerYear = 12

// ErrInvalidMonth is returned when a month string is not "YYYY-MM" with a
// month between 01 and 12.
var ErrInvalidMonth = errors.New("month must be YYYY-MM")

// Month is a calendar month encoded as year*12 + (month-1).
//
// The zero value means "absent" (no month); real dashboard months always have
// year >= 1, so the encoding never collides with the sentinel.
type Month int

// MonthOf builds a Month from a year and a 1-based month number.
func MonthOf(year, month int) Month {
	return Month(year*monthsPerYear + month - 1)
}

// ParseMonth parses "YYYY-MM". Parsing is strict: exactly two dash-separated
// numeric fields, month 01..12, year >= 1.
func ParseMonth(s string) (Month, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: got %q", ErrInvalidMonth, s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		return 0, fmt.Errorf("%w: got %q", ErrInvalidMonth, s)
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > monthsPerYear {
		return 0, fmt.Errorf("%w: got %q", ErrInvalidMonth, s)
	}

	return MonthOf(year, month), nil
}

// IsZero reports whether m is the absent sentinel.
func (m Month) IsZero() bool {
	return m == 0
}

// Year returns the calendar year.
func (m Month) Year() int {
	return int(m) / monthsPerYear
}

// MonthOfYear returns the 1-based month number within the year.
func (m Month) MonthOfYear() int {
	return int(m)%monthsPerYear + 1
}

// Add returns the month delta calendar months away. Negative deltas step
// backward.
func (m Month) Add(delta int) Month {
	return m + Month(delta)
}

// String formats the month as "YYYY-MM". The absent sentinel formats as "".
func (m Month) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", m.Year(), m.MonthOfYear())
}

// Clamp forces m into [min, max]. It is idempotent and always returns a value
// within the bounds (callers must ensure min <= max).
func Clamp(m, min, max Month) Month {
	if m < min {
		return min
	}
	if m > max {
		return max
	}
	return m
}
