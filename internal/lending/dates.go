package lending

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used for all borrow dates.
const DateLayout = "2006-01-02"

// Loan periods in calendar days.
const (
	LoanPeriodDays = 14
	ExtensionDays  = 7
)

// Today returns the calendar date of now as midnight UTC, so that date
// arithmetic never crosses a DST boundary.
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a DateLayout date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// DueDate returns the due date for a loan starting on borrowDate.
func DueDate(borrowDate time.Time) time.Time {
	return Today(borrowDate).AddDate(0, 0, LoanPeriodDays)
}

// Extend returns due moved forward by one extension period.
func Extend(due time.Time) time.Time {
	return Today(due).AddDate(0, 0, ExtensionDays)
}

// ExtendDueDate adds seven days to a DateLayout due date. It does not touch
// any stored borrow; persisting the result is up to the caller.
func ExtendDueDate(due string) (string, error) {
	t, err := ParseDate(due)
	if err != nil {
		return "", err
	}
	return FormatDate(Extend(t)), nil
}

// DaysLate returns the number of whole days returned is after due, or zero.
func DaysLate(due, returned time.Time) int {
	d := Today(returned).Sub(Today(due))
	if d <= 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

// Fine computes the late fee in cents.
func Fine(due, returned time.Time, ratePerDayCents int64) int64 {
	if ratePerDayCents <= 0 {
		return 0
	}
	return int64(DaysLate(due, returned)) * ratePerDayCents
}
