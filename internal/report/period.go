// Package report derives totals, category breakdowns, trend series and due-date
// notifications from a ledger snapshot.
//
// Every function is pure: it takes the visible entry set (tombstones already removed) and
// returns freshly computed values. Entries with a malformed date are skipped by anything
// date-dependent instead of causing an error.
package report

import (
	"fmt"
	"time"

	"github.com/iho/pocketledger/internal/domain"
)

// PeriodLayout is the layout of a period key ("YYYY-MM").
const PeriodLayout = "2006-01"

// PeriodKey returns the "YYYY-MM" key of a calendar date string.
func PeriodKey(date string) (string, bool) {
	t, err := domain.ParseDate(date)
	if err != nil {
		return "", false
	}
	return PeriodOf(t), true
}

// PeriodOf returns the "YYYY-MM" key of t.
func PeriodOf(t time.Time) string {
	return t.Format(PeriodLayout)
}

// ParsePeriod parses a "YYYY-MM" key into the first day of that month.
func ParsePeriod(period string) (time.Time, error) {
	t, err := time.Parse(PeriodLayout, period)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidPeriod, period)
	}
	return t, nil
}

// MonthLabel renders the display label of a month, e.g. "Jan 2025".
func MonthLabel(t time.Time) string {
	return t.Format("Jan 2006")
}

// FilterByPeriod keeps the entries dated inside period.
func FilterByPeriod(entries []domain.Entry, period string) []domain.Entry {
	out := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		if key, ok := PeriodKey(e.Date); ok && key == period {
			out = append(out, e)
		}
	}
	return out
}

// FilterByType keeps the entries of the given type.
func FilterByType(entries []domain.Entry, t domain.EntryType) []domain.Entry {
	out := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// trailingMonths returns the first day of each of the n months ending with now's month,
// oldest first.
func trailingMonths(now time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	y, m, _ := now.Date()
	current := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)

	months := make([]time.Time, 0, n)
	for i := n - 1; i >= 0; i-- {
		months = append(months, current.AddDate(0, -i, 0))
	}
	return months
}
