package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ExpandInput is a user-submitted entry that may be split into installments.
type ExpandInput struct {
	Type         EntryType
	Value        decimal.Decimal
	Date         string
	Category     string
	Description  string
	Status       EntryStatus
	Recurrent    bool
	Installments int
}

// ExpandInstallments turns one submitted entry into Installments dated entries.
//
// The installment count must already satisfy ValidateInstallments; callers enforce the
// upper bound, the expander only refuses counts below one.
//
// With a single installment the caller's status is kept. Otherwise the value is split
// evenly, truncated to cents, and the remainder is added to the last installment so the
// parts always sum to the original value. Installment k of N is dated one month after the
// previous installment's date, clamped to the end of a shorter month, is always pending
// and has " (k/N)" appended to its description. The description limit applies to the base
// description only; the marker may take an installment past it.
//
// A value whose even share truncates to zero is rejected with ErrInvalidEntry.
func ExpandInstallments(in ExpandInput, newID func() string, now func() time.Time) ([]Entry, error) {
	if in.Installments < MinInstallments {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidInstallmentCount, in.Installments)
	}

	if in.Installments == 1 {
		e, err := NewEntry(NewEntryParams{
			ID:          newID(),
			Type:        in.Type,
			Value:       in.Value,
			Date:        in.Date,
			Category:    in.Category,
			Description: in.Description,
			Status:      in.Status,
			Recurrent:   in.Recurrent,
			CreatedAt:   now().UTC(),
		})
		if err != nil {
			return nil, err
		}
		return []Entry{e}, nil
	}

	anchor, err := ParseDate(in.Date)
	if err != nil {
		return nil, err
	}

	if err := ValidateValue(in.Value); err != nil {
		return nil, err
	}

	if err := ValidateDescription(in.Description); err != nil {
		return nil, err
	}

	n := int64(in.Installments)
	share := in.Value.Div(decimal.NewFromInt(n)).Truncate(2)
	if share.IsZero() {
		return nil, fmt.Errorf("%w: value %s is too small to split into %d installments",
			ErrInvalidEntry, in.Value, n)
	}
	last := in.Value.Sub(share.Mul(decimal.NewFromInt(n - 1)))

	entries := make([]Entry, 0, in.Installments)
	due := anchor
	for i := 0; i < in.Installments; i++ {
		if i > 0 {
			due = AddMonthsClamped(due, 1)
		}

		value := share
		if i == in.Installments-1 {
			value = last
		}

		e, err := NewEntry(NewEntryParams{
			ID:          newID(),
			Type:        in.Type,
			Value:       value,
			Date:        FormatDate(due),
			Category:    in.Category,
			Description: in.Description,
			Status:      StatusPending,
			Recurrent:   in.Recurrent,
			CreatedAt:   now().UTC(),
		})
		if err != nil {
			return nil, err
		}
		e.Description = InstallmentDescription(e.Description, i+1, in.Installments)
		entries = append(entries, e)
	}

	return entries, nil
}

// InstallmentDescription appends the "(k/N)" marker to a base description.
func InstallmentDescription(base string, k, n int) string {
	return fmt.Sprintf("%s (%d/%d)", base, k, n)
}

// AddMonthsClamped moves t forward by months calendar months keeping its day of month,
// clamped to the last day of the target month (Jan 31 + 1 month = Feb 28/29).
func AddMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	if last := DaysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
