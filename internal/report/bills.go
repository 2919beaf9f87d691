package report

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
)

// Defaults for the bill widgets.
const (
	DefaultUpcomingLimit = 5
	DefaultDueSoonWindow = 7
)

// UpcomingBills returns pending debts in ascending date order, at most limit of them.
// Entries whose date does not parse compare equal to everything and keep their relative
// order.
func UpcomingBills(entries []domain.Entry, limit int) []domain.Entry {
	pending := make([]domain.Entry, 0)
	for _, e := range entries {
		if e.Type == domain.EntryTypeDebt && e.Status == domain.StatusPending {
			pending = append(pending, e)
		}
	}

	slices.SortStableFunc(pending, func(a, b domain.Entry) int {
		ta, okA := a.Time()
		tb, okB := b.Time()
		if !okA || !okB {
			return 0
		}
		return ta.Compare(tb)
	})

	if limit >= 0 && len(pending) > limit {
		pending = pending[:limit]
	}

	return pending
}

// Notification is a due-soon reminder for a pending debt.
type Notification struct {
	ID        string          `json:"id"`
	Message   string          `json:"message"`
	Date      string          `json:"date"`
	Value     decimal.Decimal `json:"value"`
	DaysUntil int             `json:"days_until"`
}

// DueSoonNotifications returns a reminder for every pending debt with a valid date falling
// between today and windowDays days from today, inclusive. The distance is counted in
// calendar days, so the time of day of today does not matter. Results are ordered by due
// date, nearest first.
func DueSoonNotifications(entries []domain.Entry, today time.Time, windowDays int) []Notification {
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	out := make([]Notification, 0)
	for _, e := range entries {
		if e.Type != domain.EntryTypeDebt || e.Status != domain.StatusPending {
			continue
		}
		due, ok := e.Time()
		if !ok {
			continue
		}

		days := int(math.Ceil(due.Sub(start).Hours() / 24))
		if days < 0 || days > windowDays {
			continue
		}

		out = append(out, Notification{
			ID:        e.ID,
			Message:   dueMessage(e.Description, days),
			Date:      e.Date,
			Value:     e.Value,
			DaysUntil: days,
		})
	}

	slices.SortStableFunc(out, func(a, b Notification) int {
		return a.DaysUntil - b.DaysUntil
	})

	return out
}

func dueMessage(description string, days int) string {
	switch days {
	case 0:
		return fmt.Sprintf("%s is due today", description)
	case 1:
		return fmt.Sprintf("%s is due in 1 day", description)
	default:
		return fmt.Sprintf("%s is due in %d days", description, days)
	}
}

// SavingsProgress returns balance as a percentage of the monthly goal, rounded to one
// decimal place.
func SavingsProgress(balance, monthlyGoal decimal.Decimal) (decimal.Decimal, error) {
	if monthlyGoal.IsZero() {
		return decimal.Zero, domain.ErrInvalidGoal
	}
	return balance.Div(monthlyGoal).Mul(decimal.NewFromInt(100)).Round(1), nil
}
