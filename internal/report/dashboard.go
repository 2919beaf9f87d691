package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
)

// Options tunes the dashboard widgets. Zero values fall back to the defaults.
type Options struct {
	UpcomingLimit  int
	DueSoonWindow  int
	StrictStatuses bool
}

func (o Options) withDefaults() Options {
	if o.UpcomingLimit <= 0 {
		o.UpcomingLimit = DefaultUpcomingLimit
	}
	if o.DueSoonWindow <= 0 {
		o.DueSoonWindow = DefaultDueSoonWindow
	}
	return o
}

// Dashboard is the per-period summary shown on the home screen.
type Dashboard struct {
	Period           string           `json:"period"`
	Totals           Totals           `json:"totals"`
	IncomeByCategory []CategoryAmount `json:"income_by_category"`
	DebtByCategory   []CategoryAmount `json:"debt_by_category"`
	UpcomingBills    []domain.Entry   `json:"upcoming_bills"`
	Notifications    []Notification   `json:"notifications"`
	MonthlyGoal      decimal.Decimal  `json:"monthly_goal"`
	SavingsProgress  *decimal.Decimal `json:"savings_progress,omitempty"`
}

// BuildDashboard computes the dashboard for period. Totals and category sums are limited
// to the period; upcoming bills and notifications look at the whole ledger.
func BuildDashboard(entries []domain.Entry, settings domain.Settings, period string, now time.Time, opts Options) Dashboard {
	opts = opts.withDefaults()
	visible := domain.Visible(entries)
	inPeriod := FilterByPeriod(visible, period)

	totals := ComputeTotals(inPeriod)
	if opts.StrictStatuses {
		totals = ComputeStrictTotals(inPeriod)
	}

	d := Dashboard{
		Period:           period,
		Totals:           totals,
		IncomeByCategory: ByCategory(inPeriod, domain.EntryTypeIncome),
		DebtByCategory:   ByCategory(inPeriod, domain.EntryTypeDebt),
		UpcomingBills:    UpcomingBills(visible, opts.UpcomingLimit),
		Notifications:    DueSoonNotifications(visible, now, opts.DueSoonWindow),
		MonthlyGoal:      settings.MonthlyGoal,
	}

	if progress, err := SavingsProgress(totals.Balance, settings.MonthlyGoal); err == nil {
		d.SavingsProgress = &progress
	}

	return d
}
