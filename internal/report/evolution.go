package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
)

// Series sizes used by the dashboard charts.
const (
	DefaultEvolutionMonths = 12
	DefaultTrendMonths     = 3
	DefaultTrendCategories = 5
)

// MonthPoint is one month of the evolution chart.
type MonthPoint struct {
	Period   string          `json:"period"`
	Label    string          `json:"label"`
	Received decimal.Decimal `json:"received"`
	DebtPaid decimal.Decimal `json:"debt_paid"`
	Balance  decimal.Decimal `json:"balance"`
}

// MonthlyEvolution returns received, paid debt and the month's own balance for each of the
// monthsBack months ending with now's month, oldest first. Balances are not cumulative.
// strict selects ComputeStrictTotals so the series agrees with a strict dashboard.
func MonthlyEvolution(entries []domain.Entry, now time.Time, monthsBack int, strict bool) []MonthPoint {
	months := trailingMonths(now, monthsBack)
	points := make([]MonthPoint, 0, len(months))

	for _, m := range months {
		period := PeriodOf(m)
		totals := computeTotals(FilterByPeriod(entries, period), strict)
		points = append(points, MonthPoint{
			Period:   period,
			Label:    MonthLabel(m),
			Received: totals.Received,
			DebtPaid: totals.DebtPaid,
			Balance:  totals.Received.Sub(totals.DebtPaid),
		})
	}

	return points
}

// TrendPoint holds per-category debt sums for one month. Categories with a zero sum are
// left out of the map.
type TrendPoint struct {
	Period     string                     `json:"period"`
	Label      string                     `json:"label"`
	Categories map[string]decimal.Decimal `json:"categories"`
}

// CategoryTrends sums debt entries per category for each of the monthsBack months ending
// with now's month, restricted to the first top categories of debtCategories.
func CategoryTrends(entries []domain.Entry, debtCategories []string, now time.Time, monthsBack, top int) []TrendPoint {
	if top > len(debtCategories) {
		top = len(debtCategories)
	}
	if top < 0 {
		top = 0
	}
	tracked := make(map[string]bool, top)
	for _, c := range debtCategories[:top] {
		tracked[c] = true
	}

	months := trailingMonths(now, monthsBack)
	points := make([]TrendPoint, 0, len(months))

	for _, m := range months {
		period := PeriodOf(m)
		sums := make(map[string]decimal.Decimal)

		for _, e := range FilterByPeriod(entries, period) {
			if e.Type != domain.EntryTypeDebt || !tracked[e.Category] {
				continue
			}
			sums[e.Category] = sums[e.Category].Add(e.Value)
		}

		for c, v := range sums {
			if v.IsZero() {
				delete(sums, c)
			}
		}

		points = append(points, TrendPoint{
			Period:     period,
			Label:      MonthLabel(m),
			Categories: sums,
		})
	}

	return points
}
