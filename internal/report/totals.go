package report

import (
	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
)

// Totals summarises a set of entries.
type Totals struct {
	Received         decimal.Decimal `json:"received"`
	IncomePending    decimal.Decimal `json:"income_pending"`
	DebtPending      decimal.Decimal `json:"debt_pending"`
	DebtPaid         decimal.Decimal `json:"debt_paid"`
	Balance          decimal.Decimal `json:"balance"`
	ProjectedBalance decimal.Decimal `json:"projected_balance"`
}

// ComputeTotals sums entries by type and status.
//
// Income carrying the debt-only status "paid" is counted as received. NewEntry never
// produces that combination, but imported and legacy records can hold it and have always
// been reported as received. ComputeStrictTotals drops them instead.
func ComputeTotals(entries []domain.Entry) Totals {
	return computeTotals(entries, false)
}

// ComputeStrictTotals is ComputeTotals without the cross-type status leak: income is only
// received when its status is "received".
func ComputeStrictTotals(entries []domain.Entry) Totals {
	return computeTotals(entries, true)
}

func computeTotals(entries []domain.Entry, strict bool) Totals {
	t := Totals{
		Received:      decimal.Zero,
		IncomePending: decimal.Zero,
		DebtPending:   decimal.Zero,
		DebtPaid:      decimal.Zero,
	}

	for _, e := range entries {
		switch e.Type {
		case domain.EntryTypeIncome:
			switch {
			case e.Status == domain.StatusReceived:
				t.Received = t.Received.Add(e.Value)
			case e.Status == domain.StatusPaid && !strict:
				t.Received = t.Received.Add(e.Value)
			case e.Status == domain.StatusPending:
				t.IncomePending = t.IncomePending.Add(e.Value)
			}
		case domain.EntryTypeDebt:
			switch e.Status {
			case domain.StatusPending:
				t.DebtPending = t.DebtPending.Add(e.Value)
			case domain.StatusPaid:
				t.DebtPaid = t.DebtPaid.Add(e.Value)
			}
		}
	}

	t.Balance = t.Received.Sub(t.DebtPaid)
	t.ProjectedBalance = t.Received.Add(t.IncomePending).Sub(t.DebtPending).Sub(t.DebtPaid)

	return t
}
