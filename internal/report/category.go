package report

import (
	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
)

// CategoryAmount is the summed value of one category.
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// ByCategory sums the entries of type t per category, in first-seen category order.
func ByCategory(entries []domain.Entry, t domain.EntryType) []CategoryAmount {
	index := make(map[string]int)
	out := make([]CategoryAmount, 0)

	for _, e := range entries {
		if e.Type != t {
			continue
		}
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, CategoryAmount{Category: e.Category, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(e.Value)
	}

	return out
}
