// Package grouping reunites installment siblings into display bundles.
package grouping

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
)

var installmentSuffix = regexp.MustCompile(`\s*\(\d+/\d+\)\s*$`)

// Group is one logical transaction: either all installments sharing a base name, or a
// single non-installment entry.
type Group struct {
	Key           string
	BaseName      string
	IsInstallment bool
	Members       []domain.Entry
}

// BaseName strips a trailing "(k/N)" marker and surrounding whitespace.
func BaseName(description string) string {
	return strings.TrimSpace(installmentSuffix.ReplaceAllString(description, ""))
}

// IsInstallment reports whether description ends with a "(k/N)" marker.
func IsInstallment(description string) bool {
	return installmentSuffix.MatchString(description)
}

// GroupEntries bundles entries in order of first appearance. Installment members with the same
// base name share one group; every other entry gets its own group keyed by base name and
// ID, so unrelated entries with the same description never merge.
func GroupEntries(entries []domain.Entry) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0)

	for _, e := range entries {
		base := BaseName(e.Description)
		installment := IsInstallment(e.Description)

		key := base
		if !installment {
			key = base + "#" + e.ID
		}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{
				Key:           key,
				BaseName:      base,
				IsInstallment: installment,
			})
		}
		groups[i].Members = append(groups[i].Members, e)
	}

	return groups
}

// Flatten returns the members of all groups in group order.
func Flatten(groups []Group) []domain.Entry {
	out := make([]domain.Entry, 0)
	for _, g := range groups {
		out = append(out, g.Members...)
	}
	return out
}

// Total is the summed value of the members.
func (g Group) Total() decimal.Decimal {
	total := decimal.Zero
	for _, m := range g.Members {
		total = total.Add(m.Value)
	}
	return total
}

// PendingCount is the number of members still pending.
func (g Group) PendingCount() int {
	n := 0
	for _, m := range g.Members {
		if m.Status == domain.StatusPending {
			n++
		}
	}
	return n
}

// SettledCount is the number of paid or received members.
func (g Group) SettledCount() int {
	n := 0
	for _, m := range g.Members {
		if m.IsSettled() {
			n++
		}
	}
	return n
}
