package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used until the user picks one.
const DefaultCurrency = "BRL"

// Default category sets, in display order.
var (
	DefaultIncomeCategories = []string{"Salary", "Freelance", "Investments", "Gifts", "Other"}
	DefaultDebtCategories   = []string{"Housing", "Food", "Transport", "Health", "Education", "Leisure", "Utilities", "Other"}
)

// CustomCategories holds user-defined categories per entry type.
type CustomCategories struct {
	Income []string
	Debt   []string
}

// Settings are the ledger-level preferences persisted alongside the entries.
type Settings struct {
	MonthlyGoal      decimal.Decimal
	Currency         string
	CustomCategories CustomCategories
	SharedUsers      []string
}

// DefaultSettings returns the settings of a fresh ledger.
func DefaultSettings() Settings {
	return Settings{
		MonthlyGoal: decimal.Zero,
		Currency:    DefaultCurrency,
	}
}

// Validate checks currency, goal, categories and shared users.
func (s Settings) Validate() error {
	if err := ValidateCurrency(s.Currency); err != nil {
		return err
	}

	if s.MonthlyGoal.IsNegative() {
		return fmt.Errorf("%w: monthly goal cannot be negative", ErrInvalidSettings)
	}

	for _, t := range []EntryType{EntryTypeIncome, EntryTypeDebt} {
		seen := make(map[string]bool)
		for _, c := range s.CustomCategories.For(t) {
			if err := ValidateCategoryName(c); err != nil {
				return err
			}
			key := strings.ToLower(strings.TrimSpace(c))
			if seen[key] || containsFold(defaultCategories(t), c) {
				return fmt.Errorf("%w: duplicate %s category %q", ErrInvalidSettings, t, c)
			}
			seen[key] = true
		}
	}

	for _, u := range s.SharedUsers {
		if err := ValidateEmail(u); err != nil {
			return err
		}
	}

	return nil
}

// For returns the custom categories of the given type.
func (c CustomCategories) For(t EntryType) []string {
	if t == EntryTypeIncome {
		return c.Income
	}
	return c.Debt
}

// Categories returns the full category list for a type: defaults first, then custom ones.
func (s Settings) Categories(t EntryType) []string {
	defaults := defaultCategories(t)
	custom := s.CustomCategories.For(t)

	out := make([]string, 0, len(defaults)+len(custom))
	out = append(out, defaults...)
	out = append(out, custom...)
	return out
}

func defaultCategories(t EntryType) []string {
	if t == EntryTypeIncome {
		return DefaultIncomeCategories
	}
	return DefaultDebtCategories
}

func containsFold(list []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
