package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxDescriptionLength  = 200
	MaxCategoryNameLength = 50
	MinInstallments       = 1
	MaxInstallments       = 60
	MaxEntryValue         = "1000000000000" // 1 trillion
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ParseValue parses a user-entered amount. Both "12.34" and "12,34" are accepted.
func ParseValue(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: value is required", ErrInvalidEntry)
	}

	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: value %q is not a number", ErrInvalidEntry, s)
	}

	if err := ValidateValue(v); err != nil {
		return decimal.Zero, err
	}

	return v, nil
}

// ValidateValue validates an entry amount.
func ValidateValue(v decimal.Decimal) error {
	if v.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: value must be positive", ErrInvalidEntry)
	}

	maxValue, _ := decimal.NewFromString(MaxEntryValue)
	if v.GreaterThan(maxValue) {
		return fmt.Errorf("%w: value exceeds %s", ErrInvalidEntry, MaxEntryValue)
	}

	return nil
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not a valid calendar date", ErrInvalidEntry, s)
	}
	return t, nil
}

// FormatDate renders t as a YYYY-MM-DD calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ValidateDescription validates an entry description.
func ValidateDescription(desc string) error {
	desc = strings.TrimSpace(desc)

	if desc == "" {
		return fmt.Errorf("%w: description cannot be empty", ErrInvalidEntry)
	}

	if len([]rune(desc)) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidEntry, MaxDescriptionLength)
	}

	return nil
}

// ValidateInstallments checks the installment count policy boundary.
func ValidateInstallments(n int) error {
	if n < MinInstallments || n > MaxInstallments {
		return fmt.Errorf("%w: must be between %d and %d, got %d",
			ErrInvalidInstallmentCount, MinInstallments, MaxInstallments, n)
	}
	return nil
}

// ValidateCategoryName validates a custom category label.
func ValidateCategoryName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: category name cannot be empty", ErrInvalidSettings)
	}

	if len([]rune(name)) > MaxCategoryNameLength {
		return fmt.Errorf("%w: category name exceeds %d characters", ErrInvalidSettings, MaxCategoryNameLength)
	}

	return nil
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrInvalidSettings, currency)
	}

	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return fmt.Errorf("%w: %q is not a valid email address", ErrInvalidSettings, email)
	}

	return nil
}
