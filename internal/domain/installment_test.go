package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func fixedClock() time.Time {
	return time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
}

func TestExpandInstallments_Single(t *testing.T) {
	entries, err := ExpandInstallments(ExpandInput{
		Type:         EntryTypeDebt,
		Value:        decimal.NewFromInt(250),
		Date:         "2024-05-10",
		Category:     "Housing",
		Description:  "Rent",
		Status:       StatusPaid,
		Installments: 1,
	}, sequentialIDs(), fixedClock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.Status != StatusPaid {
		t.Fatalf("expected caller status to be kept, got %s", e.Status)
	}
	if e.Description != "Rent" {
		t.Fatalf("expected description without suffix, got %q", e.Description)
	}
	if e.Deleted {
		t.Fatalf("expected new entry not to be deleted")
	}
	if !e.Value.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected value 250, got %s", e.Value)
	}
}

func TestExpandInstallments_LeapYearClampCarriesForward(t *testing.T) {
	entries, err := ExpandInstallments(ExpandInput{
		Type:         EntryTypeDebt,
		Value:        decimal.NewFromInt(300),
		Date:         "2024-01-31",
		Category:     "Leisure",
		Description:  "TV",
		Status:       StatusPaid,
		Installments: 3,
	}, sequentialIDs(), fixedClock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"2024-01-31", "2024-02-29", "2024-03-29"}
	for i, e := range entries {
		if e.Date != want[i] {
			t.Errorf("installment %d: expected date %s, got %s", i+1, want[i], e.Date)
		}
		if e.Status != StatusPending {
			t.Errorf("installment %d: expected pending status, got %s", i+1, e.Status)
		}
		if wantDesc := fmt.Sprintf("TV (%d/3)", i+1); e.Description != wantDesc {
			t.Errorf("installment %d: expected description %q, got %q", i+1, wantDesc, e.Description)
		}
	}
}

func TestExpandInstallments_DistinctIDs(t *testing.T) {
	entries, err := ExpandInstallments(ExpandInput{
		Type:         EntryTypeIncome,
		Value:        decimal.NewFromInt(1200),
		Date:         "2025-03-05",
		Category:     "Freelance",
		Description:  "Contract",
		Installments: 12,
	}, sequentialIDs(), fixedClock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		if seen[e.ID] {
			t.Fatalf("duplicate id %s", e.ID)
		}
		seen[e.ID] = true
		if e.CreatedAt.IsZero() {
			t.Fatalf("expected createdAt to be set")
		}
	}

	if entries[11].Date != "2026-02-05" {
		t.Fatalf("expected last installment in 2026-02, got %s", entries[11].Date)
	}
}

func TestExpandInstallments_ValuesSumToOriginal(t *testing.T) {
	tests := []struct {
		value string
		n     int
	}{
		{"100", 3},
		{"1000", 7},
		{"99.99", 12},
		{"0.10", 3},
		{"1234.5678", 60},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.value, tt.n), func(t *testing.T) {
			value := decimal.RequireFromString(tt.value)
			entries, err := ExpandInstallments(ExpandInput{
				Type:         EntryTypeDebt,
				Value:        value,
				Date:         "2025-01-10",
				Category:     "Food",
				Description:  "Groceries",
				Installments: tt.n,
			}, sequentialIDs(), fixedClock)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(entries) != tt.n {
				t.Fatalf("expected %d entries, got %d", tt.n, len(entries))
			}

			sum := decimal.Zero
			for _, e := range entries {
				if !e.Value.IsPositive() {
					t.Fatalf("installment value must be positive, got %s", e.Value)
				}
				sum = sum.Add(e.Value)
			}

			epsilon := decimal.RequireFromString("0.000001")
			if sum.Sub(value).Abs().GreaterThan(epsilon) {
				t.Fatalf("expected sum %s, got %s", value, sum)
			}
		})
	}
}

func TestExpandInstallments_RemainderOnLastInstallment(t *testing.T) {
	entries, err := ExpandInstallments(ExpandInput{
		Type:         EntryTypeDebt,
		Value:        decimal.NewFromInt(100),
		Date:         "2025-01-10",
		Category:     "Food",
		Description:  "Groceries",
		Installments: 3,
	}, sequentialIDs(), fixedClock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"33.33", "33.33", "33.34"}
	for i, e := range entries {
		if !e.Value.Equal(decimal.RequireFromString(want[i])) {
			t.Errorf("installment %d: expected %s, got %s", i+1, want[i], e.Value)
		}
	}
}

func TestExpandInstallments_LongDescriptionKeepsMarker(t *testing.T) {
	desc := strings.Repeat("x", 195)
	entries, err := ExpandInstallments(ExpandInput{
		Type:         EntryTypeDebt,
		Value:        decimal.NewFromInt(1200),
		Date:         "2025-01-10",
		Category:     "Electronics",
		Description:  desc,
		Installments: 12,
	}, sequentialIDs(), fixedClock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 12 {
		t.Fatalf("expected 12 installments, got %d", len(entries))
	}

	for i, e := range entries {
		want := fmt.Sprintf("%s (%d/12)", desc, i+1)
		if e.Description != want {
			t.Errorf("installment %d: expected description ending %q, got %q", i+1, want[len(desc):], e.Description)
		}
	}
	if !strings.HasSuffix(entries[11].Description, " (12/12)") {
		t.Errorf("expected last marker (12/12), got %q", entries[11].Description)
	}
}

func TestExpandInstallments_Rejections(t *testing.T) {
	base := ExpandInput{
		Type:         EntryTypeDebt,
		Value:        decimal.NewFromInt(100),
		Date:         "2025-01-10",
		Category:     "Food",
		Description:  "Groceries",
		Installments: 2,
	}

	tests := []struct {
		name   string
		mutate func(*ExpandInput)
		want   error
	}{
		{"zero installments", func(in *ExpandInput) { in.Installments = 0 }, ErrInvalidInstallmentCount},
		{"negative installments", func(in *ExpandInput) { in.Installments = -3 }, ErrInvalidInstallmentCount},
		{"value too small to split", func(in *ExpandInput) { in.Value = decimal.RequireFromString("0.01") }, ErrInvalidEntry},
		{"five cents over ten", func(in *ExpandInput) { in.Value = decimal.RequireFromString("0.05"); in.Installments = 10 }, ErrInvalidEntry},
		{"base description too long", func(in *ExpandInput) { in.Description = strings.Repeat("x", MaxDescriptionLength+1) }, ErrInvalidEntry},
		{"bad date", func(in *ExpandInput) { in.Date = "2025-02-30" }, ErrInvalidEntry},
		{"zero value", func(in *ExpandInput) { in.Value = decimal.Zero }, ErrInvalidEntry},
		{"empty category", func(in *ExpandInput) { in.Category = "  " }, ErrInvalidEntry},
		{"empty description single", func(in *ExpandInput) { in.Installments = 1; in.Description = "" }, ErrInvalidEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := ExpandInstallments(in, sequentialIDs(), fixedClock)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		start  string
		months int
		want   string
	}{
		{"2024-01-31", 1, "2024-02-29"},
		{"2023-01-31", 1, "2023-02-28"},
		{"2024-01-31", 2, "2024-03-31"},
		{"2024-03-31", 1, "2024-04-30"},
		{"2024-11-30", 3, "2025-02-28"},
		{"2024-12-15", 1, "2025-01-15"},
		{"2024-05-10", 0, "2024-05-10"},
	}

	for _, tt := range tests {
		start, _ := ParseDate(tt.start)
		if got := FormatDate(AddMonthsClamped(start, tt.months)); got != tt.want {
			t.Errorf("AddMonthsClamped(%s, %d) = %s, want %s", tt.start, tt.months, got, tt.want)
		}
	}
}
