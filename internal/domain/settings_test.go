package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(s *Settings) {}, false},
		{"custom categories and users", func(s *Settings) {
			s.CustomCategories = CustomCategories{Income: []string{"Rental"}, Debt: []string{"Pets"}}
			s.SharedUsers = []string{"ana@example.com"}
			s.MonthlyGoal = decimal.NewFromInt(500)
		}, false},
		{"same name in both types", func(s *Settings) {
			s.CustomCategories = CustomCategories{Income: []string{"Side"}, Debt: []string{"Side"}}
		}, false},
		{"bad currency", func(s *Settings) { s.Currency = "ABC" }, true},
		{"negative goal", func(s *Settings) { s.MonthlyGoal = decimal.NewFromInt(-1) }, true},
		{"duplicate custom", func(s *Settings) { s.CustomCategories.Debt = []string{"Pets", "pets"} }, true},
		{"shadows default", func(s *Settings) { s.CustomCategories.Debt = []string{"food"} }, true},
		{"blank custom", func(s *Settings) { s.CustomCategories.Income = []string{" "} }, true},
		{"bad shared user", func(s *Settings) { s.SharedUsers = []string{"nobody"} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)

			err := s.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSettings) {
					t.Fatalf("expected ErrInvalidSettings, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSettings_Categories(t *testing.T) {
	s := DefaultSettings()
	s.CustomCategories.Debt = []string{"Pets", "Gym"}

	got := s.Categories(EntryTypeDebt)
	if len(got) != len(DefaultDebtCategories)+2 {
		t.Fatalf("unexpected category count %d", len(got))
	}
	if got[0] != DefaultDebtCategories[0] || got[len(got)-1] != "Gym" {
		t.Fatalf("expected defaults first then custom, got %v", got)
	}

	if income := s.Categories(EntryTypeIncome); len(income) != len(DefaultIncomeCategories) {
		t.Fatalf("expected only default income categories, got %v", income)
	}
}
