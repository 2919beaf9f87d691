package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validParams() NewEntryParams {
	return NewEntryParams{
		ID:          "e1",
		Type:        EntryTypeDebt,
		Value:       decimal.NewFromFloat(42.5),
		Date:        "2025-06-05",
		Category:    "Food",
		Description: "Market",
		CreatedAt:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewEntry(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*NewEntryParams)
		wantErr bool
	}{
		{"valid debt", func(p *NewEntryParams) {}, false},
		{"valid income received", func(p *NewEntryParams) { p.Type = EntryTypeIncome; p.Status = StatusReceived }, false},
		{"zero value", func(p *NewEntryParams) { p.Value = decimal.Zero }, true},
		{"negative value", func(p *NewEntryParams) { p.Value = decimal.NewFromInt(-1) }, true},
		{"invalid date", func(p *NewEntryParams) { p.Date = "2025-13-01" }, true},
		{"garbage date", func(p *NewEntryParams) { p.Date = "yesterday" }, true},
		{"blank category", func(p *NewEntryParams) { p.Category = "   " }, true},
		{"blank description", func(p *NewEntryParams) { p.Description = "\t" }, true},
		{"description too long", func(p *NewEntryParams) { p.Description = strings.Repeat("x", MaxDescriptionLength+1) }, true},
		{"unknown type", func(p *NewEntryParams) { p.Type = "transfer" }, true},
		{"debt cannot be received", func(p *NewEntryParams) { p.Status = StatusReceived }, true},
		{"income cannot be paid", func(p *NewEntryParams) { p.Type = EntryTypeIncome; p.Status = StatusPaid }, true},
		{"missing id", func(p *NewEntryParams) { p.ID = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)

			_, err := NewEntry(p)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEntry) {
					t.Fatalf("expected ErrInvalidEntry, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewEntry_DefaultsToPending(t *testing.T) {
	e, err := NewEntry(validParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Status != StatusPending {
		t.Fatalf("expected pending, got %s", e.Status)
	}
}

func TestVisible(t *testing.T) {
	now := time.Now()
	entries := []Entry{
		{ID: "a"},
		{ID: "b", Deleted: true, DeletedAt: &now},
		{ID: "c"},
		{ID: "d", Deleted: true},
	}

	visible := Visible(entries)
	if len(visible) != 2 || visible[0].ID != "a" || visible[1].ID != "c" {
		t.Fatalf("expected [a c], got %+v", visible)
	}

	for _, e := range entries {
		if IsVisible(e) == e.Deleted {
			t.Fatalf("IsVisible(%s) must be the negation of Deleted", e.ID)
		}
	}
}

func TestEntry_SoftDelete(t *testing.T) {
	e := Entry{ID: "a"}
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	if err := e.SoftDelete(at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !e.Deleted || e.DeletedAt == nil || !e.DeletedAt.Equal(at) {
		t.Fatalf("expected tombstone at %s, got %+v", at, e)
	}

	if err := e.SoftDelete(at); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound on second delete, got %v", err)
	}
}

func TestEntry_Time(t *testing.T) {
	if _, ok := (Entry{Date: "2025-02-29"}).Time(); ok {
		t.Fatalf("2025-02-29 is not a calendar date")
	}

	got, ok := (Entry{Date: "2024-02-29"}).Time()
	if !ok || got.Day() != 29 {
		t.Fatalf("expected leap day to parse, got %v %v", got, ok)
	}
}
