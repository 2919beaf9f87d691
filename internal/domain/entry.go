package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType distinguishes money coming in from money going out.
type EntryType string

const (
	EntryTypeIncome EntryType = "income"
	EntryTypeDebt   EntryType = "debt"
)

// IsValid reports whether t is a known entry type.
func (t EntryType) IsValid() bool {
	return t == EntryTypeIncome || t == EntryTypeDebt
}

// EntryStatus is the settlement state of an entry. Legal values depend on the entry type.
type EntryStatus string

const (
	StatusPending  EntryStatus = "pending"
	StatusPaid     EntryStatus = "paid"
	StatusReceived EntryStatus = "received"
)

// DateLayout is the calendar-date layout used for Entry.Date.
const DateLayout = "2006-01-02"

// Entry is a single ledger line item: an income or a debt.
//
// Date is kept as the stored string so that records with a malformed date can still
// flow through listings and be excluded from date-dependent views instead of failing.
type Entry struct {
	ID          string
	Type        EntryType
	Value       decimal.Decimal
	Date        string
	Category    string
	Description string
	Status      EntryStatus
	Recurrent   bool
	CreatedAt   time.Time
	Deleted     bool
	DeletedAt   *time.Time
}

// NewEntryParams holds the caller-supplied fields of a new entry.
type NewEntryParams struct {
	ID          string
	Type        EntryType
	Value       decimal.Decimal
	Date        string
	Category    string
	Description string
	Status      EntryStatus
	Recurrent   bool
	CreatedAt   time.Time
}

// NewEntry validates params and builds an Entry. An empty status defaults to pending.
func NewEntry(p NewEntryParams) (Entry, error) {
	if p.Status == "" {
		p.Status = StatusPending
	}

	e := Entry{
		ID:          p.ID,
		Type:        p.Type,
		Value:       p.Value,
		Date:        strings.TrimSpace(p.Date),
		Category:    strings.TrimSpace(p.Category),
		Description: strings.TrimSpace(p.Description),
		Status:      p.Status,
		Recurrent:   p.Recurrent,
		CreatedAt:   p.CreatedAt,
	}

	if err := e.Validate(); err != nil {
		return Entry{}, err
	}

	return e, nil
}

// Validate checks the construction-time invariants of an entry.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidEntry)
	}

	if !e.Type.IsValid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEntry, e.Type)
	}

	if err := ValidateValue(e.Value); err != nil {
		return err
	}

	if _, err := ParseDate(e.Date); err != nil {
		return err
	}

	if strings.TrimSpace(e.Category) == "" {
		return fmt.Errorf("%w: category cannot be empty", ErrInvalidEntry)
	}

	if err := ValidateDescription(e.Description); err != nil {
		return err
	}

	if !StatusAllowed(e.Type, e.Status) {
		return fmt.Errorf("%w: status %q is not valid for %s", ErrInvalidEntry, e.Status, e.Type)
	}

	return nil
}

// StatusAllowed reports whether status is legal for the entry type.
func StatusAllowed(t EntryType, status EntryStatus) bool {
	switch t {
	case EntryTypeDebt:
		return status == StatusPending || status == StatusPaid
	case EntryTypeIncome:
		return status == StatusPending || status == StatusReceived
	default:
		return false
	}
}

// Time returns the parsed calendar date and whether it was valid.
func (e Entry) Time() (time.Time, bool) {
	t, err := ParseDate(e.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsSettled reports whether the entry has been paid or received.
func (e Entry) IsSettled() bool {
	return e.Status == StatusPaid || e.Status == StatusReceived
}

// IsVisible reports whether an entry takes part in listings and aggregates.
// Tombstoned entries are kept in storage but are never shown.
func IsVisible(e Entry) bool {
	return !e.Deleted
}

// Visible returns the entries that are not tombstoned, preserving order.
func Visible(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if IsVisible(e) {
			out = append(out, e)
		}
	}
	return out
}

// SoftDelete marks the entry as deleted at the given time.
func (e *Entry) SoftDelete(at time.Time) error {
	if e.Deleted {
		return ErrEntryNotFound
	}
	at = at.UTC()
	e.Deleted = true
	e.DeletedAt = &at
	return nil
}
