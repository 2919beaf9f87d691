// Package backup converts a ledger to and from its portable JSON document.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
)

// FormatVersion tags every exported document.
const FormatVersion = "1.0"

// State is everything a backup captures.
type State struct {
	Entries  []domain.Entry
	Settings domain.Settings
}

// Document is a decoded backup. Settings fields are nil when the document omits them, so
// a partial document only changes what it carries.
type Document struct {
	Entries          []domain.Entry
	MonthlyGoal      *decimal.Decimal
	CustomCategories *domain.CustomCategories
	Currency         *string
	SharedUsers      *[]string
	ExportDate       time.Time
	Version          string
}

// Export snapshots the visible entries and the settings.
func Export(state State, now time.Time) Document {
	goal := state.Settings.MonthlyGoal
	currency := state.Settings.Currency
	categories := domain.CustomCategories{
		Income: append([]string{}, state.Settings.CustomCategories.Income...),
		Debt:   append([]string{}, state.Settings.CustomCategories.Debt...),
	}
	users := append([]string{}, state.Settings.SharedUsers...)

	return Document{
		Entries:          domain.Visible(state.Entries),
		MonthlyGoal:      &goal,
		CustomCategories: &categories,
		Currency:         &currency,
		SharedUsers:      &users,
		ExportDate:       now.UTC(),
		Version:          FormatVersion,
	}
}

// ApplySettings overlays the settings present in the document on current.
func (d Document) ApplySettings(current domain.Settings) domain.Settings {
	next := current
	if d.MonthlyGoal != nil {
		next.MonthlyGoal = *d.MonthlyGoal
	}
	if d.CustomCategories != nil {
		next.CustomCategories = *d.CustomCategories
	}
	if d.Currency != nil {
		next.Currency = *d.Currency
	}
	if d.SharedUsers != nil {
		next.SharedUsers = *d.SharedUsers
	}
	return next
}

// HasSettings reports whether the document carries any settings field.
func (d Document) HasSettings() bool {
	return d.MonthlyGoal != nil || d.CustomCategories != nil || d.Currency != nil || d.SharedUsers != nil
}

type wireDocument struct {
	Transactions     json.RawMessage `json:"transactions"`
	MonthlyGoal      *jsonNumber     `json:"monthlyGoal,omitempty"`
	CustomCategories *wireCategories `json:"customCategories,omitempty"`
	Currency         *string         `json:"currency,omitempty"`
	SharedUsers      *[]string       `json:"sharedUsers,omitempty"`
	ExportDate       string          `json:"exportDate,omitempty"`
	Version          string          `json:"version,omitempty"`
}

type wireCategories struct {
	Income []string `json:"Income"`
	Debt   []string `json:"Debt"`
}

type record struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Value       jsonNumber `json:"value"`
	Date        string     `json:"date"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Recurrent   bool       `json:"recurrent"`
	CreatedAt   time.Time  `json:"createdAt"`
	Deleted     bool       `json:"deleted"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

// jsonNumber is a decimal written as a bare JSON number. It reads both bare and quoted
// numbers.
type jsonNumber struct {
	decimal.Decimal
}

func (n jsonNumber) MarshalJSON() ([]byte, error) {
	return []byte(n.Decimal.String()), nil
}

func (n *jsonNumber) UnmarshalJSON(b []byte) error {
	return n.Decimal.UnmarshalJSON(b)
}

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc Document) error {
	wire := wireDocument{
		Currency:    doc.Currency,
		SharedUsers: doc.SharedUsers,
		ExportDate:  doc.ExportDate.UTC().Format(time.RFC3339),
		Version:     doc.Version,
	}

	if doc.MonthlyGoal != nil {
		wire.MonthlyGoal = &jsonNumber{*doc.MonthlyGoal}
	}
	if doc.CustomCategories != nil {
		wire.CustomCategories = &wireCategories{
			Income: nonNil(doc.CustomCategories.Income),
			Debt:   nonNil(doc.CustomCategories.Debt),
		}
	}

	records := make([]record, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		records = append(records, toRecord(e))
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode transactions: %w", err)
	}
	wire.Transactions = raw

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(wire)
}

// Decode reads a backup document. It fails with domain.ErrInvalidBackup when the
// transaction list is missing or not an array, or when a record is unusable.
func Decode(r io.Reader) (Document, error) {
	var wire wireDocument
	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		return Document{}, fmt.Errorf("%w: %v", domain.ErrInvalidBackup, err)
	}

	trimmed := bytes.TrimSpace(wire.Transactions)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return Document{}, fmt.Errorf("%w: transactions must be an array", domain.ErrInvalidBackup)
	}

	var records []record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return Document{}, fmt.Errorf("%w: %v", domain.ErrInvalidBackup, err)
	}

	doc := Document{
		Entries:     make([]domain.Entry, 0, len(records)),
		Currency:    wire.Currency,
		SharedUsers: wire.SharedUsers,
		Version:     wire.Version,
	}

	seen := make(map[string]int, len(records))
	for i, rec := range records {
		e, err := fromRecord(rec)
		if err != nil {
			return Document{}, fmt.Errorf("%w: transaction %d: %v", domain.ErrInvalidBackup, i, err)
		}
		if first, ok := seen[e.ID]; ok {
			return Document{}, fmt.Errorf("%w: transaction %d: id %q already used by transaction %d",
				domain.ErrInvalidBackup, i, e.ID, first)
		}
		seen[e.ID] = i
		doc.Entries = append(doc.Entries, e)
	}

	if wire.MonthlyGoal != nil {
		goal := wire.MonthlyGoal.Decimal
		doc.MonthlyGoal = &goal
	}
	if wire.CustomCategories != nil {
		doc.CustomCategories = &domain.CustomCategories{
			Income: wire.CustomCategories.Income,
			Debt:   wire.CustomCategories.Debt,
		}
	}
	if wire.ExportDate != "" {
		if t, err := time.Parse(time.RFC3339, wire.ExportDate); err == nil {
			doc.ExportDate = t
		}
	}

	return doc, nil
}

func toRecord(e domain.Entry) record {
	return record{
		ID:          e.ID,
		Type:        string(e.Type),
		Value:       jsonNumber{e.Value},
		Date:        e.Date,
		Category:    e.Category,
		Description: e.Description,
		Status:      string(e.Status),
		Recurrent:   e.Recurrent,
		CreatedAt:   e.CreatedAt.UTC(),
		Deleted:     e.Deleted,
		DeletedAt:   e.DeletedAt,
	}
}

// fromRecord accepts malformed dates and cross-type statuses so stored records round-trip
// unchanged. A non-empty id, type, status and a positive value are required.
func fromRecord(rec record) (domain.Entry, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return domain.Entry{}, errors.New("missing id")
	}

	typ := domain.EntryType(rec.Type)
	if !typ.IsValid() {
		return domain.Entry{}, fmt.Errorf("unknown type %q", rec.Type)
	}

	if !rec.Value.IsPositive() {
		return domain.Entry{}, fmt.Errorf("value must be positive, got %s", rec.Value.String())
	}

	status := domain.EntryStatus(rec.Status)
	switch status {
	case domain.StatusPending, domain.StatusPaid, domain.StatusReceived:
	default:
		return domain.Entry{}, fmt.Errorf("unknown status %q", rec.Status)
	}

	return domain.Entry{
		ID:          rec.ID,
		Type:        typ,
		Value:       rec.Value.Decimal,
		Date:        rec.Date,
		Category:    rec.Category,
		Description: rec.Description,
		Status:      status,
		Recurrent:   rec.Recurrent,
		CreatedAt:   rec.CreatedAt,
		Deleted:     rec.Deleted,
		DeletedAt:   rec.DeletedAt,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
