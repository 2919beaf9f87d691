package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/grouping"
	"github.com/iho/pocketledger/internal/report"
)

// EntryUseCase handles entry business logic.
type EntryUseCase struct {
	store    EntryStore
	snapshot *Snapshot
	idGen    IDGenerator
	clock    Clock
	metrics  Metrics
	logger   zerolog.Logger
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(
	store EntryStore,
	snapshot *Snapshot,
	idGen IDGenerator,
	clock Clock,
	metrics Metrics,
	logger zerolog.Logger,
) *EntryUseCase {
	return &EntryUseCase{
		store:    store,
		snapshot: snapshot,
		idGen:    idGen,
		clock:    clock,
		metrics:  metrics,
		logger:   logger,
	}
}

// CreateEntryInput represents input for creating an entry, optionally split into
// installments.
type CreateEntryInput struct {
	Type         domain.EntryType
	Value        decimal.Decimal
	Date         string
	Category     string
	Description  string
	Status       domain.EntryStatus
	Recurrent    bool
	Installments int
}

// CreateEntry expands the input into one or more entries and persists them. Stores that
// implement BatchEntryWriter write the batch atomically; otherwise a failure part way
// through returns a *PartialWriteError naming the entries already written.
func (uc *EntryUseCase) CreateEntry(ctx context.Context, input CreateEntryInput) ([]domain.Entry, error) {
	if input.Installments == 0 {
		input.Installments = 1
	}

	if err := domain.ValidateInstallments(input.Installments); err != nil {
		return nil, err
	}

	entries, err := domain.ExpandInstallments(domain.ExpandInput{
		Type:         input.Type,
		Value:        input.Value,
		Date:         input.Date,
		Category:     input.Category,
		Description:  input.Description,
		Status:       input.Status,
		Recurrent:    input.Recurrent,
		Installments: input.Installments,
	}, uc.idGen.Generate, uc.clock.Now)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	if batch, ok := uc.store.(BatchEntryWriter); ok && len(entries) > 1 {
		if err := batch.PutBatch(ctx, entries); err != nil {
			uc.metrics.PersistenceFailed("create_entry")
			return nil, persistenceError("write installments", err)
		}
	} else {
		for i, e := range entries {
			if err := uc.store.Put(ctx, e); err != nil {
				uc.metrics.PersistenceFailed("create_entry")
				wrapped := persistenceError("write entry", err)
				if i == 0 {
					return nil, wrapped
				}

				persisted := make([]string, i)
				for j := range entries[:i] {
					persisted[j] = entries[j].ID
				}
				uc.snapshot.Apply(entries[:i]...)
				uc.logger.Error().Err(err).
					Strs("persisted", persisted).
					Int("failed_index", i).
					Msg("installment batch partially written")

				return nil, &PartialWriteError{Persisted: persisted, FailedIndex: i, Err: wrapped}
			}
		}
	}

	uc.snapshot.Apply(entries...)
	uc.metrics.EntriesCreated(input.Type, len(entries))
	uc.logger.Info().
		Str("type", string(input.Type)).
		Int("installments", len(entries)).
		Str("first_id", entries[0].ID).
		Msg("entry created")

	return entries, nil
}

// ToggleStatus flips a visible entry between pending and its settled status.
func (uc *EntryUseCase) ToggleStatus(ctx context.Context, id string) (domain.Entry, error) {
	entry, err := uc.visibleEntry(id)
	if err != nil {
		return domain.Entry{}, err
	}

	if err := entry.Toggle(); err != nil {
		return domain.Entry{}, err
	}

	if err := uc.save(ctx, entry, "toggle_status"); err != nil {
		return domain.Entry{}, err
	}

	uc.metrics.StatusToggled(entry.Status)
	return entry, nil
}

// DeleteEntry tombstones a visible entry.
func (uc *EntryUseCase) DeleteEntry(ctx context.Context, id string) (domain.Entry, error) {
	entry, err := uc.visibleEntry(id)
	if err != nil {
		return domain.Entry{}, err
	}

	if err := entry.SoftDelete(uc.clock.Now()); err != nil {
		return domain.Entry{}, err
	}

	if err := uc.save(ctx, entry, "delete_entry"); err != nil {
		return domain.Entry{}, err
	}

	uc.metrics.EntryDeleted()
	uc.logger.Info().Str("id", id).Msg("entry deleted")
	return entry, nil
}

// ListEntriesInput filters the entry listing. Empty fields match everything.
type ListEntriesInput struct {
	Period string
	Type   domain.EntryType
}

// ListEntries returns visible entries matching the filter, newest date first. Entries with
// a malformed date sort last.
func (uc *EntryUseCase) ListEntries(_ context.Context, input ListEntriesInput) ([]domain.Entry, error) {
	entries, _ := uc.snapshot.Visible()

	entries, err := filterEntries(entries, input)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ti, okI := entries[i].Time()
		tj, okJ := entries[j].Time()
		switch {
		case okI && okJ:
			return ti.After(tj)
		default:
			return okI && !okJ
		}
	})

	return entries, nil
}

// ListGroups returns the visible entries matching the filter bundled by installment
// series, in order of first appearance.
func (uc *EntryUseCase) ListGroups(_ context.Context, input ListEntriesInput) ([]grouping.Group, error) {
	entries, _ := uc.snapshot.Visible()

	entries, err := filterEntries(entries, input)
	if err != nil {
		return nil, err
	}

	return grouping.GroupEntries(entries), nil
}

func filterEntries(entries []domain.Entry, input ListEntriesInput) ([]domain.Entry, error) {
	if input.Period != "" {
		if _, err := report.ParsePeriod(input.Period); err != nil {
			return nil, err
		}
		entries = report.FilterByPeriod(entries, input.Period)
	}

	if input.Type != "" {
		if !input.Type.IsValid() {
			return nil, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidEntry, input.Type)
		}
		entries = report.FilterByType(entries, input.Type)
	}

	return entries, nil
}

func (uc *EntryUseCase) visibleEntry(id string) (domain.Entry, error) {
	entry, ok := uc.snapshot.Lookup(id)
	if !ok || entry.Deleted {
		return domain.Entry{}, fmt.Errorf("%w: %s", domain.ErrEntryNotFound, id)
	}
	return entry, nil
}

func (uc *EntryUseCase) save(ctx context.Context, entry domain.Entry, op string) error {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	if err := uc.store.Put(ctx, entry); err != nil {
		uc.metrics.PersistenceFailed(op)
		return persistenceError(op, err)
	}

	uc.snapshot.Apply(entry)
	return nil
}
