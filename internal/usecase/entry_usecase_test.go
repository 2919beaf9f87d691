package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
	"github.com/iho/pocketledger/internal/usecase/mocks"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newEntryUseCase(t *testing.T, store usecase.EntryStore) (*usecase.EntryUseCase, *usecase.Snapshot) {
	t.Helper()

	idGen := mocks.NewSequenceIDGenerator("id")
	snapshot := usecase.NewSnapshot(mocks.NewSequenceIDGenerator("v"))
	stop, err := snapshot.Sync(context.Background(), store, zerolog.Nop())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	t.Cleanup(stop)

	uc := usecase.NewEntryUseCase(store, snapshot, idGen, mocks.FixedClock{At: testNow}, usecase.NopMetrics{}, zerolog.Nop())
	return uc, snapshot
}

func debt(id, value, date, desc string, status domain.EntryStatus) domain.Entry {
	return domain.Entry{
		ID:          id,
		Type:        domain.EntryTypeDebt,
		Value:       decimal.RequireFromString(value),
		Date:        date,
		Category:    "Housing",
		Description: desc,
		Status:      status,
		CreatedAt:   testNow,
	}
}

func TestEntryUseCase_CreateEntry(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.CreateEntryInput
		wantCount   int
		wantErr     error
		wantLastVal string
	}{
		{
			name: "single entry",
			input: usecase.CreateEntryInput{
				Type: domain.EntryTypeIncome, Value: decimal.NewFromInt(3000), Date: "2025-03-05",
				Category: "Salary", Description: "March salary", Status: domain.StatusReceived,
			},
			wantCount:   1,
			wantLastVal: "3000",
		},
		{
			name: "three installments",
			input: usecase.CreateEntryInput{
				Type: domain.EntryTypeDebt, Value: decimal.NewFromInt(100), Date: "2025-01-31",
				Category: "Leisure", Description: "TV", Installments: 3,
			},
			wantCount:   3,
			wantLastVal: "33.34",
		},
		{
			name: "too many installments",
			input: usecase.CreateEntryInput{
				Type: domain.EntryTypeDebt, Value: decimal.NewFromInt(100), Date: "2025-01-31",
				Category: "Leisure", Description: "TV", Installments: 61,
			},
			wantErr: domain.ErrInvalidInstallmentCount,
		},
		{
			name: "empty description",
			input: usecase.CreateEntryInput{
				Type: domain.EntryTypeDebt, Value: decimal.NewFromInt(10), Date: "2025-01-31",
				Category: "Food",
			},
			wantErr: domain.ErrInvalidEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewFakeEntryStore()
			uc, snapshot := newEntryUseCase(t, store)

			entries, err := uc.CreateEntry(context.Background(), tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if store.Puts() != 0 {
					t.Errorf("expected no writes, got %d", store.Puts())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(entries) != tt.wantCount {
				t.Fatalf("expected %d entries, got %d", tt.wantCount, len(entries))
			}
			if got := entries[len(entries)-1].Value.String(); got != tt.wantLastVal {
				t.Errorf("expected last value %s, got %s", tt.wantLastVal, got)
			}
			if store.Puts() != tt.wantCount {
				t.Errorf("expected %d writes, got %d", tt.wantCount, store.Puts())
			}

			visible, _ := snapshot.Visible()
			if len(visible) != tt.wantCount {
				t.Errorf("expected %d entries in snapshot, got %d", tt.wantCount, len(visible))
			}
		})
	}
}

func TestEntryUseCase_CreateEntry_UsesBatchWriter(t *testing.T) {
	store := mocks.NewFakeBatchEntryStore()
	uc, _ := newEntryUseCase(t, store)

	entries, err := uc.CreateEntry(context.Background(), usecase.CreateEntryInput{
		Type: domain.EntryTypeDebt, Value: decimal.NewFromInt(90), Date: "2025-03-01",
		Category: "Housing", Description: "Sofa", Installments: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.Batches() != 1 {
		t.Errorf("expected one batch write, got %d", store.Batches())
	}
	if store.Puts() != 0 {
		t.Errorf("expected no single writes, got %d", store.Puts())
	}
	if entries[2].Date != "2025-05-01" {
		t.Errorf("expected third due date 2025-05-01, got %s", entries[2].Date)
	}
}

func TestEntryUseCase_CreateEntry_BatchFailure(t *testing.T) {
	store := mocks.NewFakeBatchEntryStore()
	store.PutBatchFunc = func(ctx context.Context, entries []domain.Entry) error {
		return errors.New("tx aborted")
	}
	uc, snapshot := newEntryUseCase(t, store)

	_, err := uc.CreateEntry(context.Background(), usecase.CreateEntryInput{
		Type: domain.EntryTypeDebt, Value: decimal.NewFromInt(90), Date: "2025-03-01",
		Category: "Housing", Description: "Sofa", Installments: 3,
	})
	if !errors.Is(err, domain.ErrPersistenceFailure) {
		t.Fatalf("expected persistence failure, got %v", err)
	}

	var partial *usecase.PartialWriteError
	if errors.As(err, &partial) {
		t.Error("atomic batch must not report a partial write")
	}

	visible, _ := snapshot.Visible()
	if len(visible) != 0 {
		t.Errorf("expected empty snapshot, got %d entries", len(visible))
	}
}

func TestEntryUseCase_CreateEntry_PartialWrite(t *testing.T) {
	store := mocks.NewFakeEntryStore()
	calls := 0
	store.PutFunc = func(ctx context.Context, entry domain.Entry) error {
		calls++
		if calls == 3 {
			return errors.New("connection reset")
		}
		return nil
	}
	uc, snapshot := newEntryUseCase(t, store)

	_, err := uc.CreateEntry(context.Background(), usecase.CreateEntryInput{
		Type: domain.EntryTypeDebt, Value: decimal.NewFromInt(400), Date: "2025-03-01",
		Category: "Housing", Description: "Bed", Installments: 4,
	})

	var partial *usecase.PartialWriteError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialWriteError, got %v", err)
	}
	if !errors.Is(err, domain.ErrPersistenceFailure) {
		t.Errorf("expected error to wrap ErrPersistenceFailure")
	}
	if partial.FailedIndex != 2 {
		t.Errorf("expected failed index 2, got %d", partial.FailedIndex)
	}
	if len(partial.Persisted) != 2 {
		t.Errorf("expected 2 persisted ids, got %v", partial.Persisted)
	}

	visible, _ := snapshot.Visible()
	if len(visible) != 2 {
		t.Errorf("expected the 2 persisted entries in snapshot, got %d", len(visible))
	}
}

func TestEntryUseCase_CreateEntry_RecordsMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockEntryStore(ctrl)
	metrics := mocks.NewMockMetrics(ctrl)

	store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	metrics.EXPECT().PersistenceFailed("create_entry")

	snapshot := usecase.NewSnapshot(mocks.NewSequenceIDGenerator("v"))
	uc := usecase.NewEntryUseCase(store, snapshot, mocks.NewSequenceIDGenerator("id"),
		mocks.FixedClock{At: testNow}, metrics, zerolog.Nop())

	_, err := uc.CreateEntry(context.Background(), usecase.CreateEntryInput{
		Type: domain.EntryTypeDebt, Value: decimal.NewFromInt(10), Date: "2025-03-01",
		Category: "Food", Description: "Lunch",
	})
	if !errors.Is(err, domain.ErrPersistenceFailure) {
		t.Fatalf("expected persistence failure, got %v", err)
	}

	var partial *usecase.PartialWriteError
	if errors.As(err, &partial) {
		t.Error("failure on the first write is not a partial write")
	}
}

func TestEntryUseCase_ToggleStatus(t *testing.T) {
	store := mocks.NewFakeEntryStore(
		debt("a", "10", "2025-03-01", "Rent", domain.StatusPending),
	)
	uc, _ := newEntryUseCase(t, store)
	ctx := context.Background()

	entry, err := uc.ToggleStatus(ctx, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Status != domain.StatusPaid {
		t.Errorf("expected paid, got %s", entry.Status)
	}

	entry, err = uc.ToggleStatus(ctx, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Status != domain.StatusPending {
		t.Errorf("expected pending after second toggle, got %s", entry.Status)
	}

	stored, _ := store.Get("a")
	if stored.Status != domain.StatusPending {
		t.Errorf("expected stored status pending, got %s", stored.Status)
	}

	if _, err := uc.ToggleStatus(ctx, "missing"); !errors.Is(err, domain.ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestEntryUseCase_ToggleStatus_CrossTypeStatus(t *testing.T) {
	bad := debt("a", "10", "2025-03-01", "Rent", domain.StatusReceived)
	store := mocks.NewFakeEntryStore(bad)
	uc, _ := newEntryUseCase(t, store)

	if _, err := uc.ToggleStatus(context.Background(), "a"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if store.Puts() != 0 {
		t.Error("rejected toggle must not write")
	}
}

func TestEntryUseCase_DeleteEntry(t *testing.T) {
	store := mocks.NewFakeEntryStore(
		debt("a", "10", "2025-03-01", "Rent", domain.StatusPending),
		debt("b", "20", "2025-03-02", "Water", domain.StatusPending),
	)
	uc, snapshot := newEntryUseCase(t, store)
	ctx := context.Background()

	deleted, err := uc.DeleteEntry(ctx, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted.Deleted || deleted.DeletedAt == nil || !deleted.DeletedAt.Equal(testNow) {
		t.Errorf("expected tombstone stamped at %v, got %+v", testNow, deleted)
	}

	stored, ok := store.Get("a")
	if !ok || !stored.Deleted {
		t.Error("expected the tombstone to be persisted, not removed")
	}

	visible, _ := snapshot.Visible()
	if len(visible) != 1 || visible[0].ID != "b" {
		t.Errorf("expected only b to remain visible, got %v", visible)
	}

	if _, err := uc.DeleteEntry(ctx, "a"); !errors.Is(err, domain.ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound on second delete, got %v", err)
	}
	if _, err := uc.ToggleStatus(ctx, "a"); !errors.Is(err, domain.ErrEntryNotFound) {
		t.Errorf("expected deleted entry to be untoggleable, got %v", err)
	}
}

func TestEntryUseCase_ListEntries(t *testing.T) {
	income := domain.Entry{
		ID: "i", Type: domain.EntryTypeIncome, Value: decimal.NewFromInt(5), Date: "2025-03-20",
		Category: "Salary", Description: "Bonus", Status: domain.StatusPending, CreatedAt: testNow,
	}
	tomb := debt("t", "1", "2025-03-15", "Gone", domain.StatusPending)
	tomb.Deleted = true

	store := mocks.NewFakeEntryStore(
		debt("a", "10", "2025-03-01", "Rent", domain.StatusPending),
		debt("bad", "10", "not-a-date", "Broken", domain.StatusPending),
		debt("b", "20", "2025-03-12", "Water", domain.StatusPending),
		debt("c", "30", "2025-02-12", "Gas", domain.StatusPaid),
		income,
		tomb,
	)
	uc, _ := newEntryUseCase(t, store)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   usecase.ListEntriesInput
		wantIDs []string
		wantErr error
	}{
		{name: "all newest first", input: usecase.ListEntriesInput{}, wantIDs: []string{"i", "b", "a", "c", "bad"}},
		{name: "period", input: usecase.ListEntriesInput{Period: "2025-03"}, wantIDs: []string{"i", "b", "a"}},
		{name: "period and type", input: usecase.ListEntriesInput{Period: "2025-03", Type: domain.EntryTypeDebt}, wantIDs: []string{"b", "a"}},
		{name: "bad period", input: usecase.ListEntriesInput{Period: "March"}, wantErr: domain.ErrInvalidPeriod},
		{name: "bad type", input: usecase.ListEntriesInput{Type: "loan"}, wantErr: domain.ErrInvalidEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := uc.ListEntries(ctx, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := make([]string, len(entries))
			for i, e := range entries {
				got[i] = e.ID
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("expected %v, got %v", tt.wantIDs, got)
			}
			for i := range got {
				if got[i] != tt.wantIDs[i] {
					t.Fatalf("expected %v, got %v", tt.wantIDs, got)
				}
			}
		})
	}
}

func TestEntryUseCase_ListGroups(t *testing.T) {
	store := mocks.NewFakeEntryStore()
	uc, _ := newEntryUseCase(t, store)
	ctx := context.Background()

	if _, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
		Type: domain.EntryTypeDebt, Value: decimal.NewFromInt(300), Date: "2025-03-01",
		Category: "Leisure", Description: "Console", Installments: 3,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := uc.CreateEntry(ctx, usecase.CreateEntryInput{
		Type: domain.EntryTypeDebt, Value: decimal.NewFromInt(50), Date: "2025-03-02",
		Category: "Food", Description: "Groceries",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	groups, err := uc.ListGroups(ctx, usecase.ListEntriesInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if !groups[0].IsInstallment || len(groups[0].Members) != 3 {
		t.Errorf("expected an installment group of 3, got %+v", groups[0])
	}
	if !groups[0].Total().Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected group total 300, got %s", groups[0].Total())
	}

	groups, err = uc.ListGroups(ctx, usecase.ListEntriesInput{Period: "2025-04"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 1 || len(groups[0].Members) != 1 {
		t.Errorf("expected only the April installment, got %+v", groups)
	}
}
