package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/pocketledger/internal/domain"
)

// EntryStore is the persistence collaborator for ledger entries.
type EntryStore interface {
	// List returns every stored entry, tombstones included.
	List(ctx context.Context) ([]domain.Entry, error)
	// Subscribe calls onChange with a full snapshot whenever the stored set changes.
	// The returned function stops the subscription.
	Subscribe(ctx context.Context, onChange func([]domain.Entry)) (func(), error)
	// Put creates or fully replaces the entry with the same ID.
	Put(ctx context.Context, entry domain.Entry) error
}

// BatchEntryWriter is implemented by stores that can write several entries atomically.
type BatchEntryWriter interface {
	PutBatch(ctx context.Context, entries []domain.Entry) error
}

// SettingsStore persists the per-ledger settings.
type SettingsStore interface {
	LoadSettings(ctx context.Context) (domain.Settings, error)
	SaveSettings(ctx context.Context, settings domain.Settings) error
}

// SettingsService exposes the live settings to other use cases.
type SettingsService interface {
	Current() domain.Settings
	Update(ctx context.Context, settings domain.Settings) (domain.Settings, error)
}

// Scheduler runs a task later. Scheduling a new task replaces any task still pending.
type Scheduler interface {
	Schedule(task func(ctx context.Context) error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

// Now returns time.Now in UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request failed so that it can be retried.
	Release(ctx context.Context, key string) error
}

// Metrics records domain events.
type Metrics interface {
	EntriesCreated(entryType domain.EntryType, installments int)
	StatusToggled(status domain.EntryStatus)
	EntryDeleted()
	BackupImported(entries int)
	PersistenceFailed(operation string)
	SettingsFlushed()
}

// NopMetrics discards every event.
type NopMetrics struct{}

func (NopMetrics) EntriesCreated(domain.EntryType, int) {}
func (NopMetrics) StatusToggled(domain.EntryStatus)     {}
func (NopMetrics) EntryDeleted()                        {}
func (NopMetrics) BackupImported(int)                   {}
func (NopMetrics) PersistenceFailed(string)             {}
func (NopMetrics) SettingsFlushed()                     {}
