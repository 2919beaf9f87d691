package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/iho/pocketledger/internal/domain"
)

// Snapshot holds the latest full entry set pushed by the store. Every change stamps a new
// version so derived reports can be cached per version.
type Snapshot struct {
	mu      sync.RWMutex
	entries []domain.Entry
	index   map[string]int
	version string
	idGen   IDGenerator
}

// NewSnapshot creates an empty Snapshot.
func NewSnapshot(idGen IDGenerator) *Snapshot {
	return &Snapshot{
		index:   make(map[string]int),
		version: idGen.Generate(),
		idGen:   idGen,
	}
}

// Replace swaps in a full entry set.
func (s *Snapshot) Replace(entries []domain.Entry) {
	copied := make([]domain.Entry, len(entries))
	copy(copied, entries)

	index := make(map[string]int, len(copied))
	for i, e := range copied {
		index[e.ID] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = copied
	s.index = index
	s.version = s.idGen.Generate()
}

// Apply upserts entries by ID so local writes are visible before the store echoes them.
func (s *Snapshot) Apply(entries ...domain.Entry) {
	if len(entries) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if i, ok := s.index[e.ID]; ok {
			s.entries[i] = e
			continue
		}
		s.index[e.ID] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	s.version = s.idGen.Generate()
}

// Visible returns a copy of the non-deleted entries and the snapshot version.
func (s *Snapshot) Visible() ([]domain.Entry, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Visible(s.entries), s.version
}

// Lookup returns the entry with id, tombstones included.
func (s *Snapshot) Lookup(id string) (domain.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return domain.Entry{}, false
	}
	return s.entries[i], true
}

// Version identifies the current entry set.
func (s *Snapshot) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Sync loads the current entry set and keeps the snapshot updated from the store feed
// until the returned stop function is called.
func (s *Snapshot) Sync(ctx context.Context, store EntryStore, logger zerolog.Logger) (func(), error) {
	entries, err := store.List(ctx)
	if err != nil {
		return nil, persistenceError("list entries", err)
	}
	s.Replace(entries)

	stop, err := store.Subscribe(ctx, func(entries []domain.Entry) {
		s.Replace(entries)
		logger.Debug().Int("entries", len(entries)).Str("version", s.Version()).Msg("snapshot updated")
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to entry feed: %w", err)
	}

	logger.Info().Int("entries", len(entries)).Msg("snapshot loaded")
	return stop, nil
}
