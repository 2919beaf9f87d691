// Package memory keeps a ledger in process memory. It backs local runs and
// tests and loses everything on restart.
package memory

import (
	"context"
	"sync"

	"github.com/iho/pocketledger/internal/domain"
)

// Store implements usecase.EntryStore, usecase.BatchEntryWriter and usecase.SettingsStore.
type Store struct {
	mu       sync.Mutex
	entries  []domain.Entry
	index    map[string]int
	settings domain.Settings
	subs     map[int]func([]domain.Entry)
	nextSub  int
	seq      uint64 // bumped on every write, guarded by mu

	// notifyMu serialises delivery. Subscribers never see a snapshot older than one
	// already delivered.
	notifyMu  sync.Mutex
	delivered uint64
}

// New returns an empty store holding the default settings.
func New() *Store {
	return &Store{
		index:    make(map[string]int),
		settings: domain.DefaultSettings(),
		subs:     make(map[int]func([]domain.Entry)),
	}
}

// List returns a copy of every entry, tombstones included, in insertion order.
func (s *Store) List(_ context.Context) ([]domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Entry(nil), s.entries...), nil
}

// Put creates or replaces an entry and notifies subscribers.
func (s *Store) Put(ctx context.Context, entry domain.Entry) error {
	return s.PutBatch(ctx, []domain.Entry{entry})
}

// PutBatch writes all entries under one lock and notifies subscribers once. Subscribers
// must not write to the store.
func (s *Store) PutBatch(ctx context.Context, entries []domain.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	for _, e := range entries {
		if i, ok := s.index[e.ID]; ok {
			s.entries[i] = e
			continue
		}
		s.index[e.ID] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	s.seq++
	seq := s.seq
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()

	s.deliver(seq, snapshot, subs)
	return nil
}

// deliver pushes snapshot unless a newer one has already gone out.
func (s *Store) deliver(seq uint64, snapshot []domain.Entry, subs []func([]domain.Entry)) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	if seq < s.delivered {
		return
	}
	s.delivered = seq
	for _, fn := range subs {
		fn(snapshot)
	}
}

// Subscribe registers onChange and pushes the current set once.
func (s *Store) Subscribe(_ context.Context, onChange func([]domain.Entry)) (func(), error) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = onChange
	current := append([]domain.Entry(nil), s.entries...)
	seq := s.seq
	s.mu.Unlock()

	s.deliver(seq, current, []func([]domain.Entry){onChange})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}, nil
}

// LoadSettings returns the stored settings.
func (s *Store) LoadSettings(_ context.Context) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSettings(s.settings), nil
}

// SaveSettings replaces the stored settings.
func (s *Store) SaveSettings(_ context.Context, settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = cloneSettings(settings)
	return nil
}

func (s *Store) snapshotLocked() ([]domain.Entry, []func([]domain.Entry)) {
	if len(s.subs) == 0 {
		return nil, nil
	}
	subs := make([]func([]domain.Entry), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return append([]domain.Entry(nil), s.entries...), subs
}

func cloneSettings(in domain.Settings) domain.Settings {
	out := in
	out.CustomCategories.Income = append([]string(nil), in.CustomCategories.Income...)
	out.CustomCategories.Debt = append([]string(nil), in.CustomCategories.Debt...)
	out.SharedUsers = append([]string(nil), in.SharedUsers...)
	return out
}
