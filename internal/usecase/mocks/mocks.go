package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

// FakeEntryStore is an in-memory usecase.EntryStore. Func fields override the default
// behaviour of the matching method.
type FakeEntryStore struct {
	mu          sync.RWMutex
	entries     map[string]domain.Entry
	order       []string
	subscribers map[int]func([]domain.Entry)
	nextSub     int
	puts        int

	ListFunc func(ctx context.Context) ([]domain.Entry, error)
	PutFunc  func(ctx context.Context, entry domain.Entry) error
}

func NewFakeEntryStore(entries ...domain.Entry) *FakeEntryStore {
	s := &FakeEntryStore{
		entries:     make(map[string]domain.Entry),
		subscribers: make(map[int]func([]domain.Entry)),
	}
	for _, e := range entries {
		s.store(e)
	}
	return s
}

func (s *FakeEntryStore) List(ctx context.Context) ([]domain.Entry, error) {
	if s.ListFunc != nil {
		return s.ListFunc(ctx)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(), nil
}

func (s *FakeEntryStore) Subscribe(_ context.Context, onChange func([]domain.Entry)) (func(), error) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = onChange
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}, nil
}

func (s *FakeEntryStore) Put(ctx context.Context, entry domain.Entry) error {
	if s.PutFunc != nil {
		if err := s.PutFunc(ctx, entry); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.store(entry)
	s.puts++
	snapshot := s.snapshot()
	subscribers := make([]func([]domain.Entry), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(snapshot)
	}
	return nil
}

// Get returns the stored entry with id.
func (s *FakeEntryStore) Get(id string) (domain.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// Puts is the number of successful Put calls.
func (s *FakeEntryStore) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}

func (s *FakeEntryStore) store(e domain.Entry) {
	if _, ok := s.entries[e.ID]; !ok {
		s.order = append(s.order, e.ID)
	}
	s.entries[e.ID] = e
}

func (s *FakeEntryStore) snapshot() []domain.Entry {
	out := make([]domain.Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id])
	}
	return out
}

// FakeBatchEntryStore is a FakeEntryStore that also implements usecase.BatchEntryWriter.
type FakeBatchEntryStore struct {
	*FakeEntryStore

	PutBatchFunc func(ctx context.Context, entries []domain.Entry) error
	batches      int
}

func NewFakeBatchEntryStore(entries ...domain.Entry) *FakeBatchEntryStore {
	return &FakeBatchEntryStore{FakeEntryStore: NewFakeEntryStore(entries...)}
}

func (s *FakeBatchEntryStore) PutBatch(ctx context.Context, entries []domain.Entry) error {
	if s.PutBatchFunc != nil {
		if err := s.PutBatchFunc(ctx, entries); err != nil {
			return err
		}
	}
	s.batches++
	for _, e := range entries {
		s.mu.Lock()
		s.store(e)
		s.mu.Unlock()
	}
	return nil
}

// Batches is the number of successful PutBatch calls.
func (s *FakeBatchEntryStore) Batches() int {
	return s.batches
}

// FakeSettingsStore is an in-memory usecase.SettingsStore.
type FakeSettingsStore struct {
	mu       sync.Mutex
	settings domain.Settings
	saves    int

	LoadFunc func(ctx context.Context) (domain.Settings, error)
	SaveFunc func(ctx context.Context, settings domain.Settings) error
}

func NewFakeSettingsStore(settings domain.Settings) *FakeSettingsStore {
	return &FakeSettingsStore{settings: settings}
}

func (s *FakeSettingsStore) LoadSettings(ctx context.Context) (domain.Settings, error) {
	if s.LoadFunc != nil {
		return s.LoadFunc(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

func (s *FakeSettingsStore) SaveSettings(ctx context.Context, settings domain.Settings) error {
	if s.SaveFunc != nil {
		if err := s.SaveFunc(ctx, settings); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.saves++
	return nil
}

// Saved returns the last saved settings and the number of saves.
func (s *FakeSettingsStore) Saved() (domain.Settings, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, s.saves
}

// SequenceIDGenerator returns prefix-0001, prefix-0002, ...
type SequenceIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

func NewSequenceIDGenerator(prefix string) *SequenceIDGenerator {
	return &SequenceIDGenerator{prefix: prefix}
}

func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}

// FixedClock always returns the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}

// ManualScheduler keeps the last scheduled task until Run is called.
type ManualScheduler struct {
	mu        sync.Mutex
	task      func(ctx context.Context) error
	scheduled int
}

func (s *ManualScheduler) Schedule(task func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.task = task
	s.scheduled++
}

// Run executes the pending task, if any.
func (s *ManualScheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	task := s.task
	s.task = nil
	s.mu.Unlock()

	if task == nil {
		return nil
	}
	return task(ctx)
}

// Scheduled is the number of Schedule calls.
func (s *ManualScheduler) Scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduled
}

var (
	_ usecase.EntryStore       = (*FakeEntryStore)(nil)
	_ usecase.BatchEntryWriter = (*FakeBatchEntryStore)(nil)
	_ usecase.SettingsStore    = (*FakeSettingsStore)(nil)
	_ usecase.IDGenerator      = (*SequenceIDGenerator)(nil)
	_ usecase.Clock            = FixedClock{}
	_ usecase.Scheduler        = (*ManualScheduler)(nil)
)
