package usecase

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/iho/pocketledger/internal/domain"
)

// SettingsUseCase keeps the live ledger settings and persists changes through a
// debouncing scheduler, so a burst of edits results in one store write.
type SettingsUseCase struct {
	store     SettingsStore
	scheduler Scheduler
	metrics   Metrics
	logger    zerolog.Logger

	mu      sync.RWMutex
	current domain.Settings
	dirty   bool
}

// NewSettingsUseCase creates a SettingsUseCase holding the default settings.
func NewSettingsUseCase(store SettingsStore, scheduler Scheduler, metrics Metrics, logger zerolog.Logger) *SettingsUseCase {
	return &SettingsUseCase{
		store:     store,
		scheduler: scheduler,
		metrics:   metrics,
		logger:    logger,
		current:   domain.DefaultSettings(),
	}
}

// Load replaces the held settings with the stored ones.
func (uc *SettingsUseCase) Load(ctx context.Context) error {
	settings, err := uc.store.LoadSettings(ctx)
	if err != nil {
		return persistenceError("load settings", err)
	}

	if settings.Currency == "" {
		settings.Currency = domain.DefaultCurrency
	}

	uc.mu.Lock()
	uc.current = settings
	uc.dirty = false
	uc.mu.Unlock()
	return nil
}

// Current returns a copy of the live settings.
func (uc *SettingsUseCase) Current() domain.Settings {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return cloneSettings(uc.current)
}

// Update validates and applies settings immediately and schedules their persistence.
func (uc *SettingsUseCase) Update(_ context.Context, settings domain.Settings) (domain.Settings, error) {
	if err := settings.Validate(); err != nil {
		return domain.Settings{}, err
	}

	settings = cloneSettings(settings)

	uc.mu.Lock()
	uc.current = settings
	uc.dirty = true
	uc.mu.Unlock()

	uc.scheduler.Schedule(uc.Persist)
	return cloneSettings(settings), nil
}

// Persist writes the settings if they changed since the last write.
func (uc *SettingsUseCase) Persist(ctx context.Context) error {
	uc.mu.Lock()
	if !uc.dirty {
		uc.mu.Unlock()
		return nil
	}
	settings := cloneSettings(uc.current)
	uc.dirty = false
	uc.mu.Unlock()

	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	if err := uc.store.SaveSettings(ctx, settings); err != nil {
		uc.mu.Lock()
		uc.dirty = true
		uc.mu.Unlock()
		uc.metrics.PersistenceFailed("save_settings")
		return persistenceError("save settings", err)
	}

	uc.metrics.SettingsFlushed()
	uc.logger.Debug().Str("currency", settings.Currency).Msg("settings persisted")
	return nil
}

// Pending reports whether a change is waiting to be persisted.
func (uc *SettingsUseCase) Pending() bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.dirty
}

func cloneSettings(s domain.Settings) domain.Settings {
	s.CustomCategories = domain.CustomCategories{
		Income: append([]string(nil), s.CustomCategories.Income...),
		Debt:   append([]string(nil), s.CustomCategories.Debt...),
	}
	s.SharedUsers = append([]string(nil), s.SharedUsers...)
	return s
}
