package usecase

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/iho/pocketledger/internal/backup"
	"github.com/iho/pocketledger/internal/domain"
)

// BackupUseCase exports and restores the whole ledger.
type BackupUseCase struct {
	store    EntryStore
	snapshot *Snapshot
	settings SettingsService
	clock    Clock
	metrics  Metrics
	logger   zerolog.Logger
}

// NewBackupUseCase creates a new BackupUseCase.
func NewBackupUseCase(
	store EntryStore,
	snapshot *Snapshot,
	settings SettingsService,
	clock Clock,
	metrics Metrics,
	logger zerolog.Logger,
) *BackupUseCase {
	return &BackupUseCase{
		store:    store,
		snapshot: snapshot,
		settings: settings,
		clock:    clock,
		metrics:  metrics,
		logger:   logger,
	}
}

// Export captures the visible entries and the current settings.
func (uc *BackupUseCase) Export(_ context.Context) backup.Document {
	entries, _ := uc.snapshot.Visible()
	return backup.Export(backup.State{
		Entries:  entries,
		Settings: uc.settings.Current(),
	}, uc.clock.Now())
}

// ExportCSV writes the visible entries as CSV.
func (uc *BackupUseCase) ExportCSV(_ context.Context, w io.Writer) error {
	entries, _ := uc.snapshot.Visible()
	return backup.WriteCSV(w, entries)
}

// ImportResult summarizes a restore.
type ImportResult struct {
	Entries         int  `json:"entries"`
	SettingsApplied bool `json:"settings_applied"`
}

// Import writes every entry of doc through the normal save path, replacing entries with
// the same ID, then applies the settings the document carries. Settings are validated
// before any entry is written.
func (uc *BackupUseCase) Import(ctx context.Context, doc backup.Document) (ImportResult, error) {
	var next domain.Settings
	if doc.HasSettings() {
		next = doc.ApplySettings(uc.settings.Current())
		if err := next.Validate(); err != nil {
			return ImportResult{}, err
		}
	}

	written := 0
	for _, e := range doc.Entries {
		if err := uc.store.Put(ctx, e); err != nil {
			uc.metrics.PersistenceFailed("import")
			uc.logger.Error().Err(err).Str("id", e.ID).Int("written", written).Msg("import aborted")
			return ImportResult{Entries: written}, persistenceError("import entry "+e.ID, err)
		}
		uc.snapshot.Apply(e)
		written++
	}

	result := ImportResult{Entries: written}
	if doc.HasSettings() {
		if _, err := uc.settings.Update(ctx, next); err != nil {
			return result, err
		}
		result.SettingsApplied = true
	}

	uc.metrics.BackupImported(written)
	uc.logger.Info().Int("entries", written).Bool("settings", result.SettingsApplied).Msg("backup imported")
	return result, nil
}
