package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/pocketledger/internal/backup"
	"github.com/iho/pocketledger/internal/usecase"
)

// BackupService defines the export and import operations used by BackupHandler.
type BackupService interface {
	Export(ctx context.Context) backup.Document
	ExportCSV(ctx context.Context, w io.Writer) error
	Import(ctx context.Context, doc backup.Document) (usecase.ImportResult, error)
}

// BackupHandler serves ledger backups.
type BackupHandler struct {
	backupUC BackupService
	logger   zerolog.Logger
}

// NewBackupHandler creates a new BackupHandler.
func NewBackupHandler(backupUC BackupService, logger zerolog.Logger) *BackupHandler {
	return &BackupHandler{backupUC: backupUC, logger: logger}
}

// Export streams the JSON backup document.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	doc := h.backupUC.Export(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", attachment("pocketledger-backup-%s.json", doc))
	w.WriteHeader(http.StatusOK)

	if err := backup.Encode(w, doc); err != nil {
		h.logger.Error().Err(err).Msg("failed to write backup")
	}
}

// ExportCSV streams the visible entries as CSV.
func (h *BackupHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="pocketledger-entries.csv"`)
	w.WriteHeader(http.StatusOK)

	if err := h.backupUC.ExportCSV(r.Context(), w); err != nil {
		h.logger.Error().Err(err).Msg("failed to write csv export")
	}
}

// Import restores a backup document.
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	doc, err := backup.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeDomainError(w, "invalid backup", err)
		return
	}

	result, err := h.backupUC.Import(r.Context(), doc)
	if err != nil {
		writeDomainError(w, fmt.Sprintf("import stopped after %d entries", result.Entries), err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func attachment(pattern string, doc backup.Document) string {
	name := fmt.Sprintf(pattern, doc.ExportDate.Format("2006-01-02"))
	return fmt.Sprintf("attachment; filename=%q", name)
}
