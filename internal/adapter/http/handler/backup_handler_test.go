package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/pocketledger/internal/backup"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

type backupServiceStub struct {
	doc      backup.Document
	imported backup.Document
	importFn func(ctx context.Context, doc backup.Document) (usecase.ImportResult, error)
}

func (s *backupServiceStub) Export(ctx context.Context) backup.Document {
	return s.doc
}

func (s *backupServiceStub) ExportCSV(ctx context.Context, w io.Writer) error {
	return backup.WriteCSV(w, s.doc.Entries)
}

func (s *backupServiceStub) Import(ctx context.Context, doc backup.Document) (usecase.ImportResult, error) {
	s.imported = doc
	if s.importFn != nil {
		return s.importFn(ctx, doc)
	}
	return usecase.ImportResult{Entries: len(doc.Entries), SettingsApplied: doc.HasSettings()}, nil
}

func TestBackupHandler_Export(t *testing.T) {
	doc := backup.Export(backup.State{
		Entries:  []domain.Entry{sofa("a", "Sofa")},
		Settings: domain.DefaultSettings(),
	}, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	h := NewBackupHandler(&backupServiceStub{doc: doc}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Export(rec, httptest.NewRequest(http.MethodGet, "/backup", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="pocketledger-backup-2025-03-10.json"`, rec.Header().Get("Content-Disposition"))

	decoded, err := backup.Decode(rec.Body)
	require.NoError(t, err)
	require.Len(t, decoded.Entries, 1)
	assert.Equal(t, "a", decoded.Entries[0].ID)
}

func TestBackupHandler_ExportCSV(t *testing.T) {
	h := NewBackupHandler(&backupServiceStub{doc: backup.Document{Entries: []domain.Entry{sofa("a", "Sofa")}}}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ExportCSV(rec, httptest.NewRequest(http.MethodGet, "/backup/csv", nil))

	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Type,Value,Date,Category,Description,Status\n"))
	assert.Contains(t, rec.Body.String(), `debt,33.33,2025-03-01,Housing,"Sofa",pending`)
}

func TestBackupHandler_Import(t *testing.T) {
	stub := &backupServiceStub{}
	h := NewBackupHandler(stub, zerolog.Nop())

	body := `{"transactions":[{"id":"a","type":"debt","value":10,"date":"2025-03-01","category":"Housing","description":"Rent","status":"pending"}],"currency":"USD"}`
	rec := httptest.NewRecorder()
	h.Import(rec, httptest.NewRequest(http.MethodPost, "/backup", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"entries":1,"settings_applied":true}`, rec.Body.String())
	require.Len(t, stub.imported.Entries, 1)
}

func TestBackupHandler_Import_InvalidDocument(t *testing.T) {
	stub := &backupServiceStub{}
	h := NewBackupHandler(stub, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Import(rec, httptest.NewRequest(http.MethodPost, "/backup", strings.NewReader(`[]`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, stub.imported.Entries)
}

func TestBackupHandler_Import_StoreFailure(t *testing.T) {
	h := NewBackupHandler(&backupServiceStub{
		importFn: func(ctx context.Context, doc backup.Document) (usecase.ImportResult, error) {
			return usecase.ImportResult{Entries: 1}, fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, errors.New("disk full"))
		},
	}, zerolog.Nop())

	body := `{"transactions":[{"id":"a","type":"debt","value":1,"status":"pending"},{"id":"b","type":"debt","value":2,"status":"pending"}]}`
	rec := httptest.NewRecorder()
	h.Import(rec, httptest.NewRequest(http.MethodPost, "/backup", strings.NewReader(body)))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "import stopped after 1 entries")
}
