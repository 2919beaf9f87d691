package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/grouping"
	"github.com/iho/pocketledger/internal/usecase"
)

// EntryService defines the entry operations used by EntryHandler.
type EntryService interface {
	CreateEntry(ctx context.Context, input usecase.CreateEntryInput) ([]domain.Entry, error)
	ToggleStatus(ctx context.Context, id string) (domain.Entry, error)
	DeleteEntry(ctx context.Context, id string) (domain.Entry, error)
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]domain.Entry, error)
	ListGroups(ctx context.Context, input usecase.ListEntriesInput) ([]grouping.Group, error)
}

// EntryHandler handles entry-related HTTP requests.
type EntryHandler struct {
	entryUC EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryUC EntryService) *EntryHandler {
	return &EntryHandler{entryUC: entryUC}
}

// Create creates an entry, or one entry per installment.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entries, err := h.entryUC.CreateEntry(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create entry", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryListResponse{Entries: dto.EntriesFromDomain(entries)})
}

// List lists visible entries, optionally filtered by period and type.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.entryUC.ListEntries(r.Context(), listInput(r))
	if err != nil {
		writeDomainError(w, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryListResponse{Entries: dto.EntriesFromDomain(entries)})
}

// Groups lists visible entries bundled by installment series.
func (h *EntryHandler) Groups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.entryUC.ListGroups(r.Context(), listInput(r))
	if err != nil {
		writeDomainError(w, "failed to group entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.GroupsFromDomain(groups))
}

// Toggle flips an entry between pending and settled.
func (h *EntryHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entryUC.ToggleStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to toggle entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// Delete soft-deletes an entry.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entryUC.DeleteEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to delete entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

func listInput(r *http.Request) usecase.ListEntriesInput {
	q := r.URL.Query()
	return usecase.ListEntriesInput{
		Period: q.Get("period"),
		Type:   domain.EntryType(q.Get("type")),
	}
}
