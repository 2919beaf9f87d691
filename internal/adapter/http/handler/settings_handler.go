package handler

import (
	"net/http"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
	"github.com/iho/pocketledger/internal/usecase"
)

// SettingsHandler reads and replaces the ledger settings.
type SettingsHandler struct {
	settings usecase.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settings usecase.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get returns the live settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.SettingsFromDomain(h.settings.Current()))
}

// Update replaces the settings. Persistence happens in the background.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateSettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	s, err := h.settings.Update(r.Context(), req.ToDomain())
	if err != nil {
		writeDomainError(w, "failed to update settings", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SettingsFromDomain(s))
}
