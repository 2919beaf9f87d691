package handler

import (
	"context"
	"net/http"

	"github.com/iho/pocketledger/internal/adapter/http/dto"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/report"
)

// ReportService defines the read-only views used by ReportHandler.
type ReportService interface {
	Dashboard(ctx context.Context, period string) (report.Dashboard, error)
	Evolution(ctx context.Context, months int) ([]report.MonthPoint, error)
	Trends(ctx context.Context, months, top int) ([]report.TrendPoint, error)
	Upcoming(ctx context.Context, limit int) ([]domain.Entry, error)
	Notifications(ctx context.Context) ([]report.Notification, error)
}

// ReportHandler serves the dashboard and the derived reports.
type ReportHandler struct {
	reportUC      ReportService
	upcomingLimit int
}

// NewReportHandler creates a new ReportHandler. upcomingLimit is used when the
// request does not pass one.
func NewReportHandler(reportUC ReportService, upcomingLimit int) *ReportHandler {
	return &ReportHandler{reportUC: reportUC, upcomingLimit: upcomingLimit}
}

// Dashboard returns the summary of ?period=YYYY-MM, the current month by default.
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.reportUC.Dashboard(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		writeDomainError(w, "failed to build dashboard", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DashboardFromReport(d))
}

// Evolution returns monthly received, paid and balance totals.
func (h *ReportHandler) Evolution(w http.ResponseWriter, r *http.Request) {
	points, err := h.reportUC.Evolution(r.Context(), parseIntQuery(r, "months", 0))
	if err != nil {
		writeDomainError(w, "failed to build evolution", err)
		return
	}

	writeJSON(w, http.StatusOK, points)
}

// Trends returns per-category spending for the top debt categories.
func (h *ReportHandler) Trends(w http.ResponseWriter, r *http.Request) {
	points, err := h.reportUC.Trends(r.Context(), parseIntQuery(r, "months", 0), parseIntQuery(r, "top", 0))
	if err != nil {
		writeDomainError(w, "failed to build trends", err)
		return
	}

	writeJSON(w, http.StatusOK, points)
}

// Upcoming returns the nearest pending bills.
func (h *ReportHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	bills, err := h.reportUC.Upcoming(r.Context(), parseIntQuery(r, "limit", h.upcomingLimit))
	if err != nil {
		writeDomainError(w, "failed to list upcoming bills", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryListResponse{Entries: dto.EntriesFromDomain(bills)})
}

// Notifications returns the bills due soon.
func (h *ReportHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	notes, err := h.reportUC.Notifications(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list notifications", err)
		return
	}

	writeJSON(w, http.StatusOK, notes)
}
