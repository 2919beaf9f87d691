package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/grouping"
	"github.com/iho/pocketledger/internal/report"
)

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Value       decimal.Decimal `json:"value"`
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Recurrent   bool            `json:"recurrent"`
	CreatedAt   time.Time       `json:"created_at"`
	Deleted     bool            `json:"deleted,omitempty"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e domain.Entry) EntryResponse {
	return EntryResponse{
		ID:          e.ID,
		Type:        string(e.Type),
		Value:       e.Value,
		Date:        e.Date,
		Category:    e.Category,
		Description: e.Description,
		Status:      string(e.Status),
		Recurrent:   e.Recurrent,
		CreatedAt:   e.CreatedAt,
		Deleted:     e.Deleted,
		DeletedAt:   e.DeletedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []domain.Entry) []EntryResponse {
	result := make([]EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// EntryListResponse wraps a list of entries.
type EntryListResponse struct {
	Entries []EntryResponse `json:"entries"`
}

// GroupResponse represents one logical transaction in the grouped view.
type GroupResponse struct {
	Key           string          `json:"key"`
	BaseName      string          `json:"base_name"`
	IsInstallment bool            `json:"is_installment"`
	Total         decimal.Decimal `json:"total"`
	PendingCount  int             `json:"pending_count"`
	SettledCount  int             `json:"settled_count"`
	Members       []EntryResponse `json:"members"`
}

// GroupsFromDomain converts groups to responses.
func GroupsFromDomain(groups []grouping.Group) []GroupResponse {
	result := make([]GroupResponse, len(groups))
	for i, g := range groups {
		result[i] = GroupResponse{
			Key:           g.Key,
			BaseName:      g.BaseName,
			IsInstallment: g.IsInstallment,
			Total:         g.Total(),
			PendingCount:  g.PendingCount(),
			SettledCount:  g.SettledCount(),
			Members:       EntriesFromDomain(g.Members),
		}
	}
	return result
}

// DashboardResponse is the per-period summary.
type DashboardResponse struct {
	Period           string                  `json:"period"`
	Totals           report.Totals           `json:"totals"`
	IncomeByCategory []report.CategoryAmount `json:"income_by_category"`
	DebtByCategory   []report.CategoryAmount `json:"debt_by_category"`
	UpcomingBills    []EntryResponse         `json:"upcoming_bills"`
	Notifications    []report.Notification   `json:"notifications"`
	MonthlyGoal      decimal.Decimal         `json:"monthly_goal"`
	SavingsProgress  *decimal.Decimal        `json:"savings_progress,omitempty"`
}

// DashboardFromReport converts a dashboard to a response.
func DashboardFromReport(d report.Dashboard) DashboardResponse {
	return DashboardResponse{
		Period:           d.Period,
		Totals:           d.Totals,
		IncomeByCategory: d.IncomeByCategory,
		DebtByCategory:   d.DebtByCategory,
		UpcomingBills:    EntriesFromDomain(d.UpcomingBills),
		Notifications:    d.Notifications,
		MonthlyGoal:      d.MonthlyGoal,
		SavingsProgress:  d.SavingsProgress,
	}
}

// SettingsResponse represents the ledger settings.
type SettingsResponse struct {
	MonthlyGoal      decimal.Decimal   `json:"monthly_goal"`
	Currency         string            `json:"currency"`
	CustomCategories CategoriesPayload `json:"custom_categories"`
	SharedUsers      []string          `json:"shared_users"`
}

// SettingsFromDomain converts settings to a response. Nil lists are rendered as [].
func SettingsFromDomain(s domain.Settings) SettingsResponse {
	return SettingsResponse{
		MonthlyGoal: s.MonthlyGoal,
		Currency:    s.Currency,
		CustomCategories: CategoriesPayload{
			Income: orEmpty(s.CustomCategories.Income),
			Debt:   orEmpty(s.CustomCategories.Debt),
		},
		SharedUsers: orEmpty(s.SharedUsers),
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error     string             `json:"error"`
	Message   string             `json:"message,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
	Persisted []string           `json:"persisted,omitempty"`
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
