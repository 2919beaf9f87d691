package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

// CreateEntryRequest represents a request to create an entry or an installment series.
type CreateEntryRequest struct {
	Type         string          `json:"type"                   validate:"required,oneof=income debt"`
	Value        decimal.Decimal `json:"value"                  validate:"decimal_gt0"`
	Date         string          `json:"date"                   validate:"required,datetime=2006-01-02"`
	Category     string          `json:"category"               validate:"required,max=50"`
	Description  string          `json:"description"            validate:"required,max=200"`
	Status       string          `json:"status,omitempty"       validate:"omitempty,oneof=pending paid received"`
	Recurrent    bool            `json:"recurrent"`
	Installments int             `json:"installments,omitempty" validate:"omitempty,min=1,max=60"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateEntryRequest) ToUseCaseInput() usecase.CreateEntryInput {
	return usecase.CreateEntryInput{
		Type:         domain.EntryType(r.Type),
		Value:        r.Value,
		Date:         r.Date,
		Category:     r.Category,
		Description:  r.Description,
		Status:       domain.EntryStatus(r.Status),
		Recurrent:    r.Recurrent,
		Installments: r.Installments,
	}
}

// CategoriesPayload groups user categories by entry type.
type CategoriesPayload struct {
	Income []string `json:"income" validate:"dive,required,max=50"`
	Debt   []string `json:"debt"   validate:"dive,required,max=50"`
}

// UpdateSettingsRequest replaces the ledger settings.
type UpdateSettingsRequest struct {
	MonthlyGoal      decimal.Decimal   `json:"monthly_goal"      validate:"decimal_gte0"`
	Currency         string            `json:"currency"          validate:"required,len=3,uppercase"`
	CustomCategories CategoriesPayload `json:"custom_categories"`
	SharedUsers      []string          `json:"shared_users"      validate:"dive,email"`
}

// ToDomain converts the request to domain settings.
func (r *UpdateSettingsRequest) ToDomain() domain.Settings {
	return domain.Settings{
		MonthlyGoal: r.MonthlyGoal,
		Currency:    r.Currency,
		CustomCategories: domain.CustomCategories{
			Income: r.CustomCategories.Income,
			Debt:   r.CustomCategories.Debt,
		},
		SharedUsers: r.SharedUsers,
	}
}
