package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
)

const selectSettingsSQL = `
SELECT monthly_goal::text, currency, custom_categories, shared_users
FROM ledger_settings
WHERE ledger_id = $1`

const upsertSettingsSQL = `
INSERT INTO ledger_settings (ledger_id, monthly_goal, currency, custom_categories, shared_users, updated_at)
VALUES ($1, $2::numeric, $3, $4, $5, NOW())
ON CONFLICT (ledger_id) DO UPDATE SET
    monthly_goal      = EXCLUDED.monthly_goal,
    currency          = EXCLUDED.currency,
    custom_categories = EXCLUDED.custom_categories,
    shared_users      = EXCLUDED.shared_users,
    updated_at        = NOW()`

// categoriesColumn is the JSONB layout of ledger_settings.custom_categories.
type categoriesColumn struct {
	Income []string `json:"Income"`
	Debt   []string `json:"Debt"`
}

// SettingsRepository implements usecase.SettingsStore.
type SettingsRepository struct {
	pool     pgxPool
	retrier  *Retrier
	ledgerID string
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(pool *pgxpool.Pool, retrier *Retrier, ledgerID string) *SettingsRepository {
	return newSettingsRepository(pool, retrier, ledgerID)
}

func newSettingsRepository(pool pgxPool, retrier *Retrier, ledgerID string) *SettingsRepository {
	return &SettingsRepository{pool: pool, retrier: retrier, ledgerID: ledgerID}
}

// LoadSettings returns the stored settings, or the defaults when none were saved yet.
func (r *SettingsRepository) LoadSettings(ctx context.Context) (domain.Settings, error) {
	var (
		goal       string
		currency   string
		categories []byte
		shared     []byte
	)

	err := r.pool.QueryRow(ctx, selectSettingsSQL, r.ledgerID).Scan(&goal, &currency, &categories, &shared)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	s := domain.DefaultSettings()
	s.Currency = currency
	if s.MonthlyGoal, err = decimal.NewFromString(goal); err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: invalid monthly goal %q: %w", goal, err)
	}

	var cats categoriesColumn
	if len(categories) > 0 {
		if err := json.Unmarshal(categories, &cats); err != nil {
			return domain.Settings{}, fmt.Errorf("load settings: custom categories: %w", err)
		}
	}
	s.CustomCategories = domain.CustomCategories{Income: cats.Income, Debt: cats.Debt}

	if len(shared) > 0 {
		if err := json.Unmarshal(shared, &s.SharedUsers); err != nil {
			return domain.Settings{}, fmt.Errorf("load settings: shared users: %w", err)
		}
	}

	return s, nil
}

// SaveSettings upserts the settings row of the ledger.
func (r *SettingsRepository) SaveSettings(ctx context.Context, s domain.Settings) error {
	categories, err := json.Marshal(categoriesColumn{
		Income: nonNil(s.CustomCategories.Income),
		Debt:   nonNil(s.CustomCategories.Debt),
	})
	if err != nil {
		return err
	}

	shared, err := json.Marshal(nonNil(s.SharedUsers))
	if err != nil {
		return err
	}

	return r.retrier.Retry(ctx, func() error {
		if _, err := r.pool.Exec(ctx, upsertSettingsSQL, r.ledgerID, s.MonthlyGoal.String(), s.Currency, categories, shared); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		return nil
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
