package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/report"
)

// ReportUseCase serves the aggregate views over the current snapshot. Dashboards and
// evolution series are cached per snapshot version.
type ReportUseCase struct {
	snapshot *Snapshot
	settings SettingsService
	cache    Cache
	cacheTTL time.Duration
	clock    Clock
	options  report.Options
	logger   zerolog.Logger
}

// NewReportUseCase creates a new ReportUseCase. cache may be nil.
func NewReportUseCase(
	snapshot *Snapshot,
	settings SettingsService,
	cache Cache,
	cacheTTL time.Duration,
	clock Clock,
	options report.Options,
	logger zerolog.Logger,
) *ReportUseCase {
	if cacheTTL <= 0 {
		cacheTTL = DefaultReportCacheTTL
	}
	return &ReportUseCase{
		snapshot: snapshot,
		settings: settings,
		cache:    cache,
		cacheTTL: cacheTTL,
		clock:    clock,
		options:  options,
		logger:   logger,
	}
}

// Dashboard returns the summary for period ("YYYY-MM"). An empty period means the
// current month.
func (uc *ReportUseCase) Dashboard(ctx context.Context, period string) (report.Dashboard, error) {
	now := uc.clock.Now()
	if period == "" {
		period = report.PeriodOf(now)
	}
	if _, err := report.ParsePeriod(period); err != nil {
		return report.Dashboard{}, err
	}

	entries, version := uc.snapshot.Visible()
	settings := uc.settings.Current()

	key := fmt.Sprintf("report:dashboard:%s:%s:%s:%s:%s:%t",
		version, period, now.Format(domain.DateLayout), settings.MonthlyGoal.String(), settings.Currency,
		uc.options.StrictStatuses)

	var dashboard report.Dashboard
	if uc.fromCache(ctx, key, &dashboard) {
		return dashboard, nil
	}

	dashboard = report.BuildDashboard(entries, settings, period, now, uc.options)
	uc.toCache(ctx, key, dashboard)
	return dashboard, nil
}

// Evolution returns the per-month received, paid and balance series.
func (uc *ReportUseCase) Evolution(ctx context.Context, months int) ([]report.MonthPoint, error) {
	if months <= 0 {
		months = report.DefaultEvolutionMonths
	}

	now := uc.clock.Now()
	entries, version := uc.snapshot.Visible()
	strict := uc.options.StrictStatuses
	key := fmt.Sprintf("report:evolution:%s:%s:%d:%t", version, report.PeriodOf(now), months, strict)

	var points []report.MonthPoint
	if uc.fromCache(ctx, key, &points) {
		return points, nil
	}

	points = report.MonthlyEvolution(entries, now, months, strict)
	uc.toCache(ctx, key, points)
	return points, nil
}

// Trends returns the monthly debt totals of the top categories.
func (uc *ReportUseCase) Trends(_ context.Context, months, top int) ([]report.TrendPoint, error) {
	if months <= 0 {
		months = report.DefaultTrendMonths
	}
	if top <= 0 {
		top = report.DefaultTrendCategories
	}

	entries, _ := uc.snapshot.Visible()
	categories := uc.settings.Current().Categories(domain.EntryTypeDebt)
	return report.CategoryTrends(entries, categories, uc.clock.Now(), months, top), nil
}

// Upcoming returns the next pending debts by due date.
func (uc *ReportUseCase) Upcoming(_ context.Context, limit int) ([]domain.Entry, error) {
	if limit <= 0 {
		limit = uc.options.UpcomingLimit
	}
	if limit <= 0 {
		limit = report.DefaultUpcomingLimit
	}

	entries, _ := uc.snapshot.Visible()
	return report.UpcomingBills(entries, limit), nil
}

// Notifications returns the pending debts due within the configured window.
func (uc *ReportUseCase) Notifications(_ context.Context) ([]report.Notification, error) {
	window := uc.options.DueSoonWindow
	if window <= 0 {
		window = report.DefaultDueSoonWindow
	}

	entries, _ := uc.snapshot.Visible()
	return report.DueSoonNotifications(entries, uc.clock.Now(), window), nil
}

func (uc *ReportUseCase) fromCache(ctx context.Context, key string, dst any) bool {
	if uc.cache == nil {
		return false
	}

	data, err := uc.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			uc.logger.Warn().Err(err).Str("key", key).Msg("report cache read failed")
		}
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable cached report")
		return false
	}
	return true
}

func (uc *ReportUseCase) toCache(ctx context.Context, key string, value any) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("report not cacheable")
		return
	}

	if err := uc.cache.Set(ctx, key, data, uc.cacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("report cache write failed")
	}
}
