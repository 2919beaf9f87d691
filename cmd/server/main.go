package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/pocketledger/internal/adapter/http"
	"github.com/iho/pocketledger/internal/adapter/http/handler"
	"github.com/iho/pocketledger/internal/adapter/http/middleware"
	"github.com/iho/pocketledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/pocketledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/pocketledger/internal/adapter/repository/redis"
	"github.com/iho/pocketledger/internal/infrastructure/config"
	"github.com/iho/pocketledger/internal/infrastructure/logger"
	"github.com/iho/pocketledger/internal/infrastructure/metrics"
	"github.com/iho/pocketledger/internal/infrastructure/postgres"
	"github.com/iho/pocketledger/internal/infrastructure/redis"
	"github.com/iho/pocketledger/internal/infrastructure/scheduler"
	"github.com/iho/pocketledger/internal/report"
	"github.com/iho/pocketledger/internal/usecase"
)

const limiterCleanupInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "pocketledger",
	})
	log.Logger = appLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("server failed")
	}

	appLogger.Info().Msg("server stopped")
}

// stores holds the persistence backends selected by configuration.
type stores struct {
	entries  usecase.EntryStore
	settings usecase.SettingsStore
	checks   map[string]handler.HealthCheck
	close    func()
}

func openStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*stores, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		logger.Info().Msg("connected to postgres")

		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			pool.Close()
			return nil, err
		}

		retrier := postgresRepo.NewRetrier(logger)
		return &stores{
			entries: postgresRepo.NewEntryRepository(pool, retrier, postgresRepo.RepositoryConfig{
				LedgerID:     cfg.LedgerID,
				PollInterval: cfg.SnapshotPoll,
			}, logger),
			settings: postgresRepo.NewSettingsRepository(pool, retrier, cfg.LedgerID),
			checks:   map[string]handler.HealthCheck{"postgres": pool.Ping},
			close:    pool.Close,
		}, nil

	default:
		store := memory.New()
		logger.Warn().Msg("using in-memory store, data is lost on restart")
		return &stores{
			entries:  store,
			settings: store,
			checks:   map[string]handler.HealthCheck{},
			close:    func() {},
		}, nil
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	var (
		cache       usecase.Cache
		idempotency usecase.IdempotencyStore
	)
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer client.Close()

		cache = redisRepo.NewCache(client, cfg.LedgerID)
		idempotency = redisRepo.NewIdempotencyStore(client, cfg.LedgerID)
		st.checks["redis"] = redisPing(client)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	clock := usecase.SystemClock{}
	idGen := postgresRepo.NewULIDGenerator()

	snapshot := usecase.NewSnapshot(idGen)
	stopSync, err := snapshot.Sync(ctx, st.entries, logger)
	if err != nil {
		return err
	}
	defer stopSync()

	debouncer := scheduler.NewDebouncer(scheduler.Config{
		Delay:   cfg.SettingsDebounce,
		Timeout: cfg.DatabaseTimeout,
		Logger:  logger.With().Str("component", "settings").Logger(),
	})

	settingsUC := usecase.NewSettingsUseCase(st.settings, debouncer, m, logger)
	if err := settingsUC.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to load settings, using defaults")
	}

	entryUC := usecase.NewEntryUseCase(st.entries, snapshot, idGen, clock, m, logger)
	reportUC := usecase.NewReportUseCase(snapshot, settingsUC, cache, cfg.ReportCacheTTL, clock, report.Options{
		UpcomingLimit:  cfg.UpcomingLimit,
		DueSoonWindow:  cfg.DueSoonWindowDays,
		StrictStatuses: cfg.StrictStatuses,
	}, logger)
	backupUC := usecase.NewBackupUseCase(st.entries, snapshot, settingsUC, clock, m, logger)

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m.RateLimited)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		EntryHandler:     handler.NewEntryHandler(entryUC),
		ReportHandler:    handler.NewReportHandler(reportUC, cfg.UpcomingLimit),
		SettingsHandler:  handler.NewSettingsHandler(settingsUC),
		BackupHandler:    handler.NewBackupHandler(backupUC, logger),
		HealthHandler:    handler.NewHealthHandler(st.checks),
		MetricsHandler:   promhttp.Handler(),
		RateLimiter:      limiter,
		IdempotencyStore: idempotency,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Logger:           logger,
	})

	server := &http.Server{
		Addr:         listenAddr(cfg),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Str("store", cfg.StoreBackend).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if limiter != nil {
		g.Go(func() error {
			return limiter.Run(gctx, limiterCleanupInterval)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}

		// Settings edits still waiting for the debounce delay are written before exit.
		if err := debouncer.Close(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to flush pending settings")
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func listenAddr(cfg *config.Config) string {
	return fmt.Sprintf(":%s", cfg.HTTPPort)
}

func redisPing(client goredis.Cmdable) handler.HealthCheck {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
