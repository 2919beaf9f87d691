package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/pocketledger/internal/domain"
)

// entriesChannel is the NOTIFY channel fed by the entries_changed trigger.
const entriesChannel = "ledger_entries"

const defaultPollInterval = 30 * time.Second

const selectEntriesSQL = `
SELECT id, type, value::text, date, category, description, status, recurrent,
       created_at, deleted, deleted_at, updated_at
FROM entries
WHERE ledger_id = $1
ORDER BY created_at, id`

const upsertEntrySQL = `
INSERT INTO entries (ledger_id, id, type, value, date, category, description, status,
                     recurrent, created_at, deleted, deleted_at, updated_at)
VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
ON CONFLICT (ledger_id, id) DO UPDATE SET
    type        = EXCLUDED.type,
    value       = EXCLUDED.value,
    date        = EXCLUDED.date,
    category    = EXCLUDED.category,
    description = EXCLUDED.description,
    status      = EXCLUDED.status,
    recurrent   = EXCLUDED.recurrent,
    deleted     = EXCLUDED.deleted,
    deleted_at  = EXCLUDED.deleted_at,
    updated_at  = NOW()`

// RepositoryConfig scopes a repository to one ledger.
type RepositoryConfig struct {
	LedgerID     string
	PollInterval time.Duration
}

// listenFunc blocks delivering a signal on notify for every change to ledgerID
// until ctx is done or the connection fails.
type listenFunc func(ctx context.Context, ledgerID string, notify chan<- struct{}) error

// EntryRepository implements usecase.EntryStore and usecase.BatchEntryWriter.
type EntryRepository struct {
	pool         pgxPool
	tx           *TxManager
	retrier      *Retrier
	listen       listenFunc
	ledgerID     string
	pollInterval time.Duration
	logger       zerolog.Logger
}

// NewEntryRepository creates an EntryRepository that follows changes through
// LISTEN/NOTIFY with periodic polling as a fallback.
func NewEntryRepository(pool *pgxpool.Pool, retrier *Retrier, cfg RepositoryConfig, logger zerolog.Logger) *EntryRepository {
	r := newEntryRepository(pool, retrier, cfg, logger)
	r.listen = poolListener(pool)
	return r
}

func newEntryRepository(pool pgxPool, retrier *Retrier, cfg RepositoryConfig, logger zerolog.Logger) *EntryRepository {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	return &EntryRepository{
		pool:         pool,
		tx:           newTxManager(pool),
		retrier:      retrier,
		ledgerID:     cfg.LedgerID,
		pollInterval: cfg.PollInterval,
		logger:       logger.With().Str("component", "entry_repository").Logger(),
	}
}

// List returns every entry of the ledger, tombstones included.
func (r *EntryRepository) List(ctx context.Context) ([]domain.Entry, error) {
	entries, _, err := r.list(ctx)
	return entries, err
}

// Put creates or fully replaces an entry.
func (r *EntryRepository) Put(ctx context.Context, entry domain.Entry) error {
	return r.retrier.Retry(ctx, func() error {
		_, err := r.pool.Exec(ctx, upsertEntrySQL, r.entryArgs(entry)...)
		if err != nil {
			return fmt.Errorf("put entry %s: %w", entry.ID, err)
		}
		return nil
	})
}

// PutBatch writes all entries in one transaction.
func (r *EntryRepository) PutBatch(ctx context.Context, entries []domain.Entry) error {
	return r.retrier.Retry(ctx, func() error {
		return r.tx.WithTx(ctx, func(tx pgx.Tx) error {
			for _, entry := range entries {
				if _, err := tx.Exec(ctx, upsertEntrySQL, r.entryArgs(entry)...); err != nil {
					return fmt.Errorf("put entry %s: %w", entry.ID, err)
				}
			}
			return nil
		})
	})
}

// Subscribe pushes the full entry set to onChange whenever it changes. The
// current set is pushed once right away.
func (r *EntryRepository) Subscribe(ctx context.Context, onChange func([]domain.Entry)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	notify := make(chan struct{}, 1)

	var wg sync.WaitGroup
	if r.listen != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.listenLoop(ctx, notify)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		r.watch(ctx, notify, onChange)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}, nil
}

func (r *EntryRepository) watch(ctx context.Context, notify <-chan struct{}, onChange func([]domain.Entry)) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	last := ""
	refresh := func() {
		entries, fingerprint, err := r.list(ctx)
		if err != nil {
			if ctx.Err() == nil {
				r.logger.Warn().Err(err).Msg("failed to refresh entries")
			}
			return
		}
		if fingerprint == last {
			return
		}
		last = fingerprint
		onChange(entries)
	}

	refresh()
	for {
		select {
		case <-ctx.Done():
			return
		case <-notify:
			refresh()
		case <-ticker.C:
			refresh()
		}
	}
}

func (r *EntryRepository) listenLoop(ctx context.Context, notify chan<- struct{}) {
	for {
		err := r.listen(ctx, r.ledgerID, notify)
		if ctx.Err() != nil {
			return
		}

		r.logger.Warn().Err(err).Dur("retry_in", r.pollInterval).Msg("entry listener stopped, polling until it reconnects")

		select {
		case <-ctx.Done():
			return
		case <-time.After(r.pollInterval):
		}
	}
}

// list returns the entries together with a fingerprint of the stored set.
func (r *EntryRepository) list(ctx context.Context) ([]domain.Entry, string, error) {
	rows, err := r.pool.Query(ctx, selectEntriesSQL, r.ledgerID)
	if err != nil {
		return nil, "", fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var (
		entries []domain.Entry
		latest  time.Time
	)
	for rows.Next() {
		var (
			e         domain.Entry
			entryType string
			value     string
			status    string
			updatedAt time.Time
		)
		if err := rows.Scan(&e.ID, &entryType, &value, &e.Date, &e.Category, &e.Description, &status,
			&e.Recurrent, &e.CreatedAt, &e.Deleted, &e.DeletedAt, &updatedAt); err != nil {
			return nil, "", fmt.Errorf("scan entry: %w", err)
		}

		e.Type = domain.EntryType(entryType)
		e.Status = domain.EntryStatus(status)
		if e.Value, err = decimal.NewFromString(value); err != nil {
			return nil, "", fmt.Errorf("entry %s: invalid value %q: %w", e.ID, value, err)
		}
		if updatedAt.After(latest) {
			latest = updatedAt
		}

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("list entries: %w", err)
	}

	return entries, fmt.Sprintf("%d:%d", len(entries), latest.UnixNano()), nil
}

func (r *EntryRepository) entryArgs(e domain.Entry) []any {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return []any{
		r.ledgerID, e.ID, string(e.Type), e.Value.String(), e.Date, e.Category, e.Description,
		string(e.Status), e.Recurrent, createdAt, e.Deleted, e.DeletedAt,
	}
}

func poolListener(pool *pgxpool.Pool) listenFunc {
	return func(ctx context.Context, ledgerID string, notify chan<- struct{}) error {
		pooled, err := pool.Acquire(ctx)
		if err != nil {
			return fmt.Errorf("acquire listener connection: %w", err)
		}
		// A connection that is still LISTENing must not go back to the pool.
		conn := pooled.Hijack()
		defer conn.Close(context.Background())

		if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{entriesChannel}.Sanitize()); err != nil {
			return fmt.Errorf("listen: %w", err)
		}

		for {
			n, err := conn.WaitForNotification(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return fmt.Errorf("wait for notification: %w", err)
			}
			if n.Payload != ledgerID {
				continue
			}

			select {
			case notify <- struct{}{}:
			default:
			}
		}
	}
}
