package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/pocketledger/internal/domain"
)

const (
	// DefaultStoreTimeout bounds a single store write.
	DefaultStoreTimeout = 10 * time.Second

	// DefaultReportCacheTTL is how long computed reports stay cached.
	DefaultReportCacheTTL = 5 * time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyInFlight is the value an IdempotencyStore holds for a key whose
// first request has not finished yet.
const IdempotencyInFlight = "processing"

// PartialWriteError reports an installment batch that was only partly persisted. Entries
// already written are not rolled back.
type PartialWriteError struct {
	Persisted   []string
	FailedIndex int
	Err         error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("persisted %d entries before failing at index %d: %v",
		len(e.Persisted), e.FailedIndex, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistenceFailure, op, err)
}

func withStoreTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, DefaultStoreTimeout)
}
