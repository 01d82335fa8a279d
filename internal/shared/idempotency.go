package shared

import (
	"context"
	"errors"
	"time"

	"github.com/odyssey-erp/fulfillment-ledger/internal/platform/db"
	"github.com/odyssey-erp/fulfillment-ledger/internal/platform/httpx"
)

// ErrIdempotencyConflict indicates a duplicate key.
var ErrIdempotencyConflict = NewReason("idempotency_conflict", httpx.ErrDuplicate, "idempotent request already processed")

// IdempotencyStore persists processed request keys.
type IdempotencyStore struct {
	db db.DBTX
}

// NewIdempotencyStore constructs the store over a pool; per-call executors
// passed to CheckAndInsert take precedence.
func NewIdempotencyStore(exec db.DBTX) *IdempotencyStore {
	return &IdempotencyStore{db: exec}
}

// CheckAndInsert ensures key uniqueness per module. Passing the transaction
// as exec rolls the key back together with a failed write.
func (s *IdempotencyStore) CheckAndInsert(ctx context.Context, exec db.DBTX, key, module string) error {
	if s == nil {
		return errors.New("idempotency store not initialised")
	}
	if key == "" {
		return errors.New("idempotency key required")
	}
	if module == "" {
		return errors.New("idempotency module required")
	}
	if exec == nil {
		exec = s.db
	}
	_, err := exec.Exec(ctx, `INSERT INTO idempotency_keys (key, module, created_at) VALUES ($1, $2, $3)`, key, module, time.Now())
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return ErrIdempotencyConflict
		}
		return err
	}
	return nil
}

// Cleanup removes entries older than retention.
func (s *IdempotencyStore) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	cutoff := time.Now().Add(-olderThan)
	tag, err := s.db.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
