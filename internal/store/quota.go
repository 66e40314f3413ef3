package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jukuhub/juku-api/internal/domain"
)

// QuotaStore defines the interface for the per-user, per-day quota counter.
type QuotaStore interface {
	// CheckAndConsume atomically increments the counter for (userID, day)
	// if and only if the current count is below dailyLimit. The first call
	// of a day creates the record. Returns true when the unit was consumed
	// and false when the limit has been reached; false results leave the
	// stored count untouched.
	//
	// The read-increment must execute as a single conditional statement so
	// that concurrent calls for the same key can never both pass the limit.
	CheckAndConsume(ctx context.Context, userID uuid.UUID, day time.Time, dailyLimit int) (bool, error)

	// GetRecord retrieves the quota record for (userID, day).
	// Returns ErrQuotaRecordNotFound if no usage has been recorded.
	GetRecord(ctx context.Context, userID uuid.UUID, day time.Time) (*domain.QuotaRecord, error)

	// DeleteOlderThan removes every quota record whose date bucket is before
	// the cutoff, in one batched statement. Returns the number of records
	// deleted; running it twice against the same state deletes nothing extra.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// WithTx returns a new QuotaStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) QuotaStore
}
