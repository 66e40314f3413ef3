package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jukuhub/juku-api/internal/domain"
)

// UsageRollup is one aggregated row of the usage audit log, grouped by
// user, operation and date bucket.
type UsageRollup struct {
	UserID     uuid.UUID
	Operation  string
	DateBucket time.Time
	Calls      int
}

// UsageLogStore defines the interface for the append-only usage audit log.
type UsageLogStore interface {
	// Append persists one usage entry. Entries are immutable; there are no
	// update or delete operations.
	Append(ctx context.Context, entry *domain.UsageLogEntry) error

	// RollupSince aggregates entries whose date bucket is on or after the
	// given day, grouped by user, operation and date bucket.
	RollupSince(ctx context.Context, since time.Time) ([]UsageRollup, error)

	// WithTx returns a new UsageLogStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UsageLogStore
}
