package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/jukuhub/juku-api/internal/domain"
	"github.com/jukuhub/juku-api/internal/platform/logger"
	"github.com/jukuhub/juku-api/internal/store"
)

// PostgresUsageLogStore implements the store.UsageLogStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUsageLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUsageLogStore creates a new PostgreSQL implementation of the
// UsageLogStore interface. If logger is nil, a default logger will be used.
func NewPostgresUsageLogStore(db store.DBTX, logger *slog.Logger) *PostgresUsageLogStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUsageLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "usage_log_store")),
	}
}

var _ store.UsageLogStore = (*PostgresUsageLogStore)(nil)

// Append implements store.UsageLogStore.Append.
func (s *PostgresUsageLogStore) Append(ctx context.Context, entry *domain.UsageLogEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO usage_log (id, user_id, operation, date_bucket, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Operation,
		entry.DateBucket,
		entry.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrInvalidEntity
		}
		log.Error("failed to append usage entry",
			slog.String("error", err.Error()),
			slog.String("user_id", entry.UserID.String()),
			slog.String("operation", entry.Operation))
		return err
	}

	return nil
}

// RollupSince implements store.UsageLogStore.RollupSince.
func (s *PostgresUsageLogStore) RollupSince(ctx context.Context, since time.Time) ([]store.UsageRollup, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, operation, date_bucket, COUNT(*) AS calls
		FROM usage_log
		WHERE date_bucket >= $1
		GROUP BY user_id, operation, date_bucket
		ORDER BY date_bucket, user_id, operation
	`

	rows, err := s.db.QueryContext(ctx, query, domain.UsageDay(since))
	if err != nil {
		log.Error("failed to roll up usage entries",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var rollups []store.UsageRollup
	for rows.Next() {
		var r store.UsageRollup
		if err := rows.Scan(&r.UserID, &r.Operation, &r.DateBucket, &r.Calls); err != nil {
			return nil, err
		}
		rollups = append(rollups, r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rollups, nil
}

// WithTx implements store.UsageLogStore.WithTx.
func (s *PostgresUsageLogStore) WithTx(tx *sql.Tx) store.UsageLogStore {
	return &PostgresUsageLogStore{
		db:     tx,
		logger: s.logger,
	}
}
