package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jukuhub/juku-api/internal/domain"
	"github.com/jukuhub/juku-api/internal/platform/logger"
	"github.com/jukuhub/juku-api/internal/store"
)

// PostgresQuotaStore implements the store.QuotaStore interface
// using a PostgreSQL database as the storage backend.
type PostgresQuotaStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQuotaStore creates a new PostgreSQL implementation of the
// QuotaStore interface. If logger is nil, a default logger will be used.
func NewPostgresQuotaStore(db store.DBTX, logger *slog.Logger) *PostgresQuotaStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresQuotaStore{
		db:     db,
		logger: logger.With(slog.String("component", "quota_store")),
	}
}

var _ store.QuotaStore = (*PostgresQuotaStore)(nil)

// CheckAndConsume implements store.QuotaStore.CheckAndConsume.
//
// The check and the increment execute as one conditional upsert, so two
// concurrent calls for the same (user, day) can never both pass the limit:
// the row lock taken by the first statement serializes the second behind it,
// and the WHERE clause re-evaluates against the committed count.
func (s *PostgresQuotaStore) CheckAndConsume(
	ctx context.Context,
	userID uuid.UUID,
	day time.Time,
	dailyLimit int,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	day = domain.UsageDay(day)

	query := `
		INSERT INTO quota_records (user_id, usage_date, count, updated_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (user_id, usage_date)
		DO UPDATE SET count = quota_records.count + 1, updated_at = $3
		WHERE quota_records.count < $4
	`

	result, err := s.db.ExecContext(ctx, query, userID, day, time.Now().UTC(), dailyLimit)
	if err != nil {
		log.Error("failed to consume quota unit",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	if rowsAffected == 0 {
		log.Info("daily quota exhausted",
			slog.String("user_id", userID.String()),
			slog.Int("daily_limit", dailyLimit))
		return false, nil
	}

	return true, nil
}

// GetRecord implements store.QuotaStore.GetRecord.
// Returns store.ErrQuotaRecordNotFound if no usage has been recorded.
func (s *PostgresQuotaStore) GetRecord(
	ctx context.Context,
	userID uuid.UUID,
	day time.Time,
) (*domain.QuotaRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, usage_date, count, updated_at
		FROM quota_records
		WHERE user_id = $1 AND usage_date = $2
	`

	var record domain.QuotaRecord
	err := s.db.QueryRowContext(ctx, query, userID, domain.UsageDay(day)).Scan(
		&record.UserID,
		&record.UsageDate,
		&record.Count,
		&record.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrQuotaRecordNotFound
		}
		log.Error("failed to get quota record",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	return &record, nil
}

// DeleteOlderThan implements store.QuotaStore.DeleteOlderThan.
func (s *PostgresQuotaStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM quota_records WHERE usage_date < $1`,
		domain.UsageDay(cutoff),
	)
	if err != nil {
		log.Error("failed to delete expired quota records",
			slog.String("error", err.Error()))
		return 0, err
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	log.Info("expired quota records deleted",
		slog.Int64("deleted", deleted),
		slog.Time("cutoff", cutoff))
	return deleted, nil
}

// WithTx implements store.QuotaStore.WithTx.
func (s *PostgresQuotaStore) WithTx(tx *sql.Tx) store.QuotaStore {
	return &PostgresQuotaStore{
		db:     tx,
		logger: s.logger,
	}
}
