package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jukuhub/juku-api/internal/domain"
	"github.com/jukuhub/juku-api/internal/platform/logger"
	"github.com/jukuhub/juku-api/internal/store"
)

// PostgresNotificationStore implements the store.NotificationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNotificationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNotificationStore creates a new PostgreSQL implementation of the
// NotificationStore interface. If logger is nil, a default logger will be used.
func NewPostgresNotificationStore(db store.DBTX, logger *slog.Logger) *PostgresNotificationStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresNotificationStore{
		db:     db,
		logger: logger.With(slog.String("component", "notification_store")),
	}
}

var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

// Create implements store.NotificationStore.Create.
func (s *PostgresNotificationStore) Create(ctx context.Context, record *domain.NotificationRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO notifications
			(id, target_user_id, sender_id, title, body, sent_at,
			 success_count, failure_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.TargetUserID,
		record.SenderID,
		record.Title,
		record.Body,
		record.SentAt,
		record.SuccessCount,
		record.FailureCount,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrInvalidEntity
		}
		log.Error("failed to create notification record",
			slog.String("error", err.Error()),
			slog.String("target_user_id", record.TargetUserID.String()))
		return err
	}

	return nil
}

// ListByTarget implements store.NotificationStore.ListByTarget.
func (s *PostgresNotificationStore) ListByTarget(
	ctx context.Context,
	targetUserID uuid.UUID,
	limit int,
) ([]*domain.NotificationRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, target_user_id, sender_id, title, body, sent_at,
			success_count, failure_count
		FROM notifications
		WHERE target_user_id = $1
		ORDER BY sent_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, targetUserID, limit)
	if err != nil {
		log.Error("failed to list notifications",
			slog.String("error", err.Error()),
			slog.String("target_user_id", targetUserID.String()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []*domain.NotificationRecord
	for rows.Next() {
		var r domain.NotificationRecord
		err := rows.Scan(
			&r.ID,
			&r.TargetUserID,
			&r.SenderID,
			&r.Title,
			&r.Body,
			&r.SentAt,
			&r.SuccessCount,
			&r.FailureCount,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// WithTx implements store.NotificationStore.WithTx.
func (s *PostgresNotificationStore) WithTx(tx *sql.Tx) store.NotificationStore {
	return &PostgresNotificationStore{
		db:     tx,
		logger: s.logger,
	}
}
