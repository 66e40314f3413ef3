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

// PostgresDeviceStore implements the store.DeviceStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDeviceStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDeviceStore creates a new PostgreSQL implementation of the
// DeviceStore interface. If logger is nil, a default logger will be used.
func NewPostgresDeviceStore(db store.DBTX, logger *slog.Logger) *PostgresDeviceStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDeviceStore{
		db:     db,
		logger: logger.With(slog.String("component", "device_store")),
	}
}

var _ store.DeviceStore = (*PostgresDeviceStore)(nil)

// Register implements store.DeviceStore.Register. Re-registering a token the
// user already holds is a silent no-op.
func (s *PostgresDeviceStore) Register(ctx context.Context, endpoint *domain.DeviceEndpoint) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO device_endpoints (user_id, token, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, token) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query, endpoint.UserID, endpoint.Token, endpoint.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrInvalidEntity
		}
		log.Error("failed to register device endpoint",
			slog.String("error", err.Error()),
			slog.String("user_id", endpoint.UserID.String()))
		return err
	}

	return nil
}

// ListTokens implements store.DeviceStore.ListTokens.
func (s *PostgresDeviceStore) ListTokens(ctx context.Context, userID uuid.UUID) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT token
		FROM device_endpoints
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list device tokens",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	tokens := []string{}
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tokens, nil
}

// RemoveTokens implements store.DeviceStore.RemoveTokens.
func (s *PostgresDeviceStore) RemoveTokens(ctx context.Context, userID uuid.UUID, tokens []string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(tokens) == 0 {
		return nil
	}

	query := `
		DELETE FROM device_endpoints
		WHERE user_id = $1 AND token = ANY($2)
	`

	result, err := s.db.ExecContext(ctx, query, userID, tokens)
	if err != nil {
		log.Error("failed to remove device tokens",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return err
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return err
	}

	log.Info("stale device tokens removed",
		slog.String("user_id", userID.String()),
		slog.Int64("removed", removed))
	return nil
}

// WithTx implements store.DeviceStore.WithTx.
func (s *PostgresDeviceStore) WithTx(tx *sql.Tx) store.DeviceStore {
	return &PostgresDeviceStore{
		db:     tx,
		logger: s.logger,
	}
}
