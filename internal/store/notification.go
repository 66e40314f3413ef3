package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jukuhub/juku-api/internal/domain"
)

// NotificationStore defines the interface for the immutable notification log.
type NotificationStore interface {
	// Create persists one notification record. Records are never updated.
	Create(ctx context.Context, record *domain.NotificationRecord) error

	// ListByTarget retrieves the most recent notifications sent to a user.
	ListByTarget(ctx context.Context, targetUserID uuid.UUID, limit int) ([]*domain.NotificationRecord, error)

	// WithTx returns a new NotificationStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) NotificationStore
}

// DeviceStore defines the interface for the push endpoint registry.
type DeviceStore interface {
	// Register adds a device token to the user's endpoint set.
	// Registering an already-known token is a no-op, not an error.
	Register(ctx context.Context, endpoint *domain.DeviceEndpoint) error

	// ListTokens retrieves all device tokens registered for a user.
	// Returns an empty slice when the user has no endpoints.
	ListTokens(ctx context.Context, userID uuid.UUID) ([]string, error)

	// RemoveTokens deletes the given tokens from the user's endpoint set in
	// one statement. Tokens not present are ignored.
	RemoveTokens(ctx context.Context, userID uuid.UUID, tokens []string) error

	// WithTx returns a new DeviceStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) DeviceStore
}
