package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jukuhub/juku-api/internal/store"
)

// QuotaConsumer is the billing-side view of the quota ledger.
type QuotaConsumer interface {
	// Consume takes one quota unit for the user's current UTC day.
	// Returns ErrQuotaExceeded when the daily limit has been reached.
	Consume(ctx context.Context, userID uuid.UUID) error
}

// QuotaService enforces the per-user daily allowance of billed AI calls.
//
// The check and the consumption are one atomic store operation, so concurrent
// requests for the same user cannot both slip under the limit. When the store
// itself fails the service fails closed: the unit is treated as unavailable
// and the caller receives an error, never a free call.
type QuotaService struct {
	quotaStore store.QuotaStore
	dailyLimit int
	logger     *slog.Logger
	timeFunc   func() time.Time // Injectable for testing
}

var _ QuotaConsumer = (*QuotaService)(nil)

// NewQuotaService creates a new QuotaService.
func NewQuotaService(quotaStore store.QuotaStore, dailyLimit int, logger *slog.Logger) *QuotaService {
	if quotaStore == nil {
		panic("quotaStore cannot be nil")
	}
	if dailyLimit <= 0 {
		panic("dailyLimit must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &QuotaService{
		quotaStore: quotaStore,
		dailyLimit: dailyLimit,
		logger:     logger.With("component", "quota_service"),
		timeFunc:   time.Now,
	}
}

// Consume takes one quota unit for the user's current UTC day.
// Returns ErrQuotaExceeded when the daily limit has been reached, or a wrapped
// store error when the ledger is unreachable. A nil return means the unit was
// consumed and the caller may proceed with the billed operation.
func (s *QuotaService) Consume(ctx context.Context, userID uuid.UUID) error {
	allowed, err := s.quotaStore.CheckAndConsume(ctx, userID, s.timeFunc(), s.dailyLimit)
	if err != nil {
		s.logger.Error("quota ledger unavailable, denying request",
			"error", err,
			"user_id", userID)
		return fmt.Errorf("quota check failed: %w", err)
	}

	if !allowed {
		return ErrQuotaExceeded
	}

	return nil
}
