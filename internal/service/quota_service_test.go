package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQuotaService_ConsumeUpToLimit(t *testing.T) {
	t.Parallel()

	quotaStore := newMockQuotaStore()
	svc := NewQuotaService(quotaStore, 3, testLogger())
	userID := uuid.New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Consume(ctx, userID))
	}

	err := svc.Consume(ctx, userID)
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	// Another user is unaffected.
	assert.NoError(t, svc.Consume(ctx, uuid.New()))
}

func TestQuotaService_FailsClosedOnStoreError(t *testing.T) {
	t.Parallel()

	quotaStore := newMockQuotaStore()
	quotaStore.storeErr = errors.New("connection refused")
	svc := NewQuotaService(quotaStore, 3, testLogger())

	err := svc.Consume(context.Background(), uuid.New())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrQuotaExceeded)
}
