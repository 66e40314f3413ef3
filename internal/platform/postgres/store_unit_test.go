package postgres

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jukuhub/juku-api/internal/domain"
	"github.com/jukuhub/juku-api/internal/store"
)

// mockDBTX satisfies store.DBTX without a real database. ExecContext returns
// execErr so tests can exercise the error-mapping paths.
type mockDBTX struct {
	execErr error
	execs   int
}

func (m *mockDBTX) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	m.execs++
	if m.execErr != nil {
		return nil, m.execErr
	}
	return nil, errors.New("no rows to return from mock")
}

func (m *mockDBTX) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return nil, nil
}

func (m *mockDBTX) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return nil, errors.New("mock has no rows")
}

func (m *mockDBTX) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pgError(code string) *pgconn.PgError {
	return &pgconn.PgError{Code: code}
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	t.Run("unique violation", func(t *testing.T) {
		t.Parallel()
		assert.True(t, isUniqueViolation(pgError(pgUniqueViolationCode)))
		assert.False(t, isUniqueViolation(pgError(pgForeignKeyViolationCode)))
		assert.False(t, isUniqueViolation(errors.New("unique constraint violated")))
		assert.False(t, isUniqueViolation(nil))
	})

	t.Run("foreign key violation", func(t *testing.T) {
		t.Parallel()
		assert.True(t, isForeignKeyViolation(pgError(pgForeignKeyViolationCode)))
		assert.False(t, isForeignKeyViolation(pgError(pgUniqueViolationCode)))
		assert.False(t, isForeignKeyViolation(nil))
	})

	t.Run("wrapped pg errors are still classified", func(t *testing.T) {
		t.Parallel()
		wrapped := errors.Join(errors.New("insert failed"), pgError(pgUniqueViolationCode))
		assert.True(t, isUniqueViolation(wrapped))
	})
}

func TestConstructorsRejectNilDB(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewPostgresUserStore(nil, discardLogger()) })
	assert.Panics(t, func() { NewPostgresQuestionStore(nil, discardLogger()) })
	assert.Panics(t, func() { NewPostgresQuotaStore(nil, discardLogger()) })
	assert.Panics(t, func() { NewPostgresUsageLogStore(nil, discardLogger()) })
	assert.Panics(t, func() { NewPostgresDeviceStore(nil, discardLogger()) })
	assert.Panics(t, func() { NewPostgresNotificationStore(nil, discardLogger()) })
}

func TestWithTxReturnsNewInstance(t *testing.T) {
	t.Parallel()

	db := &mockDBTX{}
	tx := &sql.Tx{}

	userStore := NewPostgresUserStore(db, discardLogger())
	assert.NotSame(t, userStore, userStore.WithTx(tx))

	quotaStore := NewPostgresQuotaStore(db, discardLogger())
	assert.NotSame(t, quotaStore, quotaStore.WithTx(tx))

	notificationStore := NewPostgresNotificationStore(db, discardLogger())
	assert.NotSame(t, notificationStore, notificationStore.WithTx(tx))
}

func TestUsageLogAppendValidatesBeforeWrite(t *testing.T) {
	t.Parallel()

	db := &mockDBTX{}
	usageStore := NewPostgresUsageLogStore(db, discardLogger())

	entry := &domain.UsageLogEntry{
		ID:         uuid.New(),
		UserID:     uuid.Nil, // invalid
		Operation:  "lesson_generation",
		CreatedAt:  time.Now().UTC(),
		DateBucket: domain.UsageDay(time.Now().UTC()),
	}

	err := usageStore.Append(context.Background(), entry)
	require.ErrorIs(t, err, domain.ErrEmptyUsageUserID)
	assert.Zero(t, db.execs, "invalid entry must not reach the database")
}

func TestRemoveTokensEmptySliceIsNoOp(t *testing.T) {
	t.Parallel()

	db := &mockDBTX{execErr: errors.New("should not be called")}
	deviceStore := NewPostgresDeviceStore(db, discardLogger())

	err := deviceStore.RemoveTokens(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Zero(t, db.execs)
}

func TestNotificationCreateMapsForeignKeyToInvalidEntity(t *testing.T) {
	t.Parallel()

	db := &mockDBTX{execErr: pgError(pgForeignKeyViolationCode)}
	notificationStore := NewPostgresNotificationStore(db, discardLogger())

	record, err := domain.NewNotificationRecord(
		uuid.New(), uuid.New(), "title", "body", 1, 0)
	require.NoError(t, err)

	err = notificationStore.Create(context.Background(), record)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}
