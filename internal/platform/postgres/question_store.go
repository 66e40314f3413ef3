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

// PostgresQuestionStore implements the store.QuestionStore interface
// using a PostgreSQL database as the storage backend.
//
// All status transitions are conditional updates keyed on the current
// status, so a job can only ever move queued -> processing -> analyzed
// or queued -> processing -> error, no matter how many workers race.
type PostgresQuestionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQuestionStore creates a new PostgreSQL implementation of the
// QuestionStore interface. If logger is nil, a default logger will be used.
func NewPostgresQuestionStore(db store.DBTX, logger *slog.Logger) *PostgresQuestionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresQuestionStore{
		db:     db,
		logger: logger.With(slog.String("component", "question_store")),
	}
}

var _ store.QuestionStore = (*PostgresQuestionStore)(nil)

// Create implements store.QuestionStore.Create.
func (s *PostgresQuestionStore) Create(ctx context.Context, job *domain.QuestionJob) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO question_jobs
			(id, student_id, image_data, image_mime, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		job.ID,
		job.StudentID,
		job.ImageData,
		job.ImageMIME,
		job.Status,
		job.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrInvalidEntity
		}
		log.Error("failed to create question job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	return nil
}

// GetByID implements store.QuestionStore.GetByID.
func (s *PostgresQuestionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuestionJob, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, student_id, image_data, image_mime, status,
			ai_analysis, error_message, created_at,
			processing_started_at, completed_at
		FROM question_jobs
		WHERE id = $1
	`

	job, err := scanQuestionJob(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrQuestionNotFound
		}
		log.Error("failed to get question job",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return nil, err
	}

	return job, nil
}

// ClaimForProcessing implements store.QuestionStore.ClaimForProcessing.
func (s *PostgresQuestionStore) ClaimForProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE question_jobs
		SET status = $2, processing_started_at = $3
		WHERE id = $1
		  AND status = $4
		  AND image_data IS NOT NULL
		  AND length(image_data) > 0
	`

	result, err := s.db.ExecContext(ctx, query,
		id,
		domain.QuestionStatusProcessing,
		time.Now().UTC(),
		domain.QuestionStatusQueued,
	)
	if err != nil {
		log.Error("failed to claim question job",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// MarkAnalyzed implements store.QuestionStore.MarkAnalyzed.
func (s *PostgresQuestionStore) MarkAnalyzed(ctx context.Context, id uuid.UUID, analysis string) error {
	query := `
		UPDATE question_jobs
		SET status = $2, ai_analysis = $3, completed_at = $4
		WHERE id = $1 AND status = $5
	`

	return s.transition(ctx, id, query,
		domain.QuestionStatusAnalyzed, analysis, time.Now().UTC(), domain.QuestionStatusProcessing)
}

// MarkError implements store.QuestionStore.MarkError.
func (s *PostgresQuestionStore) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	query := `
		UPDATE question_jobs
		SET status = $2, error_message = $3, completed_at = $4
		WHERE id = $1 AND status = $5
	`

	return s.transition(ctx, id, query,
		domain.QuestionStatusError, message, time.Now().UTC(), domain.QuestionStatusProcessing)
}

// transition runs a conditional single-row status update, mapping a zero
// row count to ErrUpdateFailed.
func (s *PostgresQuestionStore) transition(ctx context.Context, id uuid.UUID, query string, args ...any) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	queryArgs := append([]any{id}, args...)
	result, err := s.db.ExecContext(ctx, query, queryArgs...)
	if err != nil {
		log.Error("failed to transition question job",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return store.ErrUpdateFailed
	}

	return nil
}

// ListQueued implements store.QuestionStore.ListQueued.
func (s *PostgresQuestionStore) ListQueued(ctx context.Context, limit int) ([]*domain.QuestionJob, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, student_id, image_data, image_mime, status,
			ai_analysis, error_message, created_at,
			processing_started_at, completed_at
		FROM question_jobs
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, domain.QuestionStatusQueued, limit)
	if err != nil {
		log.Error("failed to list queued question jobs",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var jobs []*domain.QuestionJob
	for rows.Next() {
		job, err := scanQuestionJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}

// RequeueStaleProcessing implements store.QuestionStore.RequeueStaleProcessing.
func (s *PostgresQuestionStore) RequeueStaleProcessing(ctx context.Context, olderThan time.Duration) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cutoff := time.Now().UTC().Add(-olderThan)

	query := `
		UPDATE question_jobs
		SET status = $1, processing_started_at = NULL
		WHERE status = $2 AND processing_started_at < $3
		RETURNING id
	`

	rows, err := s.db.QueryContext(ctx, query,
		domain.QuestionStatusQueued,
		domain.QuestionStatusProcessing,
		cutoff,
	)
	if err != nil {
		log.Error("failed to requeue stale question jobs",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		log.Warn("stale processing jobs returned to queue",
			slog.Int("count", len(ids)),
			slog.Duration("older_than", olderThan))
	}

	return ids, nil
}

// WithTx implements store.QuestionStore.WithTx.
func (s *PostgresQuestionStore) WithTx(tx *sql.Tx) store.QuestionStore {
	return &PostgresQuestionStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestionJob(row rowScanner) (*domain.QuestionJob, error) {
	var (
		job        domain.QuestionJob
		analysis   sql.NullString
		errMessage sql.NullString
		startedAt  sql.NullTime
		doneAt     sql.NullTime
	)

	err := row.Scan(
		&job.ID,
		&job.StudentID,
		&job.ImageData,
		&job.ImageMIME,
		&job.Status,
		&analysis,
		&errMessage,
		&job.CreatedAt,
		&startedAt,
		&doneAt,
	)
	if err != nil {
		return nil, err
	}

	job.AIAnalysis = analysis.String
	job.ErrorMessage = errMessage.String
	if startedAt.Valid {
		t := startedAt.Time
		job.ProcessingStartedAt = &t
	}
	if doneAt.Valid {
		t := doneAt.Time
		job.CompletedAt = &t
	}

	return &job, nil
}
