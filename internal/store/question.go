package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jukuhub/juku-api/internal/domain"
)

// QuestionStore defines the interface for question job persistence.
//
// Status transitions are enforced here with conditional updates so that the
// analysis pipeline fires at most once per job regardless of how many times
// a trigger is delivered.
type QuestionStore interface {
	// Create saves a new question job to the store.
	// Returns validation errors from the domain QuestionJob if data is invalid.
	// Returns ErrInvalidEntity if the student does not exist.
	Create(ctx context.Context, job *domain.QuestionJob) error

	// GetByID retrieves a question job by its unique ID.
	// Returns ErrQuestionNotFound if the job does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.QuestionJob, error)

	// ClaimForProcessing transitions the job from queued to processing and
	// stamps processing_started_at. Returns false (without error) when the
	// job is not in the queued state or has no image payload; a false result
	// means the caller must not process the job.
	ClaimForProcessing(ctx context.Context, id uuid.UUID) (bool, error)

	// MarkAnalyzed transitions the job from processing to analyzed, storing
	// the analysis text and stamping completed_at.
	// Returns ErrUpdateFailed if the job is not in the processing state.
	MarkAnalyzed(ctx context.Context, id uuid.UUID, analysis string) error

	// MarkError transitions the job from processing to error, capturing the
	// failure message and stamping completed_at.
	// Returns ErrUpdateFailed if the job is not in the processing state.
	MarkError(ctx context.Context, id uuid.UUID, message string) error

	// ListQueued retrieves queued jobs oldest first, up to limit.
	// Used on startup to recover jobs whose trigger was lost in a crash.
	ListQueued(ctx context.Context, limit int) ([]*domain.QuestionJob, error)

	// RequeueStaleProcessing resets jobs that have been in the processing
	// state longer than olderThan back to queued, returning the IDs reset.
	// This is the explicit status reset that makes crashed-mid-flight jobs
	// eligible for re-processing.
	RequeueStaleProcessing(ctx context.Context, olderThan time.Duration) ([]uuid.UUID, error)

	// WithTx returns a new QuestionStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) QuestionStore
}
