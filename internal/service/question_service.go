package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jukuhub/juku-api/internal/domain"
	"github.com/jukuhub/juku-api/internal/events"
	"github.com/jukuhub/juku-api/internal/store"
)

// QuestionService accepts photographed questions and exposes their analysis
// lifecycle.
type QuestionService interface {
	// SubmitQuestion persists a new question job in the queued state and
	// emits the analysis trigger. The job is durable before the trigger
	// fires; a lost trigger is recovered at startup from the queued set.
	SubmitQuestion(
		ctx context.Context,
		studentID uuid.UUID,
		imageData []byte,
		imageMIME string,
	) (*domain.QuestionJob, error)

	// GetQuestion retrieves a question job. Only the submitting student or
	// an admin may read it; other callers receive ErrNotOwned.
	GetQuestion(ctx context.Context, callerID, questionID uuid.UUID) (*domain.QuestionJob, error)
}

// QuestionServiceImpl implements the QuestionService interface.
type QuestionServiceImpl struct {
	questionStore store.QuestionStore
	userStore     store.UserStore
	emitter       events.EventEmitter
	db            *sql.DB
	logger        *slog.Logger
	runTx         func(ctx context.Context, db *sql.DB, fn store.TxFn) error // Injectable for testing
}

var _ QuestionService = (*QuestionServiceImpl)(nil)

// NewQuestionService creates a new QuestionService.
func NewQuestionService(
	questionStore store.QuestionStore,
	userStore store.UserStore,
	emitter events.EventEmitter,
	db *sql.DB,
	logger *slog.Logger,
) *QuestionServiceImpl {
	if questionStore == nil {
		panic("questionStore cannot be nil")
	}
	if userStore == nil {
		panic("userStore cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &QuestionServiceImpl{
		questionStore: questionStore,
		userStore:     userStore,
		emitter:       emitter,
		db:            db,
		logger:        logger.With("component", "question_service"),
		runTx:         store.RunInTransaction,
	}
}

// SubmitQuestion implements QuestionService.SubmitQuestion.
func (s *QuestionServiceImpl) SubmitQuestion(
	ctx context.Context,
	studentID uuid.UUID,
	imageData []byte,
	imageMIME string,
) (*domain.QuestionJob, error) {
	job, err := domain.NewQuestionJob(studentID, imageData, imageMIME)
	if err != nil {
		return nil, err
	}

	err = s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.questionStore.WithTx(tx).Create(ctx, job)
	})
	if err != nil {
		s.logger.Error("failed to persist question job",
			"error", err,
			"student_id", studentID)
		return nil, fmt.Errorf("failed to save question: %w", err)
	}

	// The trigger fires after the job is durable. If emission fails the job
	// stays queued and is picked up by the startup recovery pass.
	event, err := events.NewTaskRequestEvent(events.TaskTypeQuestionAnalysis,
		events.QuestionAnalysisPayload{QuestionID: job.ID})
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		s.logger.Warn("analysis trigger not delivered, job remains queued",
			"error", err,
			"question_id", job.ID)
	}

	s.logger.Info("question job submitted",
		"question_id", job.ID,
		"student_id", studentID,
		"image_bytes", len(imageData))

	return job, nil
}

// GetQuestion implements QuestionService.GetQuestion.
func (s *QuestionServiceImpl) GetQuestion(
	ctx context.Context,
	callerID, questionID uuid.UUID,
) (*domain.QuestionJob, error) {
	job, err := s.questionStore.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	if job.StudentID != callerID {
		caller, err := s.userStore.GetByID(ctx, callerID)
		if err != nil {
			return nil, err
		}
		if !caller.IsAdmin() {
			return nil, ErrNotOwned
		}
	}

	return job, nil
}
