package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jukuhub/juku-api/internal/domain"
	"github.com/jukuhub/juku-api/internal/generation"
	"github.com/jukuhub/juku-api/internal/store"
)

// Common errors
var (
	ErrNilQuestionStore = errors.New("question store cannot be nil")
	ErrNilAnalyzer      = errors.New("analyzer cannot be nil")
	ErrNilUsageStore    = errors.New("usage store cannot be nil")
	ErrNilLogger        = errors.New("logger cannot be nil")
	ErrEmptyQuestionID  = errors.New("question ID cannot be empty")
)

// questionAnalysisPayload represents the serialized data carried by the task.
type questionAnalysisPayload struct {
	QuestionID uuid.UUID `json:"question_id"`
}

// QuestionAnalysisTask implements the Task interface for analyzing one
// photographed question.
//
// Execution is idempotent: the first step atomically claims the job
// (queued -> processing), and a failed claim means another worker already
// holds it or it has finished, so the task becomes a no-op.
type QuestionAnalysisTask struct {
	id            uuid.UUID
	questionID    uuid.UUID
	questionStore store.QuestionStore
	analyzer      generation.QuestionAnalyzer
	usageStore    store.UsageLogStore
	logger        *slog.Logger
	status        TaskStatus
}

var _ Task = (*QuestionAnalysisTask)(nil)

// NewQuestionAnalysisTask creates a new question analysis task.
func NewQuestionAnalysisTask(
	questionID uuid.UUID,
	questionStore store.QuestionStore,
	analyzer generation.QuestionAnalyzer,
	usageStore store.UsageLogStore,
	logger *slog.Logger,
) (*QuestionAnalysisTask, error) {
	if questionStore == nil {
		return nil, ErrNilQuestionStore
	}
	if analyzer == nil {
		return nil, ErrNilAnalyzer
	}
	if usageStore == nil {
		return nil, ErrNilUsageStore
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if questionID == uuid.Nil {
		return nil, ErrEmptyQuestionID
	}

	return &QuestionAnalysisTask{
		id:            uuid.New(),
		questionID:    questionID,
		questionStore: questionStore,
		analyzer:      analyzer,
		usageStore:    usageStore,
		logger:        logger.With("task_type", TaskTypeQuestionAnalysis, "question_id", questionID),
		status:        TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier.
func (t *QuestionAnalysisTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier.
func (t *QuestionAnalysisTask) Type() string {
	return TaskTypeQuestionAnalysis
}

// Payload returns the serialized task data.
func (t *QuestionAnalysisTask) Payload() []byte {
	payload := questionAnalysisPayload{QuestionID: t.questionID}
	data, err := json.Marshal(payload)
	if err != nil {
		t.logger.Error("failed to marshal payload", "error", err)
		return nil
	}
	return data
}

// Status returns the current task status.
func (t *QuestionAnalysisTask) Status() TaskStatus {
	return t.status
}

// Execute runs the analysis.
func (t *QuestionAnalysisTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing

	claimed, err := t.questionStore.ClaimForProcessing(ctx, t.questionID)
	if err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to claim question job: %w", err)
	}
	if !claimed {
		// Already claimed, already finished, or missing its image. Either
		// way this trigger has nothing left to do.
		t.logger.Info("question job not claimable, skipping")
		t.status = TaskStatusCompleted
		return nil
	}

	job, err := t.questionStore.GetByID(ctx, t.questionID)
	if err != nil {
		t.failJob(ctx, fmt.Sprintf("failed to load job after claim: %v", err))
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to load question job: %w", err)
	}

	analysis, err := t.analyzer.AnalyzeQuestionImage(ctx, job.ImageData, job.ImageMIME)
	if err != nil {
		t.logger.Error("question analysis failed", "error", err)
		t.failJob(ctx, err.Error())
		t.status = TaskStatusFailed
		return fmt.Errorf("question analysis failed: %w", err)
	}

	if err := t.questionStore.MarkAnalyzed(ctx, t.questionID, analysis.Text); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to store analysis: %w", err)
	}

	// Bill the analysis to the submitting student. Failed analyses are
	// never billed.
	billedUser := job.StudentID
	if billedUser == uuid.Nil {
		billedUser = domain.SystemUserID
	}
	entry, err := domain.NewUsageLogEntry(billedUser, domain.OperationQuestionAnalysis)
	if err == nil {
		err = t.usageStore.Append(ctx, entry)
	}
	if err != nil {
		t.logger.Error("failed to append usage log entry",
			"error", err,
			"user_id", billedUser)
	}

	t.logger.Info("question analyzed",
		"analysis_chars", len(analysis.Text))
	t.status = TaskStatusCompleted
	return nil
}

// failJob records the failure on the job, releasing it to the error state.
func (t *QuestionAnalysisTask) failJob(ctx context.Context, message string) {
	if err := t.questionStore.MarkError(ctx, t.questionID, message); err != nil {
		t.logger.Error("failed to mark question job as errored", "error", err)
	}
}
