package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jukuhub/juku-api/internal/events"
)

// AnalysisEventHandler implements the events.EventHandler interface. It turns
// question-analysis request events into tasks and submits them to the runner.
type AnalysisEventHandler struct {
	factory   *QuestionAnalysisTaskFactory
	submitter TaskSubmitter
	logger    *slog.Logger
}

var _ events.EventHandler = (*AnalysisEventHandler)(nil)

// NewAnalysisEventHandler creates a new event handler wired to the given
// factory and runner.
func NewAnalysisEventHandler(
	factory *QuestionAnalysisTaskFactory,
	submitter TaskSubmitter,
	logger *slog.Logger,
) *AnalysisEventHandler {
	return &AnalysisEventHandler{
		factory:   factory,
		submitter: submitter,
		logger:    logger.With("component", "analysis_event_handler"),
	}
}

// HandleEvent processes question-analysis request events. Events of any other
// type are ignored without error.
func (h *AnalysisEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if event.Type != TaskTypeQuestionAnalysis {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.QuestionAnalysisPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload",
			"error", err,
			"event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.QuestionID == uuid.Nil {
		return fmt.Errorf("event %s carries no question ID", event.ID)
	}

	task, err := h.factory.CreateTask(payload.QuestionID)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"question_id", payload.QuestionID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.submitter.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"question_id", payload.QuestionID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Debug("analysis task submitted",
		"task_id", task.ID(),
		"question_id", payload.QuestionID)
	return nil
}
