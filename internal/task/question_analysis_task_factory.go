package task

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/jukuhub/juku-api/internal/generation"
	"github.com/jukuhub/juku-api/internal/store"
)

// QuestionAnalysisTaskFactory creates QuestionAnalysisTask instances with
// their dependencies pre-wired. The runner and the event handler both build
// tasks through it.
type QuestionAnalysisTaskFactory struct {
	questionStore store.QuestionStore
	analyzer      generation.QuestionAnalyzer
	usageStore    store.UsageLogStore
	logger        *slog.Logger
}

// NewQuestionAnalysisTaskFactory creates a new task factory.
func NewQuestionAnalysisTaskFactory(
	questionStore store.QuestionStore,
	analyzer generation.QuestionAnalyzer,
	usageStore store.UsageLogStore,
	logger *slog.Logger,
) *QuestionAnalysisTaskFactory {
	return &QuestionAnalysisTaskFactory{
		questionStore: questionStore,
		analyzer:      analyzer,
		usageStore:    usageStore,
		logger:        logger,
	}
}

// CreateTask builds a task for the given question job.
func (f *QuestionAnalysisTaskFactory) CreateTask(questionID uuid.UUID) (Task, error) {
	return NewQuestionAnalysisTask(
		questionID,
		f.questionStore,
		f.analyzer,
		f.usageStore,
		f.logger,
	)
}
