package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jukuhub/juku-api/internal/domain"
	"github.com/jukuhub/juku-api/internal/generation"
	"github.com/jukuhub/juku-api/internal/store"
)

// LessonService turns lesson transcripts into the structured content aggregate.
type LessonService interface {
	// GenerateLesson produces summary, homework and quiz content for the given
	// transcript. One quota unit is consumed per attempt; the unit is NOT
	// refunded when generation fails, the cost attaches to the attempt.
	// A usage log entry is appended only for successful generations.
	GenerateLesson(
		ctx context.Context,
		userID uuid.UUID,
		transcript string,
		studentCtx generation.StudentContext,
	) (*generation.LessonContent, error)
}

// LessonServiceImpl implements the LessonService interface.
type LessonServiceImpl struct {
	quota      QuotaConsumer
	generator  generation.Generator
	usageStore store.UsageLogStore
	logger     *slog.Logger
}

var _ LessonService = (*LessonServiceImpl)(nil)

// NewLessonService creates a new LessonService.
func NewLessonService(
	quota QuotaConsumer,
	generator generation.Generator,
	usageStore store.UsageLogStore,
	logger *slog.Logger,
) *LessonServiceImpl {
	if quota == nil {
		panic("quota cannot be nil")
	}
	if generator == nil {
		panic("generator cannot be nil")
	}
	if usageStore == nil {
		panic("usageStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &LessonServiceImpl{
		quota:      quota,
		generator:  generator,
		usageStore: usageStore,
		logger:     logger.With("component", "lesson_service"),
	}
}

// GenerateLesson implements LessonService.GenerateLesson.
func (s *LessonServiceImpl) GenerateLesson(
	ctx context.Context,
	userID uuid.UUID,
	transcript string,
	studentCtx generation.StudentContext,
) (*generation.LessonContent, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, generation.ErrEmptyTranscript
	}

	// Quota is consumed before the provider call so the attempt is billed
	// even when generation fails downstream.
	if err := s.quota.Consume(ctx, userID); err != nil {
		return nil, err
	}

	content, err := s.generator.GenerateLessonContent(ctx, transcript, studentCtx)
	if err != nil {
		s.logger.Error("lesson content generation failed",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to generate lesson content: %w", err)
	}

	entry, err := domain.NewUsageLogEntry(userID, domain.OperationLessonContent)
	if err == nil {
		err = s.usageStore.Append(ctx, entry)
	}
	if err != nil {
		// The content was produced and the quota consumed; a missing audit
		// entry is logged loudly rather than failing the request.
		s.logger.Error("failed to append usage log entry",
			"error", err,
			"user_id", userID,
			"operation", domain.OperationLessonContent)
	}

	s.logger.Info("lesson content generated",
		"user_id", userID,
		"homework_items", len(content.Homework),
		"quiz_items", len(content.Quiz))

	return content, nil
}
