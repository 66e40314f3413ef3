package generation

import (
	"context"
)

// Generator defines the interface for schema-constrained lesson content
// generation. This interface serves as a boundary between the application
// core and external AI/LLM services.
//
// Implementations issue the three constituent generations (summary, homework,
// quiz) concurrently and join them with all-or-nothing semantics: a partial
// result is never returned.
type Generator interface {
	// GenerateLessonContent produces the full content aggregate for a lesson
	// transcript. Returns ErrIncompleteResponse if any of the three
	// sub-generations fails to produce parseable output.
	GenerateLessonContent(
		ctx context.Context,
		transcript string,
		studentCtx StudentContext,
	) (*LessonContent, error)
}

// QuestionAnalyzer defines the interface for analyzing a photographed
// question with a vision-capable model.
type QuestionAnalyzer interface {
	// AnalyzeQuestionImage runs one vision analysis over the image using a
	// fixed instructional prompt: identify the subject and unit, restate the
	// core ask, infer the likely difficulty, and produce a hint that
	// withholds the final answer.
	AnalyzeQuestionImage(
		ctx context.Context,
		imageData []byte,
		imageMIME string,
	) (*QuestionAnalysis, error)
}

// UnavailableGenerator is the fallback when no provider is configured.
// Every call fails with ErrProviderUnavailable, which lets the rest of the
// application run without an API key.
type UnavailableGenerator struct{}

var (
	_ Generator        = (*UnavailableGenerator)(nil)
	_ QuestionAnalyzer = (*UnavailableGenerator)(nil)
)

func (g *UnavailableGenerator) GenerateLessonContent(
	ctx context.Context,
	transcript string,
	studentCtx StudentContext,
) (*LessonContent, error) {
	return nil, ErrProviderUnavailable
}

func (g *UnavailableGenerator) AnalyzeQuestionImage(
	ctx context.Context,
	imageData []byte,
	imageMIME string,
) (*QuestionAnalysis, error) {
	return nil, ErrProviderUnavailable
}
