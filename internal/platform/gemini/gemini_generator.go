package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/jukuhub/juku-api/internal/config"
	"github.com/jukuhub/juku-api/internal/generation"
)

// contentCaller abstracts the raw model invocation so tests can substitute
// canned responses. The production implementation wraps *genai.Client.
type contentCaller interface {
	generate(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		cfg *genai.GenerateContentConfig,
	) (string, error)
}

// GeminiGenerator implements generation.Generator and generation.QuestionAnalyzer
// using Google's Gemini API.
type GeminiGenerator struct {
	logger      *slog.Logger
	caller      contentCaller
	model       string
	visionModel string
	timeout     time.Duration

	summaryTmpl  *template.Template
	homeworkTmpl *template.Template
	quizTmpl     *template.Template
}

var (
	_ generation.Generator        = (*GeminiGenerator)(nil)
	_ generation.QuestionAnalyzer = (*GeminiGenerator)(nil)
)

// NewGeminiGenerator creates a new GeminiGenerator from LLM configuration.
// Returns generation.ErrProviderUnavailable when no API key is configured and
// generation.ErrInvalidConfig when the model name is missing.
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is not configured", generation.ErrProviderUnavailable)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newWithCaller(logger, cfg, &genaiCaller{client: client})
}

// newWithCaller finishes construction with an injectable caller so tests can
// avoid the network entirely.
func newWithCaller(logger *slog.Logger, cfg config.LLMConfig, caller contentCaller) (*GeminiGenerator, error) {
	summaryTmpl, err := template.New("summary").Parse(summaryPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse summary template: %v", generation.ErrInvalidConfig, err)
	}

	homeworkTmpl, err := template.New("homework").
		Parse(fmt.Sprintf(homeworkPromptTemplate, minHomeworkItems, maxHomeworkItems))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse homework template: %v", generation.ErrInvalidConfig, err)
	}

	quizTmpl, err := template.New("quiz").Parse(quizPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse quiz template: %v", generation.ErrInvalidConfig, err)
	}

	visionModel := cfg.VisionModelName
	if visionModel == "" {
		visionModel = cfg.ModelName
	}

	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &GeminiGenerator{
		logger:       logger.With(slog.String("component", "gemini_generator")),
		caller:       caller,
		model:        cfg.ModelName,
		visionModel:  visionModel,
		timeout:      timeout,
		summaryTmpl:  summaryTmpl,
		homeworkTmpl: homeworkTmpl,
		quizTmpl:     quizTmpl,
	}, nil
}

// GenerateLessonContent implements generation.Generator.
//
// The three constituent generations run concurrently and are joined with
// all-or-nothing semantics: the first failure cancels the siblings and the
// whole call fails with ErrIncompleteResponse. No partial aggregate is ever
// returned.
func (g *GeminiGenerator) GenerateLessonContent(
	ctx context.Context,
	transcript string,
	studentCtx generation.StudentContext,
) (*generation.LessonContent, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, generation.ErrEmptyTranscript
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	g.logger.InfoContext(ctx, "generating lesson content",
		slog.Int("transcript_length", len(transcript)))

	var (
		summary  generation.LessonSummary
		homework struct {
			Items []generation.HomeworkItem `json:"items"`
		}
		quiz struct {
			Questions []generation.QuizQuestion `json:"questions"`
		}
	)

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		prompt, err := renderPrompt(g.summaryTmpl, transcript, studentCtx)
		if err != nil {
			return err
		}
		if err := g.generateJSON(egCtx, g.model, prompt, summarySchema(), summaryTemperature, &summary); err != nil {
			return fmt.Errorf("summary: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		prompt, err := renderPrompt(g.homeworkTmpl, transcript, studentCtx)
		if err != nil {
			return err
		}
		if err := g.generateJSON(egCtx, g.model, prompt, homeworkSchema(), creativeTemperature, &homework); err != nil {
			return fmt.Errorf("homework: %w", err)
		}
		if len(homework.Items) < minHomeworkItems || len(homework.Items) > maxHomeworkItems {
			return fmt.Errorf("homework: %w: got %d items, want %d-%d",
				generation.ErrInvalidResponse, len(homework.Items), minHomeworkItems, maxHomeworkItems)
		}
		return nil
	})

	eg.Go(func() error {
		prompt, err := renderPrompt(g.quizTmpl, transcript, studentCtx)
		if err != nil {
			return err
		}
		if err := g.generateJSON(egCtx, g.model, prompt, quizSchema(), creativeTemperature, &quiz); err != nil {
			return fmt.Errorf("quiz: %w", err)
		}
		if len(quiz.Questions) == 0 {
			return fmt.Errorf("quiz: %w: no questions", generation.ErrInvalidResponse)
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		g.logger.ErrorContext(ctx, "lesson content generation failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("%w: %v", generation.ErrIncompleteResponse, err)
	}

	g.logger.InfoContext(ctx, "lesson content generated",
		slog.Int("homework_items", len(homework.Items)),
		slog.Int("quiz_questions", len(quiz.Questions)),
		slog.Duration("elapsed", time.Since(start)))

	return &generation.LessonContent{
		Summary:  &summary,
		Homework: homework.Items,
		Quiz:     quiz.Questions,
	}, nil
}

// AnalyzeQuestionImage implements generation.QuestionAnalyzer.
func (g *GeminiGenerator) AnalyzeQuestionImage(
	ctx context.Context,
	imageData []byte,
	imageMIME string,
) (*generation.QuestionAnalysis, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("%w: image payload is empty", generation.ErrGenerationFailed)
	}

	if imageMIME == "" {
		imageMIME = "image/jpeg"
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: questionAnalysisPrompt},
			{InlineData: &genai.Blob{MIMEType: imageMIME, Data: imageData}},
		},
	}}

	text, err := g.caller.generate(ctx, g.visionModel, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](visionTemperature),
	})
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty analysis text", generation.ErrInvalidResponse)
	}

	return &generation.QuestionAnalysis{Text: text}, nil
}

// generateJSON issues one schema-constrained generation and unmarshals the
// response text into out.
func (g *GeminiGenerator) generateJSON(
	ctx context.Context,
	model, prompt string,
	schema *genai.Schema,
	temperature float32,
	out any,
) error {
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: prompt}},
	}}

	text, err := g.caller.generate(ctx, model, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(temperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err)
	}

	return nil
}

// genaiCaller is the production contentCaller backed by *genai.Client.
type genaiCaller struct {
	client *genai.Client
}

func (c *genaiCaller) generate(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", generation.ErrContentBlocked
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty response text", generation.ErrInvalidResponse)
	}

	return text, nil
}
