package api

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/jukuhub/juku-api/internal/api/shared"
	"github.com/jukuhub/juku-api/internal/platform/logger"
	"github.com/jukuhub/juku-api/internal/service"
)

// QuestionHandler handles question photo submission and retrieval.
type QuestionHandler struct {
	questionService service.QuestionService
	logger          *slog.Logger
}

// NewQuestionHandler creates a new QuestionHandler. Panics if any dependency is nil.
func NewQuestionHandler(questionService service.QuestionService, log *slog.Logger) *QuestionHandler {
	if questionService == nil {
		panic("questionService cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}
	return &QuestionHandler{
		questionService: questionService,
		logger:          log.With("component", "question_handler"),
	}
}

// SubmitQuestion handles POST /api/questions. The job is durable before the
// 202 is written; analysis happens asynchronously.
func (h *QuestionHandler) SubmitQuestion(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req QuestionSubmitRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	imageData, err := base64.StdEncoding.DecodeString(req.ImageData)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid image_data: must be base64 encoded")
		return
	}

	job, err := h.questionService.SubmitQuestion(r.Context(), userID, imageData, req.ImageMIME)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit question")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, QuestionSubmitResponse{
		ID:     job.ID,
		Status: job.Status,
	})
}

// GetQuestion handles GET /api/questions/{id}. Only the submitting student
// or an admin may read a job.
func (h *QuestionHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	questionID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	job, err := h.questionService.GetQuestion(r.Context(), userID, questionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve question")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewQuestionResponse(job))
}
