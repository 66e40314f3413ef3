package api

import (
	"log/slog"
	"net/http"

	"github.com/jukuhub/juku-api/internal/api/shared"
	"github.com/jukuhub/juku-api/internal/platform/logger"
	"github.com/jukuhub/juku-api/internal/service"
)

// LessonHandler handles lesson content generation requests.
type LessonHandler struct {
	lessonService service.LessonService
	logger        *slog.Logger
}

// NewLessonHandler creates a new LessonHandler. Panics if any dependency is nil.
func NewLessonHandler(lessonService service.LessonService, log *slog.Logger) *LessonHandler {
	if lessonService == nil {
		panic("lessonService cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}
	return &LessonHandler{
		lessonService: lessonService,
		logger:        log.With("component", "lesson_handler"),
	}
}

// GenerateLesson handles POST /api/lessons/generate. One quota unit is
// consumed per accepted request regardless of the generation outcome.
func (h *LessonHandler) GenerateLesson(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req LessonGenerateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	content, err := h.lessonService.GenerateLesson(r.Context(), userID, req.Transcript, req.StudentContext)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate lesson content")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, content)
}
