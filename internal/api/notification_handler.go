package api

import (
	"log/slog"
	"net/http"

	"github.com/jukuhub/juku-api/internal/api/shared"
	"github.com/jukuhub/juku-api/internal/platform/logger"
	"github.com/jukuhub/juku-api/internal/service"
)

// NotificationHandler handles push notification dispatch and device
// registration.
type NotificationHandler struct {
	notificationService service.NotificationService
	logger              *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler. Panics if any
// dependency is nil.
func NewNotificationHandler(
	notificationService service.NotificationService,
	log *slog.Logger,
) *NotificationHandler {
	if notificationService == nil {
		panic("notificationService cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              log.With("component", "notification_handler"),
	}
}

// SendNotification handles POST /api/notifications. A dispatch record is
// persisted even when the target has no registered devices.
func (h *NotificationHandler) SendNotification(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	senderID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req NotificationSendRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	meta := map[string]string{}
	if req.URL != "" {
		meta["url"] = req.URL
	}
	if req.Type != "" {
		meta["type"] = req.Type
	}

	record, err := h.notificationService.Send(
		r.Context(), senderID, req.TargetUserID, req.Title, req.Body, meta)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to send notification")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NotificationSendResponse{
		ID:           record.ID,
		SuccessCount: record.SuccessCount,
		FailureCount: record.FailureCount,
		SentAt:       record.SentAt,
	})
}

// RegisterDevice handles POST /api/devices. Registering an already-known
// token succeeds without effect.
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req DeviceRegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	if err := h.notificationService.RegisterDevice(r.Context(), userID, req.Token); err != nil {
		HandleAPIError(w, r, err, "Failed to register device")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
