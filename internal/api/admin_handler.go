package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/jukuhub/juku-api/internal/api/shared"
	"github.com/jukuhub/juku-api/internal/domain"
	"github.com/jukuhub/juku-api/internal/platform/logger"
	"github.com/jukuhub/juku-api/internal/service"
)

const (
	defaultStatsRangeDays = 7
	maxStatsRangeDays     = 365
)

// AdminHandler handles the admin-only user management and usage statistics
// endpoints. All routes are expected to sit behind the admin middleware.
type AdminHandler struct {
	userService  service.UserService
	statsService service.StatsService
	logger       *slog.Logger
}

// NewAdminHandler creates a new AdminHandler. Panics if any dependency is nil.
func NewAdminHandler(
	userService service.UserService,
	statsService service.StatsService,
	log *slog.Logger,
) *AdminHandler {
	if userService == nil {
		panic("userService cannot be nil")
	}
	if statsService == nil {
		panic("statsService cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}
	return &AdminHandler{
		userService:  userService,
		statsService: statsService,
		logger:       log.With("component", "admin_handler"),
	}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list users")
		return
	}

	profiles := make([]UserProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, NewUserProfile(u))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, profiles)
}

// UpdateUser handles PATCH /api/admin/users/{id}. Admins cannot remove their
// own admin role.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	callerID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	targetID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UserUpdateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	update := service.UserUpdate{
		MustChangePassword: req.MustChangePassword,
		Password:           req.Password,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		update.Role = &role
	}

	user, err := h.userService.UpdateUser(r.Context(), callerID, targetID, update)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserProfile(user))
}

// UsageStats handles GET /api/admin/usage-stats?range=7d. The range defaults
// to 7 days and is capped at a year.
func (h *AdminHandler) UsageStats(w http.ResponseWriter, r *http.Request) {
	rangeDays, err := parseStatsRange(r.URL.Query().Get("range"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid range: expected a value like 7d or 30d")
		return
	}

	stats, err := h.statsService.UsageStats(r.Context(), rangeDays)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute usage statistics")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// parseStatsRange parses a trailing-window query value of the form "7d" or
// "30d" into a day count. An empty value selects the default window.
func parseStatsRange(raw string) (int, error) {
	if raw == "" {
		return defaultStatsRangeDays, nil
	}

	trimmed := strings.TrimSuffix(raw, "d")
	if trimmed == raw {
		return 0, domain.NewValidationError("range", "must end in d", domain.ErrValidation)
	}

	days, err := strconv.Atoi(trimmed)
	if err != nil || days <= 0 || days > maxStatsRangeDays {
		return 0, domain.NewValidationError("range", "must be between 1d and 365d", domain.ErrValidation)
	}

	return days, nil
}
