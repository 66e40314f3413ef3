package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jukuhub/juku-api/internal/api/shared"
	"github.com/jukuhub/juku-api/internal/store"
)

// AdminMiddleware restricts routes to users holding the admin role.
// It must run after AuthMiddleware.Authenticate, which places the caller's
// user ID in the request context.
type AdminMiddleware struct {
	userStore store.UserStore
}

// NewAdminMiddleware creates a new AdminMiddleware with the given dependencies.
func NewAdminMiddleware(userStore store.UserStore) *AdminMiddleware {
	return &AdminMiddleware{
		userStore: userStore,
	}
}

// RequireAdmin loads the caller's profile and rejects the request with 403
// unless they hold the admin role. The role is read from the store on every
// request so a revoked admin loses access immediately, not at token expiry.
func (m *AdminMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r)
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}

		user, err := m.userStore.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Unknown user")
				return
			}
			slog.Error("failed to load user for admin check",
				"error", err,
				"user_id", userID)
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Authorization error")
			return
		}

		if !user.IsAdmin() {
			shared.RespondWithError(w, r, http.StatusForbidden, "Admin role required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
