package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jukuhub/juku-api/internal/api/shared"
	"github.com/jukuhub/juku-api/internal/domain"
	"github.com/jukuhub/juku-api/internal/service/auth"
	"github.com/jukuhub/juku-api/internal/store"
)

type stubJWTService struct {
	claims *auth.Claims
	err    error
}

var _ auth.JWTService = (*stubJWTService)(nil)

func (s *stubJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return "token", nil
}

func (s *stubJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func (s *stubJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return "refresh", nil
}

func (s *stubJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

type stubUserStore struct {
	user *domain.User
	err  error
}

var _ store.UserStore = (*stubUserStore)(nil)

func (s *stubUserStore) Create(ctx context.Context, user *domain.User) error { return nil }

func (s *stubUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func (s *stubUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, store.ErrUserNotFound
}

func (s *stubUserStore) List(ctx context.Context) ([]*domain.User, error) { return nil, nil }

func (s *stubUserStore) Update(ctx context.Context, user *domain.User) error { return nil }

func (s *stubUserStore) WithTx(tx *sql.Tx) store.UserStore { return s }

// okHandler records whether it ran and which user ID it saw.
type okHandler struct {
	called bool
	userID uuid.UUID
}

func (h *okHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	if id, ok := GetUserID(r); ok {
		h.userID = id
	}
	w.WriteHeader(http.StatusOK)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name       string
		authHeader string
		jwt        *stubJWTService
		wantStatus int
		wantCalled bool
	}{
		{
			name:       "valid token",
			authHeader: "Bearer good-token",
			jwt:        &stubJWTService{claims: &auth.Claims{UserID: userID}},
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "missing header",
			authHeader: "",
			jwt:        &stubJWTService{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header",
			authHeader: "Token abc",
			jwt:        &stubJWTService{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			authHeader: "Bearer stale",
			jwt:        &stubJWTService{err: auth.ErrExpiredToken},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "refresh token on access route",
			authHeader: "Bearer refresh",
			jwt:        &stubJWTService{err: auth.ErrWrongTokenType},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			next := &okHandler{}
			mw := NewAuthMiddleware(tt.jwt)

			req := httptest.NewRequest(http.MethodGet, "/api/questions", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()
			mw.Authenticate(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCalled, next.called)
			if tt.wantCalled {
				assert.Equal(t, userID, next.userID)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	withUser := func(r *http.Request, id uuid.UUID) *http.Request {
		return r.WithContext(context.WithValue(r.Context(), shared.UserIDContextKey, id))
	}

	t.Run("admin passes", func(t *testing.T) {
		t.Parallel()

		admin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}
		next := &okHandler{}
		mw := NewAdminMiddleware(&stubUserStore{user: admin})

		req := withUser(httptest.NewRequest(http.MethodGet, "/api/admin/users", nil), admin.ID)
		rr := httptest.NewRecorder()
		mw.RequireAdmin(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, next.called)
	})

	t.Run("student rejected", func(t *testing.T) {
		t.Parallel()

		student := &domain.User{ID: uuid.New(), Role: domain.RoleStudent}
		next := &okHandler{}
		mw := NewAdminMiddleware(&stubUserStore{user: student})

		req := withUser(httptest.NewRequest(http.MethodGet, "/api/admin/users", nil), student.ID)
		rr := httptest.NewRecorder()
		mw.RequireAdmin(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.False(t, next.called)
	})

	t.Run("unauthenticated rejected", func(t *testing.T) {
		t.Parallel()

		next := &okHandler{}
		mw := NewAdminMiddleware(&stubUserStore{})

		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		rr := httptest.NewRecorder()
		mw.RequireAdmin(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, next.called)
	})

	t.Run("deleted user rejected", func(t *testing.T) {
		t.Parallel()

		next := &okHandler{}
		mw := NewAdminMiddleware(&stubUserStore{err: store.ErrUserNotFound})

		req := withUser(httptest.NewRequest(http.MethodGet, "/api/admin/users", nil), uuid.New())
		rr := httptest.NewRecorder()
		mw.RequireAdmin(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, next.called)
	})
}

func TestTraceMiddleware(t *testing.T) {
	t.Parallel()

	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	TraceMiddleware(next).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, traceID, shared.TraceIDLength*2) // hex encoded
}
