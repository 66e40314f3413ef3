package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jukuhub/juku-api/internal/domain"
	"github.com/jukuhub/juku-api/internal/generation"
	"github.com/jukuhub/juku-api/internal/notify"
	"github.com/jukuhub/juku-api/internal/service"
	"github.com/jukuhub/juku-api/internal/service/auth"
	"github.com/jukuhub/juku-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"wrapped auth error", fmt.Errorf("handling request: %w", auth.ErrInvalidToken), http.StatusUnauthorized},
		{"not owned", service.ErrNotOwned, http.StatusForbidden},
		{"permission denied", domain.ErrPermissionDenied, http.StatusForbidden},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"question not found", store.ErrQuestionNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"self demotion", domain.ErrSelfDemotion, http.StatusConflict},
		{"quota exceeded", service.ErrQuotaExceeded, http.StatusTooManyRequests},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"empty transcript", generation.ErrEmptyTranscript, http.StatusBadRequest},
		{"validation error", domain.NewValidationError("email", "is required", domain.ErrValidation), http.StatusBadRequest},
		{"push provider down", notify.ErrProviderUnavailable, http.StatusBadGateway},
		{"content provider down", generation.ErrProviderUnavailable, http.StatusBadGateway},
		{"generation failed", generation.ErrGenerationFailed, http.StatusBadGateway},
		{"unknown error", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantStatus, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("never leaks internal detail", func(t *testing.T) {
		t.Parallel()

		internal := errors.New("pq: connection refused host=10.0.0.5 password=hunter2")
		msg := GetSafeErrorMessage(internal)
		assert.Equal(t, "An unexpected error occurred", msg)
		assert.NotContains(t, msg, "hunter2")
	})

	t.Run("validation error surfaces field message", func(t *testing.T) {
		t.Parallel()

		err := domain.NewValidationError("image_mime", "is not supported", domain.ErrValidation)
		assert.Equal(t, "Invalid image_mime: is not supported", GetSafeErrorMessage(err))
	})

	t.Run("known sentinels map to friendly text", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "Daily usage limit reached", GetSafeErrorMessage(service.ErrQuotaExceeded))
		assert.Equal(t, "Token expired", GetSafeErrorMessage(auth.ErrExpiredToken))
		assert.Equal(t, "Email already exists", GetSafeErrorMessage(store.ErrEmailExists))
		assert.Equal(t, "Content provider unavailable", GetSafeErrorMessage(generation.ErrProviderUnavailable))
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	})
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := errors.New(
		"Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag")
	assert.Equal(t, "Invalid Email: required field", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("something else")))
}
