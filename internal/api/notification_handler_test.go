package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jukuhub/juku-api/internal/domain"
	"github.com/jukuhub/juku-api/internal/notify"
)

func TestSendNotification(t *testing.T) {
	t.Parallel()

	senderID := uuid.New()
	targetID := uuid.New()
	validPayload := map[string]interface{}{
		"target_user_id": targetID.String(),
		"title":          "New homework",
		"body":           "Your homework for today is ready.",
		"url":            "https://app.example.com/homework/123",
		"type":           "homework",
	}

	t.Run("dispatched", func(t *testing.T) {
		t.Parallel()

		record := &domain.NotificationRecord{
			ID:           uuid.New(),
			TargetUserID: targetID,
			SenderID:     senderID,
			Title:        "New homework",
			Body:         "Your homework for today is ready.",
			SentAt:       time.Now().UTC(),
			SuccessCount: 2,
			FailureCount: 1,
		}
		notificationService := &mockNotificationService{record: record}
		handler := NewNotificationHandler(notificationService, testLogger())

		req := newJSONRequest(t, http.MethodPost, "/api/notifications", validPayload, &senderID)
		rr := httptest.NewRecorder()
		handler.SendNotification(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "https://app.example.com/homework/123", notificationService.lastMeta["url"])
		assert.Equal(t, "homework", notificationService.lastMeta["type"])

		var resp NotificationSendResponse
		decodeBody(t, rr, &resp)
		assert.Equal(t, record.ID, resp.ID)
		assert.Equal(t, 2, resp.SuccessCount)
		assert.Equal(t, 1, resp.FailureCount)
	})

	t.Run("provider unavailable", func(t *testing.T) {
		t.Parallel()

		notificationService := &mockNotificationService{sendErr: notify.ErrProviderUnavailable}
		handler := NewNotificationHandler(notificationService, testLogger())

		req := newJSONRequest(t, http.MethodPost, "/api/notifications", validPayload, &senderID)
		rr := httptest.NewRecorder()
		handler.SendNotification(rr, req)

		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})

	t.Run("missing title", func(t *testing.T) {
		t.Parallel()

		notificationService := &mockNotificationService{}
		handler := NewNotificationHandler(notificationService, testLogger())

		req := newJSONRequest(t, http.MethodPost, "/api/notifications", map[string]interface{}{
			"target_user_id": targetID.String(),
			"body":           "Body without a title.",
		}, &senderID)
		rr := httptest.NewRecorder()
		handler.SendNotification(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()

		handler := NewNotificationHandler(&mockNotificationService{}, testLogger())

		req := newJSONRequest(t, http.MethodPost, "/api/notifications", validPayload, nil)
		rr := httptest.NewRecorder()
		handler.SendNotification(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRegisterDevice(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("registered", func(t *testing.T) {
		t.Parallel()

		notificationService := &mockNotificationService{}
		handler := NewNotificationHandler(notificationService, testLogger())

		req := newJSONRequest(t, http.MethodPost, "/api/devices", map[string]interface{}{
			"token": "fcm-token-abc123",
		}, &userID)
		rr := httptest.NewRecorder()
		handler.RegisterDevice(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "fcm-token-abc123", notificationService.lastToken)
	})

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()

		handler := NewNotificationHandler(&mockNotificationService{}, testLogger())

		req := newJSONRequest(t, http.MethodPost, "/api/devices", map[string]interface{}{}, &userID)
		rr := httptest.NewRecorder()
		handler.RegisterDevice(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
