package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for notifications and device endpoints
var (
	ErrEmptyNotificationID     = errors.New("notification ID cannot be empty")
	ErrEmptyNotificationTarget = errors.New("notification target user ID cannot be empty")
	ErrEmptyNotificationTitle  = errors.New("notification title cannot be empty")
	ErrEmptyNotificationBody   = errors.New("notification body cannot be empty")
	ErrEmptyDeviceToken        = errors.New("device token cannot be empty")
)

// NotificationRecord is an immutable log of one dispatched notification,
// including per-endpoint delivery counts. A record is written even when the
// target had no registered endpoints.
type NotificationRecord struct {
	ID           uuid.UUID `json:"id"`
	TargetUserID uuid.UUID `json:"target_user_id"`
	SenderID     uuid.UUID `json:"sender_id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	SentAt       time.Time `json:"sent_at"`
	SuccessCount int       `json:"success_count"`
	FailureCount int       `json:"failure_count"`
}

// NewNotificationRecord creates a notification record capturing the outcome
// of a dispatch. Returns an error if validation fails.
func NewNotificationRecord(
	targetUserID, senderID uuid.UUID,
	title, body string,
	successCount, failureCount int,
) (*NotificationRecord, error) {
	record := &NotificationRecord{
		ID:           uuid.New(),
		TargetUserID: targetUserID,
		SenderID:     senderID,
		Title:        title,
		Body:         body,
		SentAt:       time.Now().UTC(),
		SuccessCount: successCount,
		FailureCount: failureCount,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the NotificationRecord has valid data.
func (n *NotificationRecord) Validate() error {
	if n.ID == uuid.Nil {
		return ErrEmptyNotificationID
	}

	if n.TargetUserID == uuid.Nil {
		return ErrEmptyNotificationTarget
	}

	if n.Title == "" {
		return ErrEmptyNotificationTitle
	}

	if n.Body == "" {
		return ErrEmptyNotificationBody
	}

	return nil
}

// DeviceEndpoint associates a push delivery token with a user. Tokens are
// unique per user; registration is idempotent and invalid tokens are pruned
// lazily when a delivery report marks them permanently unregistered.
type DeviceEndpoint struct {
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDeviceEndpoint creates a device endpoint for the given user and token.
func NewDeviceEndpoint(userID uuid.UUID, token string) (*DeviceEndpoint, error) {
	if userID == uuid.Nil {
		return nil, ErrEmptyUserID
	}

	if token == "" {
		return nil, ErrEmptyDeviceToken
	}

	return &DeviceEndpoint{
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now().UTC(),
	}, nil
}
