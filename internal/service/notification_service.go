package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jukuhub/juku-api/internal/domain"
	"github.com/jukuhub/juku-api/internal/notify"
	"github.com/jukuhub/juku-api/internal/store"
)

// NotificationService dispatches push notifications and maintains the device
// endpoint registry.
type NotificationService interface {
	// Send delivers a notification to every device registered for the target
	// user. A NotificationRecord is persisted for every dispatch, including
	// dispatches to users with zero registered devices. Tokens the provider
	// reports as permanently invalid are pruned from the registry.
	Send(
		ctx context.Context,
		senderID, targetUserID uuid.UUID,
		title, body string,
		meta map[string]string,
	) (*domain.NotificationRecord, error)

	// RegisterDevice adds a push token to the user's endpoint set.
	// Registering an already-known token succeeds without effect.
	RegisterDevice(ctx context.Context, userID uuid.UUID, token string) error
}

// NotificationServiceImpl implements the NotificationService interface.
type NotificationServiceImpl struct {
	userStore         store.UserStore
	deviceStore       store.DeviceStore
	notificationStore store.NotificationStore
	messenger         notify.Messenger
	logger            *slog.Logger
}

var _ NotificationService = (*NotificationServiceImpl)(nil)

// NewNotificationService creates a new NotificationService.
func NewNotificationService(
	userStore store.UserStore,
	deviceStore store.DeviceStore,
	notificationStore store.NotificationStore,
	messenger notify.Messenger,
	logger *slog.Logger,
) *NotificationServiceImpl {
	if userStore == nil {
		panic("userStore cannot be nil")
	}
	if deviceStore == nil {
		panic("deviceStore cannot be nil")
	}
	if notificationStore == nil {
		panic("notificationStore cannot be nil")
	}
	if messenger == nil {
		panic("messenger cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &NotificationServiceImpl{
		userStore:         userStore,
		deviceStore:       deviceStore,
		notificationStore: notificationStore,
		messenger:         messenger,
		logger:            logger.With("component", "notification_service"),
	}
}

// Send implements NotificationService.Send.
func (s *NotificationServiceImpl) Send(
	ctx context.Context,
	senderID, targetUserID uuid.UUID,
	title, body string,
	meta map[string]string,
) (*domain.NotificationRecord, error) {
	if title == "" {
		return nil, domain.ErrEmptyNotificationTitle
	}
	if body == "" {
		return nil, domain.ErrEmptyNotificationBody
	}

	if _, err := s.userStore.GetByID(ctx, targetUserID); err != nil {
		return nil, err
	}

	tokens, err := s.deviceStore.ListTokens(ctx, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load device endpoints: %w", err)
	}

	// No registered devices is a successful dispatch with zero deliveries.
	if len(tokens) == 0 {
		s.logger.Info("notification target has no registered devices",
			"target_user_id", targetUserID)
		return s.persistRecord(ctx, targetUserID, senderID, title, body, 0, 0)
	}

	data := make(map[string]string, len(meta)+1)
	for k, v := range meta {
		data[k] = v
	}
	data["sent_at"] = time.Now().UTC().Format(time.RFC3339)

	result, err := s.messenger.Send(ctx, notify.Message{
		Tokens: tokens,
		Title:  title,
		Body:   body,
		Data:   data,
	})
	if err != nil {
		// The multicast call itself failed. Record the attempt with every
		// delivery counted as failed before surfacing the provider error.
		if record, recordErr := s.persistRecord(
			ctx, targetUserID, senderID, title, body, 0, len(tokens),
		); recordErr == nil {
			s.logger.Error("notification dispatch failed",
				"error", err,
				"target_user_id", targetUserID,
				"record_id", record.ID)
		}
		if errors.Is(err, notify.ErrProviderUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", notify.ErrSendFailed, err)
	}

	if len(result.InvalidTokens) > 0 {
		if err := s.deviceStore.RemoveTokens(ctx, targetUserID, result.InvalidTokens); err != nil {
			s.logger.Error("failed to prune invalid device tokens",
				"error", err,
				"target_user_id", targetUserID,
				"token_count", len(result.InvalidTokens))
		}
	}

	s.logger.Info("notification dispatched",
		"target_user_id", targetUserID,
		"sent", result.SuccessCount,
		"failed", result.FailureCount,
		"pruned", len(result.InvalidTokens))

	return s.persistRecord(
		ctx, targetUserID, senderID, title, body,
		result.SuccessCount, result.FailureCount,
	)
}

func (s *NotificationServiceImpl) persistRecord(
	ctx context.Context,
	targetUserID, senderID uuid.UUID,
	title, body string,
	successCount, failureCount int,
) (*domain.NotificationRecord, error) {
	record, err := domain.NewNotificationRecord(
		targetUserID, senderID, title, body, successCount, failureCount,
	)
	if err != nil {
		return nil, err
	}

	if err := s.notificationStore.Create(ctx, record); err != nil {
		s.logger.Error("failed to persist notification record",
			"error", err,
			"target_user_id", targetUserID)
		return nil, fmt.Errorf("failed to save notification record: %w", err)
	}

	return record, nil
}

// RegisterDevice implements NotificationService.RegisterDevice.
func (s *NotificationServiceImpl) RegisterDevice(ctx context.Context, userID uuid.UUID, token string) error {
	endpoint, err := domain.NewDeviceEndpoint(userID, token)
	if err != nil {
		return err
	}

	if err := s.deviceStore.Register(ctx, endpoint); err != nil {
		s.logger.Error("failed to register device endpoint",
			"error", err,
			"user_id", userID)
		return fmt.Errorf("failed to register device: %w", err)
	}

	return nil
}
