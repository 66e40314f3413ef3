// Package fcm implements the notify.Messenger interface on Firebase Cloud
// Messaging multicast sends.
package fcm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/jukuhub/juku-api/internal/config"
	"github.com/jukuhub/juku-api/internal/notify"
)

// Messenger sends multicast pushes through FCM.
type Messenger struct {
	client *messaging.Client
	logger *slog.Logger
}

var _ notify.Messenger = (*Messenger)(nil)

// NewMessenger initializes the Firebase app from the configured service
// account credentials and returns a Messenger.
// Returns notify.ErrProviderUnavailable when no credentials are configured.
func NewMessenger(ctx context.Context, logger *slog.Logger, cfg config.PushConfig) (*Messenger, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("%w: no credentials file configured", notify.ErrProviderUnavailable)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize firebase app: %v", notify.ErrProviderUnavailable, err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create messaging client: %v", notify.ErrProviderUnavailable, err)
	}

	return &Messenger{
		client: client,
		logger: logger.With(slog.String("component", "fcm_messenger")),
	}, nil
}

// Send implements notify.Messenger. One multicast call carries all tokens;
// per-endpoint failures are folded into the Result, and tokens reported as
// permanently unregistered are listed for pruning.
func (m *Messenger) Send(ctx context.Context, msg notify.Message) (*notify.Result, error) {
	if len(msg.Tokens) == 0 {
		return &notify.Result{}, nil
	}

	resp, err := m.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens: msg.Tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
	})
	if err != nil {
		m.logger.ErrorContext(ctx, "multicast send failed",
			slog.String("error", err.Error()),
			slog.Int("token_count", len(msg.Tokens)))
		return nil, fmt.Errorf("%w: %v", notify.ErrSendFailed, err)
	}

	result := &notify.Result{
		SuccessCount: resp.SuccessCount,
		FailureCount: resp.FailureCount,
	}

	for i, send := range resp.Responses {
		if send.Success || send.Error == nil {
			continue
		}
		if messaging.IsRegistrationTokenNotRegistered(send.Error) {
			result.InvalidTokens = append(result.InvalidTokens, msg.Tokens[i])
		}
	}

	m.logger.InfoContext(ctx, "multicast dispatched",
		slog.Int("success", result.SuccessCount),
		slog.Int("failure", result.FailureCount),
		slog.Int("invalid_tokens", len(result.InvalidTokens)))

	return result, nil
}
