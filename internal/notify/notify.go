// Package notify defines the boundary between the application core and the
// push-delivery provider.
package notify

import (
	"context"
	"errors"
)

// Common errors returned by push messengers.
var (
	// ErrProviderUnavailable is returned when the messenger has no usable
	// provider configuration.
	ErrProviderUnavailable = errors.New("push provider unavailable")

	// ErrSendFailed is returned when the multicast call itself could not be
	// completed, as opposed to individual endpoints failing.
	ErrSendFailed = errors.New("push send failed")
)

// Message is one push notification addressed to a set of device tokens.
// Data carries the structured payload (deep-link URL, category tag,
// timestamp) delivered alongside the visible notification.
type Message struct {
	Tokens []string
	Title  string
	Body   string
	Data   map[string]string
}

// Result is the per-multicast delivery report. InvalidTokens lists endpoints
// the provider reported as permanently unregistered; callers should prune
// them from their registry.
type Result struct {
	SuccessCount  int
	FailureCount  int
	InvalidTokens []string
}

// Messenger sends one multicast push message and reports per-endpoint
// outcomes. Implementations must treat individual endpoint failures as data
// in the Result, returning an error only when the call as a whole fails.
type Messenger interface {
	Send(ctx context.Context, msg Message) (*Result, error)
}

// UnavailableMessenger is the stand-in used when no provider is configured.
// Every send fails with ErrProviderUnavailable, which still leaves a
// dispatch record behind in the notification store.
type UnavailableMessenger struct{}

var _ Messenger = (*UnavailableMessenger)(nil)

// Send implements Messenger.
func (m *UnavailableMessenger) Send(ctx context.Context, msg Message) (*Result, error) {
	return nil, ErrProviderUnavailable
}
