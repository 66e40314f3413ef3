// Package service provides application-level services for quota accounting,
// lesson generation, question submission, notifications, and user management.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check these with errors.Is(); the API layer maps them to HTTP status
// codes.
var (
	// ErrQuotaExceeded indicates the user has consumed their daily allowance
	// of billed AI calls. API layer maps this to HTTP 429.
	ErrQuotaExceeded = errors.New("daily usage quota exceeded")

	// ErrNotOwned indicates a resource is owned by a different user than the
	// one making the request. API layer maps this to HTTP 403.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrInvalidCredentials indicates an email/password pair that does not
	// match a registered user. API layer maps this to HTTP 401.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
