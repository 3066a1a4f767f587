// Package common defines shared sentinel errors and random-value helpers
// used across the house-backend layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Request validation.
	ErrValidation = errors.New("validation error")

	// Login failures. Unknown user and wrong password are deliberately
	// reported as the same kind so usernames cannot be enumerated.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Reset-token lifecycle errors.
	ErrTokenNotFound = errors.New("reset token not found")
	ErrTokenExpired  = errors.New("reset token expired")

	// Notification transport errors.
	ErrNotifyUnavailable = errors.New("notification transport not configured")
	ErrNotifyFailed      = errors.New("notification delivery failed")
)
