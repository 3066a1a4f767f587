// Package notify delivers recovery codes to a user's registered email.
//
// The transport is optional at deploy time. Rather than a nullable handle,
// the absent case is its own Notifier variant, so callers always hold a
// usable value and "not configured" surfaces as a first-class error.
package notify

import (
	"context"

	"github.com/josegonzalo071-svg/house-backend/internal/common"
)

// Notifier sends a message to a single recipient.
type Notifier interface {
	Send(ctx context.Context, toEmail, subject, body string) error
}

// Unconfigured is the Notifier used when no mail transport is set up. Every
// send fails with common.ErrNotifyUnavailable.
type Unconfigured struct{}

// None returns the unconfigured Notifier variant.
func None() Unconfigured {
	return Unconfigured{}
}

func (Unconfigured) Send(ctx context.Context, toEmail, subject, body string) error {
	return common.ErrNotifyUnavailable
}
