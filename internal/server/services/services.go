// Package services contains the server-side business logic: the credential
// lifecycle (AuthService), owner-scoped item storage (ItemService), and
// snapshot export (ExportService). Services hold no state of their own
// beyond configuration; all persistence goes through the repositories.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/josegonzalo071-svg/house-backend/internal/common"
)

// storeCall bounds a single repository call with timeout. A deadline hit is
// reported as common.ErrStorageUnavailable; the stores are never retried
// here, retries belong to the storage layer.
func storeCall(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(ctx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return common.ErrStorageUnavailable
	}
	return err
}
