package resettokens

import (
	"context"
	"time"

	"github.com/josegonzalo071-svg/house-backend/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, username, tokenDigest string, expiresAt time.Time) error
	FindLatest(ctx context.Context, username, tokenDigest string) (*models.ResetToken, error)
	Consume(ctx context.Context, id int64) error
}
