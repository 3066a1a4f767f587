package items

import (
	"context"

	"github.com/josegonzalo071-svg/house-backend/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, item *models.Item) (*models.Item, error)
	List(ctx context.Context, owner string) ([]*models.Item, error)
	Get(ctx context.Context, owner, name string) (*models.Item, error)
	Delete(ctx context.Context, owner, name string) error
	ListWithData(ctx context.Context, owner string) ([]*models.Item, error)
}
