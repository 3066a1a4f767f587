package users

import (
	"context"

	"github.com/josegonzalo071-svg/house-backend/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*models.User, error)
	UpdateCredentials(ctx context.Context, username, salt, passwordHash string) error
}
