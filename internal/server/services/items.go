package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josegonzalo071-svg/house-backend/internal/common"
	"github.com/josegonzalo071-svg/house-backend/internal/logging"
	"github.com/josegonzalo071-svg/house-backend/internal/server/config"
	"github.com/josegonzalo071-svg/house-backend/internal/server/models"
	"github.com/josegonzalo071-svg/house-backend/internal/server/repositories/repomanager"
)

const defaultMime = "application/octet-stream"

// ItemService implements owner-scoped storage of opaque named blobs. The
// payload is never inspected; the MIME value is only a hint echoed back to
// the caller.
type ItemService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	logger       logging.Logger
	storeTimeout time.Duration
}

// NewItemService constructs an ItemService using repositories and server config.
func NewItemService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger, cfg *config.Config) *ItemService {
	return &ItemService{
		db:           db,
		repomanager:  m,
		logger:       logger,
		storeTimeout: cfg.StoreCallTimeout,
	}
}

// Store saves an item under (owner, name), replacing any previous payload
// with that name.
func (s *ItemService) Store(ctx context.Context, owner, name, mime string, data []byte) (*models.Item, error) {
	if owner == "" || name == "" {
		return nil, fmt.Errorf("%w: owner and name are required", common.ErrValidation)
	}
	if mime == "" {
		mime = defaultMime
	}

	item := &models.Item{ID: uuid.NewString(), Owner: owner, Name: name, Mime: mime, Data: data}
	err := storeCall(ctx, s.storeTimeout, func(ctx context.Context) error {
		var upsertErr error
		item, upsertErr = s.repomanager.Items(s.db).Upsert(ctx, item)
		return upsertErr
	})
	if err != nil {
		return nil, fmt.Errorf("error storing item: %w", err)
	}

	s.logger.Debug(ctx, "item stored", "owner", owner, "name", name, "bytes", len(data))
	return item, nil
}

// List returns the owner's item metadata, payloads excluded.
func (s *ItemService) List(ctx context.Context, owner string) ([]*models.Item, error) {
	if owner == "" {
		return nil, fmt.Errorf("%w: owner is required", common.ErrValidation)
	}

	var result []*models.Item
	err := storeCall(ctx, s.storeTimeout, func(ctx context.Context) error {
		var listErr error
		result, listErr = s.repomanager.Items(s.db).List(ctx, owner)
		return listErr
	})
	if err != nil {
		return nil, fmt.Errorf("error listing items: %w", err)
	}
	return result, nil
}

// Get returns a single item with its payload.
func (s *ItemService) Get(ctx context.Context, owner, name string) (*models.Item, error) {
	if owner == "" || name == "" {
		return nil, fmt.Errorf("%w: owner and name are required", common.ErrValidation)
	}

	var item *models.Item
	err := storeCall(ctx, s.storeTimeout, func(ctx context.Context) error {
		var getErr error
		item, getErr = s.repomanager.Items(s.db).Get(ctx, owner, name)
		return getErr
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error loading item: %w", err)
	}
	return item, nil
}

// Delete removes an item by name.
func (s *ItemService) Delete(ctx context.Context, owner, name string) error {
	if owner == "" || name == "" {
		return fmt.Errorf("%w: owner and name are required", common.ErrValidation)
	}

	err := storeCall(ctx, s.storeTimeout, func(ctx context.Context) error {
		return s.repomanager.Items(s.db).Delete(ctx, owner, name)
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("error deleting item: %w", err)
	}

	s.logger.Debug(ctx, "item deleted", "owner", owner, "name", name)
	return nil
}
