// Package items provides PostgreSQL-backed storage for owner-scoped opaque
// blobs. Every query is keyed by owner, so one account can never read or
// delete another account's items.
package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/josegonzalo071-svg/house-backend/internal/common"
	"github.com/josegonzalo071-svg/house-backend/internal/dbx"
	"github.com/josegonzalo071-svg/house-backend/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts an item or replaces the payload of an existing (owner, name)
// pair, keeping the original id and creation time.
func (r *PostgresRepository) Upsert(ctx context.Context, item *models.Item) (*models.Item, error) {
	query := `
		INSERT INTO items (id, owner, name, mime, data)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner, name)
		DO UPDATE SET mime = EXCLUDED.mime, data = EXCLUDED.data
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		item.ID, item.Owner, item.Name, item.Mime, item.Data).
		Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

// List returns item metadata for owner, newest first. Payloads are not
// loaded; use Get or ListWithData for those.
func (r *PostgresRepository) List(ctx context.Context, owner string) ([]*models.Item, error) {
	query := `
		SELECT id, owner, name, mime, created_at
		FROM items
		WHERE owner = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Item
	for rows.Next() {
		item := &models.Item{}
		if err := rows.Scan(&item.ID, &item.Owner, &item.Name, &item.Mime, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns the full item (payload included) or common.ErrNotFound.
func (r *PostgresRepository) Get(ctx context.Context, owner, name string) (*models.Item, error) {
	query := `
		SELECT id, owner, name, mime, data, created_at
		FROM items
		WHERE owner = $1 AND name = $2
	`
	item := &models.Item{}
	err := r.db.QueryRowContext(ctx, query, owner, name).
		Scan(&item.ID, &item.Owner, &item.Name, &item.Mime, &item.Data, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

// Delete removes the item or reports common.ErrNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, owner, name string) error {
	query := `
		DELETE FROM items
		WHERE owner = $1 AND name = $2
	`
	res, err := r.db.ExecContext(ctx, query, owner, name)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// ListWithData returns all items for owner including payloads, for export.
func (r *PostgresRepository) ListWithData(ctx context.Context, owner string) ([]*models.Item, error) {
	query := `
		SELECT id, owner, name, mime, data, created_at
		FROM items
		WHERE owner = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Item
	for rows.Next() {
		item := &models.Item{}
		if err := rows.Scan(&item.ID, &item.Owner, &item.Name, &item.Mime, &item.Data, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
