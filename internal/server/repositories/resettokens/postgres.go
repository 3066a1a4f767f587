// Package resettokens provides the PostgreSQL-backed store for issued
// password-recovery tokens. The table is append-only: tokens are consumed by
// stamping consumed_at, never deleted, and several live tokens may coexist
// for one username.
package resettokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

// Create appends a token row for username with the given digest and expiry.
func (r *PostgresRepository) Create(ctx context.Context, username, tokenDigest string, expiresAt time.Time) error {
	query := `
		INSERT INTO reset_tokens (username, token_digest, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, username, tokenDigest, expiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// FindLatest returns the most recently issued unconsumed token row matching
// (username, digest), or common.ErrNotFound. Expiry is not checked here; the
// caller decides how to report an expired match.
func (r *PostgresRepository) FindLatest(ctx context.Context, username, tokenDigest string) (*models.ResetToken, error) {
	query := `
		SELECT id, username, token_digest, expires_at, consumed_at
		FROM reset_tokens
		WHERE username = $1 AND token_digest = $2 AND consumed_at IS NULL
		ORDER BY id DESC
		LIMIT 1
	`
	token := &models.ResetToken{}
	err := r.db.QueryRowContext(ctx, query, username, tokenDigest).
		Scan(&token.ID, &token.Username, &token.TokenDigest, &token.ExpiresAt, &token.ConsumedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return token, nil
}

// Consume stamps the row as used so it cannot verify a second reset.
func (r *PostgresRepository) Consume(ctx context.Context, id int64) error {
	query := `
		UPDATE reset_tokens SET consumed_at = now()
		WHERE id = $1 AND consumed_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, id)
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
