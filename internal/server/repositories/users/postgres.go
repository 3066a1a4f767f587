// Package users provides the PostgreSQL-backed credential store. Uniqueness
// of username and email is enforced by database constraints; callers treat
// any pre-insert existence check as best-effort only.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

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

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation. This is the real safety net behind the register pre-check.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// Create inserts a new user row. A duplicate username or email surfaces as
// common.ErrConflict.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, salt, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.Salt, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// GetByUsername returns the user row for username or common.ErrNotFound.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, email, salt, password_hash, created_at
		FROM users
		WHERE username = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

// GetByUsernameOrEmail resolves a user by either key, for the forgot-password
// flow where the caller may submit username or registered email.
func (r *PostgresRepository) GetByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*models.User, error) {
	query := `
		SELECT id, username, email, salt, password_hash, created_at
		FROM users
		WHERE username = $1 OR email = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, usernameOrEmail))
}

// UpdateCredentials overwrites salt and password hash in one statement, so a
// reader never observes a new hash against the old salt.
func (r *PostgresRepository) UpdateCredentials(ctx context.Context, username, salt, passwordHash string) error {
	query := `
		UPDATE users SET salt = $2, password_hash = $3
		WHERE username = $1
	`
	res, err := r.db.ExecContext(ctx, query, username, salt, passwordHash)
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

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Salt, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
