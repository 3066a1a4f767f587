package resettokens

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/josegonzalo071-svg/house-backend/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	expires := time.Now().Add(time.Hour)
	mock.ExpectExec(`(?s)INSERT\s+INTO\s+reset_tokens\s*\(username,\s*token_digest,\s*expires_at\)`).
		WithArgs("alice", "digest", expires).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), "alice", "digest", expires); err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+reset_tokens`).
		WillReturnError(errors.New("db down"))

	if err := repo.Create(context.Background(), "alice", "digest", time.Now()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFindLatest_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	expires := time.Now().Add(time.Hour)
	rows := sqlmock.NewRows([]string{"id", "username", "token_digest", "expires_at", "consumed_at"}).
		AddRow(int64(3), "alice", "digest", expires, nil)
	mock.ExpectQuery(`(?s)WHERE\s+username\s*=\s*\$1\s+AND\s+token_digest\s*=\s*\$2\s+AND\s+consumed_at\s+IS\s+NULL.*ORDER\s+BY\s+id\s+DESC`).
		WithArgs("alice", "digest").
		WillReturnRows(rows)

	got, err := repo.FindLatest(context.Background(), "alice", "digest")
	if err != nil {
		t.Fatalf("FindLatest error: %v", err)
	}
	if got.ID != 3 || got.ConsumedAt.Valid {
		t.Fatalf("unexpected token: %+v", got)
	}
}

func TestFindLatest_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+reset_tokens`).
		WithArgs("alice", "nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindLatest(context.Background(), "alice", "nope")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestConsume_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)UPDATE\s+reset_tokens\s+SET\s+consumed_at\s*=\s*now\(\)`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Consume(context.Background(), 3); err != nil {
		t.Fatalf("Consume error: %v", err)
	}
}

func TestConsume_AlreadyConsumed(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+reset_tokens`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Consume(context.Background(), 3)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}
