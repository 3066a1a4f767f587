package repomanager

import (
	"context"
	"database/sql"

	"github.com/josegonzalo071-svg/house-backend/internal/dbx"
	"github.com/josegonzalo071-svg/house-backend/internal/server/repositories/items"
	"github.com/josegonzalo071-svg/house-backend/internal/server/repositories/resettokens"
	"github.com/josegonzalo071-svg/house-backend/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same
// constructor serves both plain and transactional access.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	ResetTokens(db dbx.DBTX) resettokens.Repository
	Items(db dbx.DBTX) items.Repository
}
