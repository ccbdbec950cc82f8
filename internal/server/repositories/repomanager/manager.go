// Package repomanager vends storage-specific repositories and runs schema
// migrations. Repositories are constructed per call over a dbx.DBTX so the
// same manager serves both plain connections and transactions.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/league-auth/internal/dbx"
	"github.com/dmitrijs2005/league-auth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/league-auth/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}
