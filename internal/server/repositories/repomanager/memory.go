package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/league-auth/internal/dbx"
	"github.com/dmitrijs2005/league-auth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/league-auth/internal/server/repositories/users"
)

// MemoryRepositoryManager hands out the same process-local repositories on
// every call and ignores the DBTX argument. Callers pass a nil *sql.DB.
type MemoryRepositoryManager struct {
	users         *users.MemoryRepository
	refreshTokens *refreshtokens.MemoryRepository
}

func NewMemoryRepositoryManager() RepositoryManager {
	return &MemoryRepositoryManager{
		users:         users.NewMemoryRepository(),
		refreshTokens: refreshtokens.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}

func (m *MemoryRepositoryManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}
