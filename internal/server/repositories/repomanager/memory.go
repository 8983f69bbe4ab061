package repomanager

import (
	"context"
	"database/sql"

	"github.com/cryptobulldev/userdash/internal/dbx"
	"github.com/cryptobulldev/userdash/internal/server/repositories/refreshtokens"
	"github.com/cryptobulldev/userdash/internal/server/repositories/users"
)

// MemoryRepositoryManager serves process-local repositories. Every call
// returns the same instances, so data survives across requests but not
// restarts.
type MemoryRepositoryManager struct {
	users         *users.MemoryRepository
	refreshTokens refreshtokens.Repository
}

func NewMemoryRepositoryManager(opts ...Option) *MemoryRepositoryManager {
	o := buildOptions(opts)
	m := &MemoryRepositoryManager{
		users:         users.NewMemoryRepository(),
		refreshTokens: o.refreshTokens,
	}
	if m.refreshTokens == nil {
		m.refreshTokens = refreshtokens.NewMemoryRepository()
	}
	return m
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *MemoryRepositoryManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}
