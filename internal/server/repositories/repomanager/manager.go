// Package repomanager vends the server's repositories. Each manager binds
// repositories to a DBTX so services can run them inside a transaction;
// managers without a database ignore it.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/cryptobulldev/userdash/internal/dbx"
	"github.com/cryptobulldev/userdash/internal/server/repositories/refreshtokens"
	"github.com/cryptobulldev/userdash/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}

// Option customizes a manager.
type Option func(*options)

type options struct {
	refreshTokens refreshtokens.Repository
}

// WithRefreshTokens serves refresh tokens from repo regardless of the
// DBTX passed in, e.g. a Redis-backed store next to a SQL user table.
func WithRefreshTokens(repo refreshtokens.Repository) Option {
	return func(o *options) { o.refreshTokens = repo }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
