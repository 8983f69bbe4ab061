package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/cryptobulldev/userdash/internal/common"
	"github.com/cryptobulldev/userdash/internal/dbx"
	"github.com/cryptobulldev/userdash/internal/logging"
	"github.com/cryptobulldev/userdash/internal/server/config"
	"github.com/cryptobulldev/userdash/internal/server/models"
	"github.com/cryptobulldev/userdash/internal/server/repositories/refreshtokens"
	"github.com/cryptobulldev/userdash/internal/server/repositories/repomanager"
	"github.com/cryptobulldev/userdash/internal/server/repositories/users"
)

func testConfig(rotate bool) *config.Config {
	return &config.Config{
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  time.Minute,
		RefreshTokenValidityDuration: time.Hour,
		RotateRefreshTokens:          rotate,
	}
}

func newMemoryAuth(t *testing.T, rotate bool) (*AuthService, *UserService, *repomanager.MemoryRepositoryManager) {
	t.Helper()
	m := repomanager.NewMemoryRepositoryManager()
	return NewAuthService(nil, m, testConfig(rotate), logging.Nop()), NewUserService(nil, m, logging.Nop()), m
}

// fakeRefreshRepo lets tests inject failures per operation.
type fakeRefreshRepo struct {
	tokens    map[string]*models.RefreshToken
	createErr error
	findErr   error
	deleteErr error
	deleted   []string
	byUser    []string
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(_ context.Context, userID string, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefreshRepo) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	rt, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return rt, nil
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, token)
	delete(f.tokens, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteByUser(_ context.Context, userID string) error {
	f.byUser = append(f.byUser, userID)
	return nil
}

type fakeRepoManager struct {
	u users.Repository
	r refreshtokens.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.r }

// failingUsers wraps a users repository and fails lookups with err.
type failingUsers struct {
	users.Repository
	err error
}

func (f failingUsers) GetUserByLogin(context.Context, string) (*models.User, error) {
	return nil, f.err
}

func (f failingUsers) GetByID(context.Context, string) (*models.User, error) {
	return nil, f.err
}

func ptr[T any](v T) *T { return &v }
