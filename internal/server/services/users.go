package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cryptobulldev/userdash/internal/common"
	"github.com/cryptobulldev/userdash/internal/cryptox"
	"github.com/cryptobulldev/userdash/internal/dbx"
	"github.com/cryptobulldev/userdash/internal/logging"
	"github.com/cryptobulldev/userdash/internal/server/models"
	"github.com/cryptobulldev/userdash/internal/server/repositories/repomanager"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// UserChanges is a partial update; nil fields are kept. Password is
// plaintext and gets hashed here.
type UserChanges struct {
	Name     *string
	Email    *string
	Password *string
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *UserService {
	return &UserService{db: db, repomanager: m, log: log.With("module", "users")}
}

// List returns one page (1-based) of users and the total match count.
// Out-of-range limits are clamped.
func (s *UserService) List(ctx context.Context, page, limit int, search string) ([]models.User, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	limit = min(limit, MaxPageLimit)

	return s.repomanager.Users(s.db).List(ctx, models.ListParams{
		Offset: (page - 1) * limit,
		Limit:  limit,
		Search: strings.TrimSpace(search),
	})
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, name, email, password string) (*models.User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if err := validateNew(name, email, password); err != nil {
		return nil, err
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: cryptox.HashPassword(password),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user created", "user_id", u.ID)
	return u, nil
}

// Update applies ch. A password change revokes the user's refresh tokens.
func (s *UserService) Update(ctx context.Context, id string, ch UserChanges) (*models.User, error) {
	var upd models.UserUpdate

	if ch.Name != nil {
		name := strings.TrimSpace(*ch.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		upd.Name = &name
	}
	if ch.Email != nil {
		email := strings.TrimSpace(*ch.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		upd.Email = &email
	}
	if ch.Password != nil {
		if err := validatePassword(*ch.Password); err != nil {
			return nil, err
		}
		hash := cryptox.HashPassword(*ch.Password)
		upd.PasswordHash = &hash
	}
	if upd.Name == nil && upd.Email == nil && upd.PasswordHash == nil {
		return nil, fmt.Errorf("%w: nothing to update", common.ErrorValidation)
	}

	var user *models.User
	err := inTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = s.repomanager.Users(tx).Update(ctx, id, upd)
		if err != nil {
			return err
		}
		if upd.PasswordHash != nil {
			return s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the user and revokes their refresh tokens.
func (s *UserService) Delete(ctx context.Context, id string) error {
	err := inTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, id); err != nil {
			return err
		}
		return s.repomanager.Users(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "user deleted", "user_id", id)
	return nil
}
