// Package users stores API user accounts.
package users

import (
	"context"

	"github.com/cryptobulldev/userdash/internal/server/models"
)

// Repository is the user store. Lookups of unknown users return
// common.ErrorNotFound; an email already taken returns
// common.ErrorAlreadyExists. Emails compare case-insensitively.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetUserByLogin(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, p models.ListParams) ([]models.User, int, error)
	Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id string) error
}
