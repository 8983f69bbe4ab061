package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cryptobulldev/userdash/internal/client/client"
	"github.com/cryptobulldev/userdash/internal/client/models"
	"github.com/cryptobulldev/userdash/internal/common"
)

// UserService is the dashboard's CRUD surface.
type UserService interface {
	List(ctx context.Context, p models.PageParams) (models.UsersPage, error)
	Get(ctx context.Context, id string) (models.User, error)
	Create(ctx context.Context, payload models.UserPayload) (models.User, error)
	Update(ctx context.Context, id string, payload models.UserPayload) (models.User, error)
	Delete(ctx context.Context, id string) error
}

type userService struct {
	api api
}

func NewUserService(baseURL string, gw client.Doer) UserService {
	return &userService{api: newAPI(baseURL, gw)}
}

func (s *userService) List(ctx context.Context, p models.PageParams) (models.UsersPage, error) {
	var page models.UsersPage
	err := s.api.call(ctx, http.MethodGet, "/users", p.Query(), nil, &page)
	return page, err
}

func (s *userService) Get(ctx context.Context, id string) (models.User, error) {
	var u models.User
	path, err := userPath(id)
	if err != nil {
		return u, err
	}
	err = s.api.call(ctx, http.MethodGet, path, nil, nil, &u)
	return u, err
}

func (s *userService) Create(ctx context.Context, payload models.UserPayload) (models.User, error) {
	var u models.User
	if strings.TrimSpace(payload.Name) == "" || strings.TrimSpace(payload.Email) == "" || payload.Password == "" {
		return u, fmt.Errorf("%w: name, email and password are required", common.ErrorValidation)
	}
	err := s.api.call(ctx, http.MethodPost, "/users", nil, payload, &u)
	return u, err
}

func (s *userService) Update(ctx context.Context, id string, payload models.UserPayload) (models.User, error) {
	var u models.User
	path, err := userPath(id)
	if err != nil {
		return u, err
	}
	if payload == (models.UserPayload{}) {
		return u, fmt.Errorf("%w: nothing to update", common.ErrorValidation)
	}
	err = s.api.call(ctx, http.MethodPatch, path, nil, payload, &u)
	return u, err
}

func (s *userService) Delete(ctx context.Context, id string) error {
	path, err := userPath(id)
	if err != nil {
		return err
	}
	return s.api.call(ctx, http.MethodDelete, path, nil, nil, nil)
}

func userPath(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: user id is required", common.ErrorValidation)
	}
	return "/users/" + url.PathEscape(id), nil
}
