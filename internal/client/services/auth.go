package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cryptobulldev/userdash/internal/client/client"
	"github.com/cryptobulldev/userdash/internal/client/models"
	"github.com/cryptobulldev/userdash/internal/client/session"
	"github.com/cryptobulldev/userdash/internal/common"
)

// ErrNotLoggedIn is returned by Whoami without an access credential.
var ErrNotLoggedIn = errors.New("not logged in")

// Identity is what the client can tell about the current user from the
// access credential alone. Nothing here is verified.
type Identity struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// AuthService covers the session's explicit lifecycle: login, register
// and logout. Refresh is handled by the gateway and never called here.
type AuthService interface {
	Login(ctx context.Context, creds models.Credentials) error
	Register(ctx context.Context, reg models.Registration) error
	Logout(ctx context.Context) error
	Whoami() (Identity, error)
}

type authService struct {
	api   api
	store *session.Store
}

// NewAuthService binds the service to the gateway and the session store.
func NewAuthService(baseURL string, gw client.Doer, store *session.Store) AuthService {
	return &authService{api: newAPI(baseURL, gw), store: store}
}

func (s *authService) Login(ctx context.Context, creds models.Credentials) error {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}
	return s.authenticate(ctx, "/auth/login", creds)
}

func (s *authService) Register(ctx context.Context, reg models.Registration) error {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)
	if reg.Name == "" || reg.Email == "" || reg.Password == "" {
		return fmt.Errorf("%w: name, email and password are required", common.ErrorValidation)
	}
	return s.authenticate(ctx, "/auth/register", reg)
}

func (s *authService) authenticate(ctx context.Context, path string, body any) error {
	var out models.AuthResponse
	if err := s.api.call(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return err
	}
	if out.AccessToken == "" {
		return fmt.Errorf("%s: response has no access token", path)
	}

	s.store.Transition(session.Login{Pair: session.Pair{Access: out.AccessToken, Refresh: out.RefreshToken}})
	return nil
}

// Logout drops the session locally. The API keeps no server-side session
// the client could end.
func (s *authService) Logout(context.Context) error {
	s.store.Transition(session.Logout{})
	return nil
}

// Whoami decodes the claims of the current access credential.
func (s *authService) Whoami() (Identity, error) {
	access := s.store.Get().Access()
	if access == "" {
		return Identity{}, ErrNotLoggedIn
	}

	var claims struct {
		jwt.RegisteredClaims
		UserID string `json:"user_id"`
		Email  string `json:"email"`
	}
	if _, _, err := jwt.NewParser().ParseUnverified(access, &claims); err != nil {
		return Identity{}, fmt.Errorf("decode access token: %w", err)
	}

	id := Identity{UserID: claims.UserID, Email: claims.Email}
	if id.UserID == "" {
		id.UserID = claims.Subject
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}
