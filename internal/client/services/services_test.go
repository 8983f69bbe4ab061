package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptobulldev/userdash/internal/client/client"
	"github.com/cryptobulldev/userdash/internal/client/models"
	"github.com/cryptobulldev/userdash/internal/client/session"
	"github.com/cryptobulldev/userdash/internal/common"
	"github.com/cryptobulldev/userdash/internal/logging"
)

type recordedCall struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

type fakeServer struct {
	mu    sync.Mutex
	calls []recordedCall
	mux   *http.ServeMux
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{
		Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery,
		Auth: r.Header.Get("Authorization"), Body: string(b),
	})
	f.mu.Unlock()
	f.mux.ServeHTTP(w, r)
}

func (f *fakeServer) Calls() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

type fixture struct {
	srv   *fakeServer
	url   string
	store *session.Store
	gw    *client.Gateway
}

func newFixture(t *testing.T, pair *session.Pair, routes func(mux *http.ServeMux)) *fixture {
	t.Helper()
	fs := &fakeServer{mux: http.NewServeMux()}
	routes(fs.mux)
	ts := httptest.NewServer(fs)
	t.Cleanup(ts.Close)

	store := session.NewStore(nil, logging.Nop())
	store.Transition(session.Hydrated{Restored: pair})
	coord := client.NewCoordinator(store, client.NewHTTPRefresher(ts.URL, ts.Client()))
	gw := client.NewGateway(ts.Client(), store, coord)

	return &fixture{srv: fs, url: ts.URL, store: store, gw: gw}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestAuthService_LoginInstallsPair(t *testing.T) {
	f := newFixture(t, nil, func(mux *http.ServeMux) {
		mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, map[string]string{"accessToken": "a1", "refreshToken": "r1"})
		})
	})

	svc := NewAuthService(f.url, f.gw, f.store)
	require.NoError(t, svc.Login(context.Background(), models.Credentials{Email: " ada@example.com ", Password: "pw"}))

	assert.Equal(t, &session.Pair{Access: "a1", Refresh: "r1"}, f.store.Get().Pair)
	calls := f.srv.Calls()
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"email":"ada@example.com","password":"pw"}`, calls[0].Body)
	assert.Empty(t, calls[0].Auth)
}

func TestAuthService_RegisterWithoutRefreshToken(t *testing.T) {
	f := newFixture(t, nil, func(mux *http.ServeMux) {
		mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 201, map[string]string{"accessToken": "a1"})
		})
	})

	svc := NewAuthService(f.url, f.gw, f.store)
	require.NoError(t, svc.Register(context.Background(), models.Registration{Name: "Ada", Email: "ada@example.com", Password: "pw"}))

	assert.Equal(t, &session.Pair{Access: "a1"}, f.store.Get().Pair)
}

func TestAuthService_LoginFailure(t *testing.T) {
	f := newFixture(t, nil, func(mux *http.ServeMux) {
		mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 401, map[string]any{"error": map[string]string{"code": "invalid_credentials", "message": "invalid email or password"}})
		})
	})

	svc := NewAuthService(f.url, f.gw, f.store)
	err := svc.Login(context.Background(), models.Credentials{Email: "a@b.c", Password: "bad"})

	var se *client.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "invalid email or password", se.Message)
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Nil(t, f.store.Get().Pair)
}

func TestAuthService_Validation(t *testing.T) {
	f := newFixture(t, nil, func(*http.ServeMux) {})
	svc := NewAuthService(f.url, f.gw, f.store)

	assert.ErrorIs(t, svc.Login(context.Background(), models.Credentials{Email: " "}), common.ErrorValidation)
	assert.ErrorIs(t, svc.Register(context.Background(), models.Registration{Email: "a@b.c", Password: "x"}), common.ErrorValidation)
	assert.Empty(t, f.srv.Calls())
}

func TestAuthService_LogoutAndWhoami(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1", "email": "ada@example.com", "exp": exp.Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	f := newFixture(t, &session.Pair{Access: tok, Refresh: "r"}, func(*http.ServeMux) {})
	svc := NewAuthService(f.url, f.gw, f.store)

	id, err := svc.Whoami()
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, "ada@example.com", id.Email)
	assert.True(t, exp.Equal(id.ExpiresAt))

	require.NoError(t, svc.Logout(context.Background()))
	assert.True(t, f.store.Get().LoggedOut())

	_, err = svc.Whoami()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestAuthService_WhoamiOpaqueToken(t *testing.T) {
	f := newFixture(t, &session.Pair{Access: "opaque"}, func(*http.ServeMux) {})
	_, err := NewAuthService(f.url, f.gw, f.store).Whoami()
	assert.Error(t, err)
}

func TestUserService_List(t *testing.T) {
	f := newFixture(t, &session.Pair{Access: "a1", Refresh: "r1"}, func(mux *http.ServeMux) {
		mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, map[string]any{
				"users": []map[string]string{{"id": "u1", "name": "Ada", "email": "ada@example.com", "createdAt": "2026-10-01T00:00:00Z"}},
				"total": 11,
			})
		})
	})

	page, err := NewUserService(f.url, f.gw).List(context.Background(), models.PageParams{Page: 2, Search: "ad"})
	require.NoError(t, err)

	assert.Equal(t, 11, page.Total)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "Ada", page.Users[0].Name)

	calls := f.srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "limit=10&page=2&search=ad", calls[0].Query)
	assert.Equal(t, "Bearer a1", calls[0].Auth)
}

func TestUserService_CRUD(t *testing.T) {
	f := newFixture(t, &session.Pair{Access: "a1", Refresh: "r1"}, func(mux *http.ServeMux) {
		mux.HandleFunc("POST /users", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 201, map[string]string{"id": "u9", "name": "Bob", "email": "bob@example.com"})
		})
		mux.HandleFunc("GET /users/{id}", func(w http.ResponseWriter, r *http.Request) {
			if r.PathValue("id") != "u9" {
				writeJSON(w, 404, map[string]any{"error": map[string]string{"code": "not_found", "message": "user not found"}})
				return
			}
			writeJSON(w, 200, map[string]string{"id": "u9", "name": "Bob"})
		})
		mux.HandleFunc("PATCH /users/{id}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, map[string]string{"id": r.PathValue("id"), "name": "Robert"})
		})
		mux.HandleFunc("DELETE /users/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})
	svc := NewUserService(f.url, f.gw)
	ctx := context.Background()

	u, err := svc.Create(ctx, models.UserPayload{Name: "Bob", Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "u9", u.ID)

	u, err = svc.Get(ctx, "u9")
	require.NoError(t, err)
	assert.Equal(t, "Bob", u.Name)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	u, err = svc.Update(ctx, "u9", models.UserPayload{Name: "Robert"})
	require.NoError(t, err)
	assert.Equal(t, "Robert", u.Name)

	require.NoError(t, svc.Delete(ctx, "u9"))

	calls := f.srv.Calls()
	require.Len(t, calls, 5)
	assert.Equal(t, http.MethodPatch, calls[3].Method)
	assert.JSONEq(t, `{"name":"Robert"}`, calls[3].Body)
	assert.Equal(t, "/users/u9", calls[4].Path)
}

func TestUserService_Validation(t *testing.T) {
	f := newFixture(t, &session.Pair{Access: "a1"}, func(*http.ServeMux) {})
	svc := NewUserService(f.url, f.gw)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.UserPayload{Name: "x"})
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = svc.Update(ctx, "u1", models.UserPayload{})
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = svc.Get(ctx, " ")
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.ErrorIs(t, svc.Delete(ctx, ""), common.ErrorValidation)
	assert.Empty(t, f.srv.Calls())
}

func TestUserService_ListSurvivesExpiredAccess(t *testing.T) {
	var mu sync.Mutex
	valid := "fresh"

	f := newFixture(t, &session.Pair{Access: "stale", Refresh: "r1"}, func(mux *http.ServeMux) {
		mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, map[string]string{"accessToken": "fresh"})
		})
		mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			ok := r.Header.Get("Authorization") == "Bearer "+valid
			mu.Unlock()
			if !ok {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeJSON(w, 200, map[string]any{"users": []any{}, "total": 0})
		})
	})

	_, err := NewUserService(f.url, f.gw).List(context.Background(), models.PageParams{})
	require.NoError(t, err)
	assert.Equal(t, &session.Pair{Access: "fresh", Refresh: "r1"}, f.store.Get().Pair)
	assert.Len(t, f.srv.Calls(), 3)
}
