package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptobulldev/userdash/internal/client/client"
	clientmodels "github.com/cryptobulldev/userdash/internal/client/models"
	clientservices "github.com/cryptobulldev/userdash/internal/client/services"
	"github.com/cryptobulldev/userdash/internal/client/session"
	"github.com/cryptobulldev/userdash/internal/common"
	"github.com/cryptobulldev/userdash/internal/logging"
	"github.com/cryptobulldev/userdash/internal/server/config"
	"github.com/cryptobulldev/userdash/internal/server/repositories/repomanager"
	"github.com/cryptobulldev/userdash/internal/server/services"
)

type dashboard struct {
	store   *session.Store
	auth    clientservices.AuthService
	users   clientservices.UserService
	refresh *atomic.Int32
}

// newDashboard starts an API server and a client stack pointed at it.
func newDashboard(t *testing.T) *dashboard {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                    "e2e-secret",
		AccessTokenValidityDuration:  time.Minute,
		RefreshTokenValidityDuration: time.Hour,
		RotateRefreshTokens:          true,
	}
	m := repomanager.NewMemoryRepositoryManager()
	h := NewHandler(services.NewAuthService(nil, m, cfg, logging.Nop()), services.NewUserService(nil, m, logging.Nop()), logging.Nop())
	router := NewRouter(h, "/api", nil, logging.Nop())

	var refreshes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/refresh" {
			refreshes.Add(1)
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	base := srv.URL + "/api"
	store := session.NewStore(nil, logging.Nop())
	store.Transition(session.Hydrated{})

	metrics := client.NewMetrics(prometheus.NewRegistry())
	coord := client.NewCoordinator(store, client.NewHTTPRefresher(base, srv.Client()), client.WithCoordinatorMetrics(metrics))
	gw := client.NewGateway(srv.Client(), store, coord, client.WithGatewayMetrics(metrics))

	return &dashboard{
		store:   store,
		auth:    clientservices.NewAuthService(base, gw, store),
		users:   clientservices.NewUserService(base, gw),
		refresh: &refreshes,
	}
}

func TestDashboard_ConcurrentStaleRequestsShareOneRefresh(t *testing.T) {
	ctx := context.Background()
	d := newDashboard(t)

	require.NoError(t, d.auth.Register(ctx, clientmodels.Registration{Name: "Alice", Email: "alice@example.com", Password: "secret1"}))
	valid := d.store.Get().Refresh()
	require.NotEmpty(t, valid)

	// keep the refresh credential, break the access credential
	d.store.Transition(session.Login{Pair: session.Pair{Access: "stale", Refresh: valid}})

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = d.users.List(ctx, clientmodels.PageParams{})
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	// rotation spends the old token, so a second refresh would have failed
	assert.Equal(t, int32(1), d.refresh.Load())
	assert.NotEqual(t, valid, d.store.Get().Refresh())
	assert.NotEqual(t, "stale", d.store.Get().Access())
}

func TestDashboard_RevokedRefreshLogsOut(t *testing.T) {
	ctx := context.Background()
	d := newDashboard(t)

	require.NoError(t, d.auth.Register(ctx, clientmodels.Registration{Name: "Alice", Email: "alice@example.com", Password: "secret1"}))
	d.store.Transition(session.Login{Pair: session.Pair{Access: "stale", Refresh: "revoked"}})

	_, err := d.users.List(ctx, clientmodels.PageParams{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrUnauthorized), "got %v", err)
	assert.ErrorIs(t, err, client.ErrRefreshRejected)
	assert.True(t, d.store.Get().LoggedOut())
}

func TestDashboard_CRUDThroughGateway(t *testing.T) {
	ctx := context.Background()
	d := newDashboard(t)

	require.NoError(t, d.auth.Register(ctx, clientmodels.Registration{Name: "Admin", Email: "admin@example.com", Password: "secret1"}))

	u, err := d.users.Create(ctx, clientmodels.UserPayload{Name: "Bob", Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)

	u, err = d.users.Update(ctx, u.ID, clientmodels.UserPayload{Name: "Robert"})
	require.NoError(t, err)
	assert.Equal(t, "Robert", u.Name)

	page, err := d.users.List(ctx, clientmodels.PageParams{Search: "rob"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	require.NoError(t, d.users.Delete(ctx, u.ID))
	_, err = d.users.Get(ctx, u.ID)
	assert.True(t, errors.Is(err, common.ErrorNotFound), "got %v", err)

	assert.Zero(t, d.refresh.Load())
}
