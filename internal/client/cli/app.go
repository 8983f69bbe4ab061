package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cryptobulldev/userdash/internal/client/client"
	"github.com/cryptobulldev/userdash/internal/client/config"
	"github.com/cryptobulldev/userdash/internal/client/cookie"
	"github.com/cryptobulldev/userdash/internal/client/models"
	"github.com/cryptobulldev/userdash/internal/client/repositories/metadata"
	"github.com/cryptobulldev/userdash/internal/client/services"
	"github.com/cryptobulldev/userdash/internal/client/session"
	"github.com/cryptobulldev/userdash/internal/cryptox"
	"github.com/cryptobulldev/userdash/internal/filex"
	"github.com/cryptobulldev/userdash/internal/logging"
)

type cookieReader interface {
	Access() string
}

type entryLister interface {
	List(ctx context.Context) ([]metadata.Entry, error)
}

// App is the interactive dashboard client.
type App struct {
	config *config.Config
	log    logging.Logger

	store   *session.Store
	cookies cookieReader
	auth    services.AuthService
	users   services.UserService

	pinger  func(ctx context.Context) error
	metrics prometheus.Gatherer
	local   entryLister

	reader *bufio.Reader
	out    io.Writer

	// page is the last listed page; pages is its page count.
	page  models.PageParams
	pages int

	closers []func() error
}

// NewApp wires the local store, the session and the API clients from c.
// Restoring the persisted session runs in the background; commands that
// need it wait for it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, c.LogLevel, c.LogFormat)

	dir, err := filex.EnsureDir(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	c.DataDir = dir

	a := &App{config: c, log: logger.With("module", "cli"), reader: bufio.NewReader(os.Stdin), out: os.Stdout}

	db, err := client.InitDatabase(ctx, c.DatabasePath())
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}
	a.closers = append(a.closers, db.Close)

	var key []byte
	if c.EncryptSession {
		if key, err = cryptox.LoadOrCreateKey(c.KeyPath()); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	mirror, err := cookie.NewJarMirror(c.APIBaseURL)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	repo := metadata.NewSQLiteRepository(db)
	store := session.NewStore(mirror, logger)
	persister := session.NewPersister(repo, key)
	unbind := session.Bind(context.WithoutCancel(ctx), store, persister, logger)
	a.closers = append(a.closers, func() error { unbind(); return nil })

	reg := prometheus.NewRegistry()
	metrics := client.NewMetrics(reg)

	hc := &http.Client{Timeout: c.RequestTimeout, Jar: mirror.Jar()}
	refresher := client.NewHTTPRefresher(c.APIBaseURL, hc)
	coord := client.NewCoordinator(store, refresher,
		client.WithRefreshTimeout(c.RefreshTimeout),
		client.WithCoordinatorMetrics(metrics),
		client.WithCoordinatorLogger(logger),
	)
	gw := client.NewGateway(hc, store, coord,
		client.WithGatewayMetrics(metrics),
		client.WithGatewayLogger(logger),
	)

	conn, err := gw.DialGRPC(c.GRPCAddr)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.closers = append(a.closers, conn.Close)

	a.store = store
	a.cookies = mirror
	a.auth = services.NewAuthService(c.APIBaseURL, gw, store)
	a.users = services.NewUserService(c.APIBaseURL, gw)
	a.pinger = func(ctx context.Context) error { return client.Ping(ctx, conn) }
	a.metrics = reg
	a.local = repo

	go a.restore(ctx, persister)

	return a, nil
}

// restore hydrates the store. An unreadable record is dropped so the next
// start begins clean.
func (a *App) restore(ctx context.Context, p *session.Persister) {
	if err := session.Hydrate(ctx, a.store, p); err != nil {
		a.log.Warn(ctx, "persisted session discarded", "error", err)
		if err := p.Clear(ctx); err != nil {
			a.log.Error(ctx, "failed to clear persisted session", "error", err)
		}
	}
}

// Run prints the banner and blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to userdash (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}

// Close releases everything NewApp opened, in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) hydrate(ctx context.Context) error {
	_, err := a.store.WaitHydrated(ctx)
	return err
}

func (a *App) accessCookie() string {
	return a.cookies.Access()
}

// status is the prompt label: the signed-in email, or guest.
func (a *App) status() string {
	id, err := a.auth.Whoami()
	if err != nil || id.Email == "" {
		return "(guest)"
	}
	return "(" + id.Email + ")"
}

func (a *App) pageSize() int {
	if a.config != nil && a.config.PageSize > 0 {
		return a.config.PageSize
	}
	return models.DefaultPageLimit
}
