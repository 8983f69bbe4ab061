// Package server wires the development API server: storage selection, the
// REST API, the gRPC health endpoint and the metrics listener.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/cryptobulldev/userdash/internal/logging"
	"github.com/cryptobulldev/userdash/internal/server/config"
	gs "github.com/cryptobulldev/userdash/internal/server/grpc"
	"github.com/cryptobulldev/userdash/internal/server/httpapi"
	"github.com/cryptobulldev/userdash/internal/server/repositories/refreshtokens"
	"github.com/cryptobulldev/userdash/internal/server/repositories/repomanager"
	"github.com/cryptobulldev/userdash/internal/server/services"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	redis       *redis.Client
	authService *services.AuthService
	userService *services.UserService
	registry    *prometheus.Registry
	handler     http.Handler
}

// NewApp picks the storage backends from c, runs migrations when a
// database is configured and builds the HTTP handler.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)
	app := &App{config: c, logger: logger}

	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	var opts []repomanager.Option
	if c.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB})
		if err := app.redis.Ping(ctx).Err(); err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		opts = append(opts, repomanager.WithRefreshTokens(refreshtokens.NewRedisRepository(app.redis, refreshtokens.DefaultRedisPrefix)))
		logger.Info(ctx, "refresh tokens stored in redis", "addr", c.RedisAddr)
	}

	var rm repomanager.RepositoryManager
	if c.DatabaseDSN != "" {
		db, err := sql.Open("pgx", c.DatabaseDSN)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db
		if err := db.PingContext(ctx); err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm = repomanager.NewPostgresRepositoryManager(opts...)
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("migrations error: %w", err)
		}
		logger.Info(ctx, "users stored in postgres")
	} else {
		rm = repomanager.NewMemoryRepositoryManager(opts...)
		logger.Warn(ctx, "no database configured, users are kept in memory")
	}

	app.authService = services.NewAuthService(app.db, rm, c, logger)
	app.userService = services.NewUserService(app.db, rm, logger)

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	h := httpapi.NewHandler(app.authService, app.userService, logger)
	app.handler = httpapi.NewRouter(h, c.APIPrefix, httpapi.NewMetrics(app.registry), logger)

	return app, nil
}

// Handler is the REST API with its middleware.
func (app *App) Handler() http.Handler {
	return app.handler
}

// Run serves until ctx is cancelled, SIGINT/SIGTERM arrives or a listener
// fails, then shuts every listener down.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)

	api := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	servers := []*http.Server{api}

	if app.config.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))
		servers = append(servers, &http.Server{
			Addr:              app.config.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	for _, srv := range servers {
		g.Go(func() error { return app.serveHTTP(ctx, srv) })
	}

	if app.config.GRPCAddr != "" {
		gsrv := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.authService)
		g.Go(func() error { return gsrv.Run(ctx) })
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				app.logger.Error(shutdownCtx, "http shutdown failed", "addr", srv.Addr, "error", err)
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	err := g.Wait()
	if closeErr := app.Close(); closeErr != nil {
		app.logger.Error(context.Background(), "close failed", "error", closeErr)
	}
	app.logger.Info(context.Background(), "server stopped")
	return err
}

func (app *App) serveHTTP(ctx context.Context, srv *http.Server) error {
	lis, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	app.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())
	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the database and redis clients. It is safe to call more
// than once.
func (app *App) Close() error {
	var errs []error
	if app.db != nil {
		errs = append(errs, app.db.Close())
		app.db = nil
	}
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
		app.redis = nil
	}
	return errors.Join(errs...)
}
