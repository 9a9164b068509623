package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/metrics"
	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/internal/auth/session"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/sessionauth/pkg/cryptox"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/aussiebroadwan/sessionauth/internal/auth/http"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	rdb      redis.UniversalClient
	sessions *session.Store
	key      *jwtx.HMACKey
	verifier *jwtx.HS256Verifier
	issuer   *jwtx.Issuer
	metrics  *metrics.Metrics

	// Services
	userService  *service.UserService
	authService  *service.AuthService
	statsService *service.StatsService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)
	if err := cryptox.LoadPepper(); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initKeys(); err != nil {
		return nil, err
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initSessions()
	app.initServices()
	if err := app.initHTTP(); err != nil {
		_ = app.rdb.Close()
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Handler returns the fully wired HTTP handler, for running the service
// in-process.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Start starts the background workers without serving HTTP.
func (app *Application) Start() {
	app.statsService.Start()
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application. The stats worker stops
// before Redis and the database close.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.statsService.Stop()

	if err := app.rdb.Close(); err != nil {
		app.logger.Error("error closing redis client", "error", err)
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) initKeys() error {
	key, err := InitSigningKey(app.cfg, app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize signing key: %w", err)
	}

	signer, err := jwtx.NewSignerHS256(key)
	if err != nil {
		return fmt.Errorf("failed to initialize signer: %w", err)
	}

	app.key = key
	app.verifier = jwtx.NewVerifierHS256(key)
	app.issuer = jwtx.NewIssuer(signer, app.cfg.AccessTokenTTL, app.cfg.RefreshTokenTTL)
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initSessions connects to Redis. An unreachable Redis is not fatal: the
// session record is advisory and the store fails open.
func (app *Application) initSessions() {
	app.rdb = redis.NewClient(&redis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})

	app.sessions = session.NewStore(app.rdb, session.Options{
		DefaultTTL: app.cfg.SessionTTL,
		OpTimeout:  app.cfg.SessionOpTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := app.sessions.Ping(ctx); err != nil {
		app.logger.Warn("session store unreachable at startup", "addr", app.cfg.RedisAddr, "err", err)
		return
	}
	app.logger.Info("session store connected", "addr", app.cfg.RedisAddr, "ttl", app.sessions.DefaultTTL())
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.userService = &service.UserService{Store: app.db}

	app.authService = &service.AuthService{
		Users:    app.userService,
		Issuer:   app.issuer,
		Verifier: app.verifier,
		Sessions: app.sessions,
		Metrics:  app.metrics,
	}

	app.statsService = service.NewStatsService(
		app.sessions,
		app.userService,
		app.metrics,
		app.logger,
		app.cfg.StatsInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() error {
	proxies, err := httpx.ParseTrustedProxies(app.cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("invalid AUTH_TRUSTED_PROXIES: %w", err)
	}

	router := httpapi.NewRouter(
		httpapi.RouterConfig{
			BasePath:       app.cfg.BasePath,
			PublicPaths:    app.cfg.PublicPaths,
			Cookies:        httpx.CookieConfig{Secure: app.cfg.CookieSecure},
			TrustedProxies: proxies,
			Limits: httpapi.RateLimits{
				Strict:   app.cfg.RateLimitStrict,
				Moderate: app.cfg.RateLimitModerate,
				Lenient:  app.cfg.RateLimitLenient,
			},
		},
		app.verifier,
		app.key,
		app.db,
		app.sessions,
		app.metrics,
		app.logger,
	)

	router.AuthService = app.authService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
