package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/wardenauth/warden/internal/auth/http"
	"github.com/wardenauth/warden/internal/auth/service"
	"github.com/wardenauth/warden/internal/auth/store"
	"github.com/wardenauth/warden/internal/auth/store/drivers/sqlite"
	"github.com/wardenauth/warden/internal/auth/store/memstore"
	"github.com/wardenauth/warden/pkg/cryptox"
	"github.com/wardenauth/warden/pkg/jwtx"
	"github.com/wardenauth/warden/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application wires the auth service together: storage, token signing,
// services, HTTP.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db  store.Store
	jwt *jwtx.HS256

	authService     *service.AuthService
	tokenService    *service.TokenService
	passwordService *service.PasswordService
	mfaService      *service.MFAService
	userService     *service.UserService
	housekeeping    *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "warden",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	jwt, err := jwtx.NewHS256([]byte(cfg.SigningSecret), cfg.Issuer, cfg.JWTLeeway)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.jwt = jwt

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeeping.Start()

	app.logger.Info("warden starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown stops the HTTP server, housekeeping, and storage in order.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down warden...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeeping.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("warden stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	app.logger.Info("database migrations applied")

	if app.cfg.RevocationBackend == RevocationBackendMemory {
		// Revocations die with the process; fine for single-instance setups
		// where every token dies with the process's secret anyway.
		app.db = store.WithRevocations(db, memstore.NewRevocations())
		app.logger.Info("using in-memory revocation registry")
	}

	return nil
}

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		JWT:        app.jwt,
		Store:      app.db,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}

	app.authService = &service.AuthService{
		Store:  app.db,
		Tokens: app.tokenService,
		MFATTL: app.cfg.MFATTL,
	}

	app.passwordService = &service.PasswordService{
		Store:    app.db,
		JWT:      app.jwt,
		Issuer:   app.cfg.Issuer,
		ResetTTL: app.cfg.ResetTTL,
	}

	app.mfaService = &service.MFAService{
		Store:      app.db,
		Tokens:     app.tokenService,
		IssuerName: app.cfg.MFAIssuerName,
	}

	app.userService = &service.UserService{Store: app.db}

	app.housekeeping = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.jwt, BuildVersion, app.db, app.logger)

	router.AuthService = app.authService
	router.TokenService = app.tokenService
	router.PasswordService = app.passwordService
	router.MFAService = app.mfaService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
