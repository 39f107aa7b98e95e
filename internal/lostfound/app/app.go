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

	httpapi "github.com/aussiebroadwan/lostfound/internal/lostfound/http"
	lfmail "github.com/aussiebroadwan/lostfound/internal/lostfound/mail"
	"github.com/aussiebroadwan/lostfound/internal/lostfound/media"
	"github.com/aussiebroadwan/lostfound/internal/lostfound/service"
	"github.com/aussiebroadwan/lostfound/internal/lostfound/store/drivers/sqlite"
	"github.com/aussiebroadwan/lostfound/pkg/cryptox"
	"github.com/aussiebroadwan/lostfound/pkg/jwtx"
	"github.com/aussiebroadwan/lostfound/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the lost & found service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       *sqlite.Store
	hasher   *cryptox.PasswordHasher
	signer   *jwtx.EdDSASigner
	sessions *service.SessionIssuer
	uploads  *media.DiskStore
	notifier lfmail.Notifier

	// Services
	authService         *service.AuthService
	inviteService       *service.InviteService
	postService         *service.PostService
	adminService        *service.AdminService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "lostfound",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	hasher, signer, err := initSecrets(cfg, app.logger)
	if err != nil {
		return nil, err
	}
	app.hasher = hasher
	app.signer = signer

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()

	// Seed the first admin before serving so the dashboard is usable on a
	// fresh database.
	if err := app.bootstrap(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("lostfound service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		_ = app.db.Close()
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down lostfound service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", slogx.Err(err))
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", slogx.Err(err))
		}
	}

	// Waits for an in-flight sweep before the database goes away.
	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", slogx.Err(err))
		return err
	}

	app.logger.Info("lostfound service stopped")
	return nil
}

// initDatabase opens the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.FileDSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.sessions = &service.SessionIssuer{
		Signer: app.signer,
		Issuer: app.cfg.SessionIssuer,
		TTL:    app.cfg.SessionTTL,
	}
	app.uploads = media.NewDiskStore(app.cfg.UploadsDir, app.cfg.UploadMaxBytes)
	app.notifier = app.initNotifier()

	app.authService = &service.AuthService{
		Store:    app.db,
		Hasher:   app.hasher,
		Sessions: app.sessions,
	}
	app.inviteService = &service.InviteService{
		Store:     app.db,
		Notifier:  app.notifier,
		Sessions:  app.sessions,
		Hasher:    app.hasher,
		ClientURL: app.cfg.ClientURL,
		TTL:       app.cfg.InviteTTL,
	}
	app.postService = &service.PostService{
		Store:    app.db,
		Media:    app.uploads,
		Hasher:   app.hasher,
		Sessions: app.sessions,
	}
	app.adminService = &service.AdminService{
		Store: app.db,
		Media: app.uploads,
	}
	app.bootstrapService = &service.BootstrapService{
		Store:  app.db,
		Hasher: app.hasher,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initNotifier() lfmail.Notifier {
	if app.cfg.SMTP.Host == "" {
		app.logger.Warn("SMTP_HOST not set, invite emails will only be logged")
		return lfmail.LogNotifier{Logger: app.logger}
	}

	app.logger.Info("smtp relay configured", "host", app.cfg.SMTP.Host, "port", app.cfg.SMTP.Port)
	return lfmail.NewSMTPNotifier(lfmail.SMTPConfig{
		Host:     app.cfg.SMTP.Host,
		Port:     app.cfg.SMTP.Port,
		Username: app.cfg.SMTP.User,
		Password: app.cfg.SMTP.Password,
		From:     app.cfg.SMTP.From,
	})
}

func (app *Application) bootstrap(ctx context.Context) error {
	if app.cfg.Bootstrap.Email == "" {
		return nil
	}

	created, err := app.bootstrapService.EnsureAdmin(slogx.WithContext(ctx, app.logger), service.BootstrapAdmin{
		Name:     app.cfg.Bootstrap.Name,
		Email:    app.cfg.Bootstrap.Email,
		Password: app.cfg.Bootstrap.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}
	if created {
		app.logger.Info("bootstrap admin created", "email", app.cfg.Bootstrap.Email)
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.signer,
		app.sessions,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.InviteService = app.inviteService
	router.PostService = app.postService
	router.AdminService = app.adminService
	router.Uploads = app.uploads.Handler()
	router.Cookie = httpapi.CookieConfig{
		MaxAge:     app.sessions.MaxAge(),
		Production: app.cfg.Production(),
	}
	router.MaxUploadBytes = app.cfg.UploadMaxBytes
	router.RateLimits = httpapi.RateLimits{
		Strict:   app.cfg.RateLimit.Strict,
		Moderate: app.cfg.RateLimit.Moderate,
		Lenient:  app.cfg.RateLimit.Lenient,
		Public:   app.cfg.RateLimit.Public,
	}
	router.CORSOrigins = []string{app.cfg.ClientURL}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
