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

	"github.com/aussiebroadwan/fileaccess/internal/files/blob"
	httpapi "github.com/aussiebroadwan/fileaccess/internal/files/http"
	"github.com/aussiebroadwan/fileaccess/internal/files/service"
	"github.com/aussiebroadwan/fileaccess/internal/files/store"
	"github.com/aussiebroadwan/fileaccess/internal/files/store/drivers/sqlite"
	"github.com/aussiebroadwan/fileaccess/pkg/cryptox"
	"github.com/aussiebroadwan/fileaccess/pkg/jwtx"
	"github.com/aussiebroadwan/fileaccess/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the file access service together and owns its lifecycle.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	blobs    blob.Store
	signer   *jwtx.HS256Signer
	verifier *jwtx.HS256Verifier
	hasher   *cryptox.PasswordHasher

	// Services
	tempAccessService   *service.TempAccessService
	accessGate          *service.AccessGate
	objectService       *service.ObjectService
	recordService       *service.RecordService
	userService         *service.UserService
	sessionService      *service.SessionService
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
			Service: "files-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := app.initBlobs(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initSecrets(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the fully wired router, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("files service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"blob_driver", app.cfg.BlobDriver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
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
	app.logger.Info("shutting down files service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("files service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	dsn := app.cfg.DatabaseFile
	if dsn != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	}

	db, err := sqlite.NewStore(dsn)
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

func (app *Application) initBlobs(ctx context.Context) error {
	switch app.cfg.BlobDriver {
	case BlobDriverS3:
		s, err := blob.NewS3Store(ctx, blob.S3Config{
			Bucket:    app.cfg.S3.Bucket,
			Region:    app.cfg.S3.Region,
			Endpoint:  app.cfg.S3.Endpoint,
			AccessKey: app.cfg.S3.AccessKey,
			SecretKey: app.cfg.S3.SecretKey,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize s3 blob store: %w", err)
		}
		app.blobs = s
	default:
		s, err := blob.NewFSStore(app.cfg.BlobRoot)
		if err != nil {
			return fmt.Errorf("failed to initialize blob store: %w", err)
		}
		app.blobs = s
	}

	app.logger.Info("blob store ready", "driver", app.cfg.BlobDriver)
	return nil
}

// initSecrets builds the token signer and verifier and the password hasher.
func (app *Application) initSecrets() error {
	secret := app.cfg.SecretKey
	if secret == "" {
		generated, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return fmt.Errorf("failed to generate secret key: %w", err)
		}
		secret = generated
		app.logger.Warn("FILES_SECRET_KEY not set, using an ephemeral secret; tokens will not survive a restart")
	}

	signer, err := jwtx.NewHS256Signer([]byte(secret))
	if err != nil {
		return fmt.Errorf("failed to initialize token signer: %w", err)
	}
	verifier, err := jwtx.NewHS256Verifier([]byte(secret), jwtx.WithIssuer(app.cfg.SessionIssuer))
	if err != nil {
		return fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	app.signer = signer
	app.verifier = verifier

	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewPasswordHasher(pepper)

	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	perms := service.OwnerPermissions{}

	app.tempAccessService = &service.TempAccessService{
		Store:       app.db,
		Signer:      app.signer,
		Permissions: perms,
	}
	app.accessGate = &service.AccessGate{
		Store:              app.db,
		Blobs:              app.blobs,
		Verifier:           app.verifier,
		Permissions:        perms,
		Downloads:          &service.DownloadRecorder{Store: app.db},
		ArchiveConcurrency: app.cfg.ArchiveFetchConcurrency,
	}
	app.objectService = &service.ObjectService{
		Store:       app.db,
		Blobs:       app.blobs,
		Permissions: perms,
	}
	app.recordService = &service.RecordService{Store: app.db, Permissions: perms}
	app.userService = &service.UserService{
		Store:          app.db,
		Hasher:         app.hasher,
		BootstrapToken: app.cfg.BootstrapToken,
	}
	app.sessionService = &service.SessionService{
		Store:  app.db,
		Hasher: app.hasher,
		Signer: app.signer,
		Issuer: app.cfg.SessionIssuer,
		TTL:    app.cfg.SessionTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.DownloadEventRetention,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.db,
		app.blobs,
		app.logger,
	)

	router.TempAccessService = app.tempAccessService
	router.AccessGate = app.accessGate
	router.ObjectService = app.objectService
	router.RecordService = app.recordService
	router.UserService = app.userService
	router.SessionService = app.sessionService
	router.DefaultTempAccessDays = app.cfg.TempAccessDefaultDays
	router.MaxUploadBytes = app.cfg.MaxUploadBytes
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
