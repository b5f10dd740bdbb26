package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/WailSalutem-Health-Care/membership-service/internal/account"
	"github.com/WailSalutem-Health-Care/membership-service/internal/auth"
	"github.com/WailSalutem-Health-Care/membership-service/internal/config"
	"github.com/WailSalutem-Health-Care/membership-service/internal/db"
	apphttp "github.com/WailSalutem-Health-Care/membership-service/internal/http"
	"github.com/WailSalutem-Health-Care/membership-service/internal/logger"
	"github.com/WailSalutem-Health-Care/membership-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/membership-service/internal/organization"
	"github.com/WailSalutem-Health-Care/membership-service/internal/profile"
	"github.com/WailSalutem-Health-Care/membership-service/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		logger.New().WithField("component", "main").WithError(err).Fatal("membership-service stopped")
	}
}

// run returns instead of exiting so deferred closes always execute
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger.Setup(cfg.Server.LogLevel, cfg.Server.LogFormat)
	log := logger.New().WithField("component", "main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otel, err := telemetry.InitProvider(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := otel.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Telemetry shutdown failed")
		}
	}()
	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.WithError(err).Warn("Failed to initialize custom metrics, continuing without them")
		metrics = nil
	}

	store, database, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open membership store: %w", err)
	}
	if database != nil {
		defer database.Close()
	}

	var publisher messaging.PublisherInterface
	if cfg.Messaging.Enabled {
		p, err := messaging.NewPublisher(ctx, cfg.Messaging)
		if err != nil {
			log.WithError(err).Warn("RabbitMQ unavailable, events will not be published")
		} else {
			publisher = p
			defer p.Close()
		}
	}

	jwks, err := auth.NewJWKS(cfg.Auth.JWKSURL, cfg.Auth.JWKSRefresh)
	if err != nil {
		return fmt.Errorf("load JWKS: %w", err)
	}
	defer jwks.Close()

	perms, err := auth.LoadPermissions(cfg.Server.PermissionsFile)
	if err != nil {
		return fmt.Errorf("load permissions: %w", err)
	}

	provider, err := account.NewKeycloakProvider(cfg.Keycloak)
	if err != nil {
		return fmt.Errorf("initialize Keycloak provider: %w", err)
	}

	opts := []organization.Option{
		organization.WithPublisher(publisher),
		organization.WithStoreTimeout(cfg.Server.StoreTimeout),
	}
	if metrics != nil {
		opts = append(opts, organization.WithMetrics(metrics))
	}
	orgService := organization.NewService(store, opts...)

	handler := apphttp.SetupRouter(apphttp.Dependencies{
		Organizations:  orgService,
		Accounts:       account.NewService(provider),
		Profiles:       profile.NewService(orgService),
		Verifier:       auth.NewVerifier(cfg.Auth, jwks),
		Permissions:    perms,
		Metrics:        metrics,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Infof("membership-service listening on :%s (store=%s)", cfg.Server.Port, cfg.Server.StoreBackend)
	return serve(ctx, srv, cfg.Server.ShutdownTimeout)
}

// serve runs srv until ctx is done, then drains it within shutdownTimeout.
// A listener failure is returned to the caller.
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.New().WithField("component", "main").Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

// openStore returns the configured membership store; the *sql.DB is nil for the memory backend
func openStore(ctx context.Context, cfg *config.Config) (organization.Store, *sql.DB, error) {
	if cfg.Server.StoreBackend == config.StoreMemory {
		logger.New().Warn("Using in-memory store, data is lost on restart")
		return organization.NewMemoryStore(), nil, nil
	}

	database, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, database); err != nil {
			database.Close()
			return nil, nil, err
		}
	}
	return organization.NewPostgresStore(database), database, nil
}
