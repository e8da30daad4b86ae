package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nfvsec/nmtd/internal/adapters/reporting"
	"github.com/nfvsec/nmtd/internal/adapters/secorch"
	"github.com/nfvsec/nmtd/internal/adapters/storage"
	"github.com/nfvsec/nmtd/internal/adapters/tmf"
	"github.com/nfvsec/nmtd/internal/adapters/web"
	"github.com/nfvsec/nmtd/internal/config"
	"github.com/nfvsec/nmtd/internal/core/services/catalog"
	"github.com/nfvsec/nmtd/internal/core/services/policy"
	"github.com/nfvsec/nmtd/internal/core/services/risk"
	"github.com/nfvsec/nmtd/internal/core/services/scheduler"
	"github.com/nfvsec/nmtd/internal/telemetry"
)

// Application holds the core components of the side-car. It acts as the
// Facade for the entire system, orchestrating services and infrastructure.
type Application struct {
	Config        *config.Config
	CatalogClient *tmf.Client
	Sync          *catalog.SyncService
	Scheduler     *scheduler.Scheduler
	Watcher       *scheduler.Watcher
	RiskMatcher   *risk.Matcher
	PolicyGateway *policy.Gateway
	EventStore    *storage.SQLiteAdapter
	WebServer     *web.Server
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{Config: cfg}

	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	telemetry.InitMetrics()

	if err := app.initStorage(); err != nil {
		return err
	}

	app.CatalogClient = tmf.NewClient(app.Config.CatalogAddr, app.Config.CatalogUser, app.Config.CatalogPass)
	app.Sync = catalog.NewSyncService(app.CatalogClient)

	app.Scheduler = scheduler.NewScheduler(app.Sync)
	app.Scheduler.SetEventRepository(app.EventStore)
	app.Watcher = scheduler.NewWatcher(app.CatalogClient, app.Scheduler, app.Config.PollInterval)

	app.RiskMatcher = risk.NewMatcher(app.Sync)
	app.RiskMatcher.SetEventRepository(app.EventStore)

	app.PolicyGateway = policy.NewGateway(app.Sync)
	app.PolicyGateway.SetEventRepository(app.EventStore)
	if app.Config.SecOrchAddr != "" {
		app.PolicyGateway.SetOrchestrator(secorch.NewClient(app.Config.SecOrchAddr))
	} else {
		log.Println("Security orchestrator forwarding disabled (no endpoint configured)")
	}

	app.WebServer = web.NewServer(
		app.Config.Addr,
		app.Config.APIKeyHash,
		app.CatalogClient,
		app.Scheduler,
		app.RiskMatcher,
		app.PolicyGateway,
		app.EventStore,
		reporting.NewPDFExporter(),
	)

	// Live event fan-out once the websocket manager exists.
	app.Scheduler.SetNotifier(app.WebServer.WSManager)
	app.RiskMatcher.SetNotifier(app.WebServer.WSManager)
	app.PolicyGateway.SetNotifier(app.WebServer.WSManager)

	return nil
}

func (app *Application) initStorage() error {
	if err := os.MkdirAll(filepath.Dir(app.Config.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create DB directory: %w", err)
	}

	store, err := storage.NewSQLiteAdapter(app.Config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to init event storage: %w", err)
	}
	app.EventStore = store
	return nil
}

// Run starts the application components and manages their execution lifecycle.
func (app *Application) Run(ctx context.Context) error {
	slog.Info("Starting NMTD components...")

	errChan := make(chan error, 2)

	go func() {
		if err := app.WebServer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	go func() {
		slog.Info("Catalog watcher started", "interval", app.Config.PollInterval)
		if err := app.Watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- fmt.Errorf("catalog watcher error: %w", err)
		}
	}()

	slog.Info("NMTD Ready. Press Ctrl+C to terminate.")

	select {
	case <-ctx.Done():
		slog.Info("Termination signal received")
	case err := <-errChan:
		app.cleanup()
		return err
	}

	return app.cleanup()
}

func (app *Application) cleanup() error {
	slog.Info("Cleaning up resources...")

	app.Scheduler.Stop()

	if app.EventStore != nil {
		if err := app.EventStore.Close(); err != nil {
			log.Printf("Error closing event store: %v", err)
		}
	}
	return nil
}
