// Package app provides the application lifecycle of the chartsmith server.
package app

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	httpapi "github.com/chartsmith/chartsmith/internal/api/http"
	"github.com/chartsmith/chartsmith/internal/config"
	"github.com/chartsmith/chartsmith/internal/observability"
	"github.com/chartsmith/chartsmith/internal/server"
	"github.com/chartsmith/chartsmith/internal/storage"
	"github.com/chartsmith/chartsmith/internal/store"
)

const (
	// statsWindow is how long a chart type stays in the render statistics
	// without being rendered.
	statsWindow = 24 * time.Hour

	statsPruneInterval = 5 * time.Minute
)

// App manages the chartsmith service lifecycle.
type App struct {
	cfg *config.Config
	log logrus.FieldLogger

	// Shared resources
	store    store.Store
	objects  storage.ObjectStorage
	stats    *observability.RenderStats
	shutdown *server.ShutdownManager

	httpServer *server.HTTPServer
	listener   net.Addr

	// Lifecycle
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new App with the given configuration.
func New(cfg *config.Config, log logrus.FieldLogger) (*App, error) {
	// Resolve paths and validate
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	return &App{
		cfg: cfg,
		log: log,
	}, nil
}

// Start initializes shared resources and starts the HTTP server.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app is already running")
	}
	a.running = true
	a.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.initSharedResources(ctx); err != nil {
		a.cleanup()
		return fmt.Errorf("failed to initialize shared resources: %w", err)
	}

	if err := a.startHTTPServer(); err != nil {
		a.cleanup()
		return fmt.Errorf("failed to start http server: %w", err)
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.pruneStats(ctx)
	}()

	a.log.Infof("chartsmith started: store=%s storage=%s", a.cfg.Store.Type, a.cfg.Storage.Type)
	return nil
}

// initSharedResources opens the chart store and object storage.
func (a *App) initSharedResources(ctx context.Context) error {
	var err error

	a.store, err = store.Open(ctx, a.cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	a.log.Infof("Store initialized: type=%s", a.cfg.Store.Type)

	a.objects, err = storage.Open(ctx, a.cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.log.Infof("Storage initialized: type=%s", a.cfg.Storage.Type)
	if a.cfg.Storage.Type == "s3" {
		a.log.Infof("S3 Config: Bucket=%s, Region=%s, Endpoint=%s",
			a.cfg.Storage.S3.Bucket, a.cfg.Storage.S3.Region, a.cfg.Storage.S3.Endpoint)
	}

	a.stats = observability.NewRenderStats(statsWindow)

	a.shutdown = server.NewShutdownManager(server.ShutdownConfig{
		ShutdownTimeout: a.cfg.HTTP.ShutdownTimeout,
	}, a.log)
	a.shutdown.RegisterCloser("store", a.store)
	a.shutdown.OnShutdownStart(a.cancel)

	return nil
}

// startHTTPServer builds the API and serves it in the background.
func (a *App) startHTTPServer() error {
	api := httpapi.NewServer(a.store, a.objects, a.stats, a.log, httpapi.OptionsFromConfig(a.cfg))
	e := api.Handler()

	ln, err := net.Listen("tcp", a.cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.cfg.HTTP.Addr, err)
	}
	e.Listener = ln
	a.listener = ln.Addr()

	a.httpServer = server.NewHTTPServer(e, a.cfg.HTTP.Addr, server.Timeouts{
		Read:  a.cfg.HTTP.ReadTimeout,
		Write: a.cfg.HTTP.WriteTimeout,
		Idle:  a.cfg.HTTP.IdleTimeout,
	}, a.shutdown)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.log.Infof("HTTP server listening on %s", a.listener)
		if err := a.httpServer.ListenAndServe(); err != nil {
			a.log.WithError(err).Error("HTTP server error")
		}
	}()
	return nil
}

// pruneStats drops stale render statistics until ctx is done.
func (a *App) pruneStats(ctx context.Context) {
	ticker := time.NewTicker(statsPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.stats.Prune()
		}
	}
}

// Addr returns the address the HTTP server listens on, or nil before Start.
func (a *App) Addr() net.Addr {
	return a.listener
}

// Stop gracefully stops the server and releases resources.
func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = false
	a.mu.Unlock()

	a.log.Info("Initiating graceful shutdown...")
	err := a.shutdown.Shutdown(ctx, "stop requested")

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		a.log.Warn("Shutdown timeout, some goroutines may not have finished")
	}

	a.log.Info("chartsmith stopped")
	return err
}

// cleanup releases resources opened by a failed Start.
func (a *App) cleanup() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.WithError(err).Warn("store close failed")
		}
	}
	a.mu.Lock()
	a.running = false
	a.mu.Unlock()
}

// WaitForShutdown blocks until a shutdown signal is received.
func (a *App) WaitForShutdown(ctx context.Context) error {
	return a.shutdown.ListenForSignals(ctx)
}
