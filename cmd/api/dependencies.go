package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/sales-dashboard/internal/domain/cache"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/classification"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/dashboard"
	dashboardhandler "github.com/FACorreiaa/sales-dashboard/internal/domain/dashboard/handler"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/parser"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/store"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/workbook"

	"github.com/FACorreiaa/sales-dashboard/pkg/config"
	"github.com/FACorreiaa/sales-dashboard/pkg/cron"
	"github.com/FACorreiaa/sales-dashboard/pkg/metrics"
	"github.com/FACorreiaa/sales-dashboard/pkg/storage"
)

// warmTimeout bounds the startup warm-up
const warmTimeout = 2 * time.Minute

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	FileStorage storage.Storage
	Metrics     *metrics.Metrics
	Cache       *cache.Cache
	Directory   *store.Directory
	Scheduler   *cron.Scheduler

	// Services
	Opener           *workbook.Opener
	Parser           *parser.Parser
	Classifier       *classification.Classifier
	DashboardService *dashboard.Service

	// Handlers
	DashboardHandler *dashboardhandler.Handler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	if err := deps.initServices(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := deps.initHandlers(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	if err := deps.initScheduler(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init scheduler: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initStorage opens the directory holding the workbook exports
func (d *Dependencies) initStorage() error {
	fileStorage, err := storage.New(&storage.Config{
		Type:      storage.StorageTypeLocal,
		LocalPath: d.Config.Workbook.DataDir,
	})
	if err != nil {
		return err
	}
	d.FileStorage = fileStorage

	d.Logger.Info("workbook storage ready",
		slog.String("data_dir", d.Config.Workbook.DataDir),
	)
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	d.Metrics = metrics.New()

	d.Opener = workbook.NewOpener(d.FileStorage, d.Config.Workbook.OpenTimeout, d.Logger)
	d.Parser = parser.New(d.Logger, parser.WithMalformedCounter(d.Metrics.MalformedCells))
	d.Classifier = classification.NewClassifier(classification.DefaultRules, d.Logger)
	d.Cache = cache.New(d.Config.Cache.TTL, cache.WithCounters(d.Metrics.CacheHits, d.Metrics.CacheMisses))

	directory, err := store.NewDirectory(d.Config.Workbook.SearchIndex)
	if err != nil {
		return fmt.Errorf("failed to open store directory: %w", err)
	}
	d.Directory = directory

	d.DashboardService = dashboard.NewService(
		d.Opener,
		d.Parser,
		d.Classifier,
		d.Cache,
		d.Directory,
		d.Config,
		d.Logger,
		dashboard.WithLoadObserver(d.Metrics),
	)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	d.DashboardHandler = dashboardhandler.NewHandler(d.DashboardService, d.Logger)

	d.Logger.Info("handlers initialized")
	return nil
}

// initScheduler starts the periodic cache refresh and warms the cache once
func (d *Dependencies) initScheduler() error {
	d.Scheduler = cron.NewScheduler(d.Config.Cache.RefreshSpec, d.DashboardService, d.Logger)
	if err := d.Scheduler.Start(); err != nil {
		return err
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
		defer cancel()
		if err := d.DashboardService.Warm(ctx); err != nil {
			d.Logger.Warn("initial cache warm-up failed", slog.Any("error", err))
		}
	}()
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.Directory != nil {
		if err := d.Directory.Close(); err != nil {
			d.Logger.Warn("failed to close store directory", slog.Any("error", err))
		}
	}
	d.Logger.Info("cleanup completed")
}
