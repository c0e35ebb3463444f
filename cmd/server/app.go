package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/filepool/internal/config"
	"github.com/phrazzld/filepool/internal/events"
	"github.com/phrazzld/filepool/internal/platform/metrics"
	"github.com/phrazzld/filepool/internal/service"
	"github.com/phrazzld/filepool/internal/task"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config    *config.Config
	logger    *slog.Logger
	startedAt time.Time

	// Observability
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	// Event system
	eventEmitter *events.InMemoryEventEmitter

	// Task handling
	pool        *task.WorkerPool
	fileService service.FileService
}

// newApplication creates a new application instance with all dependencies initialized.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	app := &application{
		config:    cfg,
		logger:    logger,
		startedAt: time.Now(),
		registry:  prometheus.NewRegistry(),
	}

	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(app.metrics)

	app.pool = task.NewWorkerPool(task.WorkerPoolConfig{
		MaxSlots:    cfg.Pool.MaxSlots,
		TaskTimeout: cfg.Pool.TaskTimeout,
	}, task.NewFileExecutor(), app.eventEmitter, logger)
	app.metrics.RegisterPoolGauges(app.pool.Stats)

	var err error
	app.fileService, err = service.NewFileService(app.pool, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create file service: %w", err)
	}

	logger.Info("Application initialized successfully",
		"max_slots", app.pool.MaxSlots(),
		"task_timeout", cfg.Pool.TaskTimeout)
	return app, nil
}

// Run starts the application server and blocks until ctx is cancelled or
// the server fails, then shuts everything down.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup stops the file service and its pool, waiting at most
// pool.shutdown_timeout for running tasks.
func (app *application) cleanup() error {
	ctx, cancel := context.WithTimeout(context.Background(), app.config.Pool.ShutdownTimeout)
	defer cancel()

	if err := app.fileService.Shutdown(ctx); err != nil {
		app.logger.Error("Error stopping file service", "error", err)
		return err
	}

	app.logger.Info("Application shutdown completed")
	return nil
}
