package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/filepool/internal/api"
	apiMiddleware "github.com/phrazzld/filepool/internal/api/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// CORS first so preflight requests never reach the handlers
	r.Use(apiMiddleware.NewCORSMiddleware(app.config.Server.CORSAllowedOrigin))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(app.metrics.Middleware)

	fileHandler := api.NewFileHandler(app.fileService, app.logger)
	healthHandler := api.NewHealthHandler(app.startedAt)

	r.Route("/api/files", func(r chi.Router) {
		r.Get("/read", fileHandler.ReadFile)
		r.Post("/write", fileHandler.WriteFile)
		r.Post("/copy", fileHandler.CopyFile)
		r.Post("/process", fileHandler.ProcessFile)
		r.Post("/batch", fileHandler.ProcessBatch)
		r.Get("/stats", fileHandler.GetStats)
	})

	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	r.NotFound(api.NotFound)
	r.MethodNotAllowed(api.NotFound)

	return r
}
