// Package api exposes the HTTP surface: dataset upload and status, report
// retrieval, rendered report views, and diagnostic plots.
package api

import (
	"encoding/json"
	"log"
	"net/http"

	"sentinel/internal/config"
	"sentinel/internal/worker"
	"sentinel/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// App wires the HTTP router to the application's ports.
type App struct {
	router   *chi.Mux
	cfg      *config.Config
	datasets ports.DatasetRepository
	reports  ports.ReportRepository
	files    ports.FileStorage
	plots    ports.PlotEngine
	worker   *worker.Worker
}

// NewApp creates the HTTP application.
func NewApp(cfg *config.Config, datasets ports.DatasetRepository, reports ports.ReportRepository, files ports.FileStorage, plots ports.PlotEngine, w *worker.Worker) *App {
	app := &App{
		router:   chi.NewRouter(),
		cfg:      cfg,
		datasets: datasets,
		reports:  reports,
		files:    files,
		plots:    plots,
		worker:   w,
	}
	app.setupMiddleware()
	app.setupRoutes()
	return app
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	a.router.Get("/health", a.handleHealth)

	a.router.Route("/datasets", func(r chi.Router) {
		r.Post("/upload", a.handleUpload)
		r.Get("/", a.handleListDatasets)
		r.Get("/{datasetID}/status", a.handleDatasetStatus)
	})

	a.router.Route("/reports", func(r chi.Router) {
		r.Get("/{datasetID}", a.handleGetReport)
		r.Get("/{datasetID}/view", a.handleReportView)
	})

	a.router.Get("/plots/{datasetID}/{plotType}", a.handleGetPlot)
}

// Router exposes the underlying handler for serving and tests.
func (a *App) Router() http.Handler {
	return a.router
}

// Start runs the HTTP server on the configured port.
func (a *App) Start() error {
	addr := ":" + a.cfg.Server.Port
	log.Printf("[API] Listening on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"detail": message})
}
