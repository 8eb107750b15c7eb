// Package app wires configuration, storage, services and the HTTP router
// into one runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"opsdiary/internal/cache"
	"opsdiary/internal/config"
	apierrors "opsdiary/internal/errors"
	"opsdiary/internal/infrastructure"
	"opsdiary/internal/metrics"
	"opsdiary/internal/middleware"
	"opsdiary/internal/report"
	"opsdiary/internal/services"
	"opsdiary/internal/store"
	transporthttp "opsdiary/internal/transport/http"
	"opsdiary/internal/validation"
)

// Application holds every long-lived component of the server.
type Application struct {
	Config *config.Config
	Logger *slog.Logger
	Server *http.Server

	store       *store.UploadStore
	resultCache *cache.Cache
	kpiCache    *cache.Cache
	metrics     *metrics.Metrics
	rateLimiter *middleware.RateLimiter

	dataService   *services.DataService
	reportService *services.ReportService
}

// NewApplication loads configuration and builds the full dependency graph.
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := infrastructure.InitializeLogger(cfg.Logging)
	logger.Info("starting application",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level))

	uploadStore, err := store.New(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	m := metrics.New()
	resultCache := cache.New(cfg.Cache.ResultTTL, cfg.Cache.MaxEntries)
	kpiCache := cache.New(cfg.Cache.KPITTL, cfg.Cache.MaxEntries)

	validator := validation.NewUploadValidator(logger, cfg.Upload.MaxFileSize)
	analyzer := report.NewAnalyzer(ctx, cfg.AI, logger)

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		store:         uploadStore,
		resultCache:   resultCache,
		kpiCache:      kpiCache,
		metrics:       m,
		dataService:   services.NewDataService(uploadStore, validator, kpiCache, m, logger),
		reportService: services.NewReportService(uploadStore, resultCache, kpiCache, analyzer, m, logger),
	}
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return app, nil
}

func (a *Application) router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(a.Logger))
	r.Use(middleware.Metrics(a.metrics))
	r.Use(middleware.Recoverer(a.Logger))

	if a.Config.Security.EnableCORS {
		r.Use(middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
		}))
	}
	if a.Config.Security.RateLimit.Enabled {
		a.rateLimiter = middleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger)
		r.Use(a.rateLimiter.Handler)
	}

	errorHandler := apierrors.NewErrorHandler(a.Logger)
	uploadHandler := transporthttp.NewUploadHandler(a.dataService, a.Logger, errorHandler, a.Config.Upload.MaxFileSize)
	reportHandler := transporthttp.NewReportHandler(a.reportService, a.Logger, errorHandler)
	dataHandler := transporthttp.NewDataHandler(a.dataService, a.Logger, errorHandler)
	healthHandler := transporthttp.NewHealthHandler(a.dataService, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Mount("/upload", uploadHandler.Routes())
		r.Mount("/health", healthHandler.Routes())
		r.Get("/summary", reportHandler.Summary)
		r.Post("/reports/email", reportHandler.Email)
		r.Post("/reports/eml", reportHandler.EML)
		r.Get("/available-data", dataHandler.AvailableData)
		r.Delete("/uploads", dataHandler.Flush)
	})
	r.Handle("/metrics", a.metrics.Handler())

	return r
}

// Run starts the server and blocks until SIGINT/SIGTERM, then shuts down
// within the configured grace period.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.Close()
	a.Logger.Info("shutdown complete")
	return nil
}

// Close releases background resources. Safe after Run returns.
func (a *Application) Close() {
	a.resultCache.Stop()
	a.kpiCache.Stop()
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
	a.store.Close()
}
