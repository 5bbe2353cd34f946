package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/adjudex/tribunal/internal/api/handlers"
	mw "github.com/adjudex/tribunal/internal/api/middleware"
	"github.com/adjudex/tribunal/internal/buildconfig"
	"github.com/adjudex/tribunal/internal/config"
	"github.com/adjudex/tribunal/internal/contract"
	"github.com/adjudex/tribunal/internal/domain"
	"github.com/adjudex/tribunal/internal/embedding"
	"github.com/adjudex/tribunal/internal/engine"
	"github.com/adjudex/tribunal/internal/service"
	"github.com/adjudex/tribunal/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router       *chi.Mux
	Pruner       *service.PrunerService
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, c *contract.Contract, modules []domain.Reasoner, logger *zap.Logger) *App {
	// Stores
	verdictStore := store.NewVerdictStore(db)

	// Embedding client via provider factory
	embeddingProvider := config.EmbeddingProvider()
	embeddingClient, err := embedding.NewClient(embeddingProvider, config.EmbeddingAPIKey())
	if err != nil {
		logger.Warn("embedding client initialization failed", zap.String("provider", embeddingProvider), zap.Error(err))
	} else {
		logger.Info("embedding client initialized", zap.String("provider", embeddingProvider))
	}

	// Services
	adjudicationSvc := service.NewAdjudicationService(c, modules, logger)
	adjudicationSvc.SetTimeout(config.AdjudicationTimeout())
	adjudicationSvc.SetVerdictStore(verdictStore)
	if embeddingClient != nil {
		adjudicationSvc.SetEmbeddingClient(embeddingClient)
	}
	precedentSvc := service.NewPrecedentService(verdictStore, embeddingClient, logger)
	prunerSvc := service.NewPrunerService(verdictStore, config.VerdictRetention(), logger)

	// Handlers
	adjudicateHandler := handlers.NewAdjudicateHandler(adjudicationSvc)
	verdictHandler := handlers.NewVerdictHandler(verdictStore, precedentSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Pruner:    prunerSvc,
		startTime: time.Now(),
	}

	// Metrics collector for middleware
	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health (no auth)
	r.Get("/health", healthHandler(db))

	// Metrics (no auth)
	r.Get("/metrics", app.metricsHandler())

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(config.APIKey()))

		r.Post("/claims", adjudicateHandler.Adjudicate)

		r.Route("/verdicts", func(r chi.Router) {
			r.Get("/", verdictHandler.List)
			r.Get("/{id}", verdictHandler.GetByID)
		})

		r.Get("/precedents", verdictHandler.Precedents)
	})

	return app
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
			"build":      buildconfig.VersionInfo(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.VerdictStore    = (*store.VerdictStore)(nil)
	_ domain.EmbeddingClient = (*embedding.OpenAIClient)(nil)
	_ domain.EmbeddingClient = (*embedding.MockClient)(nil)
	_ domain.Reasoner        = (*engine.GraphReasoner)(nil)
)
