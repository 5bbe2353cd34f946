package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adjudex/tribunal/internal/api"
	"github.com/adjudex/tribunal/internal/config"
	"github.com/adjudex/tribunal/internal/contract"
	"github.com/adjudex/tribunal/internal/domain"
	"github.com/adjudex/tribunal/internal/engine"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if err := config.Load(); err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	c, err := contract.Load(config.ContractPath())
	if err != nil {
		logger.Fatal("failed to load adjudication contract",
			zap.String("path", config.ContractPath()),
			zap.Error(err))
	}
	logger.Info("contract loaded",
		zap.String("path", config.ContractPath()),
		zap.Strings("modules", c.Order))

	modules, err := buildModules(c, config.BeamsDir(), logger)
	if err != nil {
		logger.Fatal("failed to load beam graphs",
			zap.String("dir", config.BeamsDir()),
			zap.Error(err))
	}

	dbURL := config.DatabaseURL()
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	logger.Info("connected to database")

	app := api.NewApp(pool, c, modules, logger)

	// Start background services
	app.Pruner.Start()

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:    addr,
		Handler: app.Router,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	// Stop background services
	app.Pruner.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// buildModules loads the beam graphs and arranges them in contract
// order. Every module the contract names must have a graph.
func buildModules(c *contract.Contract, beamsDir string, logger *zap.Logger) ([]domain.Reasoner, error) {
	graphs, err := engine.LoadGraphDir(beamsDir)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*engine.Graph, len(graphs))
	for _, g := range graphs {
		byID[g.ID] = g
	}

	eval := engine.NewEvaluator(c, logger)
	modules := make([]domain.Reasoner, 0, len(c.Order))
	for _, id := range c.Order {
		g, ok := byID[id]
		if !ok {
			return nil, &contract.LoadError{Reason: "no beam graph for module " + id}
		}
		modules = append(modules, engine.NewGraphReasoner(g, eval))
	}
	return modules, nil
}
