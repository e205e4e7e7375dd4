// Package main is the entry point for the Recurrent Ledger API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/recurrent-ledger/backend/config"
	"github.com/recurrent-ledger/backend/internal/application/lock"
	"github.com/recurrent-ledger/backend/internal/application/usecase/generation"
	"github.com/recurrent-ledger/backend/internal/application/usecase/series"
	"github.com/recurrent-ledger/backend/internal/application/usecase/view"
	"github.com/recurrent-ledger/backend/internal/domain/schedule"
	"github.com/recurrent-ledger/backend/internal/infra/db"
	"github.com/recurrent-ledger/backend/internal/infra/scheduler"
	"github.com/recurrent-ledger/backend/internal/infra/server/router"
	"github.com/recurrent-ledger/backend/internal/integration/entrypoint/controller"
	"github.com/recurrent-ledger/backend/internal/integration/entrypoint/middleware"
	"github.com/recurrent-ledger/backend/internal/integration/persistence"
	"github.com/recurrent-ledger/backend/internal/integration/persistence/model"
)

func main() {
	// Load .env file if it exists (development only)
	_ = godotenv.Load()

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg := config.Load()

	slog.Info("Starting Recurrent Ledger API",
		"environment", cfg.Server.Environment,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	database, err := db.NewPostgresConnection(&cfg.Database)
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	// Run database migrations
	if err := database.AutoMigrate(
		&model.UserModel{},
		&model.CategoryModel{},
		&model.RecurringSeriesModel{},
		&model.LedgerEntryModel{},
	); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed successfully")

	// Create repositories
	seriesRepo := persistence.NewSeriesRepository(database.DB())
	entryRepo := persistence.NewEntryRepository(database.DB())
	categoryRepo := persistence.NewCategoryRepository(database.DB())

	// Shared occurrence policy and per-series lock
	policy := schedule.Policy{}
	locker := lock.NewSeriesLocker()

	// Create use cases
	createUseCase := series.NewCreateSeriesUseCase(seriesRepo, categoryRepo)
	listUseCase := series.NewListSeriesUseCase(seriesRepo)
	editUseCase := series.NewEditSeriesUseCase(seriesRepo, entryRepo, categoryRepo, policy, locker)
	deleteUseCase := series.NewDeleteSeriesUseCase(seriesRepo, entryRepo, locker)
	generateUseCase := generation.NewGenerateUseCase(
		seriesRepo, entryRepo, categoryRepo, policy, locker, cfg.Scheduler.Workers)
	effectiveViewUseCase := view.NewEffectiveViewUseCase(seriesRepo, entryRepo, policy)

	// Create controllers and middleware
	healthController := controller.NewHealthController(database.HealthCheck)
	recurringController := controller.NewRecurringController(
		createUseCase, listUseCase, editUseCase, deleteUseCase, generateUseCase)
	entriesController := controller.NewEntriesController(effectiveViewUseCase)
	ownerMiddleware := middleware.NewOwnerMiddleware()

	// Start generation scheduler
	if cfg.Scheduler.Enabled {
		sched := scheduler.New(generateUseCase, cfg.Scheduler.Cron, cfg.Scheduler.MaxCatchUpDays)
		if err := sched.Start(); err != nil {
			slog.Error("Failed to start generation scheduler", "error", err)
			os.Exit(1)
		}
		defer sched.Stop()
	}

	// Setup router
	r := router.NewRouter(healthController, recurringController, entriesController, ownerMiddleware)
	engine := r.Setup(cfg.Server.Environment)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited properly")
}
