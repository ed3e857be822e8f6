package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/utilaudit/utilaudit/internal/api/handlers"
	"github.com/utilaudit/utilaudit/internal/api/router"
	"github.com/utilaudit/utilaudit/internal/config"
	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/pkg/logger"
	"github.com/utilaudit/utilaudit/internal/pkg/validator"
	"github.com/utilaudit/utilaudit/internal/repository/postgres"
	"github.com/utilaudit/utilaudit/internal/services"
	"github.com/utilaudit/utilaudit/internal/worker"
	"github.com/utilaudit/utilaudit/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	db, err := postgres.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, migrations.GetFS()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	defaults, err := cfg.LoadDetectionSettings()
	if err != nil {
		log.Fatalf("Failed to load detection settings: %v", err)
	}

	engine := detector.NewEngine(defaults, log)

	// Repositories
	recordRepo := postgres.NewCostRecordRepository(db)
	anomalyRepo := postgres.NewAnomalyRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)
	budgetRepo := postgres.NewBudgetRepository(db)
	refRepo := postgres.NewReferenceRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	// Services
	settingsService := services.NewSettingsService(settingsRepo, engine, defaults, log)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := settingsService.Bootstrap(ctx); err != nil {
		log.Fatalf("Failed to bootstrap detection settings: %v", err)
	}

	notifier := services.NewLogNotifier(log)
	alertService := services.NewAlertService(notificationRepo, anomalyRepo, notifier, engine, log)
	detectionService := services.NewDetectionService(
		engine, recordRepo, anomalyRepo, budgetRepo, refRepo, alertService,
		cfg.Detection.HistoryMonths, log,
	)
	anomalyService := services.NewAnomalyService(anomalyRepo, log)

	// HTTP layer
	val := validator.New()
	h := &router.Handlers{
		Health:   handlers.NewHealthHandler(db, log),
		Record:   handlers.NewRecordHandler(detectionService, recordRepo, log, val),
		Anomaly:  handlers.NewAnomalyHandler(anomalyService, log, val),
		Settings: handlers.NewSettingsHandler(settingsService, engine.Registry(), log, val),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Background digest worker
	digest := worker.NewDigestWorker(alertService, engine, cfg.Detection.DigestSchedule, log)
	go func() {
		if err := digest.Start(ctx); err != nil {
			log.ErrorWithErr(err, "Digest worker failed")
		}
	}()

	go func() {
		log.Infof("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorWithErr(err, "Graceful shutdown failed")
	}
}
