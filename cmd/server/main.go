package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hybrid-energy-platform/internal/config"
	"hybrid-energy-platform/internal/handlers"
	"hybrid-energy-platform/internal/repository"
	"hybrid-energy-platform/internal/services"
	"hybrid-energy-platform/pkg/database"
	"hybrid-energy-platform/pkg/logging"
	"hybrid-energy-platform/pkg/metrics"
)

const version = "1.0.0"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logLevel, _ := logging.ParseLevel(cfg.Logging.Level)
	logger := logging.NewStructuredLogger("energy-api", version, logLevel)

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting hybrid energy platform API server", logging.Fields{
		"version":             version,
		"server_host":         cfg.Server.Host,
		"server_port":         cfg.Server.Port,
		"database_enabled":    cfg.Database.Enabled(),
		"defaults_file":       cfg.Analysis.DefaultsFile,
		"uncertainty_timeout": cfg.Analysis.UncertaintyTimeout.String(),
	})

	metricsCollector := metrics.NewCollector("energy_platform", prometheus.DefaultRegisterer)

	defaults, err := config.LoadDefaults(cfg.Analysis.DefaultsFile, cfg.Analysis.OptimizerTimeout)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to load analysis defaults", logging.Fields{
			"defaults_file": cfg.Analysis.DefaultsFile,
		}, err)
	}

	// Facility storage is optional; the analysis endpoints work without it
	var (
		facilityService *services.FacilityService
		health          func(context.Context) error
	)
	if cfg.Database.Enabled() {
		db, err := database.NewPostgresDB(ctx, cfg.Database.Connection(), logger, metricsCollector)
		if err != nil {
			logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
		}
		defer db.Close()

		facilityRepo := repository.NewFacilityRepository(db, logger)
		facilityService = services.NewFacilityService(facilityRepo, logger)
		health = facilityRepo.HealthCheck
	} else {
		logger.Warn(ctx, "[STARTUP] DB_HOST not set, facility endpoints disabled", logging.Fields{})
	}

	analysisService := services.NewAnalysisService(
		defaults.NewRequest,
		cfg.Analysis.UncertaintyTimeout,
		facilityService,
		logger,
		metricsCollector,
	)
	analysisHandler := handlers.NewAnalysisHandler(analysisService, facilityService, health, logger, metricsCollector)

	router := mux.NewRouter()
	analysisHandler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
