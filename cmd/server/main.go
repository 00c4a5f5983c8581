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
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agro-advisory/internal/config"
	"agro-advisory/internal/forecast"
	"agro-advisory/internal/handlers"
	"agro-advisory/internal/repository"
	"agro-advisory/internal/services"
	"agro-advisory/pkg/database"
	"agro-advisory/pkg/logging"
	"agro-advisory/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("agro-advisory-api", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting agro advisory API server", logging.Fields{
		"version":       "1.0.0",
		"server_host":   cfg.Server.Host,
		"server_port":   cfg.Server.Port,
		"db_host":       cfg.Database.Host,
		"db_name":       cfg.Database.Database,
		"forecast_days": cfg.Forecast.Days,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("agro_advisory")

	// Initialize database
	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}

	db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	// Initialize repository and load the advisory catalog
	catalogRepo := repository.NewCatalogRepository(db, logger, metricsCollector)

	cat, err := services.LoadCatalog(ctx, catalogRepo, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to load advisory catalog", logging.Fields{}, err)
	}

	// Initialize forecast provider with TTL cache
	forecastClient := forecast.NewClient(cfg.Forecast.BaseURL, cfg.Forecast.Timezone, cfg.Forecast.Timeout, logger, metricsCollector)
	forecastProvider := forecast.NewCachedProvider(forecastClient, cfg.Forecast.CacheTTL, cfg.Forecast.CacheSize, clockwork.NewRealClock(), metricsCollector)

	// Initialize services
	alertService := services.NewAlertService(cat, logger, metricsCollector)
	advisoryService := services.NewAdvisoryService(cat, forecastProvider, alertService, cfg.Forecast.Days, logger, metricsCollector)

	// Initialize handlers
	advisoryHandler := handlers.NewAdvisoryHandler(advisoryService, alertService, cat, catalogRepo, logger, metricsCollector)

	// Setup router
	router := mux.NewRouter()

	// Register routes
	advisoryHandler.RegisterRoutes(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}
