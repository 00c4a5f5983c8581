package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"agro-advisory/internal/catalog"
	"agro-advisory/internal/config"
	"agro-advisory/internal/repository"
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

	// Initialize logger
	logger := logging.NewStructuredLogger("agro-advisory-seed", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[SEED_START] Seeding advisory catalog", logging.Fields{
		"version": "1.0.0",
		"db_host": cfg.Database.Host,
		"db_name": cfg.Database.Database,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("agro_advisory_seed")

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
		logger.Fatal(ctx, "[SEED_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	// Initialize repository
	catalogRepo := repository.NewCatalogRepository(db, logger, metricsCollector)

	// Load embedded seed data and validate it before touching the database
	rules, err := catalog.DefaultRules()
	if err != nil {
		logger.Fatal(ctx, "[SEED_ERROR] Failed to load seed rules", logging.Fields{}, err)
	}
	districts, err := catalog.DefaultDistricts()
	if err != nil {
		logger.Fatal(ctx, "[SEED_ERROR] Failed to load seed districts", logging.Fields{}, err)
	}
	guidance, err := catalog.DefaultGuidance()
	if err != nil {
		logger.Fatal(ctx, "[SEED_ERROR] Failed to load seed guidance", logging.Fields{}, err)
	}
	prices, err := catalog.DefaultPrices()
	if err != nil {
		logger.Fatal(ctx, "[SEED_ERROR] Failed to load seed prices", logging.Fields{}, err)
	}

	if _, err := catalog.New(rules, districts, guidance, prices); err != nil {
		logger.Fatal(ctx, "[SEED_ERROR] Seed data failed validation", logging.Fields{}, err)
	}

	startTime := time.Now()

	for _, district := range districts {
		if err := catalogRepo.UpsertDistrict(ctx, district); err != nil {
			logger.Fatal(ctx, "[SEED_ERROR] Failed to upsert district", logging.Fields{
				"district": district.Name,
			}, err)
		}
	}

	for _, rule := range rules {
		if err := catalogRepo.UpsertRule(ctx, rule); err != nil {
			logger.Fatal(ctx, "[SEED_ERROR] Failed to upsert rule", logging.Fields{
				"crop":     rule.Crop,
				"district": rule.District,
			}, err)
		}
	}

	for _, g := range guidance {
		if err := catalogRepo.UpsertGuidance(ctx, g); err != nil {
			logger.Fatal(ctx, "[SEED_ERROR] Failed to upsert guidance", logging.Fields{
				"crop": g.Crop,
			}, err)
		}
	}

	for _, price := range prices {
		if err := catalogRepo.UpsertPrice(ctx, price); err != nil {
			logger.Fatal(ctx, "[SEED_ERROR] Failed to upsert market price", logging.Fields{
				"crop": price.Crop,
			}, err)
		}
	}

	duration := time.Since(startTime)

	// Print results
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("SEED COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Districts:     %d\n", len(districts))
	fmt.Printf("Rules:         %d\n", len(rules))
	fmt.Printf("Guidance:      %d\n", len(guidance))
	fmt.Printf("Market Prices: %d\n", len(prices))
	fmt.Printf("Duration:      %v\n", duration)

	logger.Info(ctx, "[SEED_COMPLETE] Catalog seeded successfully", logging.Fields{
		"districts":        len(districts),
		"rules":            len(rules),
		"guidance":         len(guidance),
		"prices":           len(prices),
		"duration_seconds": duration.Seconds(),
	})
}
