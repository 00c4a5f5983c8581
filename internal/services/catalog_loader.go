package services

import (
	"context"
	"fmt"

	"agro-advisory/internal/catalog"
	"agro-advisory/internal/repository"
	"agro-advisory/pkg/logging"
	"agro-advisory/pkg/metrics"
)

// LoadCatalog reads the full advisory dataset from the repository and
// builds the immutable in-memory catalog. Called once at process start;
// the catalog is never refreshed afterwards.
func LoadCatalog(
	ctx context.Context,
	repo repository.CatalogRepository,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) (*catalog.Catalog, error) {
	rules, err := repo.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load advisory rules: %w", err)
	}

	districts, err := repo.ListDistricts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load district registry: %w", err)
	}

	guidance, err := repo.ListGuidance(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load crop guidance: %w", err)
	}

	prices, err := repo.ListPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load market prices: %w", err)
	}

	cat, err := catalog.New(rules, districts, guidance, prices)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog data: %w", err)
	}

	if len(rules) == 0 {
		logger.Warn(ctx, "[CATALOG_EMPTY] No advisory rules loaded; evaluation will never fire", logging.Fields{})
	}

	metricsCollector.UpdateCatalogSize(len(rules), len(districts))

	logger.Info(ctx, "[CATALOG_LOADED] Advisory catalog loaded", logging.Fields{
		"rules":     len(rules),
		"districts": len(districts),
		"guidance":  len(guidance),
		"prices":    len(prices),
	})

	return cat, nil
}
