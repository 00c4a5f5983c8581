package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"agro-advisory/internal/models"
	"agro-advisory/pkg/database"
	"agro-advisory/pkg/logging"
	"agro-advisory/pkg/metrics"
)

// CatalogRepository provides data access for the static advisory
// dataset: crop-calendar rules, the district registry, crop guidance
// and market prices. The server reads everything once at startup; the
// seed command writes.
type CatalogRepository interface {
	// Rule operations
	ListRules(ctx context.Context) ([]*models.AdvisoryRule, error)
	UpsertRule(ctx context.Context, rule *models.AdvisoryRule) error

	// District operations
	ListDistricts(ctx context.Context) ([]*models.District, error)
	GetDistrict(ctx context.Context, name string) (*models.District, error)
	UpsertDistrict(ctx context.Context, district *models.District) error

	// Guidance operations
	ListGuidance(ctx context.Context) ([]*models.CropGuidance, error)
	UpsertGuidance(ctx context.Context, guidance *models.CropGuidance) error

	// Market price operations
	ListPrices(ctx context.Context) ([]*models.MarketPrice, error)
	UpsertPrice(ctx context.Context, price *models.MarketPrice) error

	// Utility operations
	HealthCheck(ctx context.Context) error
}

// catalogRepository implements CatalogRepository
type catalogRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) CatalogRepository {
	return &catalogRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ListRules retrieves all advisory rules in insertion order
func (r *catalogRepository) ListRules(ctx context.Context) ([]*models.AdvisoryRule, error) {
	query := `
		SELECT id, crop, district, season, stage, start_date, end_date,
		       weather_conditions, alert_type, priority, title, message, actions,
		       created_at
		FROM advisory_rules
		ORDER BY id
	`

	var rules []*models.AdvisoryRule
	err := r.db.SelectContext(ctx, "list_rules", &rules, query)

	if err != nil {
		return nil, fmt.Errorf("failed to list advisory rules: %w", err)
	}

	return rules, nil
}

// UpsertRule creates or updates an advisory rule, keyed on the
// (crop, district, stage, season) calendar slot
func (r *catalogRepository) UpsertRule(ctx context.Context, rule *models.AdvisoryRule) error {
	query := `
		INSERT INTO advisory_rules (
			crop, district, season, stage, start_date, end_date,
			weather_conditions, alert_type, priority, title, message, actions,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (crop, district, season, stage) DO UPDATE SET
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			weather_conditions = EXCLUDED.weather_conditions,
			alert_type = EXCLUDED.alert_type,
			priority = EXCLUDED.priority,
			title = EXCLUDED.title,
			message = EXCLUDED.message,
			actions = EXCLUDED.actions
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		rule.Crop,
		rule.District,
		rule.Season,
		rule.Stage,
		rule.StartDate,
		rule.EndDate,
		rule.Conditions,
		rule.AlertType,
		rule.Priority,
		rule.Title,
		rule.Message,
		rule.Actions,
		time.Now().UTC(),
	).Scan(&rule.ID)

	if err != nil {
		return fmt.Errorf("failed to upsert advisory rule: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_UPSERT_RULE] Advisory rule stored", logging.Fields{
		"rule_id":  rule.ID,
		"crop":     rule.Crop,
		"district": rule.District,
		"stage":    rule.Stage,
	})

	return nil
}

// ListDistricts retrieves the full district registry
func (r *catalogRepository) ListDistricts(ctx context.Context) ([]*models.District, error) {
	query := `
		SELECT name, region, lat, lon, rainfall_pattern, main_crops,
		       description, population, elevation_m, soil_type, created_at
		FROM districts
		ORDER BY name
	`

	var districts []*models.District
	err := r.db.SelectContext(ctx, "list_districts", &districts, query)

	if err != nil {
		return nil, fmt.Errorf("failed to list districts: %w", err)
	}

	return districts, nil
}

// GetDistrict retrieves a district by name
func (r *catalogRepository) GetDistrict(ctx context.Context, name string) (*models.District, error) {
	query := `
		SELECT name, region, lat, lon, rainfall_pattern, main_crops,
		       description, population, elevation_m, soil_type, created_at
		FROM districts
		WHERE lower(name) = lower($1)
	`

	var district models.District
	err := r.db.GetContext(ctx, "get_district", &district, query, name)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "district",
			ID:       name,
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get district: %w", err)
	}

	return &district, nil
}

// UpsertDistrict creates or updates a district registry entry
func (r *catalogRepository) UpsertDistrict(ctx context.Context, district *models.District) error {
	query := `
		INSERT INTO districts (
			name, region, lat, lon, rainfall_pattern, main_crops,
			description, population, elevation_m, soil_type, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (name) DO UPDATE SET
			region = EXCLUDED.region,
			lat = EXCLUDED.lat,
			lon = EXCLUDED.lon,
			rainfall_pattern = EXCLUDED.rainfall_pattern,
			main_crops = EXCLUDED.main_crops,
			description = EXCLUDED.description,
			population = EXCLUDED.population,
			elevation_m = EXCLUDED.elevation_m,
			soil_type = EXCLUDED.soil_type
	`

	_, err := r.db.ExecContext(ctx, "upsert_district", query,
		district.Name,
		district.Region,
		district.Lat,
		district.Lon,
		district.RainfallPattern,
		district.MainCrops,
		district.Description,
		district.Population,
		district.ElevationM,
		district.SoilType,
		time.Now().UTC(),
	)

	if err != nil {
		return fmt.Errorf("failed to upsert district: %w", err)
	}

	return nil
}

// ListGuidance retrieves all crop guidance entries
func (r *catalogRepository) ListGuidance(ctx context.Context) ([]*models.CropGuidance, error) {
	query := `
		SELECT crop, season, key_stages, critical_periods, tips, created_at
		FROM crop_guidance
		ORDER BY crop
	`

	var guidance []*models.CropGuidance
	err := r.db.SelectContext(ctx, "list_guidance", &guidance, query)

	if err != nil {
		return nil, fmt.Errorf("failed to list crop guidance: %w", err)
	}

	return guidance, nil
}

// UpsertGuidance creates or updates a crop guidance entry
func (r *catalogRepository) UpsertGuidance(ctx context.Context, guidance *models.CropGuidance) error {
	query := `
		INSERT INTO crop_guidance (crop, season, key_stages, critical_periods, tips, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (crop) DO UPDATE SET
			season = EXCLUDED.season,
			key_stages = EXCLUDED.key_stages,
			critical_periods = EXCLUDED.critical_periods,
			tips = EXCLUDED.tips
	`

	_, err := r.db.ExecContext(ctx, "upsert_guidance", query,
		guidance.Crop,
		guidance.Season,
		guidance.KeyStages,
		guidance.CriticalPeriods,
		guidance.Tips,
		time.Now().UTC(),
	)

	if err != nil {
		return fmt.Errorf("failed to upsert crop guidance: %w", err)
	}

	return nil
}

// ListPrices retrieves all market price entries
func (r *catalogRepository) ListPrices(ctx context.Context) ([]*models.MarketPrice, error) {
	query := `
		SELECT crop, price_ugx, trend, change, updated_at
		FROM market_prices
		ORDER BY crop
	`

	var prices []*models.MarketPrice
	err := r.db.SelectContext(ctx, "list_prices", &prices, query)

	if err != nil {
		return nil, fmt.Errorf("failed to list market prices: %w", err)
	}

	return prices, nil
}

// UpsertPrice creates or updates a market price entry
func (r *catalogRepository) UpsertPrice(ctx context.Context, price *models.MarketPrice) error {
	query := `
		INSERT INTO market_prices (crop, price_ugx, trend, change, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (crop) DO UPDATE SET
			price_ugx = EXCLUDED.price_ugx,
			trend = EXCLUDED.trend,
			change = EXCLUDED.change,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, "upsert_price", query,
		price.Crop,
		price.PriceUGX,
		price.Trend,
		price.Change,
		time.Now().UTC(),
	)

	if err != nil {
		return fmt.Errorf("failed to upsert market price: %w", err)
	}

	return nil
}

// HealthCheck performs a repository health check
func (r *catalogRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
