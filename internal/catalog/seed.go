package catalog

import (
	"embed"
	"encoding/json"
	"fmt"

	"agro-advisory/internal/models"
)

// The default dataset ships with the binary so the seed command can
// populate an empty database without external files.

//go:embed seed/*.json
var seedFS embed.FS

// DefaultRules returns the embedded crop-calendar rule list.
func DefaultRules() ([]*models.AdvisoryRule, error) {
	var rules []*models.AdvisoryRule
	if err := loadSeed("seed/rules.json", &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// DefaultDistricts returns the embedded district registry.
func DefaultDistricts() ([]*models.District, error) {
	var districts []*models.District
	if err := loadSeed("seed/districts.json", &districts); err != nil {
		return nil, err
	}
	return districts, nil
}

// DefaultGuidance returns the embedded crop guidance entries.
func DefaultGuidance() ([]*models.CropGuidance, error) {
	var guidance []*models.CropGuidance
	if err := loadSeed("seed/guidance.json", &guidance); err != nil {
		return nil, err
	}
	return guidance, nil
}

// DefaultPrices returns the embedded market price entries.
func DefaultPrices() ([]*models.MarketPrice, error) {
	var prices []*models.MarketPrice
	if err := loadSeed("seed/prices.json", &prices); err != nil {
		return nil, err
	}
	return prices, nil
}

// Default builds a catalog from the embedded dataset, bypassing the
// database entirely. Used by the seed command for validation before
// writing and by tests.
func Default() (*Catalog, error) {
	rules, err := DefaultRules()
	if err != nil {
		return nil, err
	}
	districts, err := DefaultDistricts()
	if err != nil {
		return nil, err
	}
	guidance, err := DefaultGuidance()
	if err != nil {
		return nil, err
	}
	prices, err := DefaultPrices()
	if err != nil {
		return nil, err
	}
	return New(rules, districts, guidance, prices)
}

func loadSeed(path string, dest interface{}) error {
	data, err := seedFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed data %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse seed data %s: %w", path, err)
	}
	return nil
}
