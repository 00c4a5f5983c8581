package services

import (
	"context"
	"time"

	"agro-advisory/internal/catalog"
	"agro-advisory/internal/forecast"
	"agro-advisory/internal/models"
	"agro-advisory/internal/repository"
	"agro-advisory/pkg/logging"
	"agro-advisory/pkg/metrics"
)

// AdvisoryReport is the full advisory response for one district, crop
// and date: forecast data, derived signals and the fired alerts.
type AdvisoryReport struct {
	District      *models.District       `json:"district"`
	Crop          string                 `json:"crop"`
	Date          string                 `json:"date"`
	DataAvailable bool                   `json:"data_available"`
	Forecast      []models.DailyForecast `json:"forecast"`
	Summary       models.WeatherSummary  `json:"summary"`
	Outlook       models.ForecastOutlook `json:"outlook"`
	Alerts        []models.FiredAlert    `json:"alerts"`
	Guidance      *models.CropGuidance   `json:"guidance,omitempty"`
	MarketPrice   *models.MarketPrice    `json:"market_price,omitempty"`
}

// DistrictForecast is the raw forecast response for one district.
type DistrictForecast struct {
	District *models.District       `json:"district"`
	Forecast []models.DailyForecast `json:"forecast"`
	Outlook  models.ForecastOutlook `json:"outlook"`
}

// AdvisoryService orchestrates an advisory request: resolve and
// validate the district and crop, fetch the forecast, summarize it and
// run rule evaluation.
type AdvisoryService struct {
	catalog  *catalog.Catalog
	provider forecast.Provider
	alerts   *AlertService
	days     int
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
}

// NewAdvisoryService creates a new advisory service
func NewAdvisoryService(
	cat *catalog.Catalog,
	provider forecast.Provider,
	alerts *AlertService,
	forecastDays int,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *AdvisoryService {
	return &AdvisoryService{
		catalog:  cat,
		provider: provider,
		alerts:   alerts,
		days:     forecastDays,
		logger:   logger,
		metrics:  metricsCollector,
	}
}

// GetAdvisory produces the advisory report for a district, crop and
// date. A zero date means "now" per the process clock. A forecast
// provider failure degrades to a report with DataAvailable=false and no
// alerts; it is never surfaced as an error.
func (s *AdvisoryService) GetAdvisory(ctx context.Context, districtName, crop string, date time.Time) (*AdvisoryReport, error) {
	district, ok := s.catalog.District(districtName)
	if !ok {
		return nil, &repository.NotFoundError{
			Resource: "district",
			ID:       districtName,
		}
	}

	if !district.GrowsCrop(crop) {
		return nil, &models.ValidationError{
			Field:   "crop",
			Value:   crop,
			Message: "crop " + crop + " is not grown in " + district.Name,
		}
	}

	if date.IsZero() {
		date = clock.Now()
	}

	dailyForecast := s.fetchForecast(ctx, district)
	summary := models.Summarize(dailyForecast)

	report := &AdvisoryReport{
		District:      district,
		Crop:          crop,
		Date:          date.Format("2006-01-02"),
		DataAvailable: !summary.IsEmpty(),
		Forecast:      dailyForecast,
		Summary:       summary,
		Outlook:       models.SummarizeOutlook(dailyForecast),
		Alerts:        s.alerts.Evaluate(ctx, district.Name, crop, date, summary),
	}

	if guidance, ok := s.catalog.Guidance(crop); ok {
		report.Guidance = guidance
	}
	if price, ok := s.catalog.Price(crop); ok {
		report.MarketPrice = price
	}

	s.logger.Info(ctx, "[ADVISORY] Advisory evaluated", logging.Fields{
		"district":       district.Name,
		"crop":           crop,
		"date":           report.Date,
		"data_available": report.DataAvailable,
		"alert_count":    len(report.Alerts),
	})

	return report, nil
}

// GetForecast returns the raw daily forecast and outlook for a
// district.
func (s *AdvisoryService) GetForecast(ctx context.Context, districtName string) (*DistrictForecast, error) {
	district, ok := s.catalog.District(districtName)
	if !ok {
		return nil, &repository.NotFoundError{
			Resource: "district",
			ID:       districtName,
		}
	}

	dailyForecast := s.fetchForecast(ctx, district)

	return &DistrictForecast{
		District: district,
		Forecast: dailyForecast,
		Outlook:  models.SummarizeOutlook(dailyForecast),
	}, nil
}

// fetchForecast calls the provider and normalizes failure to an empty
// forecast. Downstream, an empty forecast suppresses evaluation.
func (s *AdvisoryService) fetchForecast(ctx context.Context, district *models.District) []models.DailyForecast {
	dailyForecast, err := s.provider.Forecast(ctx, district.Lat, district.Lon, s.days)
	if err != nil {
		s.logger.Warn(ctx, "[FORECAST_UNAVAILABLE] Forecast fetch failed, evaluating without data", logging.Fields{
			"district": district.Name,
			"error":    err.Error(),
		})
		return nil
	}
	return dailyForecast
}
