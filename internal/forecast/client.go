package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"agro-advisory/internal/models"
	"agro-advisory/pkg/logging"
	"agro-advisory/pkg/metrics"
)

// Provider returns a chronologically ordered daily forecast for a
// coordinate, index 0 being today. An error or an empty slice are
// treated identically downstream: evaluation is suppressed, never
// crashed.
type Provider interface {
	Forecast(ctx context.Context, lat, lon float64, days int) ([]models.DailyForecast, error)
}

// Client implements Provider using the Open-Meteo daily forecast API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timezone   string
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
}

// NewClient creates an Open-Meteo forecast client with a fixed request
// timeout.
func NewClient(baseURL, timezone string, timeout time.Duration, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:  baseURL,
		timezone: timezone,
		logger:   logger,
		metrics:  metricsCollector,
	}
}

// Forecast fetches the daily forecast for the given coordinate.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, days int) ([]models.DailyForecast, error) {
	timer := time.Now()
	defer func() {
		c.metrics.ForecastFetchDuration.Observe(time.Since(timer).Seconds())
	}()

	params := url.Values{
		"latitude":      {strconv.FormatFloat(lat, 'f', 4, 64)},
		"longitude":     {strconv.FormatFloat(lon, 'f', 4, 64)},
		"daily":         {"precipitation_sum,temperature_2m_max,temperature_2m_min,relative_humidity_2m_mean"},
		"timezone":      {c.timezone},
		"forecast_days": {strconv.Itoa(days)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		c.metrics.RecordForecastError("request_error")
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordForecastError("transport_error")
		return nil, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.RecordForecastError("status_error")
		return nil, fmt.Errorf("forecast API error: status %d: %s", resp.StatusCode, body)
	}

	var apiResp response
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		c.metrics.RecordForecastError("decode_error")
		return nil, fmt.Errorf("decode response: %w", err)
	}

	forecast, err := apiResp.Daily.toForecast()
	if err != nil {
		c.metrics.RecordForecastError("malformed_error")
		return nil, err
	}

	c.logger.Debug(ctx, "[FORECAST_FETCH] Forecast fetched", logging.Fields{
		"lat":  lat,
		"lon":  lon,
		"days": len(forecast),
	})

	return forecast, nil
}

// Open-Meteo API response types. The daily block is parallel arrays;
// nullable series decode through pointers and normalize to 0.

type response struct {
	Daily daily `json:"daily"`
}

type daily struct {
	Time             []string   `json:"time"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
	TemperatureMax   []*float64 `json:"temperature_2m_max"`
	TemperatureMin   []*float64 `json:"temperature_2m_min"`
	HumidityMean     []*float64 `json:"relative_humidity_2m_mean"`
}

func (d daily) toForecast() ([]models.DailyForecast, error) {
	forecast := make([]models.DailyForecast, 0, len(d.Time))
	for i, dateStr := range d.Time {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("malformed forecast date %q: %w", dateStr, err)
		}

		forecast = append(forecast, models.DailyForecast{
			Date:       date,
			RainfallMM: deref(d.PrecipitationSum, i),
			TempMax:    deref(d.TemperatureMax, i),
			TempMin:    deref(d.TemperatureMin, i),
			Humidity:   deref(d.HumidityMean, i),
		})
	}
	return forecast, nil
}

func deref(series []*float64, i int) float64 {
	if i >= len(series) || series[i] == nil {
		return 0
	}
	return *series[i]
}
