package forecast

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agro-advisory/pkg/logging"
	"agro-advisory/pkg/metrics"
)

// Shared across the package's tests: promauto registers on the default
// registry, so the collector must only be constructed once per binary.
var testMetrics = metrics.NewCollector("agro_advisory_forecast_test")

func testLogger() *logging.StructuredLogger {
	logger := logging.NewStructuredLogger("test", "0.0.0", logging.ErrorLevel)
	logger.SetOutput(io.Discard)
	return logger
}

func testClient(baseURL string) *Client {
	return NewClient(baseURL, "Africa/Nairobi", 5*time.Second, testLogger(), testMetrics)
}

const validResponse = `{
	"daily": {
		"time": ["2024-05-01", "2024-05-02", "2024-05-03"],
		"precipitation_sum": [35.2, 10.0, null],
		"temperature_2m_max": [27.1, 28.4, 29.0],
		"temperature_2m_min": [17.0, 17.5, 18.1],
		"relative_humidity_2m_mean": [92, 88, null]
	}
}`

func TestClient_Forecast_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0.4040", r.URL.Query().Get("latitude"))
		assert.Equal(t, "32.4590", r.URL.Query().Get("longitude"))
		assert.Equal(t, "Africa/Nairobi", r.URL.Query().Get("timezone"))
		assert.Equal(t, "7", r.URL.Query().Get("forecast_days"))
		assert.Contains(t, r.URL.Query().Get("daily"), "precipitation_sum")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(validResponse))
	}))
	defer srv.Close()

	forecast, err := testClient(srv.URL).Forecast(context.Background(), 0.404, 32.459, 7)
	require.NoError(t, err)
	require.Len(t, forecast, 3)

	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), forecast[0].Date)
	assert.Equal(t, 35.2, forecast[0].RainfallMM)
	assert.Equal(t, 27.1, forecast[0].TempMax)
	assert.Equal(t, 92.0, forecast[0].Humidity)

	// Null series values normalize to 0
	assert.Equal(t, 0.0, forecast[2].RainfallMM)
	assert.Equal(t, 0.0, forecast[2].Humidity)
	assert.Equal(t, 29.0, forecast[2].TempMax)
}

func TestClient_Forecast_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"reason":"invalid coordinates"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Forecast(context.Background(), 0.404, 32.459, 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestClient_Forecast_MalformedDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"daily": {"time": ["01/05/2024"], "precipitation_sum": [1.0]}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Forecast(context.Background(), 0.404, 32.459, 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed forecast date")
}

func TestClient_Forecast_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Forecast(context.Background(), 0.404, 32.459, 7)
	require.Error(t, err)
}

func TestClient_Forecast_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "Africa/Nairobi", 50*time.Millisecond, testLogger(), testMetrics)

	_, err := client.Forecast(context.Background(), 0.404, 32.459, 7)
	require.Error(t, err)
}

func TestClient_Forecast_EmptyDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"daily": {"time": []}}`))
	}))
	defer srv.Close()

	forecast, err := testClient(srv.URL).Forecast(context.Background(), 0.404, 32.459, 7)
	require.NoError(t, err)
	assert.Empty(t, forecast)
}
