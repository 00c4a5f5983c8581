package services

import (
	"context"
	"io"
	"testing"
	"time"

	"agro-advisory/internal/catalog"
	"agro-advisory/internal/models"
	"agro-advisory/pkg/logging"
	"agro-advisory/pkg/metrics"
)

// Shared across the package's tests: promauto registers on the default
// registry, so the collector must only be constructed once per binary.
var testMetrics = metrics.NewCollector("agro_advisory_services_test")

func testLogger() *logging.StructuredLogger {
	logger := logging.NewStructuredLogger("test", "0.0.0", logging.ErrorLevel)
	logger.SetOutput(io.Discard)
	return logger
}

func testRules() []*models.AdvisoryRule {
	return []*models.AdvisoryRule{
		{
			ID:        1,
			Crop:      "maize",
			District:  "wakiso",
			Season:    1,
			Stage:     "fertilizer_top_dress",
			StartDate: "04-15",
			EndDate:   "05-15",
			Conditions: models.ConditionSet{
				models.ConditionRainfall24h: {Number: 30},
				models.ConditionHumidity:    {Number: 85},
			},
			AlertType: "delay",
			Priority:  models.PriorityHigh,
			Title:     "Delay Nitrogen Top-Dressing",
		},
		{
			ID:        2,
			Crop:      "beans",
			District:  "all",
			Season:    1,
			Stage:     "harvest",
			StartDate: "06-15",
			EndDate:   "07-15",
			Conditions: models.ConditionSet{
				models.ConditionRainfall72h: {Number: 20},
			},
			AlertType: "urgent",
			Priority:  models.PriorityCritical,
			Title:     "Harvest Beans Immediately",
		},
		{
			ID:        3,
			Crop:      "groundnuts",
			District:  "all",
			Season:    1,
			Stage:     "planting",
			StartDate: "04-01",
			EndDate:   "05-15",
			Conditions: models.ConditionSet{
				models.ConditionRainfallForecast: {Literal: "adequate"},
			},
			AlertType: "timing",
			Priority:  models.PriorityMedium,
			Title:     "Optimal Groundnut Planting Time",
		},
		{
			ID:        4,
			Crop:      "maize",
			District:  "gulu",
			Season:    1,
			Stage:     "pest_control",
			StartDate: "04-01",
			EndDate:   "05-30",
			Conditions: models.ConditionSet{
				"temperature":            {Number: 25},
				models.ConditionHumidity: {Number: 70},
			},
			AlertType: "warning",
			Priority:  models.PriorityMedium,
			Title:     "Fall Armyworm Risk Period",
		},
	}
}

func testDistricts() []*models.District {
	return []*models.District{
		{
			Name:      "Wakiso",
			Region:    "Lake Victoria Crescent",
			Lat:       0.404,
			Lon:       32.459,
			MainCrops: models.StringList{"maize", "beans", "groundnuts"},
		},
		{
			Name:      "Gulu",
			Region:    "Northern Lango/Acholi",
			Lat:       2.7796,
			Lon:       32.2997,
			MainCrops: models.StringList{"maize", "beans", "sorghum"},
		},
	}
}

func newTestAlertService(t *testing.T) *AlertService {
	t.Helper()

	cat, err := catalog.New(testRules(), testDistricts(), nil, nil)
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}

	return NewAlertService(cat, testLogger(), testMetrics)
}

func evalDate(t *testing.T, value string) time.Time {
	t.Helper()

	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("bad test date %q: %v", value, err)
	}
	return date
}

func TestAlertService_Evaluate(t *testing.T) {
	tests := []struct {
		name        string
		district    string
		crop        string
		date        string
		summary     models.WeatherSummary
		checkValues func(*testing.T, []models.FiredAlert)
	}{
		{
			name:     "heavy rain and humidity fire the top-dressing rule with both triggers",
			district: "Wakiso",
			crop:     "maize",
			date:     "2024-05-01",
			summary: models.WeatherSummary{
				Next24hRain:   35,
				Next72hRain:   45,
				AvgHumidity3d: 90,
				Days:          7,
			},
			checkValues: func(t *testing.T, alerts []models.FiredAlert) {
				if len(alerts) != 1 {
					t.Fatalf("len(alerts) = %d, want 1", len(alerts))
				}

				alert := alerts[0]
				if alert.Rule.ID != 1 {
					t.Errorf("fired rule ID = %d, want 1", alert.Rule.ID)
				}
				if alert.Severity.Level != "HIGH" {
					t.Errorf("Severity.Level = %v, want HIGH", alert.Severity.Level)
				}
				if len(alert.Triggers) != 2 {
					t.Fatalf("len(Triggers) = %d, want 2", len(alert.Triggers))
				}
				if alert.Triggers[0] != "Heavy rain expected: 35.0mm in 24h" {
					t.Errorf("Triggers[0] = %q", alert.Triggers[0])
				}
				if alert.Triggers[1] != "High humidity: 90%" {
					t.Errorf("Triggers[1] = %q", alert.Triggers[1])
				}
			},
		},
		{
			name:     "72h rainfall fires the wildcard harvest rule in any district",
			district: "Gulu",
			crop:     "beans",
			date:     "2024-07-01",
			summary: models.WeatherSummary{
				Next72hRain: 25,
				Days:        7,
			},
			checkValues: func(t *testing.T, alerts []models.FiredAlert) {
				if len(alerts) != 1 {
					t.Fatalf("len(alerts) = %d, want 1", len(alerts))
				}

				alert := alerts[0]
				if alert.Rule.ID != 2 {
					t.Errorf("fired rule ID = %d, want 2", alert.Rule.ID)
				}
				if alert.Severity.Level != "CRITICAL" {
					t.Errorf("Severity.Level = %v, want CRITICAL", alert.Severity.Level)
				}
				if len(alert.Triggers) != 1 || alert.Triggers[0] != "Total rain forecast: 25.0mm in 3 days" {
					t.Errorf("Triggers = %v", alert.Triggers)
				}
			},
		},
		{
			name:     "rainy days ahead fire the planting rule regardless of the stored literal",
			district: "Wakiso",
			crop:     "groundnuts",
			date:     "2024-04-20",
			summary: models.WeatherSummary{
				RainyDaysAhead: 4,
				Days:           7,
			},
			checkValues: func(t *testing.T, alerts []models.FiredAlert) {
				if len(alerts) != 1 {
					t.Fatalf("len(alerts) = %d, want 1", len(alerts))
				}
				if alerts[0].Rule.ID != 3 {
					t.Errorf("fired rule ID = %d, want 3", alerts[0].Rule.ID)
				}
				if alerts[0].Triggers[0] != "Adequate rainfall expected" {
					t.Errorf("Triggers[0] = %q", alerts[0].Triggers[0])
				}
			},
		},
		{
			name:     "two rainy days are not adequate",
			district: "Wakiso",
			crop:     "groundnuts",
			date:     "2024-04-20",
			summary: models.WeatherSummary{
				RainyDaysAhead: 2,
				Days:           7,
			},
			checkValues: func(t *testing.T, alerts []models.FiredAlert) {
				if len(alerts) != 0 {
					t.Errorf("len(alerts) = %d, want 0", len(alerts))
				}
			},
		},
		{
			name:     "date outside the calendar window suppresses the rule",
			district: "Wakiso",
			crop:     "maize",
			date:     "2024-06-01",
			summary: models.WeatherSummary{
				Next24hRain:   35,
				AvgHumidity3d: 90,
				Days:          7,
			},
			checkValues: func(t *testing.T, alerts []models.FiredAlert) {
				if len(alerts) != 0 {
					t.Errorf("len(alerts) = %d, want 0", len(alerts))
				}
			},
		},
		{
			name:     "window start date is inclusive",
			district: "Wakiso",
			crop:     "maize",
			date:     "2024-04-15",
			summary: models.WeatherSummary{
				Next24hRain: 35,
				Days:        7,
			},
			checkValues: func(t *testing.T, alerts []models.FiredAlert) {
				if len(alerts) != 1 {
					t.Errorf("len(alerts) = %d, want 1", len(alerts))
				}
			},
		},
		{
			name:     "window end date is inclusive",
			district: "Wakiso",
			crop:     "maize",
			date:     "2024-05-15",
			summary: models.WeatherSummary{
				Next24hRain: 35,
				Days:        7,
			},
			checkValues: func(t *testing.T, alerts []models.FiredAlert) {
				if len(alerts) != 1 {
					t.Errorf("len(alerts) = %d, want 1", len(alerts))
				}
			},
		},
		{
			name:     "one matching condition is enough to fire",
			district: "Wakiso",
			crop:     "maize",
			date:     "2024-05-01",
			summary: models.WeatherSummary{
				Next24hRain:   35,
				AvgHumidity3d: 50,
				Days:          7,
			},
			checkValues: func(t *testing.T, alerts []models.FiredAlert) {
				if len(alerts) != 1 {
					t.Fatalf("len(alerts) = %d, want 1", len(alerts))
				}
				if len(alerts[0].Triggers) != 1 {
					t.Errorf("len(Triggers) = %d, want 1", len(alerts[0].Triggers))
				}
			},
		},
		{
			name:     "unrecognized condition keys never fire",
			district: "Gulu",
			crop:     "maize",
			date:     "2024-04-20",
			summary: models.WeatherSummary{
				AvgTemp3d:     30,
				AvgHumidity3d: 60,
				Days:          7,
			},
			checkValues: func(t *testing.T, alerts []models.FiredAlert) {
				// The armyworm rule carries a "temperature" key the engine
				// does not recognize; only its humidity condition can fire.
				if len(alerts) != 0 {
					t.Errorf("len(alerts) = %d, want 0", len(alerts))
				}
			},
		},
		{
			name:     "recognized condition on the same rule still fires",
			district: "Gulu",
			crop:     "maize",
			date:     "2024-04-20",
			summary: models.WeatherSummary{
				AvgTemp3d:     30,
				AvgHumidity3d: 75,
				Days:          7,
			},
			checkValues: func(t *testing.T, alerts []models.FiredAlert) {
				if len(alerts) != 1 {
					t.Fatalf("len(alerts) = %d, want 1", len(alerts))
				}
				if alerts[0].Rule.ID != 4 {
					t.Errorf("fired rule ID = %d, want 4", alerts[0].Rule.ID)
				}
				if len(alerts[0].Triggers) != 1 || alerts[0].Triggers[0] != "High humidity: 75%" {
					t.Errorf("Triggers = %v", alerts[0].Triggers)
				}
			},
		},
		{
			name:     "empty summary suppresses evaluation entirely",
			district: "Wakiso",
			crop:     "maize",
			date:     "2024-05-01",
			summary:  models.WeatherSummary{},
			checkValues: func(t *testing.T, alerts []models.FiredAlert) {
				if alerts != nil {
					t.Errorf("alerts = %v, want nil", alerts)
				}
			},
		},
		{
			name:     "district matching is case-insensitive",
			district: "WAKISO",
			crop:     "maize",
			date:     "2024-05-01",
			summary: models.WeatherSummary{
				Next24hRain: 35,
				Days:        7,
			},
			checkValues: func(t *testing.T, alerts []models.FiredAlert) {
				if len(alerts) != 1 {
					t.Errorf("len(alerts) = %d, want 1", len(alerts))
				}
			},
		},
		{
			name:     "thresholds are strict lower bounds",
			district: "Wakiso",
			crop:     "maize",
			date:     "2024-05-01",
			summary: models.WeatherSummary{
				Next24hRain:   30,
				AvgHumidity3d: 85,
				Days:          7,
			},
			checkValues: func(t *testing.T, alerts []models.FiredAlert) {
				if len(alerts) != 0 {
					t.Errorf("len(alerts) = %d, want 0 (values equal to thresholds must not fire)", len(alerts))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestAlertService(t)
			alerts := service.Evaluate(context.Background(), tt.district, tt.crop, evalDate(t, tt.date), tt.summary)
			tt.checkValues(t, alerts)
		})
	}
}

func TestAlertService_Evaluate_PreservesCatalogOrder(t *testing.T) {
	rules := []*models.AdvisoryRule{
		{
			ID: 10, Crop: "maize", District: "all", StartDate: "01-01", EndDate: "12-31",
			Priority: models.PriorityLow, Title: "First",
			Conditions: models.ConditionSet{models.ConditionRainfall24h: {Number: 10}},
		},
		{
			ID: 11, Crop: "maize", District: "all", StartDate: "01-01", EndDate: "12-31",
			Priority: models.PriorityHigh, Title: "Second",
			Conditions: models.ConditionSet{models.ConditionRainfall72h: {Number: 10}},
		},
		{
			ID: 12, Crop: "maize", District: "all", StartDate: "01-01", EndDate: "12-31",
			Priority: models.PriorityCritical, Title: "Third",
			Conditions: models.ConditionSet{models.ConditionHumidity: {Number: 50}},
		},
	}

	cat, err := catalog.New(rules, testDistricts(), nil, nil)
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}

	service := NewAlertService(cat, testLogger(), testMetrics)

	summary := models.WeatherSummary{
		Next24hRain:   20,
		Next72hRain:   40,
		AvgHumidity3d: 80,
		Days:          7,
	}

	alerts := service.Evaluate(context.Background(), "Wakiso", "maize", evalDate(t, "2024-05-01"), summary)

	if len(alerts) != 3 {
		t.Fatalf("len(alerts) = %d, want 3", len(alerts))
	}
	for i, wantID := range []int64{10, 11, 12} {
		if alerts[i].Rule.ID != wantID {
			t.Errorf("alerts[%d].Rule.ID = %d, want %d", i, alerts[i].Rule.ID, wantID)
		}
	}
}

func TestAlertService_RulesFor(t *testing.T) {
	service := newTestAlertService(t)

	tests := []struct {
		name     string
		crop     string
		district string
		wantIDs  []int64
	}{
		{name: "no filters list everything", wantIDs: []int64{1, 2, 3, 4}},
		{name: "crop filter", crop: "maize", wantIDs: []int64{1, 4}},
		{name: "district filter includes wildcard rules", district: "Wakiso", wantIDs: []int64{1, 2, 3}},
		{name: "crop and district filters combine", crop: "maize", district: "Gulu", wantIDs: []int64{4}},
		{name: "no match", crop: "rice", wantIDs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := service.RulesFor(tt.crop, tt.district)

			if len(rules) != len(tt.wantIDs) {
				t.Fatalf("len(rules) = %d, want %d", len(rules), len(tt.wantIDs))
			}
			for i, wantID := range tt.wantIDs {
				if rules[i].ID != wantID {
					t.Errorf("rules[%d].ID = %d, want %d", i, rules[i].ID, wantID)
				}
			}
		})
	}
}
