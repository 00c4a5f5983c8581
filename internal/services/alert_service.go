package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agro-advisory/internal/catalog"
	"agro-advisory/internal/models"
	"agro-advisory/pkg/logging"
	"agro-advisory/pkg/metrics"
)

// adequateRainyDays is the rainy-day count at which the
// rainfall_forecast condition considers upcoming rainfall adequate.
const adequateRainyDays = 3

// AlertService matches the static crop-calendar rules against a
// (district, crop, date, weather summary) tuple. Evaluation is pure and
// stateless; concurrent calls need no coordination.
type AlertService struct {
	catalog *catalog.Catalog
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewAlertService creates a new alert service
func NewAlertService(cat *catalog.Catalog, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *AlertService {
	return &AlertService{
		catalog: cat,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// conditionCheck binds a condition key to its comparator and trigger
// message. The checks form a closed vocabulary: keys outside it are
// carried in rules but never fire.
type conditionCheck struct {
	key      string
	evaluate func(summary models.WeatherSummary, threshold models.ConditionValue) (bool, string)
}

// conditionChecks is ordered; trigger explanations within a fired alert
// follow this order regardless of map iteration.
var conditionChecks = []conditionCheck{
	{
		key: models.ConditionRainfall24h,
		evaluate: func(s models.WeatherSummary, t models.ConditionValue) (bool, string) {
			if s.Next24hRain > t.Number {
				return true, fmt.Sprintf("Heavy rain expected: %.1fmm in 24h", s.Next24hRain)
			}
			return false, ""
		},
	},
	{
		key: models.ConditionRainfall72h,
		evaluate: func(s models.WeatherSummary, t models.ConditionValue) (bool, string) {
			if s.Next72hRain > t.Number {
				return true, fmt.Sprintf("Total rain forecast: %.1fmm in 3 days", s.Next72hRain)
			}
			return false, ""
		},
	},
	{
		key: models.ConditionHumidity,
		evaluate: func(s models.WeatherSummary, t models.ConditionValue) (bool, string) {
			if s.AvgHumidity3d > t.Number {
				return true, fmt.Sprintf("High humidity: %.0f%%", s.AvgHumidity3d)
			}
			return false, ""
		},
	},
	{
		// The threshold is the literal "adequate"; the comparison is a
		// fixed rainy-day count, not the stored value.
		key: models.ConditionRainfallForecast,
		evaluate: func(s models.WeatherSummary, _ models.ConditionValue) (bool, string) {
			if s.RainyDaysAhead >= adequateRainyDays {
				return true, "Adequate rainfall expected"
			}
			return false, ""
		},
	},
}

// Evaluate returns the alerts fired for the given district, crop and
// date against the weather summary. The result preserves catalog order.
// An empty summary means no forecast data was available, so evaluation
// is suppressed rather than run against all-zero signals.
func (s *AlertService) Evaluate(ctx context.Context, district, crop string, date time.Time, summary models.WeatherSummary) []models.FiredAlert {
	if summary.IsEmpty() {
		return nil
	}

	timer := time.Now()
	defer func() {
		s.metrics.EvaluationDuration.Observe(time.Since(timer).Seconds())
	}()

	monthDay := date.Format("01-02")
	districtKey := strings.ToLower(district)

	var fired []models.FiredAlert
	for _, rule := range s.catalog.Rules() {
		s.metrics.RulesEvaluatedTotal.Inc()

		if rule.Crop != crop {
			continue
		}
		if rule.District != models.DistrictWildcard && rule.District != districtKey {
			continue
		}
		// Inclusive month-day window. Lexicographic comparison matches
		// calendar order because load-time validation rejects windows
		// that cross a year boundary.
		if monthDay < rule.StartDate || monthDay > rule.EndDate {
			continue
		}

		triggers := matchConditions(rule.Conditions, summary)
		if len(triggers) == 0 {
			continue
		}

		s.metrics.RecordAlertFired(rule.Priority)
		fired = append(fired, models.FiredAlert{
			Rule:     rule,
			Severity: models.SeverityForPriority(rule.Priority),
			Triggers: triggers,
		})
	}

	s.logger.Debug(ctx, "[ALERT_EVALUATE] Rule evaluation completed", logging.Fields{
		"district":    districtKey,
		"crop":        crop,
		"date":        monthDay,
		"fired_count": len(fired),
	})

	return fired
}

// matchConditions evaluates every recognized condition key present on
// the rule. Conditions are OR-combined: one match fires the rule, and
// each match contributes one explanation.
func matchConditions(conditions models.ConditionSet, summary models.WeatherSummary) []string {
	var triggers []string
	for _, check := range conditionChecks {
		threshold, ok := conditions[check.key]
		if !ok {
			continue
		}
		if matched, explanation := check.evaluate(summary, threshold); matched {
			triggers = append(triggers, explanation)
		}
	}
	return triggers
}

// RulesFor lists catalog rules matching the engine's crop and district
// filter. Empty arguments skip the corresponding filter; a concrete
// district also matches wildcard rules.
func (s *AlertService) RulesFor(crop, district string) []*models.AdvisoryRule {
	districtKey := strings.ToLower(district)

	var rules []*models.AdvisoryRule
	for _, rule := range s.catalog.Rules() {
		if crop != "" && rule.Crop != crop {
			continue
		}
		if district != "" && rule.District != models.DistrictWildcard && rule.District != districtKey {
			continue
		}
		rules = append(rules, rule)
	}
	return rules
}
