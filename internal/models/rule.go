package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Condition keys recognized by the alert engine. Keys outside this
// vocabulary may appear in stored rules and are carried through
// untouched; the engine never fires on them.
const (
	ConditionRainfall24h      = "rainfall_24h"
	ConditionRainfall72h      = "rainfall_72h"
	ConditionHumidity         = "humidity"
	ConditionRainfallForecast = "rainfall_forecast"
)

// Rule priorities, in decreasing order of urgency.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// DistrictWildcard matches every district when used in a rule.
const DistrictWildcard = "all"

// AdvisoryRule is one entry of the static crop-calendar catalog. Rules
// are loaded once at process start and never mutated afterwards.
// StartDate and EndDate are zero-padded "MM-DD" strings defining an
// inclusive, year-independent window.
type AdvisoryRule struct {
	ID         int64        `json:"id" db:"id"`
	Crop       string       `json:"crop" db:"crop"`
	District   string       `json:"district" db:"district"`
	Season     int          `json:"season" db:"season"`
	Stage      string       `json:"stage" db:"stage"`
	StartDate  string       `json:"start_date" db:"start_date"`
	EndDate    string       `json:"end_date" db:"end_date"`
	Conditions ConditionSet `json:"weather_conditions" db:"weather_conditions"`
	AlertType  string       `json:"alert_type" db:"alert_type"`
	Priority   string       `json:"priority" db:"priority"`
	Title      string       `json:"title" db:"title"`
	Message    string       `json:"message" db:"message"`
	Actions    StringList   `json:"actions" db:"actions"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
}

// ConditionValue is a rule threshold: either a numeric bound or a
// literal marker such as "adequate" for the rainfall_forecast key.
type ConditionValue struct {
	Number  float64
	Literal string
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (v *ConditionValue) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = ConditionValue{Number: n}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("condition threshold must be a number or string: %s", data)
	}

	*v = ConditionValue{Literal: s}
	return nil
}

// MarshalJSON writes the literal form when present, the number otherwise.
func (v ConditionValue) MarshalJSON() ([]byte, error) {
	if v.Literal != "" {
		return json.Marshal(v.Literal)
	}
	return json.Marshal(v.Number)
}

// ConditionSet maps condition keys to thresholds. It implements
// sql.Scanner and driver.Valuer so rules can keep their conditions in a
// single JSONB column.
type ConditionSet map[string]ConditionValue

// Scan implements sql.Scanner for reading JSONB from the database.
func (c *ConditionSet) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("conditions: unsupported scan type %T", value)
	}

	return json.Unmarshal(data, c)
}

// Value implements driver.Valuer for writing JSONB to the database.
func (c ConditionSet) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// StringList is an ordered list of strings stored as a JSONB column.
type StringList []string

// Scan implements sql.Scanner for reading JSONB from the database.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("string list: unsupported scan type %T", value)
	}

	return json.Unmarshal(data, l)
}

// Value implements driver.Valuer for writing JSONB to the database.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Severity is the display classification resolved from a rule priority.
type Severity struct {
	Icon  string `json:"icon"`
	Level string `json:"level"`
	Color string `json:"color"`
}

var severityByPriority = map[string]Severity{
	PriorityCritical: {Icon: "🔴", Level: "CRITICAL", Color: "red"},
	PriorityHigh:     {Icon: "🟡", Level: "HIGH", Color: "orange"},
	PriorityMedium:   {Icon: "🟢", Level: "ADVISORY", Color: "green"},
	PriorityLow:      {Icon: "🔵", Level: "INFO", Color: "blue"},
}

// SeverityForPriority maps a rule priority to its display severity.
// Unrecognized priorities resolve to the low/INFO entry; the lookup
// never fails.
func SeverityForPriority(priority string) Severity {
	if severity, ok := severityByPriority[priority]; ok {
		return severity
	}
	return severityByPriority[PriorityLow]
}

// FiredAlert is the ephemeral result of a rule matching the current
// district, crop, date and weather summary. Triggers always holds at
// least one explanation, since a rule only fires when a condition
// matched.
type FiredAlert struct {
	Rule     *AdvisoryRule `json:"rule"`
	Severity Severity      `json:"severity"`
	Triggers []string      `json:"triggers"`
}
