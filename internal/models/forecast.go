package models

import (
	"time"
)

const (
	// shortRangeDays is the slice of the forecast used for the 72h and
	// 3-day average signals.
	shortRangeDays = 3

	// outlookDays is the horizon used when counting rainy days ahead.
	outlookDays = 7

	// rainyDayThresholdMM is the strict lower bound for a day to count
	// as rainy.
	rainyDayThresholdMM = 1.0
)

// DailyForecast represents one day of a short-range weather forecast.
// Null values from the upstream provider are normalized to 0 before
// the record is constructed.
type DailyForecast struct {
	Date       time.Time `json:"date"`
	RainfallMM float64   `json:"rainfall_mm"`
	TempMax    float64   `json:"temp_max"`
	TempMin    float64   `json:"temp_min"`
	Humidity   float64   `json:"humidity"`
}

// WeatherSummary holds the aggregate trigger signals derived from a
// multi-day forecast. All fields are defined (zero) even when the
// forecast was empty; Days records how many days were summarized so
// callers can tell "no data" apart from "all signals zero".
type WeatherSummary struct {
	Next24hRain    float64 `json:"next_24h_rain"`
	Next72hRain    float64 `json:"next_72h_rain"`
	AvgHumidity3d  float64 `json:"avg_humidity_3d"`
	AvgTemp3d      float64 `json:"avg_temp_3d"`
	RainyDaysAhead int     `json:"rainy_days_ahead"`
	Days           int     `json:"days"`
}

// IsEmpty reports whether the summary was produced from an empty
// forecast. An empty summary suppresses rule evaluation entirely.
func (s WeatherSummary) IsEmpty() bool {
	return s.Days == 0
}

// Summarize reduces a chronologically ordered forecast (index 0 = today)
// into the signals consumed by the alert engine. Averages over the first
// three days divide by the number of days actually present, so a one-day
// forecast with humidity 90 yields an average of 90, not 30.
func Summarize(forecast []DailyForecast) WeatherSummary {
	if len(forecast) == 0 {
		return WeatherSummary{}
	}

	summary := WeatherSummary{
		Next24hRain: forecast[0].RainfallMM,
		Days:        len(forecast),
	}

	short := forecast
	if len(short) > shortRangeDays {
		short = short[:shortRangeDays]
	}

	var sumHumidity, sumTemp float64
	for _, day := range short {
		summary.Next72hRain += day.RainfallMM
		sumHumidity += day.Humidity
		sumTemp += day.TempMax
	}

	n := float64(len(short))
	summary.AvgHumidity3d = sumHumidity / n
	summary.AvgTemp3d = sumTemp / n

	week := forecast
	if len(week) > outlookDays {
		week = week[:outlookDays]
	}
	for _, day := range week {
		if day.RainfallMM > rainyDayThresholdMM {
			summary.RainyDaysAhead++
		}
	}

	return summary
}

// ForecastOutlook holds whole-horizon totals over the fetched forecast,
// used for presentation alongside the advisory rather than as trigger
// input.
type ForecastOutlook struct {
	TotalRainMM float64 `json:"total_rain_mm"`
	AvgMaxTemp  float64 `json:"avg_max_temp"`
	RainyDays   int     `json:"rainy_days"`
	Days        int     `json:"days"`
}

// SummarizeOutlook computes display totals over the entire forecast
// horizon. An empty forecast yields a zero outlook.
func SummarizeOutlook(forecast []DailyForecast) ForecastOutlook {
	if len(forecast) == 0 {
		return ForecastOutlook{}
	}

	outlook := ForecastOutlook{Days: len(forecast)}

	var sumTemp float64
	for _, day := range forecast {
		outlook.TotalRainMM += day.RainfallMM
		sumTemp += day.TempMax
		if day.RainfallMM > rainyDayThresholdMM {
			outlook.RainyDays++
		}
	}

	outlook.AvgMaxTemp = sumTemp / float64(len(forecast))

	return outlook
}
