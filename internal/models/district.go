package models

import "time"

// District is one entry of the district registry: location, rainfall
// regime and the crops grown there. Used to resolve and validate
// advisory requests before evaluation.
type District struct {
	Name            string     `json:"name" db:"name"`
	Region          string     `json:"region" db:"region"`
	Lat             float64    `json:"lat" db:"lat"`
	Lon             float64    `json:"lon" db:"lon"`
	RainfallPattern string     `json:"rainfall_pattern" db:"rainfall_pattern"`
	MainCrops       StringList `json:"main_crops" db:"main_crops"`
	Description     string     `json:"description" db:"description"`
	Population      string     `json:"population" db:"population"`
	ElevationM      int        `json:"elevation_m" db:"elevation_m"`
	SoilType        string     `json:"soil_type" db:"soil_type"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// GrowsCrop reports whether the crop is among the district's main crops.
func (d *District) GrowsCrop(crop string) bool {
	for _, c := range d.MainCrops {
		if c == crop {
			return true
		}
	}
	return false
}

// CropGuidance is static agronomic guidance text for a crop.
type CropGuidance struct {
	Crop            string    `json:"crop" db:"crop"`
	Season          string    `json:"season" db:"season"`
	KeyStages       string    `json:"key_stages" db:"key_stages"`
	CriticalPeriods string    `json:"critical_periods" db:"critical_periods"`
	Tips            string    `json:"tips" db:"tips"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// MarketPrice is an indicative farm-gate price for a crop.
type MarketPrice struct {
	Crop      string    `json:"crop" db:"crop"`
	PriceUGX  int       `json:"price_ugx" db:"price_ugx"`
	Trend     string    `json:"trend" db:"trend"`
	Change    string    `json:"change" db:"change"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
