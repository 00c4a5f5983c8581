package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the Agro Advisory API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Agro Advisory API",
			"description": "Crop-calendar advisory service combining short-range weather forecasts with static agronomic rules",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/advisory": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Evaluate advisory alerts",
					"description": "Fetch the forecast for a district and evaluate the crop-calendar rules for the given crop and date",
					"parameters": []map[string]interface{}{
						{
							"name":        "district",
							"in":          "query",
							"description": "District name (case-insensitive)",
							"required":    true,
							"schema":      map[string]string{"type": "string"},
						},
						{
							"name":        "crop",
							"in":          "query",
							"description": "Crop identifier, must be grown in the district",
							"required":    true,
							"schema":      map[string]string{"type": "string"},
						},
						{
							"name":        "date",
							"in":          "query",
							"description": "Evaluation date (YYYY-MM-DD), defaults to today",
							"required":    false,
							"schema":      map[string]string{"type": "string", "format": "date"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Advisory report with forecast, summary and fired alerts"},
						"400": map[string]interface{}{"description": "Invalid crop or date"},
						"404": map[string]interface{}{"description": "Unknown district"},
					},
				},
			},
			"/api/districts": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "List the district registry",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "District registry entries"},
					},
				},
			},
			"/api/districts/{district}/forecast": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Get the raw daily forecast for a district",
					"parameters": []map[string]interface{}{
						{
							"name":     "district",
							"in":       "path",
							"required": true,
							"schema":   map[string]string{"type": "string"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Daily forecast and outlook"},
						"404": map[string]interface{}{"description": "Unknown district"},
					},
				},
			},
			"/api/rules": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "List advisory rules",
					"parameters": []map[string]interface{}{
						{
							"name":     "crop",
							"in":       "query",
							"required": false,
							"schema":   map[string]string{"type": "string"},
						},
						{
							"name":     "district",
							"in":       "query",
							"required": false,
							"schema":   map[string]string{"type": "string"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Matching advisory rules in catalog order"},
					},
				},
			},
			"/api/prices": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "List market prices",
					"parameters": []map[string]interface{}{
						{
							"name":     "crop",
							"in":       "query",
							"required": false,
							"schema":   map[string]string{"type": "string"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Market price entries"},
						"404": map[string]interface{}{"description": "Unknown crop"},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Health check",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Service healthy"},
						"503": map[string]interface{}{"description": "Database unreachable"},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
