package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
)

const (
	apiTitle   = "Hybrid Energy Platform API"
	openAPIURL = "/api/docs/openapi.json"
)

var docsPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.10.0/swagger-ui.css">
</head>
<body style="margin:0">
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5.10.0/swagger-ui-bundle.js"></script>
  <script>
    window.onload = () => {
      window.ui = SwaggerUIBundle({url: "{{.SpecURL}}", dom_id: "#swagger-ui", deepLinking: true});
    };
  </script>
</body>
</html>`))

// SwaggerUI serves an interactive page over the OpenAPI document
func SwaggerUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	docsPage.Execute(w, struct{ Title, SpecURL string }{apiTitle, openAPIURL})
}

func jsonBody(schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{"schema": schema},
		},
	}
}

func jsonResponse(description string, schema map[string]interface{}) map[string]interface{} {
	r := jsonBody(schema)
	r["description"] = description
	return r
}

func ref(name string) map[string]interface{} {
	return map[string]interface{}{"$ref": "#/components/schemas/" + name}
}

func number() map[string]string {
	return map[string]string{"type": "number"}
}

var errorResponses = map[string]interface{}{
	"400": jsonResponse("Invalid input", ref("Error")),
	"504": jsonResponse("Uncertainty analysis exceeded its time budget", ref("Error")),
}

// OpenAPISpec returns the OpenAPI 3.0 description of the analysis API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	facilityID := map[string]interface{}{
		"name":     "facility_id",
		"in":       "path",
		"required": true,
		"schema":   map[string]string{"type": "string"},
	}

	responses := func(ok map[string]interface{}, extra ...string) map[string]interface{} {
		out := map[string]interface{}{"200": ok}
		for k, v := range errorResponses {
			out[k] = v
		}
		for _, code := range extra {
			status, _ := strconv.Atoi(code)
			out[code] = jsonResponse(http.StatusText(status), ref("Error"))
		}
		return out
	}

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       apiTitle,
			"description": "Load profiling, PV/battery/generator sizing and lifecycle finance for off-grid facilities",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/analysis": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Run a full analysis",
					"description": "Omitted parameter sections take the server defaults",
					"requestBody": jsonBody(ref("AnalysisRequest")),
					"responses":   responses(jsonResponse("Analysis report", ref("AnalysisReport"))),
				},
			},
			"/api/analysis/load-profile": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Synthesize and summarize the 24-hour load profile only",
					"requestBody": jsonBody(ref("AnalysisRequest")),
					"responses":   responses(jsonResponse("Load profile and demand summary", map[string]interface{}{"type": "object"})),
				},
			},
			"/api/analysis/uncertainty": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Run sensitivity and Monte Carlo analysis",
					"description": "The request must carry an uncertainty section",
					"requestBody": jsonBody(ref("AnalysisRequest")),
					"responses":   responses(jsonResponse("Uncertainty result", map[string]interface{}{"type": "object"})),
				},
			},
			"/api/facilities/{facility_id}": map[string]interface{}{
				"put": map[string]interface{}{
					"summary":     "Store a facility survey",
					"parameters":  []interface{}{facilityID},
					"requestBody": jsonBody(map[string]interface{}{"type": "object"}),
					"responses":   responses(jsonResponse("Survey stored", map[string]interface{}{"type": "object"}), "503"),
				},
			},
			"/api/facilities/{facility_id}/equipment": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":    "List a stored facility inventory",
					"parameters": []interface{}{facilityID},
					"responses": responses(jsonResponse("Equipment list", map[string]interface{}{
						"type": "array", "items": ref("Equipment"),
					}), "404", "503"),
				},
			},
			"/api/facilities/{facility_id}/analysis": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Analyse a stored facility with the server defaults",
					"parameters": []interface{}{
						facilityID,
						map[string]interface{}{
							"name":        "samples",
							"in":          "query",
							"description": "Run a Monte Carlo simulation with this many samples",
							"schema":      map[string]string{"type": "integer"},
						},
						map[string]interface{}{
							"name":   "facility_type",
							"in":     "query",
							"schema": map[string]interface{}{"type": "string", "enum": []string{"health_clinic", "school", "office"}},
						},
					},
					"responses": responses(jsonResponse("Analysis report", ref("AnalysisReport")), "404", "503"),
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":   "Health check",
					"responses": map[string]interface{}{"200": map[string]string{"description": "Service healthy"}},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Prometheus metrics",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"Error": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"error":   map[string]string{"type": "string"},
						"message": map[string]string{"type": "string"},
						"field":   map[string]string{"type": "string"},
						"code":    map[string]string{"type": "integer"},
					},
				},
				"Equipment": map[string]interface{}{
					"type":     "object",
					"required": []string{"power_rating_w", "hours_per_day", "efficiency", "priority", "quantity"},
					"properties": map[string]interface{}{
						"id":             map[string]string{"type": "string"},
						"name":           map[string]string{"type": "string"},
						"category":       map[string]interface{}{"type": "string", "enum": []string{"medical", "lighting", "cooling", "computing", "kitchen", "other"}},
						"power_rating_w": number(),
						"hours_per_day":  number(),
						"efficiency":     number(),
						"priority":       map[string]interface{}{"type": "string", "enum": []string{"essential", "important", "optional"}},
						"quantity":       map[string]string{"type": "integer"},
					},
				},
				"AnalysisRequest": map[string]interface{}{
					"type":     "object",
					"required": []string{"equipment"},
					"properties": map[string]interface{}{
						"facility_id": map[string]string{"type": "string"},
						"equipment":   map[string]interface{}{"type": "array", "items": ref("Equipment")},
						"weather": map[string]interface{}{
							"type":        "object",
							"description": "Typical-day hourly series; temperature and solar_irradiance need 24 values",
						},
						"options":     map[string]string{"type": "object"},
						"costing":     map[string]string{"type": "object"},
						"system":      map[string]string{"type": "object"},
						"financial":   map[string]string{"type": "object"},
						"uncertainty": map[string]string{"type": "object"},
					},
				},
				"AnalysisReport": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"analysis_id":        map[string]string{"type": "string", "format": "uuid"},
						"generated_at":       map[string]string{"type": "string", "format": "date-time"},
						"weather_source":     map[string]interface{}{"type": "string", "enum": []string{"supplied", "synthetic"}},
						"load_profile":       map[string]string{"type": "array"},
						"demand_summary":     map[string]string{"type": "object"},
						"category_breakdown": map[string]string{"type": "object"},
						"system_sizing":      map[string]string{"type": "object"},
						"financial_analysis": map[string]string{"type": "object"},
						"uncertainty":        map[string]string{"type": "object"},
						"recommendations":    map[string]interface{}{"type": "array", "items": map[string]string{"type": "string"}},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}

