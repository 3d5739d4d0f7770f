package server

import (
	"net/http"

	"route-planner/internal/handlers"
	"route-planner/internal/metrics"
)

// setupRoutes configures all HTTP routes
func setupRoutes(handler *handlers.Handler, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", handler.HandleHealthCheck)

	mux.HandleFunc("POST /api/v1/manifests", handler.HandleUploadManifest)
	mux.HandleFunc("GET /api/v1/manifests", handler.HandleListManifests)
	mux.HandleFunc("GET /api/v1/manifests/{id}", handler.HandleGetManifest)
	mux.HandleFunc("DELETE /api/v1/manifests/{id}", handler.HandleDeleteManifest)
	mux.HandleFunc("GET /api/v1/manifests/{id}/legs", handler.HandleManifestLegs)

	mux.HandleFunc("GET /api/v1/routes", handler.HandleGetRoutes)
	mux.HandleFunc("POST /api/v1/routes/optimize", handler.HandleOptimizeRoutes)
	mux.HandleFunc("GET /api/v1/passengers", handler.HandlePassengers)

	mux.HandleFunc("GET /api/v1/config", handler.HandleGetConfig)
	mux.HandleFunc("PUT /api/v1/config", handler.HandleUpdateConfig)
	mux.HandleFunc("GET /api/v1/vehicles", handler.HandleGetVehicles)
	mux.HandleFunc("PUT /api/v1/vehicles", handler.HandleUpdateVehicles)

	mux.HandleFunc("DELETE /api/v1/cache", handler.HandleClearCache)

	mux.HandleFunc("POST /api/v1/geocode", handler.HandleGeocode)
	mux.HandleFunc("POST /api/v1/geocode/batch", handler.HandleBatchGeocode)
	mux.HandleFunc("POST /api/v1/directions", handler.HandleDirections)

	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}

	return mux
}
