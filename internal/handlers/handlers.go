package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"route-planner/internal/cache"
	"route-planner/internal/database"
	"route-planner/internal/geocoding"
	"route-planner/internal/models"
	"route-planner/internal/optimizer"
	"route-planner/internal/routing"
)

// RouteService serves computed routes for stored manifests
type RouteService interface {
	GetRoutes(ctx context.Context, manifestID string, force bool) (*models.RouteResponse, error)
	OptimizeRows(ctx context.Context, rows []models.ManifestRow) (*models.RouteData, error)
	Passengers(ctx context.Context, manifestID string) ([]models.PassengerSummary, error)
}

// Geocoder resolves single addresses and batches
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geocoding.Result, error)
	BatchGeocode(ctx context.Context, addresses []string) []geocoding.BatchItem
}

// Router resolves driving directions
type Router interface {
	Route(ctx context.Context, origin, dest models.Coordinates, waypoints []models.Coordinates) (*models.Directions, error)
}

// Handler provides common handler utilities and dependencies
type Handler struct {
	DB         database.DataStore
	Routes     RouteService
	Geocoder   Geocoder
	Directions Router
	Cache      cache.Store
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string, details any) {
	h.writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// handleNotFound handles 404 errors
func (h *Handler) handleNotFound(w http.ResponseWriter, message string) {
	h.writeError(w, http.StatusNotFound, "NOT_FOUND", message, nil)
}

// handleValidationError handles 400 errors
func (h *Handler) handleValidationError(w http.ResponseWriter, message string) {
	h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", message, nil)
}

// handleRoutingError maps planning failures: a failed solver call is a bad
// gateway, an unsatisfiable request is unprocessable.
func (h *Handler) handleRoutingError(w http.ResponseWriter, err error) {
	var solverErr *optimizer.ErrSolverFailed
	if errors.As(err, &solverErr) {
		log.Printf("[ERROR] Solver failed: %v", err)
		details := map[string]any{}
		if solverErr.Status != 0 {
			details["status"] = solverErr.Status
		}
		h.writeError(w, http.StatusBadGateway, "SOLVER_FAILED", solverErr.Error(), details)
		return
	}

	var routingErr *routing.ErrRoutingFailed
	if errors.As(err, &routingErr) {
		h.writeError(w, http.StatusUnprocessableEntity, "ROUTING_FAILED", routingErr.Reason, map[string]any{
			"direction": routingErr.Direction,
		})
		return
	}

	h.handleInternalError(w, err)
}

// handleInternalError handles 500 errors
func (h *Handler) handleInternalError(w http.ResponseWriter, err error) {
	log.Printf("[ERROR] Internal error: %v", err)
	h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An error occurred. Please try again.", nil)
}

// checkNotFound checks if an error is a not found error
func (h *Handler) checkNotFound(err error) bool {
	return errors.Is(err, database.ErrNotFound)
}

// decodeJSON reads a JSON request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	return dec.Decode(dst)
}

const maxJSONBody = 4 << 20

// HandleHealthCheck handles GET /api/v1/health
func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "connected"

	if err := h.DB.HealthCheck(r.Context()); err != nil {
		log.Printf("[WARN] Health check failed: err=%v", err)
		status = "degraded"
		dbStatus = "error"
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":   status,
		"version":  "1.0.0",
		"database": dbStatus,
	})
}
