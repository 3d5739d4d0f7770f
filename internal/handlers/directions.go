package handlers

import (
	"errors"
	"net/http"

	"route-planner/internal/directions"
	"route-planner/internal/models"
)

type directionsRequest struct {
	Origin      *models.Coordinates  `json:"origin"`
	Destination *models.Coordinates  `json:"destination"`
	Waypoints   []models.Coordinates `json:"waypoints"`
}

// HandleDirections handles POST /api/v1/directions
func (h *Handler) HandleDirections(w http.ResponseWriter, r *http.Request) {
	var req directionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleValidationError(w, "Invalid request body")
		return
	}
	if req.Origin == nil || req.Destination == nil {
		h.handleValidationError(w, "origin and destination are required")
		return
	}

	result, err := h.Directions.Route(r.Context(), *req.Origin, *req.Destination, req.Waypoints)
	if err != nil {
		var dirErr *directions.ErrDirectionsFailed
		if errors.As(err, &dirErr) {
			h.writeError(w, http.StatusBadGateway, "DIRECTIONS_FAILED", err.Error(), nil)
			return
		}
		h.handleInternalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}
