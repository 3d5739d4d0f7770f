package handlers

import (
	"log"
	"net/http"
	"strconv"

	"route-planner/internal/manifest"
	"route-planner/internal/models"
)

// OptimizeRequest carries ad-hoc rows for the cluster planner
type OptimizeRequest struct {
	Rows []models.ManifestRow `json:"rows"`
}

// PassengerListResponse is the passenger index of a manifest's routes
type PassengerListResponse struct {
	Passengers []models.PassengerSummary `json:"passengers"`
	Total      int                       `json:"total"`
}

// HandleGetRoutes handles GET /api/v1/routes?manifest_id=&force=true
func (h *Handler) HandleGetRoutes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	manifestID := query.Get("manifest_id")

	force := false
	if v := query.Get("force"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			h.handleValidationError(w, "force must be a boolean")
			return
		}
		force = parsed
	}

	resp, err := h.Routes.GetRoutes(r.Context(), manifestID, force)
	if err != nil {
		h.handleRoutingError(w, err)
		return
	}

	log.Printf("[HTTP] GET /api/v1/routes: manifest=%s force=%t cached=%t pickup_trips=%d dropoff_trips=%d",
		manifestID, force, resp.Cache.Cached, len(resp.PickupTrips), len(resp.DropoffTrips))
	h.writeJSON(w, http.StatusOK, resp)
}

// HandleOptimizeRoutes handles POST /api/v1/routes/optimize
func (h *Handler) HandleOptimizeRoutes(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		log.Printf("[HTTP] POST /api/v1/routes/optimize: invalid_body err=%v", err)
		h.handleValidationError(w, "Invalid request body")
		return
	}
	if len(req.Rows) == 0 {
		h.handleValidationError(w, "rows must not be empty")
		return
	}
	for i := range req.Rows {
		if req.Rows[i].JobID == "" || req.Rows[i].CustName == "" {
			h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Every row needs a job_id and cust_name", map[string]any{"row": i})
			return
		}
		req.Rows[i].Leg = manifest.ClassifyLeg(req.Rows[i].JobID)
	}

	data, err := h.Routes.OptimizeRows(r.Context(), req.Rows)
	if err != nil {
		h.handleRoutingError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, data)
}

// HandlePassengers handles GET /api/v1/passengers?manifest_id=
func (h *Handler) HandlePassengers(w http.ResponseWriter, r *http.Request) {
	passengers, err := h.Routes.Passengers(r.Context(), r.URL.Query().Get("manifest_id"))
	if err != nil {
		h.handleRoutingError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, PassengerListResponse{
		Passengers: passengers,
		Total:      len(passengers),
	})
}
