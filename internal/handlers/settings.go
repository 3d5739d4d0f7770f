package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"route-planner/internal/config"
	"route-planner/internal/models"
)

// ConfigUpdateRequest is a partial settings update; omitted fields keep
// their stored values.
type ConfigUpdateRequest struct {
	DriveTimeLimitMinutes   *int `json:"drive_time_limit_minutes"`
	TimeWindowBufferMinutes *int `json:"time_window_buffer_minutes"`
}

// VehiclesRequest replaces the fleet
type VehiclesRequest struct {
	Vehicles []models.Vehicle `json:"vehicles" validate:"min=1,dive"`
}

// HandleGetConfig handles GET /api/v1/config
func (h *Handler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	settings, err := h.DB.Settings().Get(r.Context())
	if err != nil {
		log.Printf("[ERROR] Failed to get settings: err=%v", err)
		h.handleInternalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, settings)
}

// HandleUpdateConfig handles PUT /api/v1/config
func (h *Handler) HandleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		log.Printf("[HTTP] PUT /api/v1/config: invalid_body err=%v", err)
		h.handleValidationError(w, "Invalid request body")
		return
	}

	settings, err := h.DB.Settings().Get(r.Context())
	if err != nil {
		h.handleInternalError(w, err)
		return
	}

	if req.DriveTimeLimitMinutes != nil {
		settings.DriveTimeLimitMinutes = *req.DriveTimeLimitMinutes
	}
	if req.TimeWindowBufferMinutes != nil {
		settings.TimeWindowBufferMinutes = *req.TimeWindowBufferMinutes
	}

	if err := config.Validator().Struct(settings); err != nil {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid settings", validationDetails(err))
		return
	}

	if err := h.DB.Settings().Update(r.Context(), settings); err != nil {
		log.Printf("[ERROR] Failed to update settings: err=%v", err)
		h.handleInternalError(w, err)
		return
	}

	log.Printf("[HTTP] PUT /api/v1/config: drive_time=%d buffer=%d",
		settings.DriveTimeLimitMinutes, settings.TimeWindowBufferMinutes)
	h.writeJSON(w, http.StatusOK, settings)
}

// HandleGetVehicles handles GET /api/v1/vehicles
func (h *Handler) HandleGetVehicles(w http.ResponseWriter, r *http.Request) {
	settings, err := h.DB.Settings().Get(r.Context())
	if err != nil {
		h.handleInternalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, VehiclesRequest{Vehicles: settings.Vehicles})
}

// HandleUpdateVehicles handles PUT /api/v1/vehicles
func (h *Handler) HandleUpdateVehicles(w http.ResponseWriter, r *http.Request) {
	var req VehiclesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		log.Printf("[HTTP] PUT /api/v1/vehicles: invalid_body err=%v", err)
		h.handleValidationError(w, "Invalid request body")
		return
	}

	if err := config.Validator().Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid vehicles", validationDetails(err))
		return
	}

	seen := make(map[string]bool, len(req.Vehicles))
	for _, v := range req.Vehicles {
		if seen[v.ID] {
			h.handleValidationError(w, fmt.Sprintf("Duplicate vehicle id %q", v.ID))
			return
		}
		seen[v.ID] = true
	}

	settings, err := h.DB.Settings().Get(r.Context())
	if err != nil {
		h.handleInternalError(w, err)
		return
	}
	settings.Vehicles = req.Vehicles

	if err := h.DB.Settings().Update(r.Context(), settings); err != nil {
		log.Printf("[ERROR] Failed to update vehicles: err=%v", err)
		h.handleInternalError(w, err)
		return
	}

	log.Printf("[HTTP] PUT /api/v1/vehicles: count=%d capacity=%d", len(settings.Vehicles), settings.TotalCapacity())
	h.writeJSON(w, http.StatusOK, VehiclesRequest{Vehicles: settings.Vehicles})
}

// validationDetails lists the failing field and rule of each violation
func validationDetails(err error) []map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []map[string]string{{"message": err.Error()}}
	}
	details := make([]map[string]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, map[string]string{
			"field": fe.Namespace(),
			"rule":  fe.Tag(),
			"param": fe.Param(),
		})
	}
	return details
}
