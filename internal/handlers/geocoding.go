package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"route-planner/internal/geocoding"
)

// MaxBatchAddresses caps a batch geocode request
const MaxBatchAddresses = 100

type geocodeRequest struct {
	Address string `json:"address"`
}

type batchGeocodeRequest struct {
	Addresses []string `json:"addresses"`
}

// HandleGeocode handles POST /api/v1/geocode
func (h *Handler) HandleGeocode(w http.ResponseWriter, r *http.Request) {
	var req geocodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleValidationError(w, "Invalid request body")
		return
	}
	address := strings.TrimSpace(req.Address)
	if address == "" {
		h.handleValidationError(w, "address is required")
		return
	}

	result, err := h.Geocoder.Geocode(r.Context(), address)
	if err != nil {
		var geoErr *geocoding.ErrGeocodingFailed
		if errors.As(err, &geoErr) {
			log.Printf("[HTTP] POST /api/v1/geocode: failed address=%s reason=%s", address, geoErr.Reason)
			h.writeError(w, http.StatusUnprocessableEntity, "GEOCODING_FAILED", err.Error(), nil)
			return
		}
		h.handleInternalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleBatchGeocode handles POST /api/v1/geocode/batch. Each item carries
// its own result or error.
func (h *Handler) HandleBatchGeocode(w http.ResponseWriter, r *http.Request) {
	var req batchGeocodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleValidationError(w, "Invalid request body")
		return
	}
	if len(req.Addresses) == 0 {
		h.handleValidationError(w, "addresses must not be empty")
		return
	}
	if len(req.Addresses) > MaxBatchAddresses {
		h.handleValidationError(w, fmt.Sprintf("at most %d addresses per batch", MaxBatchAddresses))
		return
	}

	items := h.Geocoder.BatchGeocode(r.Context(), req.Addresses)

	failed := 0
	for _, item := range items {
		if item.Error != "" {
			failed++
		}
	}
	log.Printf("[HTTP] POST /api/v1/geocode/batch: addresses=%d failed=%d", len(items), failed)

	h.writeJSON(w, http.StatusOK, map[string]any{
		"results": items,
		"total":   len(items),
		"failed":  failed,
	})
}
