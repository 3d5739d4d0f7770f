package handlers

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"route-planner/internal/manifest"
	"route-planner/internal/models"
)

const maxManifestSize = 10 << 20

// ManifestUploadResponse is returned after a successful upload
type ManifestUploadResponse struct {
	Manifest    *models.ManifestMeta `json:"manifest"`
	ParseErrors []string             `json:"parse_errors"`
}

// ManifestListResponse is the list of uploaded manifests
type ManifestListResponse struct {
	Manifests []models.ManifestMeta `json:"manifests"`
	Total     int                   `json:"total"`
}

// ManifestDetailResponse is one manifest with its parsed rows
type ManifestDetailResponse struct {
	Manifest *models.ManifestMeta `json:"manifest"`
	Rows     []models.ManifestRow `json:"rows"`
}

// HandleUploadManifest handles POST /api/v1/manifests
func (h *Handler) HandleUploadManifest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxManifestSize)
	if err := r.ParseMultipartForm(maxManifestSize); err != nil {
		log.Printf("[HTTP] POST /api/v1/manifests: invalid_form err=%v", err)
		h.handleValidationError(w, "Expected a multipart form with a CSV file")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.handleValidationError(w, "No file uploaded")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		h.handleValidationError(w, "Only CSV files are accepted")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.handleInternalError(w, err)
		return
	}

	parsed, err := manifest.ParseCSV(bytes.NewReader(data))
	if err != nil {
		log.Printf("[HTTP] POST /api/v1/manifests: unreadable file=%s err=%v", header.Filename, err)
		h.handleValidationError(w, err.Error())
		return
	}
	if len(parsed.Rows) == 0 {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "No valid rows found in CSV", map[string]any{
			"parse_errors": parsed.Errors,
		})
		return
	}

	meta := &models.ManifestMeta{
		FileName:        header.Filename,
		JobDate:         parsed.Rows[0].JobDate,
		TotalPassengers: manifest.UniquePassengers(parsed.Rows),
		SizeBytes:       int64(len(data)),
	}

	created, err := h.DB.Manifests().Create(r.Context(), meta, parsed.Rows)
	if err != nil {
		log.Printf("[ERROR] Failed to store manifest: file=%s err=%v", header.Filename, err)
		h.handleInternalError(w, err)
		return
	}

	log.Printf("[HTTP] POST /api/v1/manifests: id=%s file=%s rows=%d parse_errors=%d",
		created.ID, created.FileName, created.TotalRows, len(parsed.Errors))
	h.writeJSON(w, http.StatusCreated, ManifestUploadResponse{
		Manifest:    created,
		ParseErrors: parsed.Errors,
	})
}

// HandleListManifests handles GET /api/v1/manifests
func (h *Handler) HandleListManifests(w http.ResponseWriter, r *http.Request) {
	manifests, err := h.DB.Manifests().List(r.Context())
	if err != nil {
		h.handleInternalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, ManifestListResponse{
		Manifests: manifests,
		Total:     len(manifests),
	})
}

// HandleGetManifest handles GET /api/v1/manifests/{id}
func (h *Handler) HandleGetManifest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	meta, err := h.DB.Manifests().Get(r.Context(), id)
	if h.checkNotFound(err) {
		h.handleNotFound(w, "Manifest not found")
		return
	}
	if err != nil {
		h.handleInternalError(w, err)
		return
	}

	rows, err := h.DB.Manifests().GetRows(r.Context(), id, "")
	if err != nil {
		h.handleInternalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, ManifestDetailResponse{Manifest: meta, Rows: rows})
}

// HandleDeleteManifest handles DELETE /api/v1/manifests/{id}
func (h *Handler) HandleDeleteManifest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.DB.Manifests().Delete(r.Context(), id)
	if h.checkNotFound(err) {
		h.handleNotFound(w, "Manifest not found")
		return
	}
	if err != nil {
		h.handleInternalError(w, err)
		return
	}

	log.Printf("[HTTP] DELETE /api/v1/manifests/%s", id)
	w.WriteHeader(http.StatusNoContent)
}

// HandleManifestLegs handles GET /api/v1/manifests/{id}/legs?type=pickup|dropoff
func (h *Handler) HandleManifestLegs(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	leg := models.LegType(r.URL.Query().Get("type"))
	if leg != "" && !leg.Valid() {
		h.handleValidationError(w, "type must be pickup or dropoff")
		return
	}

	rows, err := h.DB.Manifests().GetRows(r.Context(), id, leg)
	if h.checkNotFound(err) {
		h.handleNotFound(w, "Manifest not found")
		return
	}
	if err != nil {
		h.handleInternalError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"rows":  rows,
		"total": len(rows),
	})
}
