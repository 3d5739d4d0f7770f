package handlers

import (
	"log"
	"net/http"

	"route-planner/internal/cache"
)

// HandleClearCache handles DELETE /api/v1/cache?prefix=geocode|directions
func (h *Handler) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if !cache.ClearablePrefix(prefix) {
		h.handleValidationError(w, "prefix must be geocode or directions")
		return
	}

	deleted, err := h.Cache.ClearByPrefix(r.Context(), prefix)
	if err != nil {
		h.handleInternalError(w, err)
		return
	}

	log.Printf("[CACHE] Cleared %d %s entries", deleted, prefix)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"deleted": deleted,
		"prefix":  prefix,
	})
}
