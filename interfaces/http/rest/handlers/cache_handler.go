package handlers

import (
	"net/http"

	"fintrack-backend/pkg/cache"
	"fintrack-backend/pkg/common"
)

// CacheHandler exposes cache statistics for health and monitoring.
type CacheHandler struct {
	caches *cache.Registry
}

// NewCacheHandler creates a new cache stats handler.
func NewCacheHandler(caches *cache.Registry) *CacheHandler {
	return &CacheHandler{caches: caches}
}

// Stats handles GET /cache/stats. Pure read, no side effects.
func (h *CacheHandler) Stats(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, h.caches.AllStats())
}
