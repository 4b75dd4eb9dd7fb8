package handlers

import (
	"net/http"
	"strings"

	"unistream/models"
)

const apiVersion = "2.0.0"

// ListSources handles GET /api/sources?type=.
func (h *ScrapeHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	contentType := models.ContentType(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type"))))
	infos := h.Service.Sources(contentType)

	out := make([]map[string]any, 0, len(infos))
	for _, info := range infos {
		out = append(out, map[string]any{
			"id":       info.Key,
			"name":     info.DisplayName,
			"base_url": info.BaseURL,
			"language": info.Language,
			"types":    info.Types,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// Health handles GET /health.
func (h *ScrapeHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"scrapers": len(h.Service.Sources(models.TypeAll)),
		"version":  apiVersion,
	})
}

// Root handles GET /, a small self-describing index.
func (h *ScrapeHandler) Root(w http.ResponseWriter, r *http.Request) {
	infos := h.Service.Sources(models.TypeAll)
	keys := make([]string, 0, len(infos))
	for _, info := range infos {
		keys = append(keys, info.Key)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "Universal Streaming Scraper API",
		"version":     apiVersion,
		"description": "aggregated search across anime, movie, and series sites",
		"endpoints": map[string]string{
			"search":       "/api/search?q={query}&type={type}",
			"multi_search": "/api/multi-search?q={query}",
			"details":      "/api/details/{source}/{content_id}?type={type}",
			"sources":      "/api/sources/{source}/{content_id}?episode_id={episode_id}",
			"episode":      "/api/episode/{source}/{content_id}/{episode_id}",
			"download":     "/api/download/{source}/{content_id}",
			"sources_list": "/api/sources",
			"health":       "/health",
		},
		"scrapers_available": keys,
	})
}
