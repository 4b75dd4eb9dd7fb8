package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"unistream/models"
	"unistream/services/scrape"

	"github.com/gorilla/mux"
)

type scrapeService interface {
	Search(ctx context.Context, opts scrape.SearchOptions) (*scrape.SearchResult, error)
	MultiSearch(ctx context.Context, query string, limit int) (*scrape.SearchResult, error)
	Details(ctx context.Context, source, contentID string, contentType models.ContentType) (*models.ContentDetails, error)
	EpisodeSources(ctx context.Context, source, contentID, episodeID string) ([]models.VideoSource, error)
	DownloadLinks(ctx context.Context, source, contentID, episodeID string) ([]models.DownloadLink, error)
	Sources(contentType models.ContentType) []scrape.SourceInfo
}

var _ scrapeService = (*scrape.Service)(nil)

// ApiResponse is the envelope every /api endpoint returns.
type ApiResponse struct {
	Success     bool                  `json:"success"`
	Message     string                `json:"message"`
	Data        any                   `json:"data"`
	SourcesUsed []string              `json:"sources_used"`
	Outcome     *models.SourceOutcome `json:"outcome,omitempty"`
}

type ScrapeHandler struct {
	Service scrapeService
	cache   *gocache.Cache
}

// NewScrapeHandler builds the handler. cacheTTL <= 0 disables the
// response cache.
func NewScrapeHandler(s scrapeService, cacheTTL time.Duration) *ScrapeHandler {
	var c *gocache.Cache
	if cacheTTL > 0 {
		c = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return &ScrapeHandler{Service: s, cache: c}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the scrape error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, scrape.ErrNoMatchingSource):
		status = http.StatusBadRequest
	case errors.Is(err, scrape.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, scrape.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, scrape.ErrSourceUnavailable):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *ScrapeHandler) cached(key string) (any, bool) {
	if h.cache == nil {
		return nil, false
	}
	return h.cache.Get(key)
}

func (h *ScrapeHandler) store(key string, v any) {
	if h.cache != nil {
		h.cache.Set(key, v, gocache.DefaultExpiration)
	}
}

func parseLimit(r *http.Request) int {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return limit
}

// Search handles GET /api/search?q=&type=&limit=&source=.
func (h *ScrapeHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q parameter required"})
		return
	}
	contentType := models.ContentType(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type"))))
	if contentType == "" {
		contentType = models.TypeAll
	}
	if !contentType.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid type %q", contentType)})
		return
	}
	source := strings.TrimSpace(r.URL.Query().Get("source"))
	limit := parseLimit(r)

	cacheKey := fmt.Sprintf("search|%s|%s|%d|%s", q, contentType, limit, source)
	if v, ok := h.cached(cacheKey); ok {
		writeJSON(w, http.StatusOK, v)
		return
	}

	result, err := h.Service.Search(r.Context(), scrape.SearchOptions{
		Query:  q,
		Type:   contentType,
		Limit:  limit,
		Source: source,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := searchResponse(result)
	h.store(cacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}

// MultiSearch handles GET /api/multi-search?q=&type=&limit=. It hits
// every source regardless of type and returns a relevance-ranked union.
func (h *ScrapeHandler) MultiSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q parameter required"})
		return
	}
	if t := models.ContentType(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type")))); t != "" && !t.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid type %q", t)})
		return
	}
	limit := parseLimit(r)

	cacheKey := fmt.Sprintf("multi|%s|%d", q, limit)
	if v, ok := h.cached(cacheKey); ok {
		writeJSON(w, http.StatusOK, v)
		return
	}

	result, err := h.Service.MultiSearch(r.Context(), q, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := searchResponse(result)
	h.store(cacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}

func searchResponse(result *scrape.SearchResult) ApiResponse {
	message := "no results"
	if n := len(result.Items); n > 0 {
		message = fmt.Sprintf("%d results from %d sources", n, len(result.SourcesUsed))
	}
	outcome := result.Outcome
	return ApiResponse{
		Success:     len(result.Items) > 0,
		Message:     message,
		Data:        result.Items,
		SourcesUsed: result.SourcesUsed,
		Outcome:     &outcome,
	}
}

// Details handles GET /api/details/{source}/{id}?type=.
func (h *ScrapeHandler) Details(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	source := vars["source"]
	contentID := vars["id"]
	contentType := models.ContentType(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type"))))
	if contentType == "" {
		contentType = models.TypeMovie
	}

	cacheKey := fmt.Sprintf("details|%s|%s|%s", source, contentID, contentType)
	if v, ok := h.cached(cacheKey); ok {
		writeJSON(w, http.StatusOK, v)
		return
	}

	details, err := h.Service.Details(r.Context(), source, contentID, contentType)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := ApiResponse{
		Success:     true,
		Message:     "details retrieved",
		Data:        details,
		SourcesUsed: []string{source},
	}
	h.store(cacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}

// ContentSources handles GET /api/sources/{source}/{id}?episode_id=&type=.
// Without an episode id a movie falls back to the sources resolved on
// its detail page; a series requires the episode id.
func (h *ScrapeHandler) ContentSources(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	source := vars["source"]
	contentID := vars["id"]
	episodeID := strings.TrimSpace(r.URL.Query().Get("episode_id"))
	contentType := models.ContentType(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type"))))
	if contentType == "" {
		contentType = models.TypeMovie
	}

	var sources []models.VideoSource
	var err error
	switch {
	case episodeID != "":
		sources, err = h.Service.EpisodeSources(r.Context(), source, contentID, episodeID)
	case contentType == models.TypeMovie:
		var details *models.ContentDetails
		details, err = h.Service.Details(r.Context(), source, contentID, models.TypeMovie)
		if details != nil {
			sources = details.Sources
		}
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "episode_id required for series and anime"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sourcesResponse(source, sources))
}

// Episode handles GET /api/episode/{source}/{id}/{episode_id}.
func (h *ScrapeHandler) Episode(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sources, err := h.Service.EpisodeSources(r.Context(), vars["source"], vars["id"], vars["episode_id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sourcesResponse(vars["source"], sources))
}

func sourcesResponse(source string, sources []models.VideoSource) ApiResponse {
	if sources == nil {
		sources = []models.VideoSource{}
	}
	message := "no sources"
	if len(sources) > 0 {
		message = fmt.Sprintf("%d sources found", len(sources))
	}
	return ApiResponse{
		Success:     len(sources) > 0,
		Message:     message,
		Data:        sources,
		SourcesUsed: []string{source},
	}
}

// Download handles GET /api/download/{source}/{id}?episode_id=.
func (h *ScrapeHandler) Download(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	source := vars["source"]
	episodeID := strings.TrimSpace(r.URL.Query().Get("episode_id"))

	links, err := h.Service.DownloadLinks(r.Context(), source, vars["id"], episodeID)
	if err != nil {
		writeError(w, err)
		return
	}
	if links == nil {
		links = []models.DownloadLink{}
	}

	message := "no links"
	if len(links) > 0 {
		message = fmt.Sprintf("%d links found", len(links))
	}
	log.Printf("[api] download %s/%s: %d links", source, vars["id"], len(links))
	writeJSON(w, http.StatusOK, ApiResponse{
		Success:     len(links) > 0,
		Message:     message,
		Data:        links,
		SourcesUsed: []string{source},
	})
}
