package api

import (
	"net/http"

	"unistream/handlers"

	"github.com/gorilla/mux"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Register mounts API endpoints onto the provided router.
func Register(r *mux.Router, scrapeHandler *handlers.ScrapeHandler) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	api.HandleFunc("/search", scrapeHandler.Search).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/multi-search", scrapeHandler.MultiSearch).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/details/{source}/{id}", scrapeHandler.Details).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/sources", scrapeHandler.ListSources).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/sources/{source}/{id}", scrapeHandler.ContentSources).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/episode/{source}/{id}/{episode_id}", scrapeHandler.Episode).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/download/{source}/{id}", scrapeHandler.Download).Methods(http.MethodGet, http.MethodOptions)

	r.HandleFunc("/health", scrapeHandler.Health).Methods(http.MethodGet)
	r.HandleFunc("/", scrapeHandler.Root).Methods(http.MethodGet)
}
