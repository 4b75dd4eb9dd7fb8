package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"gopkg.in/natefinch/lumberjack.v2"

	"unistream/api"
	"unistream/config"
	"unistream/handlers"
	"unistream/services/scrape"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("🚀 unistream Backend Starting...")

	// Determine config path (env or default)
	configPath := os.Getenv("UNISTREAM_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			multiWriter := io.MultiWriter(os.Stdout, fileWriter)
			log.SetOutput(multiWriter)
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	timeout := time.Duration(settings.Scrape.TimeoutSeconds) * time.Second
	fetcher := scrape.NewFetcher(timeout, settings.Scrape.RetryAttempts, settings.Scrape.RequestsPerMinute)

	registry := scrape.NewRegistry(buildScrapers(settings.Sites, fetcher)...)
	if len(registry.Keys()) == 0 {
		log.Fatalf("no scrapers enabled in %s", configPath)
	}
	log.Printf("[main] registered scrapers: %v", registry.Keys())

	scrapeService := scrape.NewService(registry, timeout)
	scrapeHandler := handlers.NewScrapeHandler(scrapeService,
		time.Duration(settings.Scrape.CacheTTLSeconds)*time.Second)

	r := mux.NewRouter()
	api.Register(r, scrapeHandler)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * timeout,
		IdleTimeout:  120 * time.Second,
	}

	// Setup graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("🛑 Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}

// buildScrapers instantiates one adapter per enabled site entry.
func buildScrapers(sites []config.SiteSettings, fetcher *scrape.Fetcher) []scrape.Scraper {
	var scrapers []scrape.Scraper
	for _, site := range sites {
		if !site.Enabled {
			continue
		}
		switch site.Key {
		case "gogoanime":
			scrapers = append(scrapers, scrape.NewGogoanime(site.BaseURL, fetcher))
		case "zoro":
			scrapers = append(scrapers, scrape.NewAniWatch(site.BaseURL, fetcher))
		case "animeheaven":
			scrapers = append(scrapers, scrape.NewAnimeHeaven(site.BaseURL, fetcher))
		case "animesama":
			scrapers = append(scrapers, scrape.NewAnimeSama(site.BaseURL, fetcher))
		case "sflix":
			scrapers = append(scrapers, scrape.NewSFlix(site.BaseURL, fetcher))
		case "fmovies":
			scrapers = append(scrapers, scrape.NewFMovies(site.BaseURL, fetcher))
		case "lookmovie":
			scrapers = append(scrapers, scrape.NewLookMovie(site.BaseURL, fetcher))
		case "vidsrc":
			scrapers = append(scrapers, scrape.NewVidSrc(site.BaseURL, fetcher))
		default:
			log.Printf("[main] unknown site key %q in config, skipping", site.Key)
		}
	}
	return scrapers
}
