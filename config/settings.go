package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server ServerSettings `json:"server"`
	Scrape ScrapeSettings `json:"scrape"`
	Sites  []SiteSettings `json:"sites"`
	Log    LogConfig      `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// ScrapeSettings tunes the aggregation layer.
type ScrapeSettings struct {
	TimeoutSeconds    int `json:"timeoutSeconds"`    // per-call fan-out deadline
	RetryAttempts     int `json:"retryAttempts"`     // per-fetch retries inside an adapter
	RequestsPerMinute int `json:"requestsPerMinute"` // 0 disables rate limiting
	CacheTTLSeconds   int `json:"cacheTtlSeconds"`   // response cache for search/details
}

// SiteSettings overrides one scraper's base URL or disables it. These
// sites rotate domains often enough that the URL has to live in config.
type SiteSettings struct {
	Key     string `json:"key"`
	BaseURL string `json:"baseUrl"`
	Enabled bool   `json:"enabled"`
}

type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{Host: "0.0.0.0", Port: 8000},
		Scrape: ScrapeSettings{
			TimeoutSeconds:    15,
			RetryAttempts:     3,
			RequestsPerMinute: 60,
			CacheTTLSeconds:   300,
		},
		Sites: defaultSites(),
		Log: LogConfig{
			File:       "cache/logs/backend.log",
			Level:      "info",
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
	}
}

func defaultSites() []SiteSettings {
	return []SiteSettings{
		{Key: "gogoanime", BaseURL: "https://anitaku.to", Enabled: true},
		{Key: "zoro", BaseURL: "https://aniwatch.to", Enabled: true},
		{Key: "animeheaven", BaseURL: "https://animeheaven.me", Enabled: true},
		{Key: "animesama", BaseURL: "https://anime-sama.fr", Enabled: true},
		{Key: "sflix", BaseURL: "https://sflix.to", Enabled: true},
		{Key: "fmovies", BaseURL: "https://fmovies.to", Enabled: true},
		{Key: "lookmovie", BaseURL: "https://lookmovie2.to", Enabled: true},
		{Key: "vidsrc", BaseURL: "https://vidsrc.to", Enabled: true},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads settings.json from disk or creates defaults if missing.
// Sites newly added in an upgrade get backfilled into an existing file
// so older configs keep working without hand edits.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		return Settings{}, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, err
	}

	if m.backfill(&settings) {
		if err := m.Save(settings); err != nil {
			return Settings{}, err
		}
	}
	return settings, nil
}

// backfill fills in zero-valued fields and missing sites. Returns true
// when anything changed.
func (m *Manager) backfill(s *Settings) bool {
	changed := false
	defaults := DefaultSettings()

	if s.Scrape.TimeoutSeconds <= 0 {
		s.Scrape.TimeoutSeconds = defaults.Scrape.TimeoutSeconds
		changed = true
	}
	if s.Scrape.RetryAttempts <= 0 {
		s.Scrape.RetryAttempts = defaults.Scrape.RetryAttempts
		changed = true
	}
	if s.Scrape.CacheTTLSeconds <= 0 {
		s.Scrape.CacheTTLSeconds = defaults.Scrape.CacheTTLSeconds
		changed = true
	}
	if s.Server.Port == 0 {
		s.Server = defaults.Server
		changed = true
	}
	if s.Log.File == "" {
		s.Log = defaults.Log
		changed = true
	}

	known := make(map[string]bool, len(s.Sites))
	for _, site := range s.Sites {
		known[site.Key] = true
	}
	for _, site := range defaults.Sites {
		if !known[site.Key] {
			s.Sites = append(s.Sites, site)
			changed = true
		}
	}
	return changed
}

// Save writes settings.json atomically (temp file + rename).
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, m.path)
}
