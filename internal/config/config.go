// Package config handles environment configuration and the map display
// settings file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// AppConfig is the process configuration, read from environment variables
// with sensible defaults.
type AppConfig struct {
	Port     string
	LogLevel string

	// Outbound collaborators.
	ForecastBaseURL string
	RoutingBaseURL  string
	HTTPTimeout     time.Duration

	// Catalog source: a local processed city list file, or a provinces
	// endpoint when CatalogURL is set.
	CatalogPath string
	CatalogURL  string

	// Overlay engine tuning.
	MaxVisible     int
	DebounceWindow time.Duration
	FetchTimeout   time.Duration

	// Forecast cache and pre-warm scheduler.
	CacheMaxAge     time.Duration
	PrewarmInterval time.Duration
	PrewarmLimit    int

	// Place search database.
	SearchDriver   string // sqlite | pgx
	SearchDSN      string
	GeocoderAPIKey string

	// Map display settings served to the frontend.
	MapConfigPath string
}

// Load reads configuration from the environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found; using process environment")
	}

	cfg := &AppConfig{
		Port:            getenvDefault("PORT", "3001"),
		LogLevel:        getenvDefault("LOG_LEVEL", "info"),
		ForecastBaseURL: getenvDefault("FORECAST_BASE_URL", "http://localhost:5001/api/predict"),
		RoutingBaseURL:  getenvDefault("ROUTING_BASE_URL", "https://router.project-osrm.org"),
		CatalogPath:     getenvDefault("CATALOG_PATH", "data/processed_city_list.json"),
		CatalogURL:      os.Getenv("CATALOG_URL"),
		MaxVisible:      getenvInt("MAX_VISIBLE", 20),
		PrewarmLimit:    getenvInt("PREWARM_LIMIT", 30),
		SearchDriver:    getenvDefault("SEARCH_DRIVER", "sqlite"),
		SearchDSN:       getenvDefault("SEARCH_DSN", "file:places.db?cache=shared"),
		GeocoderAPIKey:  os.Getenv("GEOCODER_API_KEY"),
		MapConfigPath:   getenvDefault("MAP_CONFIG_PATH", "config.yaml"),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.DebounceWindow, err = getenvDuration("DEBOUNCE_WINDOW", 750*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getenvDuration("FETCH_TIMEOUT", 8*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheMaxAge, err = getenvDuration("CACHE_MAX_AGE", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.PrewarmInterval, err = getenvDuration("PREWARM_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MapConfig describes how the frontend should initialize the map widget.
type MapConfig struct {
	Style       string  `yaml:"style" json:"style"`
	CenterLat   float64 `yaml:"center_lat" json:"center_lat"`
	CenterLon   float64 `yaml:"center_lon" json:"center_lon"`
	Zoom        int     `yaml:"zoom" json:"zoom"`
	Attribution string  `yaml:"attribution,omitempty" json:"attribution,omitempty"`
}

// DefaultMapConfig centers on Hanoi with the bundled style.
func DefaultMapConfig() MapConfig {
	return MapConfig{
		Style:     "/data/fftmap.json",
		CenterLat: 21.028511,
		CenterLon: 105.804817,
		Zoom:      12,
	}
}

// LoadMapConfig reads the YAML map settings file. A missing file is not an
// error; defaults are used.
func LoadMapConfig(path string) MapConfig {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Info().Str("path", path).Msg("No map config file; using defaults")
		return DefaultMapConfig()
	}

	mc := DefaultMapConfig()
	if err := yaml.Unmarshal(data, &mc); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Map config parse failed; using defaults")
		return DefaultMapConfig()
	}
	return mc
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
