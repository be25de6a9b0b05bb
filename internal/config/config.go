package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataPath        string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dashboard defaults.
	DefaultCities []string
	TopCauses     int

	// Mapbox geocoding and basemap configuration. MapboxToken stays on the
	// server; MapboxTilesToken is embedded in map pages and must be public.
	MapboxToken      string
	MapboxEnabled    bool
	MapboxTimeout    time.Duration
	MapboxCacheSize  int
	MapboxStyle      string
	MapboxTilesToken string

	// View-event publishing; disabled when KafkaBrokers is empty.
	KafkaBrokers   []string
	KafkaViewTopic string
}

// KafkaEnabled reports whether view events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeoutStr := sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s")
	mapboxTimeout, err := time.ParseDuration(mapboxTimeoutStr)
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	topCauses, err := parseTopCauses()
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		DataPath:        sharedcfg.EnvOrDefault("CRASH_DATA_PATH", "data/2017_Crashes_10000_sample.csv"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DefaultCities: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("DEFAULT_CITIES", "BOSTON,WALTHAM")),
		TopCauses:     topCauses,

		MapboxToken:      mapboxToken,
		MapboxEnabled:    mapboxEnabled,
		MapboxTimeout:    mapboxTimeout,
		MapboxCacheSize:  parseMapboxCacheSize(),
		MapboxStyle:      sharedcfg.EnvOrDefault("MAPBOX_STYLE", "mapbox/light-v11"),
		MapboxTilesToken: os.Getenv("MAPBOX_TILES_TOKEN"),

		KafkaBrokers:   sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaViewTopic: sharedcfg.EnvOrDefault("KAFKA_VIEW_TOPIC", "dashboard-view-events"),
	}

	if cfg.DataPath == "" {
		return nil, errors.New("CRASH_DATA_PATH is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if cfg.MapboxTilesToken != "" && !strings.HasPrefix(cfg.MapboxTilesToken, "pk.") {
		return nil, errors.New("MAPBOX_TILES_TOKEN must be a public (pk.) token")
	}
	if cfg.KafkaEnabled() && cfg.KafkaViewTopic == "" {
		return nil, errors.New("KAFKA_VIEW_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parseTopCauses() (int, error) {
	s := os.Getenv("TOP_CAUSES")
	if s == "" {
		return 3, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 20 {
		return 0, errors.New("invalid TOP_CAUSES: must be between 1 and 20")
	}
	return n, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
