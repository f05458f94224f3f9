package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all dashboard settings, populated from environment variables.
type Config struct {
	EventsSource   string
	TimelineSource string
	Location       *time.Location
	FetchTimeout   time.Duration

	QueryCacheSize         int
	HeatmapSampleThreshold int

	GazetteerPath  string
	ActorInference bool

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	loc, err := time.LoadLocation(sharedcfg.EnvOrDefault("DATA_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid DATA_TIMEZONE: %w", err)
	}

	fetchTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("FETCH_TIMEOUT", "10s"))
	if err != nil || fetchTimeout <= 0 {
		return nil, errors.New("invalid FETCH_TIMEOUT")
	}

	cacheSize, err := parseNonNegative("QUERY_CACHE_SIZE", 64)
	if err != nil {
		return nil, err
	}

	threshold, err := parseNonNegative("HEATMAP_SAMPLE_THRESHOLD", 3000)
	if err != nil {
		return nil, err
	}

	actorInference, err := strconv.ParseBool(sharedcfg.EnvOrDefault("ACTOR_INFERENCE", "false"))
	if err != nil {
		return nil, errors.New("invalid ACTOR_INFERENCE")
	}

	cfg := &Config{
		EventsSource:           strings.TrimSpace(sharedcfg.EnvOrDefault("DATA_EVENTS_SOURCE", "assets/data/events.geojson")),
		TimelineSource:         strings.TrimSpace(sharedcfg.EnvOrDefault("DATA_TIMELINE_SOURCE", "")),
		Location:               loc,
		FetchTimeout:           fetchTimeout,
		QueryCacheSize:         cacheSize,
		HeatmapSampleThreshold: threshold,
		GazetteerPath:          strings.TrimSpace(sharedcfg.EnvOrDefault("GAZETTEER_PATH", "")),
		ActorInference:         actorInference,
		LogLevel:               sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:              strings.ToLower(strings.TrimSpace(sharedcfg.EnvOrDefault("LOG_FORMAT", "json"))),
	}

	if cfg.EventsSource == "" {
		return nil, errors.New("DATA_EVENTS_SOURCE is required")
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: want json or text", cfg.LogFormat)
	}

	return cfg, nil
}

// Sources lists the configured data sources, events first.
func (c *Config) Sources() []string {
	if c.TimelineSource == "" {
		return []string{c.EventsSource}
	}
	return []string{c.EventsSource, c.TimelineSource}
}

func parseNonNegative(key string, def int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(sharedcfg.EnvOrDefault(key, strconv.Itoa(def))))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
