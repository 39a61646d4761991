// Package config reads the CLI configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/breatheroute/osrmclient/pkg/osrm"
)

// Config holds the settings of the osrm command.
type Config struct {
	BaseURL    string
	Version    string
	Timeout    time.Duration
	MaxRetries uint64
	LogLevel   zerolog.Level

	Environment  string
	OTelEnabled  bool
	OTLPEndpoint string
	SampleRatio  float64
}

// FromEnv creates a Config from environment variables.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, defaultValue string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return defaultValue
	}

	cfg := Config{
		BaseURL:      get("OSRM_BASE_URL", osrm.DefaultBaseURL),
		Version:      get("OSRM_VERSION", osrm.DefaultVersion),
		Environment:  get("APP_ENV", "development"),
		OTelEnabled:  get("OTEL_ENABLED", "false") == "true",
		OTLPEndpoint: get("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("OSRM_BASE_URL: invalid url %q", cfg.BaseURL)
	}

	if cfg.Timeout, err = time.ParseDuration(get("OSRM_TIMEOUT", osrm.DefaultTimeout.String())); err != nil {
		return Config{}, fmt.Errorf("OSRM_TIMEOUT: %w", err)
	}
	if cfg.Timeout <= 0 {
		return Config{}, fmt.Errorf("OSRM_TIMEOUT: must be positive, got %s", cfg.Timeout)
	}

	if cfg.MaxRetries, err = strconv.ParseUint(get("OSRM_MAX_RETRIES", "0"), 10, 64); err != nil {
		return Config{}, fmt.Errorf("OSRM_MAX_RETRIES: %w", err)
	}

	if cfg.LogLevel, err = zerolog.ParseLevel(get("LOG_LEVEL", "info")); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	if cfg.SampleRatio, err = strconv.ParseFloat(get("OTEL_SAMPLE_RATIO", "1"), 64); err != nil {
		return Config{}, fmt.Errorf("OTEL_SAMPLE_RATIO: %w", err)
	}

	return cfg, nil
}
