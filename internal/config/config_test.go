package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := fromLookup(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, "http://router.project-osrm.org", cfg.BaseURL)
	assert.Equal(t, "v1", cfg.Version)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, uint64(0), cfg.MaxRetries)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.OTelEnabled)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.Equal(t, 1.0, cfg.SampleRatio)
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := fromLookup(lookupFrom(map[string]string{
		"OSRM_BASE_URL":               "http://localhost:5000",
		"OSRM_VERSION":                "v2",
		"OSRM_TIMEOUT":                "2s",
		"OSRM_MAX_RETRIES":            "3",
		"LOG_LEVEL":                   "debug",
		"APP_ENV":                     "production",
		"OTEL_ENABLED":                "true",
		"OTEL_EXPORTER_OTLP_ENDPOINT": "collector:4317",
		"OTEL_SAMPLE_RATIO":           "0.1",
	}))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.BaseURL)
	assert.Equal(t, "v2", cfg.Version)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, uint64(3), cfg.MaxRetries)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.OTelEnabled)
	assert.Equal(t, "collector:4317", cfg.OTLPEndpoint)
	assert.Equal(t, 0.1, cfg.SampleRatio)
}

func TestFromLookup_EmptyValuesUseDefaults(t *testing.T) {
	cfg, err := fromLookup(lookupFrom(map[string]string{"OSRM_BASE_URL": "", "OSRM_TIMEOUT": ""}))
	require.NoError(t, err)

	assert.Equal(t, "http://router.project-osrm.org", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestFromLookup_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"base url without scheme": {"OSRM_BASE_URL": "localhost:5000/osrm"},
		"timeout":                 {"OSRM_TIMEOUT": "soon"},
		"negative timeout":        {"OSRM_TIMEOUT": "-1s"},
		"retries":                 {"OSRM_MAX_RETRIES": "-1"},
		"log level":               {"LOG_LEVEL": "loud"},
		"sample ratio":            {"OTEL_SAMPLE_RATIO": "half"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := fromLookup(lookupFrom(env))
			assert.Error(t, err)
		})
	}
}
