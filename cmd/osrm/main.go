// Package main provides the osrm command, a thin CLI over the OSRM client.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/breatheroute/osrmclient/internal/config"
	"github.com/breatheroute/osrmclient/internal/resilience"
	"github.com/breatheroute/osrmclient/internal/telemetry"
	"github.com/breatheroute/osrmclient/pkg/osrm"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "osrm-cli"

func main() {
	os.Exit(realMain())
}

func realMain() int {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 2
	}

	// Stdout carries command output, so logs go to stderr
	log := zerolog.New(os.Stderr).
		Level(cfg.LogLevel).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Debug().
		Str("build_time", BuildTime).
		Str("base_url", cfg.BaseURL).
		Msg("starting osrm cli")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
		SampleRatio:    cfg.SampleRatio,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize telemetry")
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	var doer osrm.HTTPDoer = &http.Client{Timeout: cfg.Timeout}
	var transport *resilience.Transport
	if cfg.MaxRetries > 0 {
		rcfg := resilience.DefaultConfig("osrm")
		rcfg.MaxRetries = cfg.MaxRetries
		rcfg.Logger = log
		transport = resilience.New(doer, rcfg)
		doer = transport
	}

	client, err := osrm.NewClient(osrm.ClientConfig{
		BaseURL:        cfg.BaseURL,
		Version:        cfg.Version,
		HTTPClient:     doer,
		TracerProvider: tp.TracerProvider(),
		MeterProvider:  tp.MeterProvider(),
		Logger:         log,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create osrm client")
		return 1
	}

	err = run(ctx, client, os.Args[1:], os.Stdout, log)

	if transport != nil {
		health := transport.Health()
		log.Debug().
			Str("breaker_state", health.State.String()).
			Uint32("requests", health.Counts.Requests).
			Uint32("failures", health.Counts.TotalFailures).
			Msg("transport health")
	}

	var usageErr *usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &usageErr):
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage)
		return 2
	default:
		log.Error().Err(err).Msg("command failed")
		if status, ok := osrm.StatusOf(err); ok {
			fmt.Fprintf(os.Stderr, "%s: %s\n", status, status.Description())
		}
		return 1
	}
}
