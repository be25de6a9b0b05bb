package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/crash-zone-dashboard/internal/adapter/csvfile"
	"github.com/couchcryptid/crash-zone-dashboard/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/crash-zone-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/crash-zone-dashboard/internal/adapter/mapbox"
	"github.com/couchcryptid/crash-zone-dashboard/internal/config"
	"github.com/couchcryptid/crash-zone-dashboard/internal/dashboard"
	"github.com/couchcryptid/crash-zone-dashboard/internal/domain"
	"github.com/couchcryptid/crash-zone-dashboard/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table, err := csvfile.Load(ctx, cfg.DataPath)
	if err != nil {
		logger.Error("failed to load crash data", "path", cfg.DataPath, "error", err)
		os.Exit(1)
	}

	// Tooltip geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		cached, err := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		if err != nil {
			logger.Error("failed to create geocode cache", "error", err)
			os.Exit(1)
		}
		geocoder = cached
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	opts := dashboard.Options{
		DefaultCities: cfg.DefaultCities,
		TopCauses:     cfg.TopCauses,
		Geocoder:      geocoder,
	}

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg, metrics, logger)
		opts.Publisher = writer
		logger.Info("view events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaViewTopic)
	}

	d := dashboard.New(opts, logger, metrics)
	d.Attach(table)

	srv := httpadapter.NewServer(cfg.HTTPAddr, d, httpadapter.MapOptions{
		TilesToken:  cfg.MapboxTilesToken,
		MapboxStyle: cfg.MapboxStyle,
	}, metrics, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
