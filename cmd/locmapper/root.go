package main

import (
	"log/slog"
	"os"

	"github.com/couchcryptid/location-mapper/internal/adapter/kafka"
	"github.com/couchcryptid/location-mapper/internal/config"
	"github.com/couchcryptid/location-mapper/internal/geocode"
	"github.com/couchcryptid/location-mapper/internal/observability"
	"github.com/couchcryptid/location-mapper/internal/pipeline"
	"github.com/couchcryptid/location-mapper/internal/ratelimit"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "locmapper",
	Short: "geocode, validate, and cluster named locations",
	Long: `
locmapper geocodes batches of named addresses through a rate-limited
provider chain (Nominatim first, OpenCage as fallback), tolerates
per-record failures, clusters the resulting points with haversine
DBSCAN, and exports success/failure tables plus render-ready output.

Configuration comes from environment variables.
`,
	SilenceUsage: true,
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildService wires providers, rate limiter, orchestrator, and the
// optional Kafka publisher into a batch service. The returned closer is
// nil when Kafka is disabled.
func buildService(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*pipeline.Service, *kafka.Publisher, error) {
	primary := geocode.NewCachedProvider(
		geocode.NewNominatim(cfg.NominatimUserAgent, cfg.NominatimBaseURL, cfg.GeocodeTimeout, metrics, logger),
		cfg.GeocodeCacheSize,
		metrics,
	)
	providers := []geocode.Provider{primary}

	if cfg.OpenCageAPIKey != "" {
		secondary := geocode.NewCachedProvider(
			geocode.NewOpenCage(cfg.OpenCageAPIKey, cfg.GeocodeTimeout, metrics, logger),
			cfg.GeocodeCacheSize,
			metrics,
		)
		providers = append(providers, secondary)
		logger.Info("opencage fallback enabled")
	} else {
		logger.Info("opencage fallback disabled, no API key configured")
	}

	limiter := ratelimit.New(cfg.MinDelay, nil)

	orch, err := pipeline.NewOrchestrator(providers, limiter, logger, metrics, cfg.MaxConsecutiveErrors)
	if err != nil {
		return nil, nil, err
	}

	var publisher *kafka.Publisher
	var sink pipeline.ResultPublisher
	if cfg.KafkaEnabled {
		publisher = kafka.NewPublisher(cfg, logger)
		sink = publisher
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic)
	}

	svc := pipeline.NewService(orch, cfg.ClusterEpsilonKm, cfg.ClusterMinPoints, sink, logger, metrics)
	return svc, publisher, nil
}
