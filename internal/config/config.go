package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Geocoding provider configuration.
	NominatimUserAgent   string
	NominatimBaseURL     string
	OpenCageAPIKey       string
	GeocodeTimeout       time.Duration
	GeocodeCacheSize     int
	MinDelay             time.Duration
	MaxConsecutiveErrors int

	// Clustering parameters.
	ClusterEpsilonKm float64
	ClusterMinPoints int

	// Optional Kafka sink (feature-flagged via KAFKA_BROKERS).
	KafkaBrokers   []string
	KafkaSinkTopic string
	KafkaEnabled   bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	geocodeTimeout, err := parseDuration("GEOCODE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	minDelay, err := parseDuration("MIN_DELAY", "1s")
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseInt("GEOCODE_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	maxErrs, err := parseInt("MAX_CONSECUTIVE_ERRORS", 3)
	if err != nil {
		return nil, err
	}

	epsilonKm, err := parseFloat("CLUSTER_EPSILON_KM", 2.0)
	if err != nil {
		return nil, err
	}

	minPoints, err := parseInt("CLUSTER_MIN_POINTS", 2)
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		NominatimUserAgent:   envOrDefault("NOMINATIM_USER_AGENT", "location-mapper/1.0"),
		NominatimBaseURL:     envOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		OpenCageAPIKey:       os.Getenv("OPENCAGE_API_KEY"),
		GeocodeTimeout:       geocodeTimeout,
		GeocodeCacheSize:     cacheSize,
		MinDelay:             minDelay,
		MaxConsecutiveErrors: maxErrs,

		ClusterEpsilonKm: epsilonKm,
		ClusterMinPoints: minPoints,

		KafkaBrokers:   brokers,
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "geocoded-locations"),
		KafkaEnabled:   len(brokers) > 0,
	}

	if cfg.NominatimUserAgent == "" {
		return nil, errors.New("NOMINATIM_USER_AGENT must not be empty")
	}
	if cfg.MinDelay < 0 {
		return nil, errors.New("MIN_DELAY must not be negative")
	}
	if cfg.ClusterEpsilonKm <= 0 {
		return nil, errors.New("CLUSTER_EPSILON_KM must be positive")
	}
	if cfg.ClusterMinPoints < 1 {
		return nil, errors.New("CLUSTER_MIN_POINTS must be at least 1")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_BROKERS is set but KAFKA_SINK_TOPIC is empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return f, nil
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
