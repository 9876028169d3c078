package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const (
	defaultStatewideURL = "https://fire.ak.blm.gov/content/aicc/Statistics%20Directory/Alaska%20Daily%20Stats%20-%202004%20to%20Present.csv"
	defaultZonedURL     = "https://fire.ak.blm.gov/content/aicc/Statistics%20Directory/Alaska%20Daily%20Stats%20by%20Protection-2004%20to%20Present.csv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	StatewideURL string
	ZonedURL     string

	// Upstream fetch and cache configuration.
	CacheTTL        time.Duration
	FetchTimeout    time.Duration
	InsecureTLS     bool
	BreakerFailures int
	BreakerCooldown time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Snapshot publishing.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSnapshotTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parseCacheTTL()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	breakerCooldown, err := parsePositiveDuration("BREAKER_COOLDOWN", "1m")
	if err != nil {
		return nil, err
	}

	breakerFailures, err := parsePositiveInt("BREAKER_MAX_FAILURES", 3)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		StatewideURL:    sharedcfg.EnvOrDefault("TALLY_DATA_URL", defaultStatewideURL),
		ZonedURL:        sharedcfg.EnvOrDefault("TALLY_DATA_ZONES_URL", defaultZonedURL),
		CacheTTL:        cacheTTL,
		FetchTimeout:    fetchTimeout,
		InsecureTLS:     os.Getenv("TALLY_INSECURE_TLS") == "true",
		BreakerFailures: breakerFailures,
		BreakerCooldown: breakerCooldown,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSnapshotTopic: sharedcfg.EnvOrDefault("KAFKA_SNAPSHOT_TOPIC", "fire-tally-snapshots"),
	}

	if cfg.StatewideURL == "" {
		return nil, errors.New("TALLY_DATA_URL is required")
	}
	if cfg.ZonedURL == "" {
		return nil, errors.New("TALLY_DATA_ZONES_URL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSnapshotTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SNAPSHOT_TOPIC is empty")
	}

	return cfg, nil
}

// parseCacheTTL reads CACHE_TTL as a duration. The legacy DASH_CACHE_EXPIRE
// (integer seconds) is honoured when CACHE_TTL is unset.
func parseCacheTTL() (time.Duration, error) {
	if os.Getenv("CACHE_TTL") == "" {
		if s := os.Getenv("DASH_CACHE_EXPIRE"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return 0, errors.New("invalid DASH_CACHE_EXPIRE")
			}
			return time.Duration(n) * time.Second, nil
		}
	}
	return parsePositiveDuration("CACHE_TTL", "12h")
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
