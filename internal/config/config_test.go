package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLocalFeed = "./testdata/statewide.csv"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultStatewideURL, cfg.StatewideURL)
	assert.Equal(t, defaultZonedURL, cfg.ZonedURL)
	assert.Equal(t, 12*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.False(t, cfg.InsecureTLS)
	assert.Equal(t, 3, cfg.BreakerFailures)
	assert.Equal(t, time.Minute, cfg.BreakerCooldown)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "fire-tally-snapshots", cfg.KafkaSnapshotTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("TALLY_DATA_URL", testLocalFeed)
	t.Setenv("TALLY_DATA_ZONES_URL", "./testdata/zones.csv")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("TALLY_INSECURE_TLS", "true")
	t.Setenv("BREAKER_MAX_FAILURES", "5")
	t.Setenv("BREAKER_COOLDOWN", "2m")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SNAPSHOT_TOPIC", "custom-snapshots")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testLocalFeed, cfg.StatewideURL)
	assert.Equal(t, "./testdata/zones.csv", cfg.ZonedURL)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.InsecureTLS)
	assert.Equal(t, 5, cfg.BreakerFailures)
	assert.Equal(t, 2*time.Minute, cfg.BreakerCooldown)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-snapshots", cfg.KafkaSnapshotTopic)
}

func TestLoad_LegacyCacheExpire(t *testing.T) {
	t.Setenv("DASH_CACHE_EXPIRE", "3600")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
}

func TestLoad_CacheTTLWinsOverLegacy(t *testing.T) {
	t.Setenv("DASH_CACHE_EXPIRE", "3600")
	t.Setenv("CACHE_TTL", "2h")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.CacheTTL)
}

func TestLoad_InvalidLegacyCacheExpire(t *testing.T) {
	t.Setenv("DASH_CACHE_EXPIRE", "soon")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DASH_CACHE_EXPIRE")
}

func TestLoad_InvalidDurations(t *testing.T) {
	for _, key := range []string{"CACHE_TTL", "FETCH_TIMEOUT", "BREAKER_COOLDOWN"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "not-a-duration")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
		t.Run(key+" negative", func(t *testing.T) {
			t.Setenv(key, "-1s")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBreakerFailures(t *testing.T) {
	t.Setenv("BREAKER_MAX_FAILURES", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BREAKER_MAX_FAILURES")
}
