package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"deriv_terminal/internal/interval"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"TERMINAL_WS_URL", "TERMINAL_REST_URL", "TERMINAL_INSTRUMENT",
		"TERMINAL_INTERVAL", "TERMINAL_RECONNECT_MS", "TERMINAL_RELAY",
		"TERMINAL_RELAY_BROKERS", "TERMINAL_ENV_FILE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "wss://deriv-stream.crypto.com/v1/market", cfg.StreamURL)
	assert.Equal(t, "https://deriv-api.crypto.com/v1/public", cfg.RestURL)
	assert.Equal(t, "BTCUSD-PERP", cfg.Instrument)
	assert.Equal(t, interval.D1, cfg.Interval)
	assert.Equal(t, time.Second, cfg.ReconnectDelay)
	assert.Equal(t, 100*time.Millisecond, cfg.PageThrottle)
	assert.Empty(t, cfg.RelayKind)
	assert.Equal(t, []string{"localhost:9092"}, cfg.RelayBrokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TERMINAL_ENV_FILE", "")
	t.Setenv("TERMINAL_INSTRUMENT", "ethusd-perp")
	t.Setenv("TERMINAL_INTERVAL", "15m")
	t.Setenv("TERMINAL_RECONNECT_MS", "250")
	t.Setenv("TERMINAL_RELAY", "kafka")
	t.Setenv("TERMINAL_RELAY_BROKERS", "b1:9092, b2:9092,")

	cfg := Load()

	assert.Equal(t, "ETHUSD-PERP", cfg.Instrument)
	assert.Equal(t, interval.M15, cfg.Interval)
	assert.Equal(t, 250*time.Millisecond, cfg.ReconnectDelay)
	assert.Equal(t, "kafka", cfg.RelayKind)
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.RelayBrokers)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("TERMINAL_ENV_FILE", "")
	t.Setenv("TERMINAL_INTERVAL", "7m")
	t.Setenv("TERMINAL_RECONNECT_MS", "-5")

	cfg := Load()

	assert.Equal(t, interval.D1, cfg.Interval)
	assert.Equal(t, time.Second, cfg.ReconnectDelay)
}
