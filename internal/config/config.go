// Package config assembles the terminal's runtime configuration from the
// environment (after an optional .env file). Flags on the binary override
// the common knobs.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"deriv_terminal/internal/dotenv"
	"deriv_terminal/internal/instrument"
	"deriv_terminal/internal/interval"
)

type Config struct {
	StreamURL string
	RestURL   string

	Instrument string
	Interval   interval.Interval

	ReconnectDelay time.Duration // pause before every reconnect attempt
	SettleDelay    time.Duration // wait after connect before subscribing
	PageThrottle   time.Duration // min spacing between backfill requests

	RelayKind    string // "", "kafka" or "nats"
	RelayBrokers []string
	RelayTopic   string

	MetricsListen string
	EventDir      string
}

func Load() Config {
	_ = dotenv.Load(".env", os.Getenv("TERMINAL_ENV_FILE"))

	iv := interval.D1
	if parsed, err := interval.Parse(strings.TrimSpace(os.Getenv("TERMINAL_INTERVAL"))); err == nil {
		iv = parsed
	}

	return Config{
		StreamURL:      stringOr(os.Getenv("TERMINAL_WS_URL"), "wss://deriv-stream.crypto.com/v1/market"),
		RestURL:        stringOr(os.Getenv("TERMINAL_REST_URL"), "https://deriv-api.crypto.com/v1/public"),
		Instrument:     instrument.FromEnv("BTCUSD-PERP"),
		Interval:       iv,
		ReconnectDelay: millisOr(os.Getenv("TERMINAL_RECONNECT_MS"), 1000),
		SettleDelay:    millisOr(os.Getenv("TERMINAL_SETTLE_MS"), 1000),
		PageThrottle:   millisOr(os.Getenv("TERMINAL_PAGE_THROTTLE_MS"), 100),
		RelayKind:      strings.TrimSpace(os.Getenv("TERMINAL_RELAY")),
		RelayBrokers:   splitOr(os.Getenv("TERMINAL_RELAY_BROKERS"), []string{"localhost:9092"}),
		RelayTopic:     stringOr(os.Getenv("TERMINAL_RELAY_TOPIC"), "deriv_terminal_events"),
		MetricsListen:  strings.TrimSpace(os.Getenv("TERMINAL_METRICS_LISTEN")),
		EventDir:       strings.TrimSpace(os.Getenv("TERMINAL_EVENT_DIR")),
	}
}

func stringOr(raw, def string) string {
	if strings.TrimSpace(raw) == "" {
		return def
	}
	return strings.TrimSpace(raw)
}

func millisOr(raw string, def int64) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Duration(def) * time.Millisecond
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return time.Duration(def) * time.Millisecond
	}
	return time.Duration(v) * time.Millisecond
}

func splitOr(raw string, def []string) []string {
	if strings.TrimSpace(raw) == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
