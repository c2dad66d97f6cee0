// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	HTTPAddr string

	WALDir      string
	OutboxDir   string
	SnapshotDir string

	KafkaBrokers []string
	KafkaTopic   string

	SnapshotEvery  time.Duration
	BroadcastEvery time.Duration
}

// Load reads a .env file when present, then the process environment.
// Malformed values fall back to defaults with a warning.
func Load(log *zap.Logger) Config {
	_ = godotenv.Load() // missing .env is fine

	return Config{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		WALDir:         getEnv("WAL_DIR", "data/wal"),
		OutboxDir:      getEnv("OUTBOX_DIR", "data/outbox"),
		SnapshotDir:    getEnv("SNAPSHOT_DIR", "data/snapshots"),
		KafkaBrokers:   splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "orderbook.events"),
		SnapshotEvery:  getDuration(log, "SNAPSHOT_EVERY", 30*time.Second),
		BroadcastEvery: getDuration(log, "BROADCAST_EVERY", 250*time.Millisecond),
	}
}

// KafkaEnabled reports whether a broker list was configured.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(log *zap.Logger, key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn("invalid duration, using default",
			zap.String("key", key),
			zap.String("value", v),
			zap.Duration("default", fallback),
		)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
