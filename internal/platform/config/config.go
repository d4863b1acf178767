package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures process-level configuration. Values come from the
// environment so main stays lean.
type Config struct {
	Addr            string
	DatabaseURL     string
	RedisURL        string
	EventCacheTTL   time.Duration
	ShutdownTimeout time.Duration
	AuditBuffer     int
}

// FromEnv builds a Config from environment variables with development
// defaults. An empty DatabaseURL selects the in-memory stores; an empty
// RedisURL disables the event read cache.
func FromEnv() Config {
	return Config{
		Addr:            envString("EVENTHUB_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("EVENTHUB_DATABASE_URL"),
		RedisURL:        os.Getenv("EVENTHUB_REDIS_URL"),
		EventCacheTTL:   envDuration("EVENTHUB_EVENT_CACHE_TTL", 5*time.Minute),
		ShutdownTimeout: envDuration("EVENTHUB_SHUTDOWN_TIMEOUT", 10*time.Second),
		AuditBuffer:     envInt("EVENTHUB_AUDIT_BUFFER", 256),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
