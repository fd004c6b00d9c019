package config

import (
	"os"
	"strings"
	"time"
)

// Config holds runtime settings read from the environment.
type Config struct {
	Port            string
	DBDriver        string
	DatabaseURL     string
	KafkaBrokers    []string
	KafkaTopic      string
	ServiceName     string
	LogLevel        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func Load() Config {
	return Config{
		Port:            getenv("APP_PORT", "5000"),
		DBDriver:        getenv("DB_DRIVER", "sqlite3"),
		DatabaseURL:     getenv("DATABASE_URL", "products.db"),
		KafkaBrokers:    splitCSV(getenv("KAFKA_BROKERS", "")),
		KafkaTopic:      getenv("KAFKA_TOPIC", "catalog.products"),
		ServiceName:     getenv("SERVICE_NAME", "catalog-api"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		RequestTimeout:  getduration("REQUEST_TIMEOUT", 15*time.Second),
		ShutdownTimeout: getduration("SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
