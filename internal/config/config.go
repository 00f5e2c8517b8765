package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Env         string
	ListenAddr  string
	DatabaseURL string
	LogLevel    string

	KafkaBrokers       []string
	KafkaProgressTopic string

	AdapterTimeout  time.Duration
	PolitenessDelay time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var out int
		if _, err := fmt.Sscanf(v, "%d", &out); err == nil {
			return out
		}
	}
	return def
}

func Load() (Config, error) {
	cfg := Config{
		Env:                getenv("APP_ENV", "development"),
		ListenAddr:         getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		KafkaProgressTopic: getenv("KAFKA_PROGRESS_TOPIC", "scrape-job-progress"),
		AdapterTimeout:     time.Duration(getenvInt("ADAPTER_TIMEOUT_MS", 30000)) * time.Millisecond,
		PolitenessDelay:    time.Duration(getenvInt("POLITENESS_DELAY_MS", 500)) * time.Millisecond,
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	if cfg.DatabaseURL == "" {
		// Not fatal for early local runs; warn via error value so callers can decide.
		return cfg, fmt.Errorf("DATABASE_URL not set")
	}
	return cfg, nil
}
