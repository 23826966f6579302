// Package config parses the worker's command-line flags into a single
// Config, following the teacher's flag-based configuration idiom
// (one flat struct, one Parse() entry point) generalized from a gRPC
// server's settings to the queue-driven transition-engine worker's.
package config

import (
	"flag"
	"os"
)

// Config holds every setting the worker (cmd/worker) needs to start.
type Config struct {
	// Storage settings.
	DataDir     string
	StorageRoot string
	LogLevel    string

	// Queue settings.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	WorkerCount   int

	// External collaborator settings.
	SeparatorCmd string
	LLMModel     string
	LLMAPIKey    string

	// Observability.
	SentryDSN string
}

// Parse reads flags (and a handful of env var fallbacks for secrets) into
// a Config.
func Parse() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.DataDir, "data-dir", defaultDataDir(), "data directory for SQLite and blobs")
	flag.StringVar(&cfg.StorageRoot, "storage-root", defaultDataDir()+"/storage", "content-addressed blob storage root")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	flag.StringVar(&cfg.RedisAddr, "redis-addr", "localhost:6379", "redis address for the job queue")
	flag.StringVar(&cfg.RedisPassword, "redis-password", os.Getenv("REDIS_PASSWORD"), "redis password (falls back to REDIS_PASSWORD)")
	flag.IntVar(&cfg.RedisDB, "redis-db", 0, "redis logical database number")
	flag.IntVar(&cfg.WorkerCount, "worker-count", 4, "number of goroutines consuming each job stream")

	flag.StringVar(&cfg.SeparatorCmd, "separator-cmd", "", "external stem-separator subprocess command (empty: use the in-process band-split fallback)")
	flag.StringVar(&cfg.LLMModel, "llm-model", "gpt-4.1-mini", "OpenAI model used by the optional planning port")
	flag.StringVar(&cfg.LLMAPIKey, "llm-api-key", os.Getenv("OPENAI_API_KEY"), "OpenAI API key (falls back to OPENAI_API_KEY; empty disables the LLM port)")

	flag.StringVar(&cfg.SentryDSN, "sentry-dsn", os.Getenv("SENTRY_DSN"), "Sentry DSN for panic/error reporting (falls back to SENTRY_DSN)")

	flag.Parse()
	return cfg
}

func defaultDataDir() string {
	if dir := os.Getenv("CANCUN_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cancun"
	}
	return home + "/.cancun"
}
