// Package config loads runtime settings from the environment, optionally
// seeded by a TOML file. Environment variables always win over the file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DatabaseURL string // TICKD_DATABASE_URL (required)
	RedisAddr   string // TICKD_REDIS_ADDR (default "localhost:6379")
	QdrantHost  string // TICKD_QDRANT_HOST (default "localhost")
	QdrantPort  int    // TICKD_QDRANT_PORT (default 6334)
	Collection  string // TICKD_QDRANT_COLLECTION (default "tickd")
	VectorDims  uint64 // TICKD_VECTOR_DIMS (default 1536)
	NATSURL     string // TICKD_NATS_URL (optional, empty = no events)

	// Retention is how long a terminal ticket stays readable in the fast
	// store before its record expires.
	Retention time.Duration // TICKD_RETENTION (default 720h)

	// SweepInterval drives the reconciliation sweep; 0 disables it.
	SweepInterval time.Duration // TICKD_SWEEP_INTERVAL (default 15m; 0 = disabled)

	// Export settings
	ExportInterval time.Duration // TICKD_EXPORT_INTERVAL (default 0 = disabled)
	ExportS3Bucket string        // TICKD_EXPORT_S3_BUCKET (enables S3 when set)
	ExportS3Region string        // TICKD_EXPORT_S3_REGION (default "us-east-1")
	ExportS3Key    string        // TICKD_EXPORT_S3_KEY (default "tickd/archive.jsonl")
	ExportEndpoint string        // TICKD_EXPORT_S3_ENDPOINT (custom endpoint for MinIO)
	ExportFile     string        // TICKD_EXPORT_FILE (local JSONL path, alternative to S3)
}

// fileConfig mirrors the subset of Config settable from the TOML file.
type fileConfig struct {
	DatabaseURL string `toml:"database_url"`
	RedisAddr   string `toml:"redis_addr"`
	QdrantHost  string `toml:"qdrant_host"`
	QdrantPort  int    `toml:"qdrant_port"`
	Collection  string `toml:"qdrant_collection"`
	NATSURL     string `toml:"nats_url"`
}

// Load builds the configuration from the optional TOML file at path (empty
// path skips the file) overlaid with environment variables.
func Load(path string) (*Config, error) {
	c := &Config{
		RedisAddr:  "localhost:6379",
		QdrantHost: "localhost",
		QdrantPort: 6334,
		Collection: "tickd",
		VectorDims: 1536,
	}

	if path != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		setIf(&c.DatabaseURL, fc.DatabaseURL)
		setIf(&c.RedisAddr, fc.RedisAddr)
		setIf(&c.QdrantHost, fc.QdrantHost)
		if fc.QdrantPort != 0 {
			c.QdrantPort = fc.QdrantPort
		}
		setIf(&c.Collection, fc.Collection)
		setIf(&c.NATSURL, fc.NATSURL)
	}

	setIf(&c.DatabaseURL, os.Getenv("TICKD_DATABASE_URL"))
	setIf(&c.RedisAddr, os.Getenv("TICKD_REDIS_ADDR"))
	setIf(&c.QdrantHost, os.Getenv("TICKD_QDRANT_HOST"))
	setIf(&c.Collection, os.Getenv("TICKD_QDRANT_COLLECTION"))
	setIf(&c.NATSURL, os.Getenv("TICKD_NATS_URL"))
	setIf(&c.ExportS3Bucket, os.Getenv("TICKD_EXPORT_S3_BUCKET"))
	setIf(&c.ExportEndpoint, os.Getenv("TICKD_EXPORT_S3_ENDPOINT"))
	setIf(&c.ExportFile, os.Getenv("TICKD_EXPORT_FILE"))
	c.ExportS3Region = envOrDefault("TICKD_EXPORT_S3_REGION", "us-east-1")
	c.ExportS3Key = envOrDefault("TICKD_EXPORT_S3_KEY", "tickd/archive.jsonl")

	if v := os.Getenv("TICKD_QDRANT_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err != nil {
			return nil, fmt.Errorf("TICKD_QDRANT_PORT: %w", err)
		}
		c.QdrantPort = port
	}
	if v := os.Getenv("TICKD_VECTOR_DIMS"); v != "" {
		var dims uint64
		if _, err := fmt.Sscanf(v, "%d", &dims); err != nil {
			return nil, fmt.Errorf("TICKD_VECTOR_DIMS: %w", err)
		}
		c.VectorDims = dims
	}

	var err error
	if c.Retention, err = durationEnv("TICKD_RETENTION", 720*time.Hour); err != nil {
		return nil, err
	}
	if c.SweepInterval, err = durationEnv("TICKD_SWEEP_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if c.ExportInterval, err = durationEnv("TICKD_EXPORT_INTERVAL", 0); err != nil {
		return nil, err
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("TICKD_DATABASE_URL is required")
	}

	return c, nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
