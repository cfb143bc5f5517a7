// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server settings.
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Database settings.
	DatabasePath string // SQLite file path; ":memory:" for ephemeral runs.

	// JWT settings.
	JWTPrivateKeyPath string // Path to Ed25519 private key PEM file.
	JWTPublicKeyPath  string // Path to Ed25519 public key PEM file.
	JWTExpiration     time.Duration

	// Service credentials: service_id -> Argon2id hash of its API key.
	// Format: "id1:hash1,id2:hash2". Empty disables the token endpoint.
	ServiceKeys string

	// Escalation settings.
	AlertDeadline time.Duration // How long a supervised person has to check back in.

	// Rate limit settings (per subject). Zero rate disables limiting.
	RateLimitPerSecond float64
	RateLimitBurst     int

	// OTEL settings.
	OTELEndpoint string
	ServiceName  string

	// Operational settings.
	LogLevel            string
	ResponseSeed        int64 // Seed for phrasing-pool selection; 0 means time-based.
	MaxRequestBodyBytes int64 // Maximum request body size in bytes.
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:                envInt("WILLY_PORT", 8080),
		ReadTimeout:         envDuration("WILLY_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:        envDuration("WILLY_WRITE_TIMEOUT", 30*time.Second),
		DatabasePath:        envStr("WILLY_DB_PATH", "willy.db"),
		JWTPrivateKeyPath:   envStr("WILLY_JWT_PRIVATE_KEY", ""),
		JWTPublicKeyPath:    envStr("WILLY_JWT_PUBLIC_KEY", ""),
		JWTExpiration:       envDuration("WILLY_JWT_EXPIRATION", 24*time.Hour),
		ServiceKeys:         envStr("WILLY_SERVICE_KEYS", ""),
		AlertDeadline:       envDuration("WILLY_ALERT_DEADLINE", 10*time.Minute),
		RateLimitPerSecond:  envFloat("WILLY_RATE_LIMIT_PER_SECOND", 5),
		RateLimitBurst:      envInt("WILLY_RATE_LIMIT_BURST", 20),
		OTELEndpoint:        envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:         envStr("OTEL_SERVICE_NAME", "willy"),
		LogLevel:            envStr("WILLY_LOG_LEVEL", "info"),
		ResponseSeed:        int64(envInt("WILLY_RESPONSE_SEED", 0)),
		MaxRequestBodyBytes: int64(envInt("WILLY_MAX_REQUEST_BODY_BYTES", 1*1024*1024)), // 1 MB default
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present and coherent.
func (c Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("config: WILLY_DB_PATH is required")
	}
	if c.AlertDeadline <= 0 {
		return fmt.Errorf("config: WILLY_ALERT_DEADLINE must be positive")
	}
	if c.MaxRequestBodyBytes <= 0 {
		return fmt.Errorf("config: WILLY_MAX_REQUEST_BODY_BYTES must be positive")
	}
	if c.RateLimitPerSecond < 0 {
		return fmt.Errorf("config: WILLY_RATE_LIMIT_PER_SECOND must not be negative")
	}
	if _, err := c.ParseServiceKeys(); err != nil {
		return err
	}
	return nil
}

// ParseServiceKeys splits the ServiceKeys setting into a lookup map.
func (c Config) ParseServiceKeys() (map[string]string, error) {
	keys := make(map[string]string)
	if c.ServiceKeys == "" {
		return keys, nil
	}
	for _, pair := range strings.Split(c.ServiceKeys, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, hash, ok := strings.Cut(pair, ":")
		if !ok || id == "" || hash == "" {
			return nil, fmt.Errorf("config: WILLY_SERVICE_KEYS entry %q is not id:hash", pair)
		}
		keys[id] = hash
	}
	return keys, nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
