package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server defaults.
const (
	DefaultPort           = 8000
	DefaultMaxUploadBytes = 5 << 20
	DefaultLanguage       = "en"
	DefaultShutdownGrace  = 10 * time.Second
)

// ServerConfig is the environment-driven configuration of the HTTP API.
type ServerConfig struct {
	Port           int
	SkillsPath     string
	KeywordsPath   string
	TaxonomyDB     string
	TaxonomyName   string
	Language       string
	MaxUploadBytes int64
	LogLevel       slog.Level
	// StoreAnalyses persists every report when TaxonomyDB is set.
	StoreAnalyses bool
	ShutdownGrace time.Duration
}

// FromEnv reads the server configuration from the environment.
//
//	PORT                  listen port (8000)
//	SKILLS_DATABASE_PATH  skills database file; embedded default when empty
//	KEYWORDS_PATH         keywords file; embedded default when empty
//	TAXONOMY_DATABASE_URL PostgreSQL URL; overrides the file datasets
//	TAXONOMY_NAME         stored taxonomy name ("default")
//	REPORT_LANGUAGE       default report language ("en")
//	MAX_UPLOAD_BYTES      upload limit (5 MiB)
//	LOG_LEVEL             debug|info|warn|error (info)
//	STORE_ANALYSES        persist reports when a database is configured
//	SHUTDOWN_GRACE        graceful shutdown timeout (10s)
func FromEnv() (*ServerConfig, error) {
	cfg := &ServerConfig{
		SkillsPath:    os.Getenv("SKILLS_DATABASE_PATH"),
		KeywordsPath:  os.Getenv("KEYWORDS_PATH"),
		TaxonomyDB:    os.Getenv("TAXONOMY_DATABASE_URL"),
		TaxonomyName:  getEnvString("TAXONOMY_NAME", "default"),
		Language:      getEnvString("REPORT_LANGUAGE", DefaultLanguage),
		ShutdownGrace: DefaultShutdownGrace,
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", DefaultPort); err != nil {
		return nil, err
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got: %d", cfg.Port)
	}

	maxUpload, err := getEnvInt("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)
	if err != nil {
		return nil, err
	}
	if maxUpload < 1 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got: %d", maxUpload)
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	if cfg.LogLevel, err = ParseLogLevel(os.Getenv("LOG_LEVEL")); err != nil {
		return nil, err
	}

	if v := os.Getenv("STORE_ANALYSES"); v != "" {
		if cfg.StoreAnalyses, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid STORE_ANALYSES: %v", err)
		}
	}

	if v := os.Getenv("SHUTDOWN_GRACE"); v != "" {
		if cfg.ShutdownGrace, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("invalid SHUTDOWN_GRACE: %v", err)
		}
	}

	return cfg, nil
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ParseLogLevel maps a level name to a slog.Level. An empty name is info.
func ParseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return n, nil
}
