package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// JWTConfig holds configuration for API bearer tokens.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
	Issuer          string
}

// AuthEnabled reports whether bearer-token auth is configured for the API.
func AuthEnabled() bool {
	return os.Getenv("JWT_SECRET") != ""
}

// NewJWTConfig creates a new JWT configuration from environment variables.
// It reads JWT_SECRET (required), JWT_EXPIRATION_HOURS (default: 24) and
// JWT_ISSUER (default: cv-analyzer).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	expirationStr := getEnvString("JWT_EXPIRATION_HOURS", "24")
	expirationHours, err := strconv.Atoi(expirationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
	}

	config := &JWTConfig{
		Secret:          secret,
		ExpirationHours: expirationHours,
		Issuer:          getEnvString("JWT_ISSUER", "cv-analyzer"),
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// Expiration returns the token lifetime.
func (c *JWTConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}

func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
