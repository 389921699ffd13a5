package config

import "fmt"

// MinJWTSecretLength is the shortest HS256 secret accepted
const MinJWTSecretLength = 32

// JWTConfig holds configuration for validating inbound bearer tokens.
type JWTConfig struct {
	Secret string
}

// NewJWTConfig builds the JWT configuration from the loaded service config.
func NewJWTConfig(cfg *Config) (*JWTConfig, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	config := &JWTConfig{Secret: cfg.Auth.JWTSecret}
	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("auth.jwt_secret (GURU_AUTH_JWT_SECRET) is required but not set")
	}
	if len(c.Secret) < MinJWTSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d characters, got: %d", MinJWTSecretLength, len(c.Secret))
	}
	return nil
}
