package config

import (
	"errors"
	"fmt"
)

// ValidateConfig checks that required configuration values are present
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	if cfg.DBHost == "" || cfg.DBPort == "" || cfg.DBUser == "" || cfg.DBName == "" {
		return errors.New("database configuration is incomplete")
	}
	if cfg.ServerPort == "" {
		return errors.New("server port is required")
	}
	switch cfg.DBSSLMode {
	case "disable", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("unsupported DB_SSL_MODE: %s", cfg.DBSSLMode)
	}
	return nil
}
