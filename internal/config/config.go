package config

import (
	"errors"
	"os"
	"strings"
)

const (
	defaultDBPath        = "./dev.db"
	defaultPort          = "8080"
	defaultEnv           = "development"
	defaultStorageDriver = "sqlite"
	defaultLogLevel      = "info"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env           string
	Port          string
	LogLevel      string
	DBPath        string
	StorageDriver string
	RedisURL      string
	DatabaseURL   string
	AdminEmail    string
	AdminPassword string
	SessionSecret string

	// Warnings lists non-fatal problems found while loading.
	Warnings []string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	var warnings []string
	if err := loadDotEnv(".env"); err != nil {
		warnings = append(warnings, "could not read .env: "+err.Error())
	}

	cfg := Config{
		Env:           envOr("APP_ENV", defaultEnv),
		Port:          envOr("PORT", defaultPort),
		LogLevel:      envOr("LOG_LEVEL", defaultLogLevel),
		DBPath:        envOr("DB_PATH", defaultDBPath),
		StorageDriver: strings.ToLower(envOr("STORAGE_DRIVER", defaultStorageDriver)),
		RedisURL:      os.Getenv("REDIS_URL"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		Warnings:      warnings,
	}

	if cfg.AdminEmail == "" {
		cfg.Warnings = append(cfg.Warnings, "ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		cfg.Warnings = append(cfg.Warnings, "ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" && cfg.IsDev() {
		cfg.Warnings = append(cfg.Warnings, "SESSION_SECRET is not set, sessions will not survive a restart")
	}
	if cfg.StorageDriver == "redis" && cfg.RedisURL == "" {
		cfg.Warnings = append(cfg.Warnings, "STORAGE_DRIVER=redis but REDIS_URL is not set")
	}
	if cfg.StorageDriver == "postgres" && cfg.DatabaseURL == "" {
		cfg.Warnings = append(cfg.Warnings, "STORAGE_DRIVER=postgres but DATABASE_URL is not set")
	}

	return cfg
}

// ErrMissingSessionSecret is returned by Validate outside development when no
// session signing key is configured.
var ErrMissingSessionSecret = errors.New("SESSION_SECRET must be set outside development")

// Validate reports configuration the server must not start with.
func (c Config) Validate() error {
	if c.SessionSecret == "" && !c.IsDev() {
		return ErrMissingSessionSecret
	}
	return nil
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == "development" || c.Env == "dev"
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
