package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the Folio server
type Config struct {
	// HTTP server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Logging configuration
	Logging LoggingConfig

	// Development enables the dev-token endpoint and seed users.
	// Must never be set in production deployments.
	Development bool

	// SeedFile is an optional YAML file with users created at startup
	// (development mode only)
	SeedFile string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr string // listen address (host:port)

	// WebOrigin is the portfolio web client origin allowed by CORS
	WebOrigin string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	addr := os.Getenv("FOLIO_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	webOrigin := os.Getenv("FOLIO_WEB_ORIGIN")
	if webOrigin == "" {
		webOrigin = "http://localhost:5173"
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "folio.sqlite"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}

	return &Config{
		Server: ServerConfig{
			Addr:      addr,
			WebOrigin: webOrigin,
		},
		Database: DatabaseConfig{
			URL: dbURL,
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
		Development: os.Getenv("FOLIO_ENV") == "development",
		SeedFile:    os.Getenv("FOLIO_SEED_FILE"),
	}, nil
}
