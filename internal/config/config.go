// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported FORMBFF_DB_DRIVER values.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string

	DBDriver    string
	DBPath      string
	DatabaseURL string

	GitHubAPIURL  string
	GitHubTimeout time.Duration
	UserAgent     string

	CORSOrigins []string
	StaticDir   string

	LogLevel  slog.Level
	LogFormat string
}

// DSN returns the data source for the configured driver: the file path for
// SQLite, the connection URL for PostgreSQL.
func (c *Config) DSN() string {
	if c.DBDriver == DriverPostgres {
		return c.DatabaseURL
	}
	return c.DBPath
}

// NewLogger builds the process logger writing to w in the configured format
// and level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Load reads configuration from environment variables and returns a validated Config.
// Variables from the file named by FORMBFF_ENV_FILE (default .env) are loaded
// first without overriding the real environment; a missing default file is
// ignored. Defaults: FORMBFF_LISTEN_ADDR (127.0.0.1:3001), FORMBFF_DB_DRIVER
// (sqlite), FORMBFF_DB_PATH (formbff.db), FORMBFF_GITHUB_API_URL
// (https://api.github.com/), FORMBFF_GITHUB_TIMEOUT (10s), FORMBFF_USER_AGENT
// (formbff), FORMBFF_CORS_ORIGINS (http://localhost:3000), FORMBFF_LOG_LEVEL
// (info), FORMBFF_LOG_FORMAT (text). FORMBFF_DATABASE_URL is required when the
// driver is postgres.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg := &Config{
		ListenAddr:    envOr("FORMBFF_LISTEN_ADDR", "127.0.0.1:3001"),
		DBDriver:      strings.ToLower(envOr("FORMBFF_DB_DRIVER", DriverSQLite)),
		DBPath:        envOr("FORMBFF_DB_PATH", "formbff.db"),
		DatabaseURL:   os.Getenv("FORMBFF_DATABASE_URL"),
		GitHubAPIURL:  envOr("FORMBFF_GITHUB_API_URL", "https://api.github.com/"),
		GitHubTimeout: 10 * time.Second,
		UserAgent:     envOr("FORMBFF_USER_AGENT", "formbff"),
		StaticDir:     os.Getenv("FORMBFF_STATIC_DIR"),
		LogFormat:     strings.ToLower(envOr("FORMBFF_LOG_FORMAT", "text")),
	}

	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("FORMBFF_DATABASE_URL is required when FORMBFF_DB_DRIVER is postgres")
		}
	default:
		return nil, fmt.Errorf("FORMBFF_DB_DRIVER has unsupported value %q (want sqlite or postgres)", cfg.DBDriver)
	}

	if v, ok := os.LookupEnv("FORMBFF_GITHUB_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("FORMBFF_GITHUB_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("FORMBFF_GITHUB_TIMEOUT must be positive, got %q", v)
		}
		cfg.GitHubTimeout = parsed
	}

	origins := envOr("FORMBFF_CORS_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}
	if cfg.CORSOrigins == nil {
		cfg.CORSOrigins = []string{}
	}

	level := envOr("FORMBFF_LOG_LEVEL", "info")
	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("FORMBFF_LOG_LEVEL has invalid level %q: %w", level, err)
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("FORMBFF_LOG_FORMAT has unsupported value %q (want text or json)", cfg.LogFormat)
	}

	return cfg, nil
}

// loadEnvFile applies the dotenv file. An explicitly named file must exist.
func loadEnvFile() error {
	path := os.Getenv("FORMBFF_ENV_FILE")
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("FORMBFF_ENV_FILE %q could not be loaded: %w", path, err)
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
