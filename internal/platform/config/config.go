// Package config loads application configuration from environment variables.
// All variables use the PATHWAYS_ prefix.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Profile sources.
const (
	ProfileSourceCatalog  = "catalog"
	ProfileSourcePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Cache         CacheConfig
	Engine        EngineConfig
	Log           LogConfig
	DataDir       string
	ProfileSource string
	Mode          string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings. An empty URL disables the
// selected-student store.
type CacheConfig struct {
	URL          string
	SelectionTTL time.Duration
}

// EngineConfig holds the recommendation tunables exposed to operators. Its
// fields line up with recommend.Tunables so the binaries can convert it.
type EngineConfig struct {
	TopK                   int
	VideoLimit             int
	VideosPerDiscipline    int
	HideCareersOnColdStart bool
	ThresholdRelax         float64
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with PATHWAYS_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("PATHWAYS_SERVER_PORT", 8080),
			Host: envStr("PATHWAYS_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("PATHWAYS_DATABASE_URL", ""),
			MaxConns: envInt("PATHWAYS_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("PATHWAYS_DATABASE_MIN_CONNS", 1),
		},
		Cache: CacheConfig{
			URL:          envStr("PATHWAYS_CACHE_URL", ""),
			SelectionTTL: time.Duration(envInt("PATHWAYS_SELECTION_TTL_MINUTES", 120)) * time.Minute,
		},
		Engine: EngineConfig{
			TopK:                   envInt("PATHWAYS_ENGINE_TOP_K", 3),
			VideoLimit:             envInt("PATHWAYS_ENGINE_VIDEO_LIMIT", 5),
			VideosPerDiscipline:    envInt("PATHWAYS_ENGINE_VIDEOS_PER_DISCIPLINE", 2),
			HideCareersOnColdStart: envBool("PATHWAYS_ENGINE_HIDE_CAREERS_ON_COLD_START", false),
			ThresholdRelax:         envFloat("PATHWAYS_ENGINE_THRESHOLD_RELAX", 0.4),
		},
		Log: LogConfig{
			Level:  envStr("PATHWAYS_LOG_LEVEL", "info"),
			Format: envStr("PATHWAYS_LOG_FORMAT", "json"),
		},
		DataDir:       envStr("PATHWAYS_DATA_DIR", "./data"),
		ProfileSource: strings.ToLower(envStr("PATHWAYS_PROFILE_SOURCE", ProfileSourceCatalog)),
		Mode:          envStr("PATHWAYS_RECOMMEND_MODE", "rule"),
	}

	return cfg, nil
}

// Validate checks that the configuration is usable. The recommendation mode
// and engine tunables are checked by the engine when it is built.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PATHWAYS_SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.ProfileSource {
	case ProfileSourceCatalog:
	case ProfileSourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("PATHWAYS_DATABASE_URL is required when PATHWAYS_PROFILE_SOURCE is postgres")
		}
		if c.Database.MinConns > c.Database.MaxConns {
			return fmt.Errorf("PATHWAYS_DATABASE_MIN_CONNS (%d) exceeds PATHWAYS_DATABASE_MAX_CONNS (%d)", c.Database.MinConns, c.Database.MaxConns)
		}
	default:
		return fmt.Errorf("PATHWAYS_PROFILE_SOURCE must be 'catalog' or 'postgres', got %q", c.ProfileSource)
	}

	if c.Cache.URL != "" && c.Cache.SelectionTTL <= 0 {
		return fmt.Errorf("PATHWAYS_SELECTION_TTL_MINUTES must be positive")
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "json" && f != "text" {
		return fmt.Errorf("PATHWAYS_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	return nil
}

// NewLogger builds the process logger described by the log settings.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(l.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("PATHWAYS_LOG_LEVEL: %w", err)
	}
	return level, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
