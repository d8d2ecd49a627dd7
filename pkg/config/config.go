package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Log         LogConfig         `yaml:"log"`
	DB          DBConfig          `yaml:"db"`
	Server      ServerConfig      `yaml:"server"`
	Ticker      TickerConfig      `yaml:"ticker"`
	Journey     JourneyConfig     `yaml:"journey"`
	Terrain     TerrainConfig     `yaml:"terrain"`
	Sequences   SequencesConfig   `yaml:"sequences"`
	Persistence PersistenceConfig `yaml:"persistence"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server LogSettings `yaml:"server"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// TickerConfig holds the tick loop settings.
type TickerConfig struct {
	FrameLoop Duration `yaml:"frame_loop"`
}

// WrapPolicy selects what happens when distance reaches the antipode.
type WrapPolicy string

const (
	// WrapNone lets distance grow unbounded past the circumference.
	WrapNone WrapPolicy = "none"
	// WrapReflect mirrors distance back at half the circumference and
	// zeroes velocity, the historical clamping behavior.
	WrapReflect WrapPolicy = "reflect"
)

// WaypointPolicy selects how waypoint generation reacts to a failed
// terrain lookup.
type WaypointPolicy string

const (
	// WaypointFail aborts the batch on the first lookup error.
	WaypointFail WaypointPolicy = "fail"
	// WaypointUnknown records the point with unknown terrain and continues.
	WaypointUnknown WaypointPolicy = "unknown"
)

// JourneyConfig holds the journey integrator settings.
type JourneyConfig struct {
	TimeScale          float64        `yaml:"time_scale"`
	Wrap               WrapPolicy     `yaml:"wrap"`
	WaypointIntervalKm float64        `yaml:"waypoint_interval_km"`
	WaypointPolicy     WaypointPolicy `yaml:"waypoint_policy"`
}

// TerrainConfig holds land/ocean lookup settings.
type TerrainConfig struct {
	// Dataset is a file path or an http(s) URL to the land polygon GeoJSON.
	Dataset   string        `yaml:"dataset"`
	CacheSize int           `yaml:"cache_size"`
	Retries   int           `yaml:"retries"`
	Backoff   BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// SequencesConfig holds narrative sequence playback settings.
type SequencesConfig struct {
	FadeDuration Duration `yaml:"fade_duration"`
}

// PersistenceConfig holds autosave settings.
type PersistenceConfig struct {
	AutosaveInterval Duration `yaml:"autosave_interval"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/wate.db",
		},
		Server: ServerConfig{
			Address: "localhost:1872",
		},
		Ticker: TickerConfig{
			FrameLoop: Duration(16 * time.Millisecond),
		},
		Journey: JourneyConfig{
			TimeScale:          1.0,
			Wrap:               WrapNone,
			WaypointIntervalKm: 100,
			WaypointPolicy:     WaypointUnknown,
		},
		Terrain: TerrainConfig{
			Dataset:   "./data/land.json",
			CacheSize: 4096,
			Retries:   5,
			Backoff: BackoffConfig{
				BaseDelay: Duration(1 * time.Second),
				MaxDelay:  Duration(30 * time.Second),
			},
		},
		Sequences: SequencesConfig{
			FadeDuration: Duration(500 * time.Millisecond),
		},
		Persistence: PersistenceConfig{
			AutosaveInterval: Duration(30 * time.Second),
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		// Env fallback for the dataset location, never saved back.
		if cfg.Terrain.Dataset == "" {
			if ds := os.Getenv("WATE_LAND_DATASET"); ds != "" {
				cfg.Terrain.Dataset = ds
			}
		}

		return cfg, validate(cfg)
	}

	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}
	return cfg, validate(cfg)
}

func validate(cfg *Config) error {
	switch cfg.Journey.Wrap {
	case WrapNone, WrapReflect:
	default:
		return fmt.Errorf("invalid journey wrap policy %q: must be 'none' or 'reflect'", cfg.Journey.Wrap)
	}
	switch cfg.Journey.WaypointPolicy {
	case WaypointFail, WaypointUnknown:
	default:
		return fmt.Errorf("invalid waypoint policy %q: must be 'fail' or 'unknown'", cfg.Journey.WaypointPolicy)
	}
	if cfg.Journey.WaypointIntervalKm <= 0 {
		return fmt.Errorf("waypoint_interval_km must be positive, got %v", cfg.Journey.WaypointIntervalKm)
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# WateGo Configuration
# --------------------
# Supported duration units: ns, us, ms, s, m, h, d (day), w (week)
# journey.wrap: none | reflect
# journey.waypoint_policy: fail | unknown

`)
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return Save(path, DefaultConfig())
}
