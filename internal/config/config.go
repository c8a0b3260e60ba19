package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/shapedtime/releasegrade/internal/quality"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Database DatabaseConfig  `yaml:"database"`
	Model    ModelConfig     `yaml:"model"`
	Scoring  quality.Options `yaml:"scoring"`
	Log      LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	HTTPPort    int `yaml:"http_port"`
	MetricsPort int `yaml:"metrics_port"` // 0 disables the metrics server
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or postgres
	Path   string `yaml:"path"`   // sqlite file
	URL    string `yaml:"url"`    // postgres connection URL
}

type ModelConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Path             string `yaml:"path"`              // badger directory
	TTL              int    `yaml:"ttl"`               // seconds, 0 keeps models forever
	RetrainEvery     int    `yaml:"retrain_every"`     // feedback entries between retrains
	MinFeedback      int    `yaml:"min_feedback"`      // entries required to retrain
	SyntheticSamples int    `yaml:"synthetic_samples"` // per class
	Seed             uint64 `yaml:"seed"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:    8777,
			MetricsPort: 9777,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "./data/releasegrade.db",
		},
		Model: ModelConfig{
			Enabled:          false,
			Path:             "./data/models",
			RetrainEvery:     50,
			MinFeedback:      10,
			SyntheticSamples: 100,
			Seed:             42,
		},
		Scoring: quality.DefaultOptions(),
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail later at startup
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}

	if c.Model.Enabled && c.Model.SyntheticSamples <= 0 {
		return fmt.Errorf("model.synthetic_samples must be positive")
	}

	if err := c.Scoring.Thresholds.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}

	return nil
}

// LogLevel parses the configured log level
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}
	return level, nil
}

// EnsureDirectories creates required directories
func (c *Config) EnsureDirectories() error {
	var dirs []string
	if c.Database.Driver == "sqlite" {
		dirs = append(dirs, filepath.Dir(c.Database.Path))
	}
	if c.Model.Enabled {
		dirs = append(dirs, c.Model.Path)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}
