// Package config loads figma-meta settings once at startup.
//
// Every value has exactly one source, resolved in this order: an explicitly
// set command-line flag, then the environment variable, then the default
// from SetDefaults.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Depth limits accepted by the front ends.
const (
	MinDepth = 1
	MaxDepth = 8
)

// Environment variables consulted when the matching flag is not set.
var envBindings = map[string]string{
	"token":           "FIGMA_TOKEN",
	"file_key":        "FIGMA_FILE_KEY",
	"node_ids":        "FIGMA_NODE_IDS",
	"max_depth":       "FIGMA_MAX_DEPTH",
	"api_base_url":    "FIGMA_API_BASE_URL",
	"server.addr":     "FIGMA_META_ADDR",
	"logger.level":    "FIGMA_META_LOG_LEVEL",
	"logger.format":   "FIGMA_META_LOG_FORMAT",
	"logger.log_file": "FIGMA_META_LOG_FILE",
}

// Config holds the settings shared by the CLI and the web UI.
type Config struct {
	Token    string       `mapstructure:"token"`
	FileKey  string       `mapstructure:"file_key"`
	NodeIDs  string       `mapstructure:"node_ids"`
	MaxDepth int          `mapstructure:"max_depth"`
	Server   ServerConfig `mapstructure:"server"`
	Logger   LoggerConfig `mapstructure:"logger"`

	// APIBaseURL overrides the Figma API endpoint; empty means production.
	APIBaseURL string `mapstructure:"api_base_url"`
}

// ServerConfig configures the web UI listener.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggerConfig configures the structured server log.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "console" or "json"
	LogFile    string `mapstructure:"log_file"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// SetDefaults registers the default value of every setting.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("token", "")
	v.SetDefault("file_key", "")
	v.SetDefault("node_ids", "")
	v.SetDefault("max_depth", 4)
	v.SetDefault("api_base_url", "")

	v.SetDefault("server.addr", "127.0.0.1:8501")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)
}

// BindFlags ties flags to settings. keys maps a setting name to a flag name;
// flags missing from fs are ignored so commands can expose a subset.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", name, err)
		}
	}
	return nil
}

// Load binds the environment, decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.FileKey = strings.TrimSpace(cfg.FileKey)
	cfg.NodeIDs = strings.TrimSpace(cfg.NodeIDs)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks ranges. Empty token, file key and node IDs are allowed
// here: the web UI collects them per request.
func (c *Config) Validate() error {
	if c.MaxDepth < MinDepth || c.MaxDepth > MaxDepth {
		return fmt.Errorf("max_depth must be between %d and %d, got %d", MinDepth, MaxDepth, c.MaxDepth)
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be \"console\" or \"json\", got %q", c.Logger.Format)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	return nil
}
