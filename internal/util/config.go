// Package util provides configuration and logging for homepulse.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	DataDir  string `mapstructure:"data_dir"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	// HTTP API
	HTTPPort int `mapstructure:"http_port"`

	// Liveness probing
	ProbeTimeout     time.Duration `mapstructure:"probe_timeout"`
	ProbeConcurrency int           `mapstructure:"probe_concurrency"`

	// Alerting
	WebhookTimeout       time.Duration `mapstructure:"webhook_timeout"`
	AlertCooldown        time.Duration `mapstructure:"alert_cooldown"`
	DefaultDownThreshold time.Duration `mapstructure:"default_down_threshold"`

	// Server-side monitor loop
	MonitorEnabled  bool          `mapstructure:"monitor_enabled"`
	MonitorInterval time.Duration `mapstructure:"monitor_interval"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".homepulse")

	return &Config{
		DataDir:  dataDir,
		LogLevel: "info",
		LogFile:  filepath.Join(dataDir, "homepulse.log"),

		HTTPPort: 3001,

		ProbeTimeout:     3 * time.Second,
		ProbeConcurrency: 50,

		WebhookTimeout:       5 * time.Second,
		AlertCooldown:        30 * time.Minute,
		DefaultDownThreshold: 5 * time.Minute,

		MonitorEnabled:  false,
		MonitorInterval: 60 * time.Second,
	}
}

// LoadConfig loads configuration from file and environment.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	// Ensure config directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(cfg.DataDir)
	viper.AddConfigPath(".")

	// Set defaults in viper
	viper.SetDefault("data_dir", cfg.DataDir)
	viper.SetDefault("log_level", cfg.LogLevel)
	viper.SetDefault("http_port", cfg.HTTPPort)
	viper.SetDefault("probe_timeout", cfg.ProbeTimeout)
	viper.SetDefault("probe_concurrency", cfg.ProbeConcurrency)
	viper.SetDefault("webhook_timeout", cfg.WebhookTimeout)
	viper.SetDefault("alert_cooldown", cfg.AlertCooldown)
	viper.SetDefault("default_down_threshold", cfg.DefaultDownThreshold)
	viper.SetDefault("monitor_enabled", cfg.MonitorEnabled)
	viper.SetDefault("monitor_interval", cfg.MonitorInterval)

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Unmarshal into config struct
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// EnsureDir ensures a directory exists.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}
