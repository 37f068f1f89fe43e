package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration. Values come from an optional
// YAML config file overlaid by environment variables; the environment
// wins.
type Config struct {
	DataPath       string `yaml:"data_path"`
	ServerPort     string `yaml:"server_port"`
	AllowedOrigins string `yaml:"allowed_origins"`
	DebugMode      bool   `yaml:"debug"`
	OTELEnabled    bool   `yaml:"otel_enabled"`
	OTELEndpoint   string `yaml:"otel_endpoint"`

	// Window geometry for the list endpoint; zero values fall back to
	// the window package defaults
	WindowItemHeight int `yaml:"window_item_height"`
	WindowBuffer     int `yaml:"window_buffer"`
	WindowThreshold  int `yaml:"window_threshold"`
}

// Load builds the configuration from defaults, the config file (if one
// exists at TIDYTASK_CONFIG or the default location) and environment
// variables, in that order.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort: "8080",
	}

	path := os.Getenv("TIDYTASK_CONFIG")
	explicit := path != ""
	if path == "" {
		path = defaultConfigPath()
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	cfg.DataPath = getEnv("TIDYTASK_DATA_PATH", cfg.DataPath)
	cfg.ServerPort = getEnv("TIDYTASK_PORT", cfg.ServerPort)
	cfg.AllowedOrigins = getEnv("TIDYTASK_ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.DebugMode = getEnvBool("TIDYTASK_DEBUG", cfg.DebugMode)
	cfg.OTELEnabled = getEnvBool("OTEL_ENABLED", cfg.OTELEnabled)
	cfg.OTELEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTELEndpoint)
	cfg.WindowItemHeight = getEnvInt("TIDYTASK_WINDOW_ITEM_HEIGHT", cfg.WindowItemHeight)
	cfg.WindowBuffer = getEnvInt("TIDYTASK_WINDOW_BUFFER", cfg.WindowBuffer)
	cfg.WindowThreshold = getEnvInt("TIDYTASK_WINDOW_THRESHOLD", cfg.WindowThreshold)

	if cfg.DataPath == "" {
		cfg.DataPath = defaultDataPath()
	}
	if cfg.DataPath == "" {
		return nil, fmt.Errorf("TIDYTASK_DATA_PATH is required when no home directory is available")
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tidytask", "config.yaml")
}

func defaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "tidytask", "tidytask.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
