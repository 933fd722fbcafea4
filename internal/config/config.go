package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/vjranagit/tempmon/pkg/storage"
)

// Config holds the application configuration.
type Config struct {
	LogLevel string        `yaml:"log_level"`
	Server   ServerConfig  `yaml:"server"`
	Sensor   SensorConfig  `yaml:"sensor"`
	Storage  StorageConfig `yaml:"storage"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	ListenAddr string   `yaml:"listen_addr"`
	Timeout    Duration `yaml:"timeout"`
}

// SensorConfig holds sensor poller configuration.
type SensorConfig struct {
	URL          string   `yaml:"url"`
	PollInterval Duration `yaml:"poll_interval"`
	Timeout      Duration `yaml:"timeout"`
}

// StorageConfig holds sample store configuration.
type StorageConfig struct {
	// MaxCapacity bounds the retained sample window; 0 means unbounded,
	// which is honored rather than silently capped.
	MaxCapacity int      `yaml:"max_capacity"`
	CacheTTL    Duration `yaml:"cache_ttl"`
}

// Duration parses yaml values like "15s" into a time.Duration.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// DefaultConfig returns default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			ListenAddr: ":8080",
			Timeout:    Duration(30 * time.Second),
		},
		Sensor: SensorConfig{
			PollInterval: Duration(15 * time.Second),
			Timeout:      Duration(10 * time.Second),
		},
		Storage: StorageConfig{
			MaxCapacity: 100000,
			CacheTTL:    Duration(5 * time.Second),
		},
	}
}

// Load reads the yaml file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values from the environment.
func (c *Config) applyEnv() {
	c.LogLevel = getEnv("TEMPMON_LOG_LEVEL", c.LogLevel)
	c.Server.ListenAddr = getEnv("TEMPMON_LISTEN_ADDR", c.Server.ListenAddr)
	c.Sensor.URL = getEnv("TEMPMON_SENSOR_URL", c.Sensor.URL)
	c.Storage.MaxCapacity = getEnvInt("TEMPMON_MAX_CAPACITY", c.Storage.MaxCapacity)
}

// ToStorageConfig converts to storage.Config.
func (c *Config) ToStorageConfig() *storage.Config {
	return &storage.Config{
		MaxCapacity: c.Storage.MaxCapacity,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server listen address is required")
	}

	if c.Sensor.URL == "" {
		return fmt.Errorf("sensor url is required")
	}

	if c.Sensor.PollInterval <= 0 {
		return fmt.Errorf("sensor poll interval must be positive")
	}

	if c.Storage.MaxCapacity < 0 {
		return fmt.Errorf("storage max capacity must not be negative")
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
