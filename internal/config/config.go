package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/charliek/mplog/internal/constants"
	"github.com/charliek/mplog/internal/domain"
)

// Config represents the top-level mplog configuration
type Config struct {
	Socket  string       `yaml:"socket"`
	EnvFile string       `yaml:"env_file"`
	API     APIConfig    `yaml:"api"`
	Limits  LimitsConfig `yaml:"limits"`
}

// APIConfig defines the HTTP inspection API configuration
type APIConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"` // nil = enabled
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// APIEnabled reports whether the inspection API should be served
func (a APIConfig) APIEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// LimitsConfig bounds ingestion and fan-out
type LimitsConfig struct {
	MaxMessageBytes    uint64 `yaml:"max_message_bytes"`
	SubscriptionBuffer int    `yaml:"subscription_buffer"`
}

// Default returns the configuration used when no config file is present
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses a configuration file
func Load(path string) (*Config, error) {
	// First check if file exists
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("checking config file: %w", err)
	}

	// Check file permissions for security
	if err := CheckFilePermissions(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse parses configuration from YAML bytes
func Parse(data []byte) (*Config, error) {
	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}

	applyDefaults(config)

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

func applyDefaults(config *Config) {
	if config.Socket == "" {
		config.Socket = constants.DefaultSocketPath
	}
	if config.API.Host == "" {
		config.API.Host = constants.DefaultAPIHost
	}
	if config.API.Port == 0 {
		config.API.Port = constants.DefaultAPIPort
	}
	if config.Limits.MaxMessageBytes == 0 {
		config.Limits.MaxMessageBytes = constants.DefaultMaxMessageBytes
	}
	if config.Limits.SubscriptionBuffer == 0 {
		config.Limits.SubscriptionBuffer = constants.DefaultSubscriptionBuffer
	}
}
