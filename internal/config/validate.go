package config

import (
	"fmt"
	"strings"

	"github.com/charliek/mplog/internal/domain"
	"github.com/charliek/mplog/internal/wire"
)

// Validate checks the configuration for errors
func Validate(config *Config) error {
	var errs []string

	if config.Socket == "" {
		errs = append(errs, "socket: path is required")
	}

	if config.API.Port < 0 || config.API.Port > 65535 {
		errs = append(errs, fmt.Sprintf("api.port: must be between 0 and 65535, got %d", config.API.Port))
	}
	if config.API.APIEnabled() && config.API.Host == "" {
		errs = append(errs, "api.host: host is required when the api is enabled")
	}

	if config.Limits.MaxMessageBytes < wire.HeaderSize {
		errs = append(errs, fmt.Sprintf("limits.max_message_bytes: must be at least %d, got %d",
			wire.HeaderSize, config.Limits.MaxMessageBytes))
	}
	if config.Limits.SubscriptionBuffer < 1 {
		errs = append(errs, fmt.Sprintf("limits.subscription_buffer: must be positive, got %d",
			config.Limits.SubscriptionBuffer))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, strings.Join(errs, "; "))
	}

	return nil
}
