package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/stranadev/helpdesk-client/helpdesk"
)

// envBindings maps configuration keys to the environment variables that
// override them
var envBindings = map[string]string{
	"helpdesk.url":              "HELPDESK_URL",
	"helpdesk.api_key":          "HELPDESK_API_KEY",
	"helpdesk.auth_header":      "HELPDESK_AUTH_HEADER",
	"helpdesk.timeout":          "HELPDESK_TIMEOUT",
	"helpdesk.attachment_field": "HELPDESK_ATTACHMENT_FIELD",
	"helpdesk.page_size":        "HELPDESK_PAGE_SIZE",
	"logging.level":             "HELPDESK_LOG_LEVEL",
	"logging.format":            "HELPDESK_LOG_FORMAT",
}

// Load loads the configuration from file and environment. Without an
// explicit path a missing config file is not an error, so the client can be
// configured from the environment alone.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".helpdesk"))
		}

		// Check /etc
		v.AddConfigPath("/etc/helpdesk/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Helpdesk defaults
	v.SetDefault("helpdesk.url", "")
	v.SetDefault("helpdesk.api_key", "")
	v.SetDefault("helpdesk.auth_header", helpdesk.DefaultAuthHeader)
	v.SetDefault("helpdesk.timeout", helpdesk.DefaultTimeout)
	v.SetDefault("helpdesk.attachment_field", string(helpdesk.AttachmentFieldInput))
	v.SetDefault("helpdesk.page_size", 100)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Helpdesk.URL == "" {
		return fmt.Errorf("helpdesk.url is required")
	}

	if cfg.Helpdesk.APIKey == "" || cfg.Helpdesk.APIKey == "your-api-key-here" {
		return fmt.Errorf("helpdesk.api_key must be set to a valid API key")
	}

	if cfg.Helpdesk.Timeout <= 0 {
		return fmt.Errorf("helpdesk.timeout must be positive, got %s", cfg.Helpdesk.Timeout)
	}

	if !helpdesk.AttachmentField(cfg.Helpdesk.AttachmentField).Valid() {
		return fmt.Errorf("invalid helpdesk.attachment_field: %s (must be '%s' or '%s')",
			cfg.Helpdesk.AttachmentField, helpdesk.AttachmentFieldInput, helpdesk.AttachmentFieldLegacy)
	}

	if cfg.Helpdesk.PageSize < 1 || cfg.Helpdesk.PageSize > 100 {
		return fmt.Errorf("helpdesk.page_size must be between 1 and 100, got %d", cfg.Helpdesk.PageSize)
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	for name, expression := range cfg.Filter {
		if expression == "" {
			return fmt.Errorf("filter %q has an empty expression", name)
		}
	}

	return nil
}
