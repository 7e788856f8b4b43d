package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Helpdesk HelpdeskConfig `mapstructure:"helpdesk"`
	Filter   FilterConfig   `mapstructure:"filter"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// HelpdeskConfig holds the portal connection details
type HelpdeskConfig struct {
	URL             string        `mapstructure:"url"`
	APIKey          string        `mapstructure:"api_key"`
	AuthHeader      string        `mapstructure:"auth_header"`
	Timeout         time.Duration `mapstructure:"timeout"`
	AttachmentField string        `mapstructure:"attachment_field"`
	PageSize        int           `mapstructure:"page_size"`
	UserAgent       string        `mapstructure:"user_agent"`
}

// FilterConfig maps saved filter names to expressions
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
