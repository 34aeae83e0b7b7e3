package config

import "time"

// Config represents the full planora configuration
type Config struct {
	// HTTP API server
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Storage backend
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Access tokens
	Auth AuthConfig `yaml:"auth" mapstructure:"auth"`

	// Text-generation provider
	AI AIConfig `yaml:"ai" mapstructure:"ai"`

	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`

	// Terminal client settings
	CLI CLIConfig `yaml:"cli" mapstructure:"cli"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	Mode            string        `yaml:"mode" mapstructure:"mode"` // debug, release or test
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// DatabaseConfig selects and locates the database
type DatabaseConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // sqlite or postgres
	Path   string `yaml:"path" mapstructure:"path"`     // sqlite file
	DSN    string `yaml:"dsn" mapstructure:"dsn"`       // postgres connection string
}

// AuthConfig configures token signing
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" mapstructure:"access_token_ttl"`
}

// AIConfig configures the text-generation client
type AIConfig struct {
	Provider    string        `yaml:"provider" mapstructure:"provider"` // gemini or openai
	Model       string        `yaml:"model" mapstructure:"model"`
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	BackoffBase time.Duration `yaml:"backoff_base" mapstructure:"backoff_base"`
}

// LogConfig configures the structured logger
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// MetricsConfig configures the prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// CLIConfig holds terminal client settings
type CLIConfig struct {
	// Username the CLI acts as
	User string `yaml:"user" mapstructure:"user"`
}
