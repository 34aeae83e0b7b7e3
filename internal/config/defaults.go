package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DevJWTSecret is the signing secret used when none is configured. It is refused in release mode.
const DevJWTSecret = "planora-dev-secret"

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":5000",
			Mode:            "debug",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join(HomePath(), "planora.db"),
		},
		Auth: AuthConfig{
			JWTSecret:      DevJWTSecret,
			AccessTokenTTL: 7 * 24 * time.Hour,
		},
		AI: AIConfig{
			Provider:    "gemini",
			Model:       "gemini-1.5-flash",
			Timeout:     60 * time.Second,
			MaxAttempts: 3,
			BackoffBase: time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// WriteDefault writes the default configuration to path as yaml.
// The API key is left out so it can come from the environment.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	cfg.AI.APIKey = ""

	content, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	header := []byte("# planora configuration\n# Environment variables PLANORA_<SECTION>_<KEY> override these values.\n")
	return os.WriteFile(path, append(header, content...), 0600)
}
