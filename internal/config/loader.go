package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. PLANORA_SERVER_ADDR
const EnvPrefix = "PLANORA"

// Load builds the configuration from defaults, the global config file, the project
// config file (or explicitPath when set), a .env file, and environment variables, in
// increasing order of precedence.
func Load(explicitPath string) (*Config, error) {
	// A missing .env is normal
	_ = godotenv.Load()

	base, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(base)); err != nil {
		return nil, fmt.Errorf("failed to read defaults: %w", err)
	}

	// Load global config first
	if err := mergeFile(v, GlobalConfigPath()); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	// Project config (or the explicit one) overrides global
	if explicitPath != "" {
		if err := mergeFile(v, explicitPath); err != nil {
			return nil, err
		}
	} else if err := mergeFile(v, ProjectConfigPath()); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = providerKeyFromEnv(cfg.AI.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

func providerKeyFromEnv(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	default:
		return os.Getenv("GEMINI_API_KEY")
	}
}

// Validate rejects configurations the application cannot run with
func (c *Config) Validate() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Server.Mode == "release" && c.Auth.JWTSecret == DevJWTSecret {
		return fmt.Errorf("auth.jwt_secret must be changed in release mode")
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("auth.access_token_ttl must be positive")
	}

	switch c.AI.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unsupported ai.provider %q", c.AI.Provider)
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive")
	}
	if c.AI.MaxAttempts < 1 {
		return fmt.Errorf("ai.max_attempts must be at least 1")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log.level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log.format %q", c.Log.Format)
	}

	return nil
}

// HomePath returns the planora directory in the user's home
func HomePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".planora"
	}
	return filepath.Join(home, ".planora")
}

// GlobalConfigPath returns the path to the global config file
func GlobalConfigPath() string {
	return filepath.Join(HomePath(), "config.yaml")
}

// ProjectConfigPath returns the path to the project config file
func ProjectConfigPath() string {
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, "planora.yaml")
}
