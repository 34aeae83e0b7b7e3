package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/planora/planora/internal/config"
)

// Provider performs a single text-generation call against one backend.
// Implementations classify failures with NewTransientError and NewFatalError.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewProvider builds the provider named in cfg
func NewProvider(cfg config.AIConfig, httpClient *http.Client) (Provider, error) {
	switch cfg.Provider {
	case "", "gemini":
		return NewGeminiProvider(cfg.APIKey, cfg.Model, cfg.BaseURL, httpClient), nil
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
