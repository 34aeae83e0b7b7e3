package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = openai.GPT4oMini

// OpenAIProvider calls any OpenAI-compatible chat completions API
type OpenAIProvider struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewOpenAIProvider creates an OpenAI provider. A non-empty baseURL targets a compatible server.
func NewOpenAIProvider(apiKey, model, baseURL string, httpClient *http.Client) *OpenAIProvider {
	if model == "" {
		model = defaultOpenAIModel
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}

	return &OpenAIProvider{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClientWithConfig(cfg),
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Generate sends the prompt as a single user message and returns the first choice
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", NewFatalError(ErrNoAPIKey)
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", NewFatalError(ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyOpenAIError maps go-openai errors onto the transient/fatal split
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyHTTPError(apiErr.HTTPStatusCode, []byte(apiErr.Message))
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyHTTPError(reqErr.HTTPStatusCode, []byte(reqErr.Error()))
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	// Network errors are transient
	return NewTransientError(fmt.Errorf("HTTP request failed: %w", err))
}
