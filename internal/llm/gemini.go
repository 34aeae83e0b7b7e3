package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultGeminiURL   = "https://generativelanguage.googleapis.com"
	defaultGeminiModel = "gemini-1.5-flash"

	// maxResponseSize limits the response body to prevent memory exhaustion.
	maxResponseSize = 10 * 1024 * 1024 // 10MB
)

// GeminiProvider calls the Gemini generateContent REST endpoint
type GeminiProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiProvider creates a Gemini provider. Empty model and baseURL use the defaults.
func NewGeminiProvider(apiKey, model, baseURL string, httpClient *http.Client) *GeminiProvider {
	if model == "" {
		model = defaultGeminiModel
	}
	if baseURL == "" {
		baseURL = defaultGeminiURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GeminiProvider{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

// BuildURL returns the generateContent endpoint for the configured model
func (p *GeminiProvider) BuildURL() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.baseURL, url.PathEscape(p.model))
}

// Generate sends the prompt as a single user turn and returns the concatenated text parts
func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", NewFatalError(ErrNoAPIKey)
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", NewFatalError(fmt.Errorf("build request body: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BuildURL(), bytes.NewReader(body))
	if err != nil {
		return "", NewFatalError(fmt.Errorf("create HTTP request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		// Network errors are transient
		return "", NewTransientError(fmt.Errorf("HTTP request failed: %w", err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return "", NewTransientError(fmt.Errorf("read response body: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", classifyHTTPError(httpResp.StatusCode, respBody)
	}

	var resp geminiResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", NewFatalError(fmt.Errorf("decode response: %w", err))
	}
	if len(resp.Candidates) == 0 {
		return "", NewFatalError(ErrEmptyResponse)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}
