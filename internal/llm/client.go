// Package llm provides the text-generation client used by the planner and the chat agent.
// It wraps a single provider with a per-attempt timeout and retry of transient failures.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/planora/planora/internal/config"
)

// TextGenerator turns a prompt into free text
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Recorder receives one observation per Generate call
type Recorder interface {
	ObserveLLMRequest(provider, outcome string, duration time.Duration)
}

// RetryConfig holds retry configuration for generation requests.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts per call.
	MaxAttempts int

	// BackoffBase is the initial backoff duration.
	BackoffBase time.Duration

	// BackoffMultiplier is applied to backoff on each retry.
	BackoffMultiplier float64

	// MaxBackoff caps the maximum backoff duration.
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns the retry defaults: three attempts starting one second apart.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       time.Second,
		BackoffMultiplier: 2.0,
		MaxBackoff:        10 * time.Second,
	}
}

// DefaultTimeout bounds a single attempt
const DefaultTimeout = 60 * time.Second

// Client is a TextGenerator backed by one provider
type Client struct {
	provider   Provider
	httpClient *http.Client
	timeout    time.Duration
	retry      RetryConfig
	logger     *slog.Logger
	metrics    Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client handed to providers built by New.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithRetry sets the retry configuration.
func WithRetry(cfg RetryConfig) Option {
	return func(client *Client) {
		client.retry = cfg
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r Recorder) Option {
	return func(client *Client) {
		client.metrics = r
	}
}

// NewClient creates a client around an existing provider.
func NewClient(provider Provider, opts ...Option) *Client {
	c := &Client{
		provider: provider,
		timeout:  DefaultTimeout,
		retry:    DefaultRetryConfig(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// New creates a client for the provider described by cfg. Options passed
// explicitly take precedence over cfg.
func New(cfg config.AIConfig, opts ...Option) (*Client, error) {
	retry := DefaultRetryConfig()
	if cfg.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.BackoffBase > 0 {
		retry.BackoffBase = cfg.BackoffBase
	}

	base := []Option{WithRetry(retry)}
	if cfg.Timeout > 0 {
		base = append(base, WithTimeout(cfg.Timeout))
	}

	c := NewClient(nil, append(base, opts...)...)

	provider, err := NewProvider(cfg, c.httpClient)
	if err != nil {
		return nil, err
	}
	c.provider = provider
	return c, nil
}

// Provider returns the name of the wrapped provider
func (c *Client) Provider() string {
	return c.provider.Name()
}

// Generate sends prompt to the provider. Transient failures are retried with
// exponential backoff up to the attempt budget; fatal failures return at once.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	startedAt := time.Now()
	attempts := 0

	operation := func() (string, error) {
		attempts++
		text, err := c.attempt(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil || !IsTransient(err) {
			return "", backoff.Permanent(err)
		}
		return "", err
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Debug("Generation failed, retrying",
			"provider", c.provider.Name(),
			"attempt", attempts,
			"max_attempts", c.retry.MaxAttempts,
			"backoff", wait,
			"error", err)
	}

	text, err := backoff.RetryNotifyWithData(operation, c.backoff(ctx), notify)
	duration := time.Since(startedAt)

	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
	case IsTransient(err):
		outcome = "transient_error"
	default:
		outcome = "fatal_error"
	}
	if c.metrics != nil {
		c.metrics.ObserveLLMRequest(c.provider.Name(), outcome, duration)
	}

	if err != nil {
		c.logger.Warn("Generation failed",
			"provider", c.provider.Name(),
			"attempts", attempts,
			"duration", duration,
			"error", err)
		return "", err
	}

	c.logger.Info("Generation completed",
		"provider", c.provider.Name(),
		"attempts", attempts,
		"duration", duration,
		"chars", len(text))
	return text, nil
}

// attempt runs one provider call under the per-attempt timeout
func (c *Client) attempt(ctx context.Context, prompt string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.provider.Generate(attemptCtx, prompt)
	if err != nil {
		// An attempt that ran out of time while the caller still waits is worth retrying
		if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && !IsTransient(err) {
			return "", NewTransientError(fmt.Errorf("attempt timed out after %s: %w", c.timeout, err))
		}
		return "", err
	}
	if text == "" {
		return "", NewFatalError(ErrEmptyResponse)
	}
	return text, nil
}

func (c *Client) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retry.BackoffBase
	b.Multiplier = c.retry.BackoffMultiplier
	b.MaxInterval = c.retry.MaxBackoff
	b.RandomizationFactor = 0.25
	b.MaxElapsedTime = 0

	retries := c.retry.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}
