// Package llm generates text with a hosted chat model. The backend is chosen
// per call from configuration; each call is a single HTTP round-trip bounded
// by a timeout and is never retried.
package llm

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Params describes one generation. Temperature and MaxTokens override the
// configured values when set.
type Params struct {
	System      string
	Messages    []Message
	Temperature *float64
	MaxTokens   *int
}

type Result struct {
	Text     string
	Provider ProviderID
	Model    string
}

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, params Params) (Result, error)
}

type generateFunc func(ctx context.Context, httpClient *http.Client, params Params, cfg Config) (string, error)

var providers = map[ProviderID]generateFunc{
	ProviderClaude: generateClaude,
	ProviderOpenAI: generateOpenAI,
}

// Client dispatches generations to the configured provider. The
// configuration is resolved again on every call.
type Client struct {
	resolve    func() (Config, error)
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient returns a Client that reads its configuration from the
// environment on every call.
func NewClient(logger *log.Logger) *Client {
	return newClient(LoadConfig, logger)
}

// NewClientWithConfig returns a Client bound to a fixed configuration.
func NewClientWithConfig(cfg Config, logger *log.Logger) *Client {
	return newClient(func() (Config, error) { return cfg, nil }, logger)
}

func newClient(resolve func() (Config, error), logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}

	return &Client{
		resolve:    resolve,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// WithHTTPClient replaces the HTTP client used for provider calls.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c
}

func (c *Client) Generate(ctx context.Context, params Params) (Result, error) {
	cfg, err := c.resolve()
	if err != nil {
		return Result{}, err
	}

	generate, ok := providers[cfg.Provider]
	if !ok {
		return Result{}, unsupportedProvider(string(cfg.Provider))
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	started := time.Now()
	text, err := generate(callCtx, c.httpClient, params, cfg)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return Result{}, fmt.Errorf("%s request timed out after %s: %w", cfg.Provider.DisplayName(), cfg.Timeout, err)
		}
		return Result{}, err
	}

	c.logger.Printf("llm %s/%s generated %d chars in %s", cfg.Provider, cfg.Model, len(text), time.Since(started).Round(time.Millisecond))
	return Result{Text: text, Provider: cfg.Provider, Model: cfg.Model}, nil
}

func (p Params) temperature(cfg Config) float64 {
	if p.Temperature != nil {
		return *p.Temperature
	}
	return cfg.Temperature
}

func (p Params) maxTokens(cfg Config) int {
	if p.MaxTokens != nil {
		return *p.MaxTokens
	}
	return cfg.MaxTokens
}

var _ Generator = (*Client)(nil)
