package llm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type ProviderID string

const (
	ProviderClaude ProviderID = "claude"
	ProviderOpenAI ProviderID = "openai"
)

// DisplayName is the provider name used in user facing messages.
func (p ProviderID) DisplayName() string {
	switch p {
	case ProviderClaude:
		return "Claude"
	case ProviderOpenAI:
		return "OpenAI"
	default:
		return string(p)
	}
}

const (
	DefaultProvider    = ProviderClaude
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 700
	DefaultTimeout     = 20 * time.Second
)

type providerDefaults struct {
	baseURL string
	model   string
}

var defaults = map[ProviderID]providerDefaults{
	ProviderClaude: {baseURL: "https://api.anthropic.com/v1/messages", model: "claude-3-5-sonnet-20241022"},
	ProviderOpenAI: {baseURL: "https://api.openai.com/v1/chat/completions", model: "gpt-4o-mini"},
}

// Config is the resolved, immutable provider configuration of one call.
type Config struct {
	Provider    ProviderID
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Env holds the raw LLM environment. Numbers stay strings so that bad values
// fall back to defaults instead of failing.
type Env struct {
	Provider        string `env:"LLM_PROVIDER"`
	APIKey          string `env:"LLM_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	BaseURL         string `env:"LLM_BASE_URL"`
	Model           string `env:"LLM_MODEL"`
	Temperature     string `env:"LLM_TEMPERATURE"`
	MaxTokens       string `env:"LLM_MAX_TOKENS"`
	TimeoutMS       string `env:"LLM_TIMEOUT_MS"`
}

// LoadConfig resolves the provider configuration from the process
// environment.
func LoadConfig() (Config, error) {
	var raw Env
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse llm environment: %w", err)
	}
	return ResolveConfig(raw)
}

// ResolveConfig applies provider defaults to raw and checks that an API key
// is present.
func ResolveConfig(raw Env) (Config, error) {
	provider, err := parseProvider(raw.Provider)
	if err != nil {
		return Config{}, err
	}

	apiKey := raw.APIKey
	if apiKey == "" {
		switch provider {
		case ProviderClaude:
			apiKey = raw.AnthropicAPIKey
		case ProviderOpenAI:
			apiKey = raw.OpenAIAPIKey
		}
	}
	if apiKey == "" {
		return Config{}, &ConfigError{
			Err:     ErrMissingAPIKey,
			Message: fmt.Sprintf("Missing API key for %s. Set LLM_API_KEY or a provider-specific key.", provider),
		}
	}

	def := defaults[provider]
	cfg := Config{
		Provider:    provider,
		APIKey:      apiKey,
		BaseURL:     firstNonEmpty(raw.BaseURL, def.baseURL),
		Model:       firstNonEmpty(raw.Model, def.model),
		Temperature: parseNumber(raw.Temperature, DefaultTemperature),
		MaxTokens:   int(parseNumber(raw.MaxTokens, DefaultMaxTokens)),
		Timeout:     time.Duration(parseNumber(raw.TimeoutMS, float64(DefaultTimeout.Milliseconds())) * float64(time.Millisecond)),
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return cfg, nil
}

func parseProvider(value string) (ProviderID, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return DefaultProvider, nil
	}

	provider := ProviderID(normalized)
	if _, ok := defaults[provider]; !ok {
		return "", unsupportedProvider(value)
	}
	return provider, nil
}

func parseNumber(value string, fallback float64) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return fallback
	}
	return parsed
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
