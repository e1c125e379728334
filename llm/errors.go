package llm

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAPIKey       = errors.New("missing llm api key")
	ErrUnsupportedProvider = errors.New("unsupported llm provider")
)

// ConfigError reports a configuration problem found before any request is
// sent. Its message is meant for end users.
type ConfigError struct {
	Err     error
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func unsupportedProvider(name string) error {
	return &ConfigError{Err: ErrUnsupportedProvider, Message: fmt.Sprintf("Unsupported LLM provider: %s", name)}
}

// APIError is a non-success response from a provider. Message carries the
// provider's own error message when it sent one.
type APIError struct {
	Provider   ProviderID
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s request failed (%d).", e.Provider.DisplayName(), e.StatusCode)
}
