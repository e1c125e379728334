package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const openAIChatCompletionsPath = "/chat/completions"

// generateOpenAI calls the Chat Completions API with the system prompt
// prepended to the message history.
func generateOpenAI(ctx context.Context, httpClient *http.Client, params Params, cfg Config) (string, error) {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = openAIBaseURL(cfg.BaseURL)
	clientCfg.HTTPClient = httpClient
	client := openai.NewClientWithConfig(clientCfg)

	messages := make([]openai.ChatCompletionMessage, 0, len(params.Messages)+1)
	if params.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: params.System})
	}
	for _, msg := range params.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: msg.Role, Content: msg.Content})
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       cfg.Model,
		Messages:    messages,
		MaxTokens:   params.maxTokens(cfg),
		Temperature: openAITemperature(params.temperature(cfg)),
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &APIError{Provider: ProviderOpenAI, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", &APIError{Provider: ProviderOpenAI, StatusCode: reqErr.HTTPStatusCode}
		}
		return "", fmt.Errorf("create openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// openAIBaseURL accepts either the API root or the full chat completions
// endpoint and returns the API root expected by the SDK.
func openAIBaseURL(baseURL string) string {
	return strings.TrimSuffix(strings.TrimRight(baseURL, "/"), openAIChatCompletionsPath)
}

// openAITemperature keeps an explicit zero temperature on the wire. The SDK
// field is omitempty and the API default is 1.
func openAITemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}
