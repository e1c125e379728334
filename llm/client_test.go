package llm_test

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabfab/portfolio-agent/llm"
)

var discard = log.New(io.Discard, "", 0)

func claudeConfig(url string) llm.Config {
	return llm.Config{
		Provider:    llm.ProviderClaude,
		APIKey:      "sk-test",
		BaseURL:     url,
		Model:       "claude-test",
		Temperature: 0.2,
		MaxTokens:   100,
		Timeout:     time.Second,
	}
}

func openAIConfig(url string) llm.Config {
	return llm.Config{
		Provider:    llm.ProviderOpenAI,
		APIKey:      "sk-test",
		BaseURL:     url + "/v1/chat/completions",
		Model:       "gpt-test",
		Temperature: 0.2,
		MaxTokens:   100,
		Timeout:     time.Second,
	}
}

func userParams(system, content string) llm.Params {
	return llm.Params{System: system, Messages: []llm.Message{{Role: llm.RoleUser, Content: content}}}
}

func TestClaudeGenerate(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"content":[{"type":"text","text":"  Hello "},{"type":"tool_use"},{"type":"text","text":"world.  "}]}`)
	}))
	defer srv.Close()

	params := userParams("Be brief.", "Who is this?")
	params.Messages = append([]llm.Message{{Role: llm.RoleSystem, Content: "Extra rule."}}, params.Messages...)

	result, err := llm.NewClientWithConfig(claudeConfig(srv.URL), discard).Generate(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, "Hello world.", result.Text)
	assert.Equal(t, llm.ProviderClaude, result.Provider)
	assert.Equal(t, "claude-test", result.Model)

	assert.Equal(t, "Be brief.\n\nExtra rule.", captured["system"])
	assert.Equal(t, "claude-test", captured["model"])
	assert.EqualValues(t, 100, captured["max_tokens"])
	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])
}

func TestClaudeGenerateProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	}))
	defer srv.Close()

	_, err := llm.NewClientWithConfig(claudeConfig(srv.URL), discard).Generate(context.Background(), userParams("", "hi"))

	var apiErr *llm.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid x-api-key", err.Error())
}

func TestClaudeGenerateGenericError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream unavailable")
	}))
	defer srv.Close()

	_, err := llm.NewClientWithConfig(claudeConfig(srv.URL), discard).Generate(context.Background(), userParams("", "hi"))
	require.Error(t, err)
	assert.Equal(t, "Claude request failed (502).", err.Error())
}

func TestOpenAIGenerate(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Grounded answer.\n"}}]}`)
	}))
	defer srv.Close()

	result, err := llm.NewClientWithConfig(openAIConfig(srv.URL), discard).Generate(context.Background(), userParams("System rules.", "Question"))
	require.NoError(t, err)

	assert.Equal(t, "Grounded answer.", result.Text)
	assert.Equal(t, llm.ProviderOpenAI, result.Provider)

	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "System rules.", messages[0].(map[string]any)["content"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
}

func TestOpenAIGenerateSendsZeroTemperature(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}]}`)
	}))
	defer srv.Close()

	cfg := openAIConfig(srv.URL)
	cfg.Temperature = 0

	_, err := llm.NewClientWithConfig(cfg, discard).Generate(context.Background(), userParams("", "hi"))
	require.NoError(t, err)

	require.Contains(t, captured, "temperature")
	temperature, ok := captured["temperature"].(float64)
	require.True(t, ok)
	assert.InDelta(t, 0, temperature, 1e-9)
}

func TestOpenAIGenerateProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"Rate limit reached","type":"requests"}}`)
	}))
	defer srv.Close()

	_, err := llm.NewClientWithConfig(openAIConfig(srv.URL), discard).Generate(context.Background(), userParams("", "hi"))

	var apiErr *llm.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "Rate limit reached", err.Error())
}

func TestOpenAIGenerateGenericError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "<html>oops</html>")
	}))
	defer srv.Close()

	_, err := llm.NewClientWithConfig(openAIConfig(srv.URL), discard).Generate(context.Background(), userParams("", "hi"))
	require.Error(t, err)
	assert.Equal(t, "OpenAI request failed (500).", err.Error())
}

func TestGenerateTimesOutWithoutRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	for _, cfg := range []llm.Config{claudeConfig(srv.URL), openAIConfig(srv.URL)} {
		cfg.Timeout = 50 * time.Millisecond
		hits.Store(0)

		_, err := llm.NewClientWithConfig(cfg, discard).Generate(context.Background(), userParams("", "hi"))
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Contains(t, err.Error(), "timed out")
		assert.EqualValues(t, 1, hits.Load())
	}
}

func TestGenerateUnsupportedProviderSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	cfg := claudeConfig(srv.URL)
	cfg.Provider = "gemini"

	_, err := llm.NewClientWithConfig(cfg, discard).Generate(context.Background(), userParams("", "hi"))
	require.ErrorIs(t, err, llm.ErrUnsupportedProvider)
	assert.Zero(t, hits.Load())
}

func TestGenerateMissingKeySkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	clearLLMEnv(t)
	t.Setenv("LLM_BASE_URL", srv.URL)

	_, err := llm.NewClient(discard).Generate(context.Background(), userParams("", "hi"))
	require.ErrorIs(t, err, llm.ErrMissingAPIKey)
	assert.Zero(t, hits.Load())
}
