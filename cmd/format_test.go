package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabfab/portfolio-agent/chat"
	"github.com/fabfab/portfolio-agent/config"
	"github.com/fabfab/portfolio-agent/llm"
	"github.com/fabfab/portfolio-agent/retrieval"
)

func TestFormatMatchesEmpty(t *testing.T) {
	assert.Equal(t, "No documents matched \"rust\".\n", formatMatches("rust", nil))
}

func TestFormatMatchesListsRankedDocuments(t *testing.T) {
	out := formatMatches("go", []retrieval.Match{
		{DocID: "skills.md", Title: "Skills", RelativePath: "skills.md", Score: 4, Snippet: "Go, Postgres…"},
	})

	assert.Contains(t, out, "## Results for \"go\" (1)")
	assert.Contains(t, out, "### 1. Skills (`skills.md`), score 4")
	assert.Contains(t, out, "Go, Postgres…")
}

func TestFormatAnswerMentionsProviderOnlyWhenGenerated(t *testing.T) {
	canned := formatAnswer(chat.Response{Answer: chat.NoDocumentsAnswer})
	assert.Equal(t, chat.NoDocumentsAnswer+"\n", canned)

	generated := formatAnswer(chat.Response{
		Answer:   "Go mostly.",
		Results:  []retrieval.Match{{Title: "Skills", RelativePath: "skills.md"}},
		Provider: llm.ProviderClaude,
		Model:    "claude-test",
	})
	assert.Contains(t, generated, "1. Skills (`skills.md`)")
	assert.Contains(t, generated, "_Claude / claude-test_")
}

func TestNewLoggerWithoutFileWritesToConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, closeLog := newLogger(config.LogConfig{}, &buf)

	logger.Print("hello")

	assert.Contains(t, buf.String(), "hello")
	require.NoError(t, closeLog())
}

func TestNewLoggerTeesIntoRotatingFile(t *testing.T) {
	path := t.TempDir() + "/studio.log"
	var buf bytes.Buffer
	logger, closeLog := newLogger(config.LogConfig{File: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1}, &buf)

	logger.Print("rotating")
	require.NoError(t, closeLog())

	assert.Contains(t, buf.String(), "rotating")
	assert.FileExists(t, path)
}
