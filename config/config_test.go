package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabfab/portfolio-agent/config"
	"github.com/fabfab/portfolio-agent/retrieval"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STUDIO_ADDR", "KNOWLEDGE_BASE_DIR", "KNOWLEDGE_BASE_ROOT_FILES", "STUDIO_CONFIG", "POSTGRES_DSN", "SHUTDOWN_TIMEOUT", "LOG_FILE"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "app_data/knowledge_base", cfg.KnowledgeBaseDir)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.PostgresDSN)
	assert.Empty(t, cfg.RootFiles)
	assert.Equal(t, 50, cfg.Log.MaxSizeMB)
	assert.Equal(t, config.DefaultStudio(), cfg.Studio)
}

func TestLoadFromEnvironment(t *testing.T) {
	studioFile := filepath.Join(t.TempDir(), "studio.yaml")
	require.NoError(t, os.WriteFile(studioFile, []byte("max_results: 3\nsnippet_radius_chars: 90\n"), 0o644))

	t.Setenv("STUDIO_ADDR", "127.0.0.1:9000")
	t.Setenv("KNOWLEDGE_BASE_DIR", "/srv/kb")
	t.Setenv("KNOWLEDGE_BASE_ROOT_FILES", "about.md,skills.md")
	t.Setenv("STUDIO_CONFIG", studioFile)
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("LOG_FILE", "/var/log/studio.log")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "/srv/kb", cfg.KnowledgeBaseDir)
	assert.Equal(t, []string{"about.md", "skills.md"}, cfg.RootFiles)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/var/log/studio.log", cfg.Log.File)
	assert.Equal(t, config.Studio{MaxResults: 3, MinQueryLength: 3, SnippetRadiusChars: 90}, cfg.Studio)
	assert.Equal(t, retrieval.Options{MaxResults: 3, MinQueryLength: 3, SnippetRadius: 90}, cfg.Studio.RetrievalOptions())
}

func TestLoadStudioRejectsNegativeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_query_length: -1\n"), 0o644))

	_, err := config.LoadStudio(path)
	require.Error(t, err)
}

func TestLoadStudioMissingFile(t *testing.T) {
	_, err := config.LoadStudio(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("STUDIO_TEST_FROM_FILE=file\nSTUDIO_TEST_PRESET=file\n"), 0o644))

	t.Setenv("STUDIO_TEST_FROM_FILE", "")
	require.NoError(t, os.Unsetenv("STUDIO_TEST_FROM_FILE"))
	t.Setenv("STUDIO_TEST_PRESET", "process")

	require.NoError(t, config.LoadEnvFile(path))
	t.Cleanup(func() { _ = os.Unsetenv("STUDIO_TEST_FROM_FILE") })

	assert.Equal(t, "file", os.Getenv("STUDIO_TEST_FROM_FILE"))
	assert.Equal(t, "process", os.Getenv("STUDIO_TEST_PRESET"))
}

func TestLoadEnvFileMissing(t *testing.T) {
	assert.NoError(t, config.LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")))
	assert.NoError(t, config.LoadEnvFile(""))
}
