package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/effective-security/ollama-mcp/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.OllamaHost)
	assert.Equal(t, 11434, cfg.OllamaPort)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "ollama-mcp-server", cfg.ServerName)
	assert.Equal(t, 20, cfg.ConnectionPoolSize)
	assert.Equal(t, 10, cfg.MaxConcurrentRequests)
	assert.Equal(t, 30*time.Minute, cfg.DownloadTimeout)
	assert.True(t, cfg.EnableGPUDetection)
	assert.False(t, cfg.EnableAutoServerStart)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "http://localhost:11434", cfg.URL())
}

func Test_Load_Env(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "ollama.internal")
	t.Setenv("OLLAMA_PORT", "11500")
	t.Setenv("OLLAMA_TIMEOUT", "12.5")
	t.Setenv("CONNECTION_POOL_SIZE", "5")
	t.Setenv("ALLOWED_MODELS", "llama3, mistral ,")
	t.Setenv("BLOCKED_MODELS", "evil-model")
	t.Setenv("ENABLE_GPU_DETECTION", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "ollama.internal", cfg.OllamaHost)
	assert.Equal(t, 11500, cfg.OllamaPort)
	assert.Equal(t, 12500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 5, cfg.ConnectionPoolSize)
	assert.False(t, cfg.EnableGPUDetection)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "http://ollama.internal:11500", cfg.URL())
}

func Test_Load_HostWithPort(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "myhost:11435")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "myhost", cfg.OllamaHost)
	assert.Equal(t, 11435, cfg.OllamaPort)
}

func Test_Load_Invalid(t *testing.T) {
	t.Setenv("OLLAMA_PORT", "not-a-number")
	_, err := config.Load()
	assert.Error(t, err)
}

func Test_Load_InvalidPortRange(t *testing.T) {
	t.Setenv("OLLAMA_PORT", "70000")
	_, err := config.Load()
	assert.Error(t, err)
}

func Test_Load_InvalidLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")
	_, err := config.Load()
	assert.Error(t, err)
}

func Test_IsModelAllowed(t *testing.T) {
	t.Setenv("BLOCKED_MODELS", "blocked-model")
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsModelAllowed("anything"))
	assert.False(t, cfg.IsModelAllowed("blocked-model"))

	t.Setenv("ALLOWED_MODELS", "llama3,mistral")
	cfg, err = config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsModelAllowed("llama3"))
	assert.True(t, cfg.IsModelAllowed("mistral"))
	assert.False(t, cfg.IsModelAllowed("anything"))

	// deny wins over allow
	t.Setenv("BLOCKED_MODELS", "llama3")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.False(t, cfg.IsModelAllowed("llama3"))
	assert.True(t, cfg.IsModelAllowed("mistral"))
}

func Test_LoadFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "ollama-mcp.yaml")
	content := `
ollama_host: filehost
ollama_port: 12000
log_level: WARNING
allowed_models:
  - llama3
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))

	cfg, err := config.LoadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "filehost", cfg.OllamaHost)
	assert.Equal(t, 12000, cfg.OllamaPort)
	assert.Equal(t, "WARNING", cfg.LogLevel)
	assert.True(t, cfg.IsModelAllowed("llama3"))
	assert.False(t, cfg.IsModelAllowed("other"))

	// env overrides the file
	t.Setenv("OLLAMA_HOST", "envhost")
	cfg, err = config.LoadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "envhost", cfg.OllamaHost)
}
