package ollamamodel_test

import (
	"testing"
	"time"

	"github.com/effective-security/ollama-mcp/olerrors"
	"github.com/effective-security/ollama-mcp/ollamamodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_HumanBytes(t *testing.T) {
	tcases := []struct {
		bytes int64
		exp   string
	}{
		{0, "0.0 B"},
		{512, "512.0 B"},
		{1023, "1023.0 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{1073741824, "1.0 GB"},
		{2048000000, "1.9 GB"},
		{int64(1024) * 1024 * 1024 * 1024, "1.0 TB"},
		{int64(1024) * 1024 * 1024 * 1024 * 1024, "1.0 PB"},
	}
	for _, tc := range tcases {
		assert.Equal(t, tc.exp, ollamamodel.HumanBytes(tc.bytes), "bytes=%d", tc.bytes)
	}
}

func Test_ValidateModelName(t *testing.T) {
	name, err := ollamamodel.ValidateModelName("  llama3.2:latest ")
	require.NoError(t, err)
	assert.Equal(t, "llama3.2:latest", name)

	_, err = ollamamodel.ValidateModelName("")
	assert.True(t, olerrors.IsValidation(err))

	_, err = ollamamodel.ValidateModelName("   ")
	assert.True(t, olerrors.IsValidation(err))

	for _, bad := range []string{"model name", "model/name", "model$", "mo\ndel"} {
		_, err = ollamamodel.ValidateModelName(bad)
		assert.True(t, olerrors.IsValidation(err), "name=%q", bad)
	}

	// leading and trailing whitespace is trimmed before the charset check
	name, err = ollamamodel.ValidateModelName("model\n")
	require.NoError(t, err)
	assert.Equal(t, "model", name)
}

func Test_ModelInfo(t *testing.T) {
	m := &ollamamodel.ModelInfo{
		Name:     "llama3.2:latest",
		Size:     2048000000,
		Modified: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, m.Validate())
	assert.Equal(t, "1.9 GB", m.SizeHuman())
	assert.Equal(t, "llama3.2:latest (1.9 GB)", m.String())

	m.Size = -1
	err := m.Validate()
	assert.True(t, olerrors.IsValidation(err))
}

func Test_HealthStatus(t *testing.T) {
	h := &ollamamodel.HealthStatus{
		Healthy: false,
		Host:    "http://localhost:11434",
	}
	assert.True(t, olerrors.IsValidation(h.Validate()))

	h.Error = "connection refused"
	require.NoError(t, h.Validate())
	assert.Equal(t, "UNHEALTHY", h.StatusText())
	assert.False(t, h.IsResponsive())

	rt := 120.5
	h = &ollamamodel.HealthStatus{
		Healthy:        true,
		Host:           "http://localhost:11434",
		ModelsCount:    3,
		ResponseTimeMS: &rt,
	}
	require.NoError(t, h.Validate())
	assert.Equal(t, "HEALTHY", h.StatusText())
	assert.True(t, h.IsResponsive())

	slow := 6000.0
	h.ResponseTimeMS = &slow
	assert.False(t, h.IsResponsive())
}
