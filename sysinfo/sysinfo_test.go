package sysinfo

import (
	"context"
	"testing"

	"github.com/effective-security/ollama-mcp/ollamamodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Probe(t *testing.T) {
	res := Probe(context.Background(), false)
	require.NotNil(t, res)
	assert.NotEmpty(t, res.Platform)
	assert.GreaterOrEqual(t, res.CPUCores, 1)
	assert.Greater(t, res.TotalMemoryGB, 0.0)
	assert.Greater(t, res.DiskTotalGB, 0.0)
	assert.Empty(t, res.GPUs)
	assert.NotEmpty(t, res.RecommendedModelSize())
}

func Test_Probe_WithGPUDetection(t *testing.T) {
	// Detection must degrade silently on hosts without vendor tooling.
	res := Probe(context.Background(), true)
	require.NotNil(t, res)
	assert.GreaterOrEqual(t, len(res.GPUs), 0)
}

func Test_ParseNvidiaCSV(t *testing.T) {
	tcases := []struct {
		name string
		out  string
		exp  int
	}{
		{"empty", "", 0},
		{"blank lines", "\n\n", 0},
		{"single", "NVIDIA GeForce RTX 4090, 24564, 550.54.14\n", 1},
		{"two gpus", "RTX 3080, 10240, 535.1\nRTX 3090, 24576, 535.1\n", 2},
		{"missing fields", "only-name\n", 0},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			gpus := parseNvidiaCSV(tc.out)
			assert.Len(t, gpus, tc.exp)
		})
	}

	gpus := parseNvidiaCSV("NVIDIA GeForce RTX 4090, 24564, 550.54.14\n")
	require.Len(t, gpus, 1)
	assert.Equal(t, "NVIDIA GeForce RTX 4090", gpus[0].Name)
	assert.Equal(t, ollamamodel.GPUVendorNvidia, gpus[0].Vendor)
	require.NotNil(t, gpus[0].MemoryMB)
	assert.Equal(t, 24564, *gpus[0].MemoryMB)
	assert.Equal(t, "550.54.14", gpus[0].DriverVersion)
	assert.True(t, gpus[0].IsCompatible())
}
