package ollamaclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/effective-security/ollama-mcp/olerrors"
	"github.com/effective-security/ollama-mcp/ollamaclient"
	"github.com/effective-security/ollama-mcp/ollamamodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_PullModel_Completed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/pull", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "llama3.2:latest", payload["name"])

		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer server.Close()

	client := ollamaclient.New(server.URL)
	defer client.Close()

	progress, err := client.PullModel(context.Background(), "llama3.2:latest", false)
	require.NoError(t, err)
	require.NotNil(t, progress)
	assert.Equal(t, ollamamodel.DownloadCompleted, progress.Status)
	assert.Equal(t, "llama3.2:latest", progress.ModelName)
	assert.InDelta(t, 100.0, progress.ProgressPercent, 0.001)
	assert.True(t, strings.HasPrefix(progress.JobID, "pull-llama3.2-latest-"))
	assert.Empty(t, progress.ErrorMessage)
	require.NotNil(t, progress.CompletedAt)
	assert.True(t, progress.IsCompleted())
}

func Test_PullModel_NotInHub(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := ollamaclient.New(server.URL)
	defer client.Close()

	progress, err := client.PullModel(context.Background(), "no-such-model", false)
	require.NoError(t, err)
	require.NotNil(t, progress)
	assert.Equal(t, ollamamodel.DownloadFailed, progress.Status)
	assert.Contains(t, progress.ErrorMessage, "no-such-model")
	assert.Contains(t, progress.ErrorMessage, "not found in Ollama Hub")
	assert.True(t, progress.Status.Terminal())
}

func Test_PullModel_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("disk full"))
	}))
	defer server.Close()

	client := ollamaclient.New(server.URL)
	defer client.Close()

	progress, err := client.PullModel(context.Background(), "llama3.2", false)
	require.NoError(t, err)
	assert.Equal(t, ollamamodel.DownloadFailed, progress.Status)
	assert.Contains(t, progress.ErrorMessage, "disk full")
}

func Test_PullModel_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := ollamaclient.New(url)
	defer client.Close()

	progress, err := client.PullModel(context.Background(), "llama3.2", false)
	require.NoError(t, err)
	assert.Equal(t, ollamamodel.DownloadFailed, progress.Status)
	assert.NotEmpty(t, progress.ErrorMessage)
}

func Test_PullModel_Preflight(t *testing.T) {
	policy := &denyPolicy{denied: map[string]bool{"blocked-model": true}}
	client := ollamaclient.New("http://localhost:0", ollamaclient.WithPolicy(policy))
	defer client.Close()

	_, err := client.PullModel(context.Background(), "", false)
	require.Error(t, err)
	assert.True(t, olerrors.IsValidation(err))

	_, err = client.PullModel(context.Background(), "bad name!", false)
	require.Error(t, err)
	assert.True(t, olerrors.IsValidation(err))

	_, err = client.PullModel(context.Background(), "blocked-model", false)
	require.Error(t, err)
	assert.True(t, olerrors.IsValidation(err))
}

func Test_DeleteModel(t *testing.T) {
	var status int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/delete", r.URL.Path)
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(status)
	}))
	defer server.Close()

	client := ollamaclient.New(server.URL)
	defer client.Close()

	status = http.StatusOK
	deleted, err := client.DeleteModel(context.Background(), "llama3.2")
	require.NoError(t, err)
	assert.True(t, deleted)

	status = http.StatusNotFound
	deleted, err = client.DeleteModel(context.Background(), "ghost-model")
	require.Error(t, err)
	assert.False(t, deleted)
	assert.True(t, olerrors.IsModelNotFound(err))
	assert.Contains(t, err.Error(), "ghost-model")

	status = http.StatusInternalServerError
	deleted, err = client.DeleteModel(context.Background(), "llama3.2")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func Test_DeleteModel_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := ollamaclient.New(url)
	defer client.Close()

	_, err := client.DeleteModel(context.Background(), "llama3.2")
	require.Error(t, err)
	assert.True(t, olerrors.IsConnection(err))
}

func Test_ShowModelInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/show", r.URL.Path)
		_, _ = w.Write([]byte(`{"modelfile":"FROM llama3.2","parameters":"temperature 0.7"}`))
	}))
	defer server.Close()

	client := ollamaclient.New(server.URL)
	defer client.Close()

	info, err := client.ShowModelInfo(context.Background(), "llama3.2")
	require.NoError(t, err)
	assert.Equal(t, "FROM llama3.2", info["modelfile"])
}

func Test_ShowModelInfo_Failures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := ollamaclient.New(server.URL)
	defer client.Close()

	_, err := client.ShowModelInfo(context.Background(), "ghost-model")
	require.Error(t, err)
	assert.True(t, olerrors.IsModelNotFound(err))

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{broken"))
	}))
	defer bad.Close()

	badClient := ollamaclient.New(bad.URL)
	defer badClient.Close()

	_, err = badClient.ShowModelInfo(context.Background(), "llama3.2")
	require.Error(t, err)
	assert.True(t, olerrors.IsValidation(err))
}
