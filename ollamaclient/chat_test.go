package ollamaclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/effective-security/ollama-mcp/olerrors"
	"github.com/effective-security/ollama-mcp/ollamaclient"
	"github.com/effective-security/ollama-mcp/ollamamodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatReq(t *testing.T, model, message string) *ollamamodel.ChatRequest {
	t.Helper()
	req, err := ollamamodel.NewChatRequest(model, message)
	require.NoError(t, err)
	return req
}

func Test_Chat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "llama3.2:latest", payload["model"])
		assert.Equal(t, false, payload["stream"])

		_, _ = w.Write(marshal(t, map[string]any{
			"model":             "llama3.2:latest",
			"response":          "hello there",
			"done":              true,
			"total_duration":    int64(2_000_000_000),
			"load_duration":     int64(500_000_000),
			"eval_duration":     int64(1_000_000_000),
			"prompt_eval_count": 12,
			"eval_count":        40,
		}))
	}))
	defer server.Close()

	client := ollamaclient.New(server.URL)
	defer client.Close()

	req := chatReq(t, "llama3.2:latest", gofakeit.Sentence(8))
	resp, err := client.Chat(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "hello there", resp.Response)
	assert.True(t, resp.Done)
	require.NotNil(t, resp.TotalDurationMS)
	assert.InDelta(t, 2000.0, *resp.TotalDurationMS, 0.001)
	require.NotNil(t, resp.EvalDurationMS)
	assert.InDelta(t, 1000.0, *resp.EvalDurationMS, 0.001)
	tps := resp.TokensPerSecond()
	require.NotNil(t, tps)
	assert.InDelta(t, 40.0, *tps, 0.001)
}

func Test_Chat_ModelNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := ollamaclient.New(server.URL)
	defer client.Close()

	req := chatReq(t, "ghost-model", "hi")
	_, err := client.Chat(context.Background(), req)
	require.Error(t, err)
	assert.True(t, olerrors.IsModelNotFound(err))
	assert.Contains(t, err.Error(), "ghost-model")
}

func Test_Chat_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("model exploded"))
	}))
	defer server.Close()

	client := ollamaclient.New(server.URL)
	defer client.Close()

	_, err := client.Chat(context.Background(), chatReq(t, "llama3.2", "hi"))
	require.Error(t, err)
	assert.True(t, olerrors.IsConnection(err))
	assert.Contains(t, err.Error(), "model exploded")
}

func Test_Chat_PolicyDenied(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	policy := &denyPolicy{denied: map[string]bool{"blocked-model": true}}
	client := ollamaclient.New(server.URL, ollamaclient.WithPolicy(policy))
	defer client.Close()

	_, err := client.Chat(context.Background(), chatReq(t, "blocked-model", "hi"))
	require.Error(t, err)
	assert.True(t, olerrors.IsValidation(err))
	assert.Contains(t, err.Error(), "blocked-model")
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func Test_Chat_InvalidRequest(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	client := ollamaclient.New(server.URL)
	defer client.Close()

	req := chatReq(t, "llama3.2", "hi")
	req.Temperature = 100
	_, err := client.Chat(context.Background(), req)
	require.Error(t, err)
	assert.True(t, olerrors.IsValidation(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func Test_ChatStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, true, payload["stream"])

		lines := []string{
			`{"response":"Hello","done":false}`,
			``,
			`{malformed`,
			`{"response":" world","done":false}`,
			`{"response":"","done":true}`,
		}
		for _, line := range lines {
			_, _ = w.Write([]byte(line + "\n"))
		}
	}))
	defer server.Close()

	client := ollamaclient.New(server.URL)
	defer client.Close()

	var got string
	req := chatReq(t, "llama3.2", "hi")
	err := client.ChatStream(context.Background(), req, func(fragment string) error {
		got += fragment
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello world", got)
}

func Test_ChatStream_CallbackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"one","done":false}` + "\n"))
		_, _ = w.Write([]byte(`{"response":"two","done":true}` + "\n"))
	}))
	defer server.Close()

	client := ollamaclient.New(server.URL)
	defer client.Close()

	var calls int
	err := client.ChatStream(context.Background(), chatReq(t, "llama3.2", "hi"), func(string) error {
		calls++
		return io.ErrClosedPipe
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func Test_ChatStream_ModelNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := ollamaclient.New(server.URL)
	defer client.Close()

	err := client.ChatStream(context.Background(), chatReq(t, "ghost-model", "hi"), func(string) error { return nil })
	require.Error(t, err)
	assert.True(t, olerrors.IsModelNotFound(err))
}
