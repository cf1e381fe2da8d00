package ollamaclient

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/ollama-mcp/olerrors"
	"github.com/effective-security/ollama-mcp/ollamamodel"
	"github.com/effective-security/xlog"
)

// generatePayload is the wire shape of /api/generate requests.
type generatePayload struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  *int    `json:"num_predict,omitempty"`
	NumCtx      *int    `json:"num_ctx,omitempty"`
}

func (c *Client) checkChatRequest(req *ollamamodel.ChatRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if !c.policy.IsModelAllowed(req.Model) {
		return olerrors.Validation("model %q is not allowed", req.Model)
	}
	return nil
}

func newGeneratePayload(req *ollamamodel.ChatRequest, stream bool) *generatePayload {
	return &generatePayload{
		Model:  req.Model,
		Prompt: req.Message,
		Stream: stream,
		Options: generateOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
			NumCtx:      req.ContextWindow,
		},
	}
}

// Chat sends a non-streaming generate request. The model is checked against
// the allow/deny policy before any network call.
func (c *Client) Chat(ctx context.Context, req *ollamamodel.ChatRequest) (*ollamamodel.ChatResponse, error) {
	if err := c.checkChatRequest(req); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/generate", chatTimeout, newGeneratePayload(req, false))
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "op", "chat", "model", req.Model, "err", err.Error())
		return nil, olerrors.WrapConnection(err, "chat request failed")
	}
	defer resp.Body.Close()

	if err := c.mapModelStatus(resp, req.Model, "chat request"); err != nil {
		return nil, err
	}

	var wire generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, olerrors.WrapValidation(err, "invalid JSON response")
	}

	chatResp := normalizeChatResponse(req.Model, &wire)
	logger.ContextKV(ctx, xlog.DEBUG,
		"op", "chat",
		"model", req.Model,
		"duration", chatResp.TotalDurationHuman(),
	)
	return chatResp, nil
}

// ChatStream sends a streaming generate request and invokes fn with each
// response fragment. Malformed lines are skipped so partial streams keep
// flowing; the stream ends when the daemon closes the connection or fn
// returns an error.
func (c *Client) ChatStream(ctx context.Context, req *ollamamodel.ChatRequest, fn func(fragment string) error) error {
	if err := c.checkChatRequest(req); err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/generate", chatTimeout, newGeneratePayload(req, true))
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "op", "chat_stream", "model", req.Model, "err", err.Error())
		return olerrors.WrapConnection(err, "stream request failed")
	}
	defer resp.Body.Close()

	if err := c.mapModelStatus(resp, req.Model, "stream request"); err != nil {
		return err
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var chunk struct {
			Response *string `json:"response"`
		}
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue
		}
		if chunk.Response == nil {
			continue
		}
		if err := fn(*chunk.Response); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return olerrors.WrapConnection(err, "stream interrupted")
	}
	return nil
}

// mapModelStatus resolves a model-scoped response status into a typed
// outcome: 200 passes through, 404 is a missing model, anything else is a
// connection failure carrying the response body for diagnostics.
func (c *Client) mapModelStatus(resp *http.Response, model, op string) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return olerrors.ModelNotFound("model %q not found", model)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return olerrors.Connection("%s failed: HTTP %d - %s", op, resp.StatusCode, string(body))
	}
}
