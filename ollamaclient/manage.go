package ollamaclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/effective-security/ollama-mcp/olerrors"
	"github.com/effective-security/ollama-mcp/ollamamodel"
	"github.com/effective-security/xlog"
)

type namedPayload struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream,omitempty"`
}

// newPullJobID synthesizes a unique identifier for one pull attempt.
func newPullJobID(model string) string {
	sanitized := strings.ReplaceAll(model, ":", "-")
	return fmt.Sprintf("pull-%s-%d", sanitized, time.Now().Unix())
}

// PullModel downloads the named model through the daemon. The call is
// synchronous and non-incremental: it resolves to Completed on success and
// Failed on any daemon or network error, always returning a well-formed
// progress value for routine failures. Only pre-flight validation (empty or
// disallowed name) returns an error.
func (c *Client) PullModel(ctx context.Context, model string, showProgress bool) (*ollamamodel.DownloadProgress, error) {
	name, err := ollamamodel.ValidateModelName(model)
	if err != nil {
		return nil, err
	}
	if !c.policy.IsModelAllowed(name) {
		return nil, olerrors.Validation("model %q is not allowed", name)
	}

	progress := &ollamamodel.DownloadProgress{
		JobID:     newPullJobID(name),
		ModelName: name,
		Status:    ollamamodel.DownloadPending,
		StartedAt: time.Now(),
	}
	logger.ContextKV(ctx, xlog.INFO, "op", "pull_model", "model", name, "job", progress.JobID, "show_progress", showProgress)

	resp, err := c.do(ctx, http.MethodPost, "/api/pull", c.downloadTimeout, &namedPayload{Name: name, Stream: false})
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "op", "pull_model", "model", name, "err", err.Error())
		return failedProgress(progress, describeTransportError(err, c.downloadTimeout)), nil
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		now := time.Now()
		progress.Status = ollamamodel.DownloadCompleted
		progress.ProgressPercent = 100.0
		progress.CompletedAt = &now
		return progress, nil
	case http.StatusNotFound:
		return failedProgress(progress, fmt.Sprintf("model %q not found in Ollama Hub", name)), nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return failedProgress(progress, fmt.Sprintf("pull failed: HTTP %d - %s", resp.StatusCode, string(body))), nil
	}
}

func failedProgress(p *ollamamodel.DownloadProgress, reason string) *ollamamodel.DownloadProgress {
	now := time.Now()
	p.Status = ollamamodel.DownloadFailed
	p.ErrorMessage = reason
	p.CompletedAt = &now
	return p
}

// DeleteModel removes the named model from the daemon's storage. It returns
// true on success, a typed failure on 404 or network errors, and false
// without an error on other unexpected statuses.
func (c *Client) DeleteModel(ctx context.Context, model string) (bool, error) {
	resp, err := c.do(ctx, http.MethodDelete, "/api/delete", deleteTimeout, &namedPayload{Name: model})
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "op", "delete_model", "model", model, "err", err.Error())
		return false, olerrors.WrapConnection(err, "delete request failed")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		logger.ContextKV(ctx, xlog.INFO, "op", "delete_model", "model", model, "status", "deleted")
		return true, nil
	case http.StatusNotFound:
		return false, olerrors.ModelNotFound("model %q not found", model)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.ContextKV(ctx, xlog.ERROR, "op", "delete_model", "model", model, "status_code", resp.StatusCode, "body", string(body))
		return false, nil
	}
}

// ShowModelInfo returns the daemon's detailed metadata for the named model.
func (c *Client) ShowModelInfo(ctx context.Context, model string) (map[string]any, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/show", showTimeout, &namedPayload{Name: model})
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "op", "show_model", "model", model, "err", err.Error())
		return nil, olerrors.WrapConnection(err, "show request failed")
	}
	defer resp.Body.Close()

	if err := c.mapModelStatus(resp, model, "show request"); err != nil {
		return nil, err
	}

	var info map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, olerrors.WrapValidation(err, "invalid JSON response")
	}
	return info, nil
}
