package ollamaclient

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/ollama-mcp/ollamamodel"
)

// The daemon's listing entries are not perfectly stable across versions:
// the model name may arrive as "name" or "model", and the timestamp as
// "modified_at" or "modified". Normalization tries the primary field,
// falls back to the alternate, and defaults on total absence.

type wireModelDetails struct {
	Families          []string `json:"families"`
	Format            string   `json:"format"`
	ParameterSize     string   `json:"parameter_size"`
	QuantizationLevel string   `json:"quantization_level"`
}

type wireModel struct {
	Name       string           `json:"name"`
	Model      string           `json:"model"`
	Size       *int64           `json:"size"`
	Digest     string           `json:"digest"`
	ModifiedAt string           `json:"modified_at"`
	Modified   string           `json:"modified"`
	Details    wireModelDetails `json:"details"`
}

// normalizeModel converts one raw listing entry into a validated ModelInfo.
func normalizeModel(raw json.RawMessage) (*ollamamodel.ModelInfo, error) {
	var entry wireModel
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, errors.Wrap(err, "unparseable model entry")
	}

	name := firstNonEmpty(entry.Name, entry.Model)
	if name == "" {
		return nil, errors.New("model entry has no name")
	}
	if entry.Size == nil {
		return nil, errors.Newf("model entry %q has no size", name)
	}

	modified, err := parseModifiedTime(firstNonEmpty(entry.ModifiedAt, entry.Modified))
	if err != nil {
		return nil, errors.WithMessagef(err, "model entry %q", name)
	}

	model := &ollamamodel.ModelInfo{
		Name:              name,
		Size:              *entry.Size,
		Digest:            entry.Digest,
		Modified:          modified,
		Families:          entry.Details.Families,
		Format:            entry.Details.Format,
		ParameterSize:     entry.Details.ParameterSize,
		QuantizationLevel: entry.Details.QuantizationLevel,
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	return model, nil
}

func parseModifiedTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("missing modified timestamp")
	}
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "invalid modified timestamp")
	}
	return ts, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// generateResponse is the daemon's /api/generate payload. Durations are
// nanoseconds on the wire.
type generateResponse struct {
	Response           string `json:"response"`
	TotalDuration      int64  `json:"total_duration"`
	LoadDuration       int64  `json:"load_duration"`
	PromptEvalCount    *int   `json:"prompt_eval_count"`
	PromptEvalDuration int64  `json:"prompt_eval_duration"`
	EvalCount          *int   `json:"eval_count"`
	EvalDuration       int64  `json:"eval_duration"`
	Context            []int  `json:"context"`
	Done               bool   `json:"done"`
}

// normalizeChatResponse converts the wire payload into the domain response,
// converting nanosecond durations to milliseconds.
func normalizeChatResponse(model string, wire *generateResponse) *ollamamodel.ChatResponse {
	resp := &ollamamodel.ChatResponse{
		Response:             wire.Response,
		Model:                model,
		Done:                 wire.Done,
		TotalDurationMS:      nsToMS(wire.TotalDuration),
		LoadDurationMS:       nsToMS(wire.LoadDuration),
		PromptEvalCount:      wire.PromptEvalCount,
		PromptEvalDurationMS: nsToMS(wire.PromptEvalDuration),
		EvalCount:            wire.EvalCount,
		EvalDurationMS:       nsToMS(wire.EvalDuration),
	}
	if n := len(wire.Context); n > 0 {
		resp.ContextLength = &n
	}
	return resp
}

func nsToMS(ns int64) *float64 {
	if ns == 0 {
		return nil
	}
	ms := float64(ns) / 1_000_000
	return &ms
}
