package ollamamodel

import (
	"fmt"
	"strings"

	"github.com/effective-security/ollama-mcp/olerrors"
)

// ChatRequest is the single request shape for chat and chat-stream calls.
type ChatRequest struct {
	Model         string  `json:"model"`
	Message       string  `json:"message"`
	Temperature   float64 `json:"temperature"`
	MaxTokens     *int    `json:"max_tokens,omitempty"`
	Stream        bool    `json:"stream"`
	ContextWindow *int    `json:"context_window,omitempty"`
}

// DefaultTemperature is used when the caller does not specify one.
const DefaultTemperature = 0.7

// NewChatRequest returns a validated request with the default temperature.
func NewChatRequest(model, message string) (*ChatRequest, error) {
	req := &ChatRequest{
		Model:       model,
		Message:     message,
		Temperature: DefaultTemperature,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Validate checks the request invariants before any network call is made.
func (r *ChatRequest) Validate() error {
	name, err := ValidateModelName(r.Model)
	if err != nil {
		return err
	}
	r.Model = name
	r.Message = strings.TrimSpace(r.Message)
	if r.Message == "" {
		return olerrors.Validation("message cannot be empty")
	}
	if r.Temperature < 0.0 || r.Temperature > 2.0 {
		return olerrors.Validation("temperature %v must be between 0.0 and 2.0", r.Temperature)
	}
	if r.MaxTokens != nil && *r.MaxTokens <= 0 {
		return olerrors.Validation("max_tokens must be positive")
	}
	if r.ContextWindow != nil && *r.ContextWindow <= 0 {
		return olerrors.Validation("context_window must be positive")
	}
	return nil
}

// ChatResponse is the normalized result of a generate call. Durations are
// milliseconds, converted from the daemon's nanosecond fields on ingress.
type ChatResponse struct {
	Response             string   `json:"response"`
	Model                string   `json:"model"`
	Done                 bool     `json:"done"`
	TotalDurationMS      *float64 `json:"total_duration_ms,omitempty"`
	LoadDurationMS       *float64 `json:"load_duration_ms,omitempty"`
	PromptEvalCount      *int     `json:"prompt_eval_count,omitempty"`
	PromptEvalDurationMS *float64 `json:"prompt_eval_duration_ms,omitempty"`
	EvalCount            *int     `json:"eval_count,omitempty"`
	EvalDurationMS       *float64 `json:"eval_duration_ms,omitempty"`
	ContextLength        *int     `json:"context_length,omitempty"`
}

// TokensPerSecond derives the generation rate, or nil when the counts or
// durations are missing or zero.
func (r *ChatResponse) TokensPerSecond() *float64 {
	if r.EvalCount == nil || r.EvalDurationMS == nil || *r.EvalDurationMS == 0 {
		return nil
	}
	tps := float64(*r.EvalCount) * 1000 / *r.EvalDurationMS
	return &tps
}

// TotalDurationHuman renders the total duration for display.
func (r *ChatResponse) TotalDurationHuman() string {
	if r.TotalDurationMS == nil {
		return "Unknown"
	}
	seconds := *r.TotalDurationMS / 1000
	switch {
	case seconds < 1:
		return fmt.Sprintf("%dms", int(*r.TotalDurationMS))
	case seconds < 60:
		return fmt.Sprintf("%.1fs", seconds)
	default:
		return fmt.Sprintf("%dm %.1fs", int(seconds)/60, seconds-float64(int(seconds)/60*60))
	}
}
