package tools

import (
	"github.com/effective-security/ollama-mcp/olerrors"
	"github.com/effective-security/ollama-mcp/utils"
	"github.com/google/uuid"
)

// Envelope is the JSON shell every tool renders into its single text
// content block.
type Envelope map[string]any

// Success starts a successful envelope.
func Success() Envelope {
	return Envelope{
		"success":    true,
		"request_id": uuid.NewString(),
	}
}

// Failure starts a failed envelope carrying the error message and
// taxonomy-specific troubleshooting guidance.
func Failure(err error) Envelope {
	e := Envelope{
		"success":    false,
		"request_id": uuid.NewString(),
		"error":      err.Error(),
	}
	if hint := troubleshoot(err); hint != "" {
		e["troubleshooting"] = hint
	}
	return e
}

// Failuref starts a failed envelope from a plain message.
func Failuref(msg string) Envelope {
	return Envelope{
		"success":    false,
		"request_id": uuid.NewString(),
		"error":      msg,
	}
}

// With adds one field and returns the envelope for chaining.
func (e Envelope) With(key string, value any) Envelope {
	e[key] = value
	return e
}

// Render serializes the envelope for the text content block.
func (e Envelope) Render() string {
	return utils.ToJSONIndent(e)
}

func troubleshoot(err error) string {
	switch {
	case olerrors.IsConnection(err):
		return "Ollama server is not running. Start with: ollama serve"
	case olerrors.IsModelNotFound(err):
		return "Model is not installed. Check installed models with list_local_models or fetch it with download_model."
	case olerrors.IsDownload(err):
		return "Verify the model name exists in the Ollama Hub and that there is enough free disk space."
	case olerrors.IsValidation(err):
		return "Check the request arguments and try again."
	}
	return ""
}
