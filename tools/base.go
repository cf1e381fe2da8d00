package tools

import (
	"context"
	"strings"

	"github.com/effective-security/ollama-mcp/ollamamodel"
)

// ListModelsArgs has no parameters.
type ListModelsArgs struct{}

func newListModelsTool(client OllamaClient) IMCPTool {
	return newTool("list_local_models",
		"List all locally installed Ollama models with details",
		func(ctx context.Context, _ *ListModelsArgs) Envelope {
			models, err := client.ListModels(ctx)
			if err != nil {
				return Failure(err).With("models", []any{})
			}
			if len(models) == 0 {
				return Success().
					With("models", []any{}).
					With("total_count", 0).
					With("message", "No models found on this host").
					With("next_steps", []string{
						"Download a model with the download_model tool",
						"Browse candidates with search_available_models",
					})
			}

			list := make([]map[string]any, 0, len(models))
			for i := range models {
				m := &models[i]
				list = append(list, map[string]any{
					"name":       m.Name,
					"size":       m.Size,
					"size_human": m.SizeHuman(),
					"modified":   m.Modified,
				})
			}
			return Success().
				With("models", list).
				With("total_count", len(models)).
				With("usage_tip", "Use local_llm_chat with one of these model names to start a conversation")
		})
}

// ChatArgs are the local_llm_chat parameters.
type ChatArgs struct {
	Message       string   `json:"message" jsonschema:"title=message,description=The message to send to the model."`
	Model         string   `json:"model,omitempty" jsonschema:"title=model,description=The model to use. Defaults to the first installed model."`
	Temperature   *float64 `json:"temperature,omitempty" jsonschema:"title=temperature,description=Sampling temperature between 0.0 and 2.0."`
	MaxTokens     *int     `json:"max_tokens,omitempty" jsonschema:"title=max_tokens,description=Maximum number of tokens to generate."`
	ContextWindow *int     `json:"context_window,omitempty" jsonschema:"title=context_window,description=Context window size hint."`
}

func newChatTool(client OllamaClient, defaultModel string) IMCPTool {
	return newTool("local_llm_chat",
		"Chat with a local Ollama model. All processing happens on this machine.",
		func(ctx context.Context, args *ChatArgs) Envelope {
			if strings.TrimSpace(args.Message) == "" {
				return Failuref("Message is required")
			}

			model := args.Model
			if model == "" {
				model = defaultModel
			}
			if model == "" {
				models, err := client.ListModels(ctx)
				if err != nil {
					return Failure(err)
				}
				if len(models) == 0 {
					return Failuref("No models available").
						With("next_steps", []string{
							"Download a model with the download_model tool",
							"Verify the daemon with ollama_health_check",
						})
				}
				model = models[0].Name
			}

			req, err := ollamamodel.NewChatRequest(model, args.Message)
			if err != nil {
				return Failure(err)
			}
			if args.Temperature != nil {
				req.Temperature = *args.Temperature
			}
			req.MaxTokens = args.MaxTokens
			req.ContextWindow = args.ContextWindow

			resp, err := client.Chat(ctx, req)
			if err != nil {
				return Failure(err)
			}

			e := Success().
				With("response", resp.Response).
				With("model_used", resp.Model).
				With("user_message", args.Message).
				With("privacy_note", "Processed locally, no data left this machine")

			metadata := map[string]any{
				"duration": resp.TotalDurationHuman(),
			}
			if resp.EvalCount != nil {
				metadata["eval_count"] = *resp.EvalCount
			}
			if tps := resp.TokensPerSecond(); tps != nil {
				metadata["tokens_per_second"] = *tps
			}
			return e.With("metadata", metadata)
		})
}

// HealthCheckArgs has no parameters.
type HealthCheckArgs struct{}

func newHealthCheckTool(client OllamaClient) IMCPTool {
	return newTool("ollama_health_check",
		"Check if the Ollama server is running and responsive",
		func(ctx context.Context, _ *HealthCheckArgs) Envelope {
			status := client.HealthCheck(ctx)
			if !status.Healthy {
				return Failuref(status.Error).
					With("status", status.StatusText()).
					With("host", status.Host).
					With("troubleshooting", "Ollama server is not running. Start with: ollama serve")
			}

			e := Success().
				With("status", status.StatusText()).
				With("host", status.Host).
				With("models_available", status.ModelsCount).
				With("next_steps", []string{
					"List installed models with list_local_models",
					"Start a conversation with local_llm_chat",
				})
			if status.ResponseTimeMS != nil {
				e.With("response_time_ms", *status.ResponseTimeMS)
				e.With("responsive", status.IsResponsive())
			}
			return e
		})
}

// SystemCheckArgs has no parameters.
type SystemCheckArgs struct{}

// probeFunc matches sysinfo.Probe; injectable for tests.
type probeFunc func(ctx context.Context, detectGPU bool) *ollamamodel.SystemResources

func newSystemCheckTool(probe probeFunc, detectGPU bool) IMCPTool {
	return newTool("system_resource_check",
		"Check system resources and AI readiness of this host",
		func(ctx context.Context, _ *SystemCheckArgs) Envelope {
			res := probe(ctx, detectGPU)

			readiness := map[string]any{
				"ready":                  res.IsAIReady(),
				"recommended_model_size": res.RecommendedModelSize(),
				"gpu_acceleration":       res.HasGPU(),
				"compatible_gpus":        res.GPUCount(),
			}
			if !res.IsAIReady() {
				readiness["requirements"] = "Minimum: 2 CPU cores, 4GB available memory, 10GB free disk"
			}
			return Success().
				With("system_resources", res).
				With("ai_readiness", readiness)
		})
}
