package tools

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/effective-security/ollama-mcp/ollamamodel"
	"github.com/effective-security/ollama-mcp/store"
	"github.com/effective-security/xlog"
)

// SuggestModelsArgs are the suggest_models parameters.
type SuggestModelsArgs struct {
	Needs string `json:"needs" jsonschema:"title=needs,description=Description of what the model will be used for."`
	Limit *int   `json:"limit,omitempty" jsonschema:"title=limit,description=Maximum number of suggestions. Defaults to 3."`
}

func newSuggestModelsTool(probe probeFunc, detectGPU bool) IMCPTool {
	return newTool("suggest_models",
		"Suggest models for the described needs, sized to this host's resources",
		func(ctx context.Context, args *SuggestModelsArgs) Envelope {
			needs := strings.TrimSpace(args.Needs)
			if needs == "" {
				return Failuref("Needs description is required")
			}
			limit := 3
			if args.Limit != nil && *args.Limit > 0 {
				limit = *args.Limit
			}

			res := probe(ctx, detectGPU)
			recs := scoreCatalog(needs, res)
			if len(recs) > limit {
				recs = recs[:limit]
			}
			return Success().
				With("needs", needs).
				With("available_memory_gb", res.AvailableMemoryGB).
				With("recommendations", recs).
				With("usage_tip", "Fetch a recommendation with the download_model tool")
		})
}

// scoreCatalog ranks registry entries against the needs description and the
// host capacity, best first.
func scoreCatalog(needs string, res *ollamamodel.SystemResources) []ollamamodel.ModelRecommendation {
	needs = strings.ToLower(needs)
	words := strings.Fields(needs)

	qualityScore := map[string]float64{"basic": 0.5, "good": 0.7, "high": 0.9}
	recs := make([]ollamamodel.ModelRecommendation, 0, len(modelCatalog))
	for _, entry := range modelCatalog {
		score := qualityScore[entry.Quality]
		var reasons []string

		for _, w := range words {
			if len(w) < 3 {
				continue
			}
			if containsFold(entry.Categories, w) || containsFold(entry.UseCases, w) {
				score += 0.2
				reasons = append(reasons, fmt.Sprintf("matches %q", w))
			}
		}

		if entry.MinRAMGB <= res.AvailableMemoryGB {
			score += 0.1
			reasons = append(reasons, "fits in available memory")
		} else {
			score *= 0.3
			reasons = append(reasons, fmt.Sprintf("needs %.0fGB RAM, only %.1fGB available", entry.MinRAMGB, res.AvailableMemoryGB))
		}

		if (strings.Contains(needs, "fast") || strings.Contains(needs, "quick")) &&
			strings.Contains(entry.Speed, "fast") {
			score += 0.15
			reasons = append(reasons, "optimized for speed")
		}

		recs = append(recs, ollamamodel.ModelRecommendation{
			ModelName:      entry.Name,
			Score:          score,
			Reasons:        reasons,
			Size:           entry.Size,
			MinRAMGB:       entry.MinRAMGB,
			EstimatedSpeed: entry.Speed,
			Quality:        entry.Quality,
			UseCases:       entry.UseCases,
		})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	return recs
}

// DownloadModelArgs are the download_model parameters.
type DownloadModelArgs struct {
	Model        string `json:"model" jsonschema:"title=model,description=The model to download from the Ollama Hub."`
	ShowProgress bool   `json:"show_progress,omitempty" jsonschema:"title=show_progress,description=Log progress while downloading."`
}

func newDownloadModelTool(client OllamaClient, jobs store.ProgressStore) IMCPTool {
	return newTool("download_model",
		"Download a model from the Ollama Hub to this host",
		func(ctx context.Context, args *DownloadModelArgs) Envelope {
			progress, err := client.PullModel(ctx, args.Model, args.ShowProgress)
			if err != nil {
				return Failure(err)
			}
			if saveErr := jobs.Save(progress); saveErr != nil {
				logger.ContextKV(ctx, xlog.WARNING, "op", "download_model", "reason", "save_failed", "err", saveErr.Error())
			}

			job := map[string]any{
				"job_id":           progress.JobID,
				"model":            progress.ModelName,
				"status":           progress.Status,
				"progress_percent": progress.ProgressPercent,
			}
			if progress.Status == ollamamodel.DownloadFailed {
				return Failuref(progress.ErrorMessage).With("download", job)
			}
			return Success().
				With("download", job).
				With("message", fmt.Sprintf("Model %q downloaded", progress.ModelName)).
				With("usage_tip", "Start a conversation with local_llm_chat")
		})
}

// DownloadProgressArgs are the check_download_progress parameters.
type DownloadProgressArgs struct {
	JobID  string `json:"job_id,omitempty" jsonschema:"title=job_id,description=The download job to inspect. Omit to list all known jobs."`
	Cancel bool   `json:"cancel,omitempty" jsonschema:"title=cancel,description=Cancel the given job instead of inspecting it."`
}

func newDownloadProgressTool(jobs store.ProgressStore) IMCPTool {
	return newTool("check_download_progress",
		"Check the progress of model downloads started in this session, or cancel one",
		func(_ context.Context, args *DownloadProgressArgs) Envelope {
			if args.Cancel {
				if args.JobID == "" {
					return Failuref("job_id is required to cancel a download")
				}
				if !jobs.Cancel(args.JobID) {
					return Failuref(fmt.Sprintf("Download job %s cannot be cancelled", args.JobID))
				}
				return Success().
					With("download", jobs.Get(args.JobID)).
					With("message", fmt.Sprintf("Download job %s cancelled", args.JobID))
			}

			if args.JobID != "" {
				p := jobs.Get(args.JobID)
				if p == nil {
					return Failuref(fmt.Sprintf("Unknown download job: %s", args.JobID))
				}
				return Success().
					With("download", p).
					With("size", p.SizeHumanProgress()).
					With("eta", p.ETAHuman())
			}

			list := jobs.List()
			active := 0
			for _, p := range list {
				if p.IsActive() {
					active++
				}
			}
			return Success().
				With("downloads", list).
				With("total_count", len(list)).
				With("active_count", active)
		})
}

// RemoveModelArgs are the remove_model parameters.
type RemoveModelArgs struct {
	Model string `json:"model" jsonschema:"title=model,description=The model to remove from local storage."`
}

func newRemoveModelTool(client OllamaClient) IMCPTool {
	return newTool("remove_model",
		"Remove a locally installed model to free disk space",
		func(ctx context.Context, args *RemoveModelArgs) Envelope {
			if strings.TrimSpace(args.Model) == "" {
				return Failuref("Model name is required")
			}
			deleted, err := client.DeleteModel(ctx, args.Model)
			if err != nil {
				return Failure(err)
			}
			if !deleted {
				return Failuref(fmt.Sprintf("Failed to remove model %q", args.Model))
			}
			return Success().
				With("model", args.Model).
				With("message", fmt.Sprintf("Model %q removed", args.Model))
		})
}

// SearchModelsArgs are the search_available_models parameters.
type SearchModelsArgs struct {
	Query    string `json:"query,omitempty" jsonschema:"title=query,description=Free text to match against model names and use cases."`
	Category string `json:"category,omitempty" jsonschema:"title=category,description=Filter by category: general code reasoning vision embedding lightweight."`
}

func newSearchModelsTool() IMCPTool {
	return newTool("search_available_models",
		"Search the curated registry of models available for download",
		func(_ context.Context, args *SearchModelsArgs) Envelope {
			results := searchCatalog(args.Query, args.Category)
			if len(results) == 0 {
				return Success().
					With("results", []any{}).
					With("total_count", 0).
					With("message", "No models matched the search")
			}
			return Success().
				With("results", results).
				With("total_count", len(results)).
				With("usage_tip", "Fetch a result with the download_model tool")
		})
}

// StartServerArgs has no parameters.
type StartServerArgs struct{}

func newStartServerTool(client OllamaClient, autoStartEnabled bool) IMCPTool {
	return newTool("start_ollama_server",
		"Start the Ollama server on this host if it is not running",
		func(ctx context.Context, _ *StartServerArgs) Envelope {
			if !autoStartEnabled {
				return Failuref("Automatic server start is disabled").
					With("troubleshooting", "Set ENABLE_AUTO_SERVER_START=true or start manually with: ollama serve")
			}

			if status := client.HealthCheck(ctx); status.Healthy {
				return Success().
					With("message", "Ollama server is already running").
					With("host", status.Host).
					With("models_available", status.ModelsCount)
			}

			cmd := exec.Command("ollama", "serve")
			if err := cmd.Start(); err != nil {
				return Failure(err).
					With("troubleshooting", "Verify the ollama binary is installed and on PATH")
			}
			pid := cmd.Process.Pid
			// Detach; the daemon outlives this session.
			_ = cmd.Process.Release()

			logger.ContextKV(ctx, xlog.INFO, "op", "start_ollama_server", "pid", pid)
			return Success().
				With("message", "Ollama server starting").
				With("pid", pid).
				With("next_steps", []string{
					"Wait a few seconds, then confirm with ollama_health_check",
				})
		})
}

// SelectChatModelArgs are the select_chat_model parameters.
type SelectChatModelArgs struct {
	Task string `json:"task,omitempty" jsonschema:"title=task,description=Optional description of the task to pick a model for."`
}

func newSelectChatModelTool(client OllamaClient, defaultModel string) IMCPTool {
	return newTool("select_chat_model",
		"List installed models and shape a selection prompt for the user",
		func(ctx context.Context, args *SelectChatModelArgs) Envelope {
			models, err := client.ListModels(ctx)
			if err != nil {
				return Failure(err)
			}
			if len(models) == 0 {
				return Failuref("No models available").
					With("next_steps", []string{
						"Download a model with the download_model tool",
					})
			}

			names := make([]string, 0, len(models))
			for i := range models {
				names = append(names, models[i].Name)
			}
			selected := defaultModel
			if selected == "" {
				selected = names[0]
			}

			e := Success().
				With("available_models", names).
				With("suggested_model", selected).
				With("instructions", "Call local_llm_chat with the chosen model name")
			if args.Task != "" {
				e.With("task", args.Task)
			}
			return e
		})
}
