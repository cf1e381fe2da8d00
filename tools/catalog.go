package tools

import "strings"

// catalogEntry describes one model from the curated Ollama Hub registry.
type catalogEntry struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Size        string   `json:"size"`
	MinRAMGB    float64  `json:"min_ram_gb"`
	Speed       string   `json:"estimated_speed"`
	Quality     string   `json:"quality"`
	Categories  []string `json:"categories"`
	UseCases    []string `json:"use_cases"`
}

// modelCatalog is the curated registry served by search_available_models and
// scored by suggest_models. Entries mirror the Ollama Hub's popular models.
var modelCatalog = []catalogEntry{
	{
		Name:        "llama3.2:1b",
		Description: "Meta's smallest Llama, tuned for lightweight assistants",
		Size:        "1B",
		MinRAMGB:    2,
		Speed:       "very fast",
		Quality:     "basic",
		Categories:  []string{"general", "lightweight"},
		UseCases:    []string{"quick answers", "low-resource hosts", "drafting"},
	},
	{
		Name:        "llama3.2",
		Description: "Meta Llama 3.2 3B, balanced general assistant",
		Size:        "3B",
		MinRAMGB:    4,
		Speed:       "fast",
		Quality:     "good",
		Categories:  []string{"general"},
		UseCases:    []string{"conversation", "summarization", "drafting"},
	},
	{
		Name:        "llama3.1:8b",
		Description: "Meta Llama 3.1 8B, strong general-purpose model",
		Size:        "8B",
		MinRAMGB:    8,
		Speed:       "moderate",
		Quality:     "high",
		Categories:  []string{"general", "reasoning"},
		UseCases:    []string{"analysis", "long-form writing", "conversation"},
	},
	{
		Name:        "mistral:7b",
		Description: "Mistral 7B, efficient general model with solid reasoning",
		Size:        "7B",
		MinRAMGB:    8,
		Speed:       "moderate",
		Quality:     "high",
		Categories:  []string{"general", "reasoning"},
		UseCases:    []string{"reasoning", "conversation", "summarization"},
	},
	{
		Name:        "phi3:mini",
		Description: "Microsoft Phi-3 Mini, compact model with strong benchmarks",
		Size:        "3.8B",
		MinRAMGB:    4,
		Speed:       "fast",
		Quality:     "good",
		Categories:  []string{"general", "lightweight"},
		UseCases:    []string{"quick answers", "education", "drafting"},
	},
	{
		Name:        "qwen2.5-coder:7b",
		Description: "Qwen 2.5 Coder, specialized for code generation and review",
		Size:        "7B",
		MinRAMGB:    8,
		Speed:       "moderate",
		Quality:     "high",
		Categories:  []string{"code"},
		UseCases:    []string{"code generation", "code review", "debugging"},
	},
	{
		Name:        "codellama:7b",
		Description: "Meta Code Llama, code completion and explanation",
		Size:        "7B",
		MinRAMGB:    8,
		Speed:       "moderate",
		Quality:     "good",
		Categories:  []string{"code"},
		UseCases:    []string{"code completion", "explanation"},
	},
	{
		Name:        "deepseek-r1:7b",
		Description: "DeepSeek R1 distilled, chain-of-thought reasoning",
		Size:        "7B",
		MinRAMGB:    8,
		Speed:       "slow",
		Quality:     "high",
		Categories:  []string{"reasoning"},
		UseCases:    []string{"math", "planning", "complex analysis"},
	},
	{
		Name:        "llava:7b",
		Description: "LLaVA multimodal model for image understanding",
		Size:        "7B",
		MinRAMGB:    8,
		Speed:       "moderate",
		Quality:     "good",
		Categories:  []string{"vision"},
		UseCases:    []string{"image description", "visual QA"},
	},
	{
		Name:        "nomic-embed-text",
		Description: "Nomic text embedding model for retrieval pipelines",
		Size:        "137M",
		MinRAMGB:    1,
		Speed:       "very fast",
		Quality:     "good",
		Categories:  []string{"embedding"},
		UseCases:    []string{"semantic search", "RAG indexing"},
	},
}

// searchCatalog filters the registry by free-text query and category. Empty
// arguments match everything.
func searchCatalog(query, category string) []catalogEntry {
	query = strings.ToLower(strings.TrimSpace(query))
	category = strings.ToLower(strings.TrimSpace(category))

	var out []catalogEntry
	for _, entry := range modelCatalog {
		if category != "" && !containsFold(entry.Categories, category) {
			continue
		}
		if query != "" && !entryMatches(&entry, query) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func entryMatches(e *catalogEntry, query string) bool {
	if strings.Contains(strings.ToLower(e.Name), query) ||
		strings.Contains(strings.ToLower(e.Description), query) {
		return true
	}
	return containsFold(e.UseCases, query) || containsFold(e.Categories, query)
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.Contains(strings.ToLower(item), v) {
			return true
		}
	}
	return false
}
