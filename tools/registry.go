package tools

import (
	"context"
	"fmt"

	"github.com/effective-security/ollama-mcp/config"
	"github.com/effective-security/ollama-mcp/store"
	"github.com/effective-security/ollama-mcp/sysinfo"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/ollama-mcp", "tools")

// Registry holds the full tool surface in registration order.
type Registry struct {
	order  []IMCPTool
	byName map[string]IMCPTool
}

// RegistryOption overrides a Registry default.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	probe probeFunc
}

// WithProbe replaces the system prober.
func WithProbe(p probeFunc) RegistryOption {
	return func(o *registryOptions) { o.probe = p }
}

// NewRegistry builds the 11-tool surface over the given client, download
// store, and settings.
func NewRegistry(client OllamaClient, jobs store.ProgressStore, cfg *config.Settings, opts ...RegistryOption) *Registry {
	o := &registryOptions{
		probe: sysinfo.Probe,
	}
	for _, opt := range opts {
		opt(o)
	}

	list := []IMCPTool{
		newListModelsTool(client),
		newChatTool(client, cfg.DefaultChatModel),
		newHealthCheckTool(client),
		newSystemCheckTool(o.probe, cfg.EnableGPUDetection),
		newSuggestModelsTool(o.probe, cfg.EnableGPUDetection),
		newDownloadModelTool(client, jobs),
		newDownloadProgressTool(jobs),
		newRemoveModelTool(client),
		newSearchModelsTool(),
		newStartServerTool(client, cfg.EnableAutoServerStart),
		newSelectChatModelTool(client, cfg.DefaultChatModel),
	}

	r := &Registry{
		order:  list,
		byName: make(map[string]IMCPTool, len(list)),
	}
	for _, t := range list {
		r.byName[t.Name()] = t
	}
	return r
}

// All returns the tools in registration order.
func (r *Registry) All() []IMCPTool {
	return r.order
}

// Get returns the named tool, or nil.
func (r *Registry) Get(name string) IMCPTool {
	return r.byName[name]
}

// Call dispatches one raw invocation. Unknown names and handler failures
// are rendered into the result so a session never dies on a bad call.
func (r *Registry) Call(ctx context.Context, name, input string) string {
	t, ok := r.byName[name]
	if !ok {
		return fmt.Sprintf("Unknown tool: %s", name)
	}
	out, err := t.Call(ctx, input)
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR, "tool", name, "err", err.Error())
		return Failure(err).Render()
	}
	return out
}

// RegisterAll registers every tool with the MCP server.
func (r *Registry) RegisterAll(registrator McpServerRegistrator) error {
	for _, t := range r.order {
		if err := t.RegisterMCP(registrator); err != nil {
			return err
		}
	}
	return nil
}

// Describe collects the tool names and descriptions.
func (r *Registry) Describe() *ToolsDescription {
	list := make([]ITool, 0, len(r.order))
	for _, t := range r.order {
		list = append(list, t)
	}
	return Describe(list...)
}

// Descriptions renders the tool names and descriptions.
func (r *Registry) Descriptions() string {
	list := make([]ITool, 0, len(r.order))
	for _, t := range r.order {
		list = append(list, t)
	}
	return GetDescriptions(list...)
}
