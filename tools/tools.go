// Package tools implements the MCP tool surface for managing a local Ollama
// daemon: model listing, chat, health and resource diagnostics, downloads,
// and daemon lifecycle helpers.
package tools

import (
	"context"

	"github.com/effective-security/ollama-mcp/ollamamodel"
	"github.com/effective-security/ollama-mcp/utils"
	mcp "github.com/metoro-io/mcp-golang"
)

// McpServerRegistrator registers tool handlers with an MCP server.
type McpServerRegistrator interface {
	RegisterTool(name string, description string, handler any) error
}

// ITool is one callable tool.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, to be used in the prompt.
	Description() string
	// Parameters returns the parameters definition of the tool.
	Parameters() any

	// Call executes the tool with raw JSON input and returns the rendered
	// result. Routine failures are rendered into the result, not returned.
	Call(context.Context, string) (string, error)
}

// IMCPTool extends ITool with MCP server registration.
type IMCPTool interface {
	ITool
	RegisterMCP(registrator McpServerRegistrator) error
}

// MCPTool is a typed tool that can serve MCP calls directly.
type MCPTool[I any] interface {
	IMCPTool
	RunMCP(context.Context, *I) (*mcp.ToolResponse, error)
}

// OllamaClient is the daemon surface the tools operate on.
type OllamaClient interface {
	Host() string
	HealthCheck(ctx context.Context) *ollamamodel.HealthStatus
	ListModels(ctx context.Context) ([]ollamamodel.ModelInfo, error)
	GetModelInfo(ctx context.Context, name string) (*ollamamodel.ModelInfo, error)
	Chat(ctx context.Context, req *ollamamodel.ChatRequest) (*ollamamodel.ChatResponse, error)
	PullModel(ctx context.Context, model string, showProgress bool) (*ollamamodel.DownloadProgress, error)
	DeleteModel(ctx context.Context, model string) (bool, error)
	ShowModelInfo(ctx context.Context, model string) (map[string]any, error)
}

// ToolDescription is the name and description of one tool.
type ToolDescription struct {
	Name        string `json:"Name" yaml:"Name"`
	Description string `json:"Description" yaml:"Description"`
}

// ToolsDescription is a renderable listing of the tool surface.
type ToolsDescription struct {
	Tools []ToolDescription `json:"Tools" yaml:"Tools"`
}

// Describe collects the names and descriptions of the given tools.
func Describe(list ...ITool) *ToolsDescription {
	d := &ToolsDescription{}
	for _, tool := range list {
		d.Tools = append(d.Tools, ToolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
		})
	}
	return d
}

// GetDescriptions renders the names and descriptions of the given tools as a
// fenced JSON block.
func GetDescriptions(list ...ITool) string {
	return utils.BackticksJSON(utils.ToJSONIndent(Describe(list...)))
}
