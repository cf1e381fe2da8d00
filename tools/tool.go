package tools

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/ollama-mcp/schema"
	"github.com/effective-security/ollama-mcp/utils"
	mcp "github.com/metoro-io/mcp-golang"
)

// tool adapts one typed handler to the ITool and MCP surfaces. The handler
// returns an Envelope for every routine outcome; only input decoding can
// surface an error to the protocol layer.
type tool[I any] struct {
	name        string
	description string
	run         func(ctx context.Context, req *I) Envelope
}

func newTool[I any](name, description string, run func(ctx context.Context, req *I) Envelope) *tool[I] {
	return &tool[I]{
		name:        name,
		description: description,
		run:         run,
	}
}

var _ MCPTool[struct{}] = (*tool[struct{}])(nil)

func (t *tool[I]) Name() string {
	return t.name
}

func (t *tool[I]) Description() string {
	return t.description
}

func (t *tool[I]) Parameters() any {
	var req I
	sc, err := schema.New(reflect.TypeOf(req))
	if err != nil {
		return nil
	}
	return sc.Parameters
}

func (t *tool[I]) Call(ctx context.Context, input string) (string, error) {
	var req I
	if input != "" {
		if err := json.Unmarshal(utils.CleanJSON([]byte(input)), &req); err != nil {
			return "", errors.Wrap(err, "failed to unmarshal input")
		}
	}
	return t.run(ctx, &req).Render(), nil
}

func (t *tool[I]) RunMCP(ctx context.Context, req *I) (*mcp.ToolResponse, error) {
	return mcp.NewToolResponse(mcp.NewTextContent(t.run(ctx, req).Render())), nil
}

func (t *tool[I]) RegisterMCP(registrator McpServerRegistrator) error {
	return registrator.RegisterTool(t.name, t.description, t.RunMCP)
}
