// Package server wires the tool registry to an MCP server over the stdio
// transport. The server starts even when the Ollama daemon is offline; the
// tools report diagnostics instead.
package server

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/ollama-mcp/config"
	"github.com/effective-security/ollama-mcp/ollamaclient"
	"github.com/effective-security/ollama-mcp/store"
	"github.com/effective-security/ollama-mcp/tools"
	"github.com/effective-security/ollama-mcp/utils"
	"github.com/effective-security/xlog"
	mcpgolang "github.com/metoro-io/mcp-golang"
	"github.com/metoro-io/mcp-golang/transport"
	"github.com/metoro-io/mcp-golang/transport/stdio"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/ollama-mcp", "server")

// Version is the advertised server version.
const Version = "0.9.0"

// Server hosts the tool surface for one MCP session.
type Server struct {
	cfg    *config.Settings
	client *ollamaclient.Client
	jobs   store.ProgressStore
	reg    *tools.Registry
	trans  transport.Transport

	startupLogged bool
}

// Option overrides a Server default.
type Option func(*Server)

// WithTransport replaces the stdio transport.
func WithTransport(t transport.Transport) Option {
	return func(s *Server) { s.trans = t }
}

// New builds a server from settings. It never fails: the client is always
// constructible, even with the daemon offline.
func New(cfg *config.Settings, opts ...Option) *Server {
	client := ollamaclient.NewFromConfig(cfg)
	jobs := store.NewMemoryStore()
	s := &Server{
		cfg:    cfg,
		client: client,
		jobs:   jobs,
		reg:    tools.NewRegistry(client, jobs, cfg),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.trans == nil {
		s.trans = stdio.NewStdioServerTransport()
	}
	return s
}

// Registry returns the tool surface.
func (s *Server) Registry() *tools.Registry {
	return s.reg
}

// Client returns the daemon client.
func (s *Server) Client() *ollamaclient.Client {
	return s.client
}

// Run registers the tools, serves the MCP session, and blocks until the
// context ends. A failing tool call never terminates the session; every
// handler renders its failures into the tool result.
func (s *Server) Run(ctx context.Context) error {
	if !s.startupLogged {
		logger.KV(xlog.INFO, "status", "starting", "server", s.cfg.ServerName, "host", s.cfg.URL())
		s.startupLogged = true
	}

	// Probe the daemon but start regardless of the outcome.
	if health := s.client.HealthCheck(ctx); health.Healthy {
		logger.KV(xlog.INFO, "ollama", "connected", "models", health.ModelsCount)
		logger.KV(xlog.DEBUG, "health", utils.ToJSON(health))
	} else {
		logger.KV(xlog.WARNING, "ollama", "not_accessible", "err", health.Error)
		logger.KV(xlog.WARNING, "status", "starting_anyway", "note", "tools provide diagnostics")
	}

	srv := mcpgolang.NewServer(s.trans,
		mcpgolang.WithName(s.cfg.ServerName),
		mcpgolang.WithVersion(Version),
	)
	if err := s.reg.RegisterAll(srv); err != nil {
		return errors.WithMessage(err, "failed to register tools")
	}
	if err := srv.Serve(); err != nil {
		return errors.WithMessage(err, "failed to serve")
	}
	logger.KV(xlog.INFO, "status", "ready", "tools", len(s.reg.All()))

	<-ctx.Done()
	s.client.Close()
	return nil
}
