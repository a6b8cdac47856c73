// Package mcp exposes registered skills as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jllopis/skillkit/pkg/executor"
	"github.com/jllopis/skillkit/pkg/governance"
	"github.com/jllopis/skillkit/pkg/skills"
)

// Server wraps the mcp-go server and routes tool calls through an executor.
type Server struct {
	mcpServer *server.MCPServer
	exec      *executor.Executor
	logger    *slog.Logger

	mu      sync.Mutex
	filter  *governance.SkillFilter
	exposed []string
}

// Option configures a Server.
type Option func(*Server)

// WithFilter hides skills the filter denies for ActionMCP.
func WithFilter(filter *governance.SkillFilter) Option {
	return func(s *Server) {
		s.filter = filter
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP server and exposes every registered skill.
func NewServer(name, version string, exec *executor.Executor, opts ...Option) (*Server, error) {
	s := &Server{
		mcpServer: server.NewMCPServer(name, version, server.WithToolCapabilities(true)),
		exec:      exec,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Sync(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// SetFilter replaces the exposure filter and resyncs the tool list.
func (s *Server) SetFilter(ctx context.Context, filter *governance.SkillFilter) error {
	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()
	return s.Sync(ctx)
}

// Sync replaces the tool list with the registry's current skills. Each
// skill is checked as an ActionMCP with its name and category.
func (s *Server) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.exec.Registry().AllMetadata()
	tools := make([]server.ServerTool, 0, len(all))
	exposed := make([]string, 0, len(all))
	for _, meta := range all {
		if s.filter != nil && !s.filter.Check(ctx, governance.Action{
			Type:     governance.ActionMCP,
			Name:     meta.Name,
			Category: meta.Category,
		}).IsAllowed() {
			continue
		}
		tool, err := toolFor(meta)
		if err != nil {
			return err
		}
		tools = append(tools, server.ServerTool{Tool: tool, Handler: s.handler(meta.Name)})
		exposed = append(exposed, meta.Name)
	}
	s.mcpServer.SetTools(tools...)
	s.exposed = exposed

	s.logger.InfoContext(ctx, "mcp.tools.sync", slog.Int("tools", len(exposed)))
	return nil
}

// Tools returns the names of the skills currently exposed.
func (s *Server) Tools() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.exposed...)
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func toolFor(meta skills.Metadata) (mcp.Tool, error) {
	schema, err := json.Marshal(skills.InputSchema(meta))
	if err != nil {
		return mcp.Tool{}, fmt.Errorf("skill %s: encode input schema: %w", meta.Name, err)
	}
	return mcp.Tool{
		Name:           meta.Name,
		Description:    meta.Description,
		RawInputSchema: schema,
	}, nil
}

func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})
		outcome := s.exec.Execute(ctx, name, skills.Args(args))
		return toolResult(outcome), nil
	}
}

// toolResult maps an outcome onto a tool result. Data is sent as JSON text
// and also as structured content; failures become error results.
func toolResult(outcome *skills.Outcome) *mcp.CallToolResult {
	if !outcome.Success {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{mcp.TextContent{Type: "text", Text: outcome.Error}},
		}
	}
	text, err := json.Marshal(outcome.Data)
	if err != nil {
		text = []byte(fmt.Sprint(outcome.Data))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(text)}},
		StructuredContent: map[string]interface{}{
			"data":     outcome.Data,
			"metadata": outcome.Metadata,
		},
	}
}
