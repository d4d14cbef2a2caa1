// Package mcpserver serves the tool catalogue over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/seenimoa/finmcp/internal/report"
	"github.com/seenimoa/finmcp/internal/tools"
	"github.com/seenimoa/finmcp/pkg/models"
)

// Server wraps an MCP server whose tools dispatch through a registry.
type Server struct {
	mcp      *server.MCPServer
	registry *tools.Registry
	log      zerolog.Logger
	markdown bool
}

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the logger. It must not write to stdout.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l.With().Str("component", "mcp").Logger() }
}

// WithMarkdown appends a Markdown rendering to every successful result.
func WithMarkdown(on bool) Option { return func(s *Server) { s.markdown = on } }

// New registers every tool of registry on a fresh MCP server.
func New(name, version string, registry *tools.Registry, opts ...Option) (*Server, error) {
	s := &Server{registry: registry, log: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	s.mcp = server.NewMCPServer(name, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	for _, t := range registry.List() {
		schema, err := json.Marshal(t.Parameters)
		if err != nil {
			return nil, fmt.Errorf("mcpserver: schema for %s: %w", t.Name, err)
		}
		s.mcp.AddTool(mcp.NewToolWithRawSchema(t.Name, t.Description, schema), s.handler(t.Name))
	}
	s.log.Debug().Int("tools", registry.Count()).Msg("MCP tools registered")
	return s, nil
}

// MCPServer exposes the underlying server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

// ServeStdio speaks the protocol on in/out until ctx is cancelled or in is
// closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(s.log, "", 0))
	s.log.Info().Msg("MCP server listening on stdio")
	return stdio.Listen(ctx, in, out)
}

// handler runs one tool. Tool failures become error results carrying the
// structured {kind, param, message} JSON; the protocol error return is
// reserved for transport problems.
func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(request.GetArguments())
		if err != nil {
			return errorResult(models.WrapError(models.KindInvalidArguments, "", err)), nil
		}

		out, err := s.registry.Execute(ctx, name, args)
		if err != nil {
			e := models.AsError(err)
			s.log.Debug().Str("tool", name).Str("kind", string(e.Kind)).Str("param", e.Param).Msg("tool call failed")
			return errorResult(e), nil
		}

		body, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("mcpserver: encode %s result: %w", name, err)
		}
		result := textResult(string(body))
		if s.markdown {
			if md, err := report.Markdown(out); err == nil {
				result.Content = append(result.Content, mcp.NewTextContent(md))
			}
		}
		return result, nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(e *models.Error) *mcp.CallToolResult {
	body, err := json.Marshal(e)
	if err != nil {
		body = []byte(e.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(string(body)),
		},
		IsError: true,
	}
}
