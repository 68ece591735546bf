package mcpserver

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"scryfall/internal/client"
	"scryfall/internal/logging"
	"scryfall/internal/service"
)

var logger = logging.Logger("mcp")

// Server is the MCP server for the card database.
// It exposes tools, resources, and prompts so AI agents can look cards up
// and drive export jobs.
type Server struct {
	mcp *server.MCPServer

	client *client.Client
	sync   *service.SyncService
}

// Deps holds the dependencies the CLI passes to the MCP server.
type Deps struct {
	Client *client.Client
	Sync   *service.SyncService
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps, version string) *Server {
	s := &Server{
		client: deps.Client,
		sync:   deps.Sync,
	}

	s.mcp = server.NewMCPServer(
		"scryfall-mcp",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerCardTools()
	s.registerSyncTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// MCP returns the underlying server, for in-process clients.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	logger.Info("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// apiErrorResult reports API error payloads to the agent as a tool error
// instead of failing the call.
func apiErrorResult(err error) (*mcp.CallToolResult, error) {
	if msg, ok := apiError(err); ok {
		return mcp.NewToolResultError(msg), nil
	}
	return nil, err
}

func boolPtr(v bool) *bool { return &v }

// jsonResource wraps v as a single JSON resource body.
func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
