// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes itembox tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/itembox/internal/itemservice"
	"github.com/starford/itembox/internal/sink"
)

// Server wraps the MCP server with itembox tools.
type Server struct {
	mcp *server.MCPServer
	svc *itemservice.Service
}

// New creates a new MCP server with all item tools registered.
func New(svc *itemservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"itembox",
		version,
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("add_item",
		mcp.WithDescription("Add a to-do item. Fails if an item with the same name already exists."),
		mcp.WithString("item", mcp.Required(), mcp.Description("Item name; a plain file name without path separators")),
	), s.addItem)

	s.mcp.AddTool(mcp.NewTool("remove_item",
		mcp.WithDescription("Remove a to-do item. Fails if the item does not exist."),
		mcp.WithString("item", mcp.Required(), mcp.Description("Item name to remove")),
	), s.removeItem)

	s.mcp.AddTool(mcp.NewTool("list_items",
		mcp.WithDescription("List all to-do items, one per line."),
		mcp.WithBoolean("sorted", mcp.Description("Sort byte-wise by name; otherwise order is unspecified")),
	), s.listItems)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) addItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	item, err := req.RequireString("item")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Add(ctx, item); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added: %s", item)), nil
}

func (s *Server) removeItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	item, err := req.RequireString("item")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Remove(ctx, item); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed: %s", item)), nil
}

func (s *Server) listItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := sink.NewCollector()
	if err := s.svc.List(ctx, req.GetBool("sorted", false), out); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items := out.Items()
	if len(items) == 0 {
		return mcp.NewToolResultText("no items"), nil
	}
	return mcp.NewToolResultText(strings.Join(items, "\n")), nil
}
