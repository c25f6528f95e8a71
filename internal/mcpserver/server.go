// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the component library tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/lcsc2kicad/internal/componentservice"
)

// Server wraps the MCP server with the component tools.
type Server struct {
	mcp *server.MCPServer
	svc *componentservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *componentservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"lcsc2kicad",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("convert_component",
		mcp.WithDescription("Fetch an LCSC part and add its KiCad symbol, footprint and 3D model to the library. "+
			"Read the lcsc2kicad://library-layout resource for where files land."),
		mcp.WithString("id", mcp.Required(), mcp.Description("LCSC part number, e.g. C25804")),
		mcp.WithBoolean("symbol", mcp.Description("Convert the schematic symbol (default from server config)")),
		mcp.WithBoolean("footprint", mcp.Description("Convert the footprint (default from server config)")),
		mcp.WithBoolean("model_3d", mcp.Description("Download the 3D model (default from server config)")),
		mcp.WithBoolean("overwrite", mcp.Description("Replace an existing symbol with the same name")),
	), s.convertComponent)

	s.mcp.AddTool(mcp.NewTool("remove_component",
		mcp.WithDescription("Remove every symbol, footprint and 3D model of a part from the library."),
		mcp.WithString("id", mcp.Required(), mcp.Description("LCSC part number")),
	), s.removeComponent)

	s.mcp.AddTool(mcp.NewTool("list_components",
		mcp.WithDescription("List converted components, newest first unless sort is given."),
		mcp.WithNumber("limit", mcp.Description("Page size (default 50)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
		mcp.WithString("sort", mcp.Description("Sort field"), mcp.Enum("updated", "id", "name")),
	), s.listComponents)

	s.mcp.AddTool(mcp.NewTool("get_component",
		mcp.WithDescription("Show the catalog entry of one converted component."),
		mcp.WithString("id", mcp.Required(), mcp.Description("LCSC part number")),
	), s.getComponent)

	s.mcp.AddTool(mcp.NewTool("search_components",
		mcp.WithDescription("Search converted components by id, name, title, manufacturer or package."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchComponents)

	s.mcp.AddResource(
		mcp.NewResource(layoutURI, "Library Layout",
			mcp.WithResourceDescription("Where converted files are stored and how they are named."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readLayoutResource,
	)

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

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) convertComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := s.svc.Defaults()
	opts.Symbol = req.GetBool("symbol", opts.Symbol)
	opts.Footprint = req.GetBool("footprint", opts.Footprint)
	opts.Model3D = req.GetBool("model_3d", opts.Model3D)
	opts.Overwrite = req.GetBool("overwrite", opts.Overwrite)

	res, err := s.svc.Convert(ctx, id, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("convert %s: %v", id, err)), nil
	}
	return jsonResult(res), nil
}

func (s *Server) removeComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rep, err := s.svc.Remove(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("remove %s: %v", id, err)), nil
	}
	return jsonResult(rep), nil
}

func (s *Server) listComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, total, err := s.svc.ListComponents(ctx, req.GetInt("limit", 0), req.GetInt("offset", 0), req.GetString("sort", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"components": items, "total": total}), nil
}

func (s *Server) getComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.svc.GetComponent(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return jsonResult(c), nil
}

func (s *Server) searchComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (s *Server) readLayoutResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      layoutURI,
			MIMEType: "text/markdown",
			Text:     LibraryLayout,
		},
	}, nil
}
