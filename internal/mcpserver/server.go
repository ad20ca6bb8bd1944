// Package mcpserver exposes the program library and catalog as MCP
// (Model Context Protocol) tools over stdio.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/odl/internal/catalog"
	"github.com/starford/odl/pkg/odl"
)

// Server wraps the MCP server with the program tools.
type Server struct {
	mcp *server.MCPServer
	svc *catalog.Service
}

// New creates an MCP server with every tool registered.
func New(svc *catalog.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"ODL",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	docArgs := []mcp.ToolOption{
		mcp.WithString("path", mcp.Description("Stored program path (e.g. 2026A/k123.yaml)")),
		mcp.WithString("yaml", mcp.Description("Inline program document; used when path is empty")),
	}
	withDoc := func(opts ...mcp.ToolOption) []mcp.ToolOption {
		return append(opts, docArgs...)
	}

	s.mcp.AddTool(mcp.NewTool("validate_document", withDoc(
		mcp.WithDescription("Parse a program document and validate every definition. "+
			"Reports all failures at once."),
	)...), s.validateDocument)

	s.mcp.AddTool(mcp.NewTool("estimate_time", withDoc(
		mcp.WithDescription("Shutter-open and wall-clock seconds of a program's observing blocks."),
	)...), s.estimateTime)

	s.mcp.AddTool(mcp.NewTool("list_cals", withDoc(
		mcp.WithDescription("Calibration blocks needed by a program's observing blocks, "+
			"returned as a program document."),
	)...), s.listCals)

	s.mcp.AddTool(mcp.NewTool("render_starlist", withDoc(
		mcp.WithDescription("Render a program's targets as a Keck star list."),
	)...), s.renderStarlist)

	s.mcp.AddTool(mcp.NewTool("search_definitions",
		mcp.WithDescription("Full-text search over stored definitions (names, summaries and bodies)."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDefinitions)

	s.mcp.AddTool(mcp.NewTool("get_definition",
		mcp.WithDescription("Fetch stored definitions of one collection as a program document."),
		mcp.WithString("col", mcp.Required(), mcp.Description("Collection"),
			mcp.Enum(odl.Keys...)),
		mcp.WithString("name", mcp.Description("Definition name or block id (empty for all)")),
	), s.getDefinition)

	s.mcp.AddTool(mcp.NewTool("list_programs",
		mcp.WithDescription("List stored programs with their checksums and definition counts."),
	), s.listPrograms)

	s.mcp.AddTool(mcp.NewTool("import_document",
		mcp.WithDescription("Store a program document under imports/ and index it. "+
			"Pass yaml or an http(s) url. Read the document format first via "+
			"get_document_format or the "+DocumentFormatURI+" resource."),
		mcp.WithString("name", mcp.Required(), mcp.Description("File name stem for the stored program")),
		mcp.WithString("yaml", mcp.Description("Inline program document")),
		mcp.WithString("url", mcp.Description("http(s) URL of a program document")),
	), s.importDocument)

	s.mcp.AddTool(mcp.NewTool("get_document_format",
		mcp.WithDescription("Returns the program document format. "+
			"Call this before writing or importing programs."),
	), s.getDocumentFormat)

	s.mcp.AddResource(
		mcp.NewResource(DocumentFormatURI, "Program Document Format",
			mcp.WithResourceDescription("YAML format of observing program documents."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentFormatResource,
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

// optString returns an optional string argument, empty when absent.
func optString(req mcp.CallToolRequest, key string) string {
	if v, err := req.RequireString(key); err == nil {
		return v
	}
	return ""
}

// document loads the program named by the path argument, or parses the
// inline yaml argument.
func (s *Server) document(ctx context.Context, req mcp.CallToolRequest) (*odl.Document, error) {
	if p := optString(req, "path"); p != "" {
		return s.svc.Document(ctx, p)
	}
	if src := optString(req, "yaml"); src != "" {
		return odl.Parse([]byte(src), s.svc.Registry())
	}
	return nil, errors.New("either path or yaml is required")
}

func (s *Server) validateDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.document(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := doc.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("valid: %d definitions", doc.Len())), nil
}

func (s *Server) estimateTime(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.document(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	est := doc.ObservingBlocks.EstimateTime()
	out, _ := json.MarshalIndent(catalog.EstimateResult{
		Path:        optString(req, "path"),
		Blocks:      len(doc.ObservingBlocks),
		ShutterOpen: est.ShutterOpen,
		WallClock:   est.WallClock,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listCals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.document(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cals, err := doc.ObservingBlocks.Cals()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(cals) == 0 {
		return mcp.NewToolResultText("no calibrations needed"), nil
	}
	data, err := odl.Marshal(&odl.Document{ObservingBlocks: cals})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) renderStarlist(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.document(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var buf bytes.Buffer
	if err := odl.WriteStarlist(&buf, doc.Targets); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if buf.Len() == 0 {
		return mcp.NewToolResultText("no targets"), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) searchDefinitions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getDefinition(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	col, err := req.RequireString("col")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name := optString(req, "name")
	doc, err := s.svc.Definitions(ctx, col, name)
	if err != nil {
		if name != "" {
			return mcp.NewToolResultError(fmt.Sprintf("%s %q: %v", col, name, err)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", col, err)), nil
	}
	data, err := odl.Marshal(doc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listPrograms(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := s.svc.Programs(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultText("no programs"), nil
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s\t%d definitions", r.Path, r.Definitions))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getDocumentFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormat), nil
}

func (s *Server) readDocumentFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      DocumentFormatURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormat,
		},
	}, nil
}
