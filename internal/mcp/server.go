// Package mcp exposes the recommendation engine as MCP tools over stdio,
// so chat agents can recommend products and report engagement.
package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/alphaboost/shoprec/internal/engine"
)

// Server wires the engine into an MCP stdio server.
type Server struct {
	store    *engine.Store
	pipeline *engine.Pipeline
	baseURL  string
	mcp      *server.MCPServer
}

// NewServer creates the MCP server and registers the shoprec tools.
func NewServer(store *engine.Store, pipeline *engine.Pipeline, baseURL, version string) *Server {
	s := &Server{
		store:    store,
		pipeline: pipeline,
		baseURL:  baseURL,
		mcp: server.NewMCPServer(
			"shoprec",
			version,
			server.WithToolCapabilities(false),
		),
	}

	s.mcp.AddTool(mcp.NewTool("recommend_products",
		mcp.WithDescription("Recommend catalog products for a free-text customer message. Returns an ordered list with scores and links."),
		mcp.WithString("message", mcp.Required(), mcp.Description("The customer's message or question")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of products to return (default 3)")),
	), s.handleRecommend)

	s.mcp.AddTool(mcp.NewTool("record_engagement",
		mcp.WithDescription("Record a click or purchase for a recommended product so future rankings improve."),
		mcp.WithString("class", mcp.Required(), mcp.Description("Trigger class the recommendation was served under")),
		mcp.WithString("product_id", mcp.Required(), mcp.Description("Stable product identifier")),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Either \"click\" or \"purchase\"")),
	), s.handleRecordEngagement)

	s.mcp.AddTool(mcp.NewTool("shop_status",
		mcp.WithDescription("Summarise the catalog: product count and engagement totals."),
	), s.handleShopStatus)

	return s
}

// ServeStdio blocks serving MCP requests on stdin/stdout.
func (s *Server) ServeStdio() error {
	if err := server.ServeStdio(s.mcp); err != nil {
		return fmt.Errorf("mcp: serve stdio: %w", err)
	}
	return nil
}
