package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alphaboost/shoprec/internal/engine"
	"github.com/alphaboost/shoprec/internal/prompt"
)

func (s *Server) handleRecommend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: message"), nil
	}
	limit := req.GetInt("limit", engine.DefaultLimit)

	results, err := s.pipeline.Recommend(ctx, message, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recommendation failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No matching products."), nil
	}

	class := engine.TriggerClass(message)
	if _, logErr := s.store.LogRecommendation(ctx, message, class, results); logErr != nil {
		// Logging is best-effort; the recommendation still stands.
		_ = logErr
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Trigger class: %s\n\n", class)
	for i, r := range results {
		p := r.Product
		fmt.Fprintf(&sb, "%d. %s (id: %s, score %d)\n   %s\n",
			i+1, p.Title, p.ID, r.Score, prompt.Link(s.baseURL, p))
	}
	sb.WriteString("\nReport outcomes with record_engagement using the trigger class above.")
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleRecordEngagement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	class, err := req.RequireString("class")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: class"), nil
	}
	productID, err := req.RequireString("product_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: product_id"), nil
	}
	kindStr, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: kind"), nil
	}

	kind := engine.EngagementKind(kindStr)
	if !engine.ValidEngagementKind(kind) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid kind %q (valid: click, purchase)", kindStr)), nil
	}

	if bumpErr := s.store.Bump(ctx, class, productID, kind); bumpErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to record engagement: %v", bumpErr)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Recorded %s for %s (class %s).", kind, productID, class)), nil
}

func (s *Server) handleShopStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	products, err := s.store.CountProducts(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read catalog: %v", err)), nil
	}
	clicks, purchases, err := s.store.EngagementTotals(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read engagement: %v", err)), nil
	}
	served, _ := s.store.CountRecommendations(ctx)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Products: %d\n", products)
	fmt.Fprintf(&sb, "Engagement: %d clicks, %d purchases\n", clicks, purchases)
	fmt.Fprintf(&sb, "Recommendations served: %d\n", served)
	return mcp.NewToolResultText(sb.String()), nil
}
