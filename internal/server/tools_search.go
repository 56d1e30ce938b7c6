package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/satchel-mcp/satchel/internal/integrations/websearch"
)

func (s *Server) registerSearchTools(m *server.MCPServer) {
	m.AddTool(mcp.NewTool("web_search",
		mcp.WithDescription("Search the web. Calls a paid API with a monthly budget; fails fast once the budget is spent."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search terms.")),
		mcp.WithNumber("count", mcp.Description("Number of results, 1-20. Default: 10.")),
		mcp.WithNumber("offset", mcp.Description("Result page offset, 0-9. Default: 0.")),
	), s.handleWebSearch)

	m.AddTool(mcp.NewTool("local_search",
		mcp.WithDescription("Search for local places (businesses, restaurants, services). Falls back to a web search when no places match."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search terms including a location, e.g. \"pizza near Central Park\".")),
		mcp.WithNumber("count", mcp.Description("Number of results, 1-20. Default: 5.")),
	), s.handleLocalSearch)
}

func (s *Server) handleWebSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.search == nil {
		return notConfigured("web search", "BRAVE_API_KEY"), nil
	}
	args := toolArgs(req)
	query := argString(args, "query")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	count := argInt(args, "count")
	if count == 0 {
		count = 10
	}

	results, err := s.search.WebSearch(ctx, query, count, argInt(args, "offset"))
	if err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(formatWebResults(results)), nil
}

func (s *Server) handleLocalSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.search == nil {
		return notConfigured("local search", "BRAVE_API_KEY"), nil
	}
	args := toolArgs(req)
	query := argString(args, "query")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	count := argInt(args, "count")
	if count == 0 {
		count = 5
	}

	locals, web, err := s.search.LocalSearch(ctx, query, count)
	if err != nil {
		return errResult(err), nil
	}
	if locals == nil {
		return mcp.NewToolResultText("No local results; falling back to web search.\n\n" + formatWebResults(web)), nil
	}
	return mcp.NewToolResultText(formatLocalResults(locals)), nil
}

func formatWebResults(results []websearch.Result) string {
	if len(results) == 0 {
		return "No results"
	}
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("Title: %s\nDescription: %s\nURL: %s", r.Title, r.Description, r.URL))
	}
	return strings.Join(blocks, "\n\n")
}

func formatLocalResults(results []websearch.LocalResult) string {
	if len(results) == 0 {
		return "No local results"
	}
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		var b strings.Builder
		fmt.Fprintf(&b, "Name: %s\n", r.POI.Name)
		addr := joinNonEmpty(", ",
			r.POI.Address.StreetAddress, r.POI.Address.Locality,
			r.POI.Address.Region, r.POI.Address.PostalCode)
		if addr != "" {
			fmt.Fprintf(&b, "Address: %s\n", addr)
		}
		if r.POI.Phone != "" {
			fmt.Fprintf(&b, "Phone: %s\n", r.POI.Phone)
		}
		if r.POI.Rating.Count > 0 {
			fmt.Fprintf(&b, "Rating: %.1f (%d reviews)\n", r.POI.Rating.Value, r.POI.Rating.Count)
		}
		if r.Description != "" {
			fmt.Fprintf(&b, "Description: %s\n", r.Description)
		}
		blocks = append(blocks, strings.TrimRight(b.String(), "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
