package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (s *Server) registerWikiTools(m *server.MCPServer) {
	m.AddTool(mcp.NewTool("wiki_search",
		mcp.WithDescription("Search wiki pages and databases by title. Returns ids for use with the other wiki tools, plus a cursor when more results exist."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search terms.")),
		mcp.WithString("cursor", mcp.Description("Continuation cursor from a previous wiki_search call.")),
	), s.handleWikiSearch)

	m.AddTool(mcp.NewTool("wiki_get_page",
		mcp.WithDescription("Read a wiki page: metadata plus its full content flattened to text."),
		mcp.WithString("page_id", mcp.Required(), mcp.Description("Page id from wiki_search.")),
	), s.handleWikiGetPage)

	m.AddTool(mcp.NewTool("wiki_query_database",
		mcp.WithDescription("Query a wiki database with an optional filter and sorts. Rows are flattened to title and url."),
		mcp.WithString("database_id", mcp.Required(), mcp.Description("Database id.")),
		mcp.WithObject("filter", mcp.Description("Filter object in the wiki API's native format.")),
		mcp.WithArray("sorts", mcp.Description("Sort objects in the wiki API's native format.")),
		mcp.WithNumber("limit", mcp.Description("Maximum rows, 1-100. Default: 100.")),
	), s.handleWikiQueryDatabase)

	m.AddTool(mcp.NewTool("wiki_create_page",
		mcp.WithDescription("Create a wiki page under a parent page."),
		mcp.WithString("parent_id", mcp.Required(), mcp.Description("Parent page id.")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the new page.")),
		mcp.WithString("content", mcp.Description("Initial content, one paragraph per line.")),
	), s.handleWikiCreatePage)

	m.AddTool(mcp.NewTool("wiki_append",
		mcp.WithDescription("Append paragraphs to an existing wiki page."),
		mcp.WithString("page_id", mcp.Required(), mcp.Description("Page id.")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Content to append, one paragraph per line.")),
	), s.handleWikiAppend)
}

func (s *Server) handleWikiSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.wiki == nil {
		return notConfigured("the wiki", "NOTION_API_KEY"), nil
	}
	args := toolArgs(req)
	query := argString(args, "query")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	page, err := s.wiki.Search(ctx, query, argString(args, "cursor"), 25)
	if err != nil {
		return errResult(err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d result(s) for %q\n", len(page.Results), query)
	for _, p := range page.Results {
		fmt.Fprintf(&b, "\n[%s] %s\n  id: %s\n  edited: %s\n", p.Object, p.TitleText(), p.ID, p.LastEditedTime)
		if p.URL != "" {
			fmt.Fprintf(&b, "  url: %s\n", p.URL)
		}
	}
	if page.HasMore {
		fmt.Fprintf(&b, "\nMore results available; pass cursor %q to continue.\n", page.NextCursor)
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (s *Server) handleWikiGetPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.wiki == nil {
		return notConfigured("the wiki", "NOTION_API_KEY"), nil
	}
	args := toolArgs(req)
	pageID := argString(args, "page_id")
	if pageID == "" {
		return mcp.NewToolResultError("page_id is required"), nil
	}

	page, err := s.wiki.GetPage(ctx, pageID)
	if err != nil {
		return errResult(err), nil
	}
	content, err := s.wiki.GetPageContent(ctx, pageID)
	if err != nil {
		return errResult(err), nil
	}

	header := fmt.Sprintf("%s\nid: %s\nedited: %s\n", page.TitleText(), page.ID, page.LastEditedTime)
	if page.URL != "" {
		header += "url: " + page.URL + "\n"
	}
	return mcp.NewToolResultText(header + "\n" + content), nil
}

func (s *Server) handleWikiQueryDatabase(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.wiki == nil {
		return notConfigured("the wiki", "NOTION_API_KEY"), nil
	}
	args := toolArgs(req)
	databaseID := argString(args, "database_id")
	if databaseID == "" {
		return mcp.NewToolResultError("database_id is required"), nil
	}

	var filter any
	if f, ok := args["filter"].(map[string]any); ok {
		filter = f
	}
	var sorts []map[string]any
	if raw, ok := args["sorts"].([]any); ok {
		for _, item := range raw {
			if m, ok := item.(map[string]any); ok {
				sorts = append(sorts, m)
			}
		}
	}

	rows, err := s.wiki.QueryDatabase(ctx, databaseID, filter, sorts, argInt(args, "limit"))
	if err != nil {
		return errResult(err), nil
	}

	flattened := make([]map[string]string, 0, len(rows))
	for _, r := range rows {
		flattened = append(flattened, map[string]string{
			"id":     r.ID,
			"title":  r.TitleText(),
			"url":    r.URL,
			"edited": r.LastEditedTime,
		})
	}
	out, err := json.MarshalIndent(flattened, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal rows: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleWikiCreatePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.wiki == nil {
		return notConfigured("the wiki", "NOTION_API_KEY"), nil
	}
	args := toolArgs(req)
	parentID := argString(args, "parent_id")
	title := argString(args, "title")
	if parentID == "" || title == "" {
		return mcp.NewToolResultError("parent_id and title are required"), nil
	}

	page, err := s.wiki.CreatePage(ctx, parentID, title, argString(args, "content"))
	if err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Created page %q\nid: %s\nurl: %s", title, page.ID, page.URL)), nil
}

func (s *Server) handleWikiAppend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.wiki == nil {
		return notConfigured("the wiki", "NOTION_API_KEY"), nil
	}
	args := toolArgs(req)
	pageID := argString(args, "page_id")
	content := argString(args, "content")
	if pageID == "" || content == "" {
		return mcp.NewToolResultError("page_id and content are required"), nil
	}

	if err := s.wiki.AppendParagraphs(ctx, pageID, content); err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText("Appended to page " + pageID), nil
}
