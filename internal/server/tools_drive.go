package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/satchel-mcp/satchel/internal/integrations/drive"
)

func (s *Server) registerDriveTools(m *server.MCPServer) {
	m.AddTool(mcp.NewTool("drive_list",
		mcp.WithDescription("List cloud-drive files. Returns a page token when more files exist."),
		mcp.WithString("page_token", mcp.Description("Continuation token from a previous drive_list call.")),
		mcp.WithNumber("page_size", mcp.Description("Files per page, 1-100. Default: 20.")),
	), s.handleDriveList)

	m.AddTool(mcp.NewTool("drive_search",
		mcp.WithDescription("Search cloud-drive files by full-text content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search terms.")),
		mcp.WithString("page_token", mcp.Description("Continuation token from a previous drive_search call.")),
		mcp.WithNumber("page_size", mcp.Description("Files per page, 1-100. Default: 20.")),
	), s.handleDriveSearch)

	m.AddTool(mcp.NewTool("drive_read",
		mcp.WithDescription("Read a cloud-drive file as text. Workspace-native documents are exported to a text format first."),
		mcp.WithString("file_id", mcp.Required(), mcp.Description("File id from drive_list or drive_search.")),
	), s.handleDriveRead)
}

func (s *Server) handleDriveList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.drive == nil {
		return notConfigured("the drive", "DRIVE_ACCESS_TOKEN"), nil
	}
	args := toolArgs(req)

	page, err := s.drive.List(ctx, argString(args, "page_token"), argInt(args, "page_size"))
	if err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(formatFilePage(page)), nil
}

func (s *Server) handleDriveSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.drive == nil {
		return notConfigured("the drive", "DRIVE_ACCESS_TOKEN"), nil
	}
	args := toolArgs(req)
	query := argString(args, "query")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	page, err := s.drive.Search(ctx, query, argString(args, "page_token"), argInt(args, "page_size"))
	if err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(formatFilePage(page)), nil
}

func (s *Server) handleDriveRead(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.drive == nil {
		return notConfigured("the drive", "DRIVE_ACCESS_TOKEN"), nil
	}
	args := toolArgs(req)
	fileID := argString(args, "file_id")
	if fileID == "" {
		return mcp.NewToolResultError("file_id is required"), nil
	}

	content, mimeType, err := s.drive.ReadFile(ctx, fileID)
	if err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Content-Type: %s\n\n%s", mimeType, content)), nil
}

func formatFilePage(page *drive.FilePage) string {
	if len(page.Files) == 0 {
		return "No files"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d file(s)\n", len(page.Files))
	for _, f := range page.Files {
		fmt.Fprintf(&b, "\n%s\n  id: %s\n  type: %s\n", f.Name, f.ID, f.MimeType)
		if f.Size != "" {
			fmt.Fprintf(&b, "  size: %s bytes\n", f.Size)
		}
		if f.ModifiedTime != "" {
			fmt.Fprintf(&b, "  modified: %s\n", f.ModifiedTime)
		}
	}
	if page.NextPageToken != "" {
		fmt.Fprintf(&b, "\nMore files available; pass page_token %q to continue.\n", page.NextPageToken)
	}
	return strings.TrimRight(b.String(), "\n")
}
