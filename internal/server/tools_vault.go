package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/satchel-mcp/satchel/internal/vault"
)

func (s *Server) registerVaultTools(m *server.MCPServer) {
	m.AddTool(mcp.NewTool("vault_list",
		mcp.WithDescription("List the files and directories directly under a vault path. Paths are relative to the vault root; use empty or \"/\" for the root itself."),
		mcp.WithString("path",
			mcp.Description("Directory path relative to the vault root. Default: the root."),
		),
	), s.handleVaultList)

	m.AddTool(mcp.NewTool("vault_read",
		mcp.WithDescription("Read the full text content of a file in the vault."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path relative to the vault root."),
		),
	), s.handleVaultRead)

	m.AddTool(mcp.NewTool("vault_create",
		mcp.WithDescription("Create a file in the vault, creating parent directories as needed. If the file already exists and overwrite is false, nothing is written and the conflict is reported."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path relative to the vault root.")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Text content to write.")),
		mcp.WithBoolean("overwrite", mcp.Description("Replace an existing file. Default: false.")),
	), s.handleVaultCreate)

	m.AddTool(mcp.NewTool("vault_update",
		mcp.WithDescription("Update an existing vault file, either replacing its content or appending to it."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path relative to the vault root.")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Text content to write.")),
		mcp.WithBoolean("append", mcp.Description("Append to the existing content (joined with a newline) instead of replacing it. Default: false.")),
	), s.handleVaultUpdate)

	m.AddTool(mcp.NewTool("vault_search",
		mcp.WithDescription("Case-insensitive text search across the text files directly under a vault directory (md, txt, csv, json, yaml). Reports up to 5 matching lines per file."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Substring to search for.")),
		mcp.WithString("path", mcp.Description("Directory to search in, relative to the vault root. Default: the root.")),
	), s.handleVaultSearch)
}

func (s *Server) handleVaultList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.vault == nil {
		return notConfigured("the vault", "SATCHEL_VAULT_ROOT"), nil
	}
	args := toolArgs(req)
	path := argString(args, "path")

	entries, err := s.vault.List(path)
	if err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(formatEntries(path, entries)), nil
}

func (s *Server) handleVaultRead(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.vault == nil {
		return notConfigured("the vault", "SATCHEL_VAULT_ROOT"), nil
	}
	args := toolArgs(req)
	path := argString(args, "path")
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}

	content, entry, err := s.vault.Read(path)
	if err != nil {
		return errResult(err), nil
	}
	header := fmt.Sprintf("%s (%d bytes, modified %s)\n\n", entry.Path, entry.Size, entry.ModTime.Format(time.RFC3339))
	return mcp.NewToolResultText(header + content), nil
}

func (s *Server) handleVaultCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.vault == nil {
		return notConfigured("the vault", "SATCHEL_VAULT_ROOT"), nil
	}
	args := toolArgs(req)
	path := argString(args, "path")
	content, hasContent := args["content"].(string)
	if path == "" || !hasContent {
		return mcp.NewToolResultError("path and content are required"), nil
	}

	entry, conflicted, err := s.vault.Create(path, content, argBool(args, "overwrite"))
	if err != nil {
		return errResult(err), nil
	}
	if conflicted {
		return mcp.NewToolResultText(fmt.Sprintf("File already exists: %s (not overwritten; pass overwrite=true to replace it)", entry.Path)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Created %s (%d bytes)", entry.Path, entry.Size)), nil
}

func (s *Server) handleVaultUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.vault == nil {
		return notConfigured("the vault", "SATCHEL_VAULT_ROOT"), nil
	}
	args := toolArgs(req)
	path := argString(args, "path")
	content, hasContent := args["content"].(string)
	if path == "" || !hasContent {
		return mcp.NewToolResultError("path and content are required"), nil
	}

	entry, err := s.vault.Update(path, content, argBool(args, "append"))
	if err != nil {
		return errResult(err), nil
	}
	verb := "Updated"
	if argBool(args, "append") {
		verb = "Appended to"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s %s (now %d bytes)", verb, entry.Path, entry.Size)), nil
}

func (s *Server) handleVaultSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.vault == nil {
		return notConfigured("the vault", "SATCHEL_VAULT_ROOT"), nil
	}
	args := toolArgs(req)
	query := argString(args, "query")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	matches, err := s.vault.Search(argString(args, "path"), query)
	if err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(formatSearchReport(query, matches)), nil
}

func formatEntries(path string, entries []vault.FileEntry) string {
	if path == "" {
		path = "/"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d entries\n", path, len(entries))
	for _, e := range entries {
		if e.IsDir {
			fmt.Fprintf(&b, "  %s/\n", e.Name)
		} else {
			fmt.Fprintf(&b, "  %s  %d bytes  %s\n", e.Name, e.Size, e.ModTime.Format(time.RFC3339))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSearchReport(query string, matches []vault.FileMatch) string {
	if len(matches) == 0 {
		return fmt.Sprintf("No matches for %q", query)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d file(s) match %q\n", len(matches), query)
	for _, m := range matches {
		fmt.Fprintf(&b, "\n%s (%d hit(s))\n", m.Path, m.TotalHits)
		for _, lm := range m.Matches {
			fmt.Fprintf(&b, "  %d: %s\n", lm.Line, strings.TrimSpace(lm.Text))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
