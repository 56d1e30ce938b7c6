package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/satchel-mcp/satchel/internal/vault"
)

const vaultScheme = "vault://"

// Vault contents are also exposed as URI-addressable resources. Unlike tool
// calls, resource reads have no soft error shape, so failures here propagate
// as transport-level errors.
func (s *Server) registerVaultResources(m *server.MCPServer) {
	m.AddResource(mcp.NewResource(
		vaultScheme,
		"Vault root",
		mcp.WithResourceDescription("Listing of the vault's top-level entries."),
		mcp.WithMIMEType("text/plain"),
	), s.readVaultResource)

	m.AddResourceTemplate(mcp.NewResourceTemplate(
		vaultScheme+"{+path}",
		"Vault entry",
		mcp.WithTemplateDescription("A file or directory in the vault, addressed by its relative path."),
		mcp.WithTemplateMIMEType("text/plain"),
	), s.readVaultResource)
}

func (s *Server) readVaultResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if s.vault == nil {
		return nil, errors.New("the vault is not configured: set SATCHEL_VAULT_ROOT")
	}

	path := strings.TrimPrefix(req.Params.URI, vaultScheme)

	// Directories read as listings, files as their content.
	if entries, err := s.vault.List(path); err == nil {
		return []mcp.ResourceContents{mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     formatEntries(path, entries),
		}}, nil
	}

	content, _, err := s.vault.Read(path)
	if err != nil {
		if errors.Is(err, vault.ErrAccessDenied) {
			return nil, fmt.Errorf("access denied: %s", path)
		}
		return nil, err
	}
	return []mcp.ResourceContents{mcp.TextResourceContents{
		URI:      req.Params.URI,
		MIMEType: "text/plain",
		Text:     content,
	}}, nil
}
