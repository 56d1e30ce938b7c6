// Package server wires the vault, search, wiki, drive and chat adapters into
// an MCP server speaking JSON-RPC over stdio. Tool handlers convert adapter
// errors into isError text results so the host always receives a well-formed
// response; only resource reads re-raise errors at the transport level.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/satchel-mcp/satchel/internal/config"
	"github.com/satchel-mcp/satchel/internal/integrations/chat"
	"github.com/satchel-mcp/satchel/internal/integrations/drive"
	"github.com/satchel-mcp/satchel/internal/integrations/websearch"
	"github.com/satchel-mcp/satchel/internal/integrations/wiki"
	"github.com/satchel-mcp/satchel/internal/ratelimit"
	"github.com/satchel-mcp/satchel/internal/vault"
)

const (
	serverName    = "satchel"
	serverVersion = "1.0.0"
)

// Server holds the configured adapters. A nil adapter means its credentials
// were absent; its tools still register but report "not configured".
type Server struct {
	cfg *config.Config

	vault  *vault.Vault
	budget *ratelimit.Budget
	search *websearch.Client
	wiki   *wiki.Client
	drive  *drive.Client
	chat   *chat.Adapter
}

// New builds the adapter set from configuration. Only a misconfigured vault
// root (set but unusable) is a hard error; absent credentials degrade the
// corresponding tools instead.
func New(cfg *config.Config) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		budget: ratelimit.NewBudget(cfg.SearchMonthlyBudget),
	}

	if cfg.VaultRoot != "" {
		v, err := vault.Open(cfg.VaultRoot)
		if err != nil {
			return nil, fmt.Errorf("open vault: %w", err)
		}
		s.vault = v
		log.Info().Str("root", v.Root()).Msg("vault enabled")
	} else {
		log.Warn().Msg("SATCHEL_VAULT_ROOT not set; vault tools disabled")
	}

	if cfg.SearchKey != "" {
		s.search = websearch.NewClient(cfg.SearchKey, s.budget, ratelimit.NewPacer(cfg.PaceInterval))
		log.Info().Msg("web search enabled")
	} else {
		log.Warn().Msg("BRAVE_API_KEY not set; search tools disabled")
	}

	if cfg.WikiToken != "" {
		s.wiki = wiki.NewClient(cfg.WikiToken)
		log.Info().Msg("wiki enabled")
	} else {
		log.Warn().Msg("NOTION_API_KEY not set; wiki tools disabled")
	}

	if cfg.DriveToken != "" {
		s.drive = drive.NewClient(cfg.DriveToken)
		log.Info().Msg("drive enabled")
	} else {
		log.Warn().Msg("DRIVE_ACCESS_TOKEN not set; drive tools disabled")
	}

	if cfg.ChatToken != "" {
		a, err := chat.New(cfg.ChatToken, cfg.ChatGuildID)
		if err != nil {
			return nil, fmt.Errorf("chat adapter: %w", err)
		}
		s.chat = a
		log.Info().Str("guild", cfg.ChatGuildID).Msg("chat enabled")
	} else {
		log.Warn().Msg("DISCORD_BOT_TOKEN not set; chat tools disabled")
	}

	return s, nil
}

// MCPServer assembles the MCP server with every tool and resource
// registered.
func (s *Server) MCPServer() *server.MCPServer {
	m := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
	)

	s.registerVaultTools(m)
	s.registerSearchTools(m)
	s.registerWikiTools(m)
	s.registerDriveTools(m)
	s.registerChatTools(m)
	s.registerStatusTool(m)
	s.registerVaultResources(m)

	return m
}

// Serve runs the stdio transport until the host disconnects.
func (s *Server) Serve() error {
	return server.ServeStdio(s.MCPServer())
}
