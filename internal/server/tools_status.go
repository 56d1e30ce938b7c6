package server

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/process"
)

func (s *Server) registerStatusTool(m *server.MCPServer) {
	m.AddTool(mcp.NewTool("server_status",
		mcp.WithDescription("Report server health: which adapters are configured, vault disk usage, search budget consumption, and process memory."),
	), s.handleStatus)
}

func (s *Server) handleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder

	b.WriteString("Adapters:\n")
	fmt.Fprintf(&b, "  vault:      %s\n", enabledWord(s.vault != nil))
	fmt.Fprintf(&b, "  web search: %s\n", enabledWord(s.search != nil))
	fmt.Fprintf(&b, "  wiki:       %s\n", enabledWord(s.wiki != nil))
	fmt.Fprintf(&b, "  drive:      %s\n", enabledWord(s.drive != nil))
	fmt.Fprintf(&b, "  chat:       %s\n", enabledWord(s.chat != nil))

	perSecond, perMonth, limit := s.budget.Snapshot()
	fmt.Fprintf(&b, "\nSearch budget: %d/%d calls this month (%d in the current second window)\n",
		perMonth, limit, perSecond)

	if s.vault != nil {
		if usage, err := disk.UsageWithContext(ctx, s.vault.Root()); err == nil {
			fmt.Fprintf(&b, "\nVault disk: %.1f%% used (%.1f GB free of %.1f GB)\n",
				usage.UsedPercent,
				float64(usage.Free)/1e9,
				float64(usage.Total)/1e9)
		}
	}

	if proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfoWithContext(ctx); err == nil {
			fmt.Fprintf(&b, "\nProcess memory: %.1f MB resident\n", float64(mem.RSS)/1e6)
		}
	}

	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func enabledWord(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
