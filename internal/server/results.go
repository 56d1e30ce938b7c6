package server

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"

	"github.com/satchel-mcp/satchel/internal/vault"
)

// errResult maps an adapter error onto a tool error result. Sandbox escapes
// are logged with full diagnostics but surfaced only as "access denied";
// everything else is surfaced verbatim.
func errResult(err error) *mcp.CallToolResult {
	if errors.Is(err, vault.ErrAccessDenied) {
		log.Warn().Err(err).Msg("sandbox escape rejected")
		return mcp.NewToolResultError("access denied")
	}
	return mcp.NewToolResultError(err.Error())
}

func notConfigured(what, envVar string) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s is not configured: set %s", what, envVar))
}

func toolArgs(req mcp.CallToolRequest) map[string]any {
	args, _ := req.Params.Arguments.(map[string]any)
	return args
}

func argString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func argBool(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func argInt(args map[string]any, key string) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return 0
}
