package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/satchel-mcp/satchel/internal/integrations/chat"
)

func (s *Server) registerChatTools(m *server.MCPServer) {
	m.AddTool(mcp.NewTool("chat_list_channels",
		mcp.WithDescription("List the team chat's text channels."),
	), s.handleChatListChannels)

	m.AddTool(mcp.NewTool("chat_history",
		mcp.WithDescription("Fetch recent messages from a channel, newest first. Returns a cursor to page further back."),
		mcp.WithString("channel_id", mcp.Required(), mcp.Description("Channel id from chat_list_channels.")),
		mcp.WithNumber("limit", mcp.Description("Messages per page, 1-100. Default: 50.")),
		mcp.WithString("cursor", mcp.Description("Continuation cursor from a previous chat_history call.")),
	), s.handleChatHistory)

	m.AddTool(mcp.NewTool("chat_post_message",
		mcp.WithDescription("Post a message to a channel."),
		mcp.WithString("channel_id", mcp.Description("Target channel id. Default: the first configured channel.")),
		mcp.WithString("message", mcp.Required(), mcp.Description("Message text.")),
	), s.handleChatPost)

	m.AddTool(mcp.NewTool("chat_thread_replies",
		mcp.WithDescription("Reconstruct a thread: the starter message followed by its replies, oldest first."),
		mcp.WithString("thread_id", mcp.Required(), mcp.Description("Thread id (equal to the starter message id).")),
		mcp.WithNumber("limit", mcp.Description("Maximum replies, 1-100. Default: 100.")),
	), s.handleChatThreadReplies)

	m.AddTool(mcp.NewTool("chat_find_mentions",
		mcp.WithDescription("Scan recent history of the configured channels for messages mentioning a user."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User id to look for.")),
		mcp.WithNumber("limit", mcp.Description("Maximum results, 1-100. Default: 25.")),
	), s.handleChatFindMentions)
}

func (s *Server) handleChatListChannels(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.chat == nil {
		return notConfigured("chat", "DISCORD_BOT_TOKEN"), nil
	}

	channels, err := s.chat.ListChannels()
	if err != nil {
		return errResult(err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d channel(s)\n", len(channels))
	for _, ch := range channels {
		fmt.Fprintf(&b, "\n#%s (id: %s)\n", ch.Name, ch.ID)
		if ch.Topic != "" {
			fmt.Fprintf(&b, "  topic: %s\n", ch.Topic)
		}
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (s *Server) handleChatHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.chat == nil {
		return notConfigured("chat", "DISCORD_BOT_TOKEN"), nil
	}
	args := toolArgs(req)
	channelID := argString(args, "channel_id")
	if channelID == "" {
		return mcp.NewToolResultError("channel_id is required"), nil
	}

	page, err := s.chat.History(channelID, argInt(args, "limit"), argString(args, "cursor"))
	if err != nil {
		return errResult(err), nil
	}

	out := formatMessages(page.Messages)
	if page.NextCursor != "" {
		out += fmt.Sprintf("\n\nOlder messages available; pass cursor %q to continue.", page.NextCursor)
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handleChatPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.chat == nil {
		return notConfigured("chat", "DISCORD_BOT_TOKEN"), nil
	}
	args := toolArgs(req)
	message := argString(args, "message")
	if message == "" {
		return mcp.NewToolResultError("message is required"), nil
	}
	channelID := argString(args, "channel_id")
	if channelID == "" && len(s.cfg.ChatChannelIDs) > 0 {
		channelID = s.cfg.ChatChannelIDs[0]
	}
	if channelID == "" {
		return mcp.NewToolResultError("channel_id required (none provided and DISCORD_CHANNEL_IDS not set)"), nil
	}

	posted, err := s.chat.Post(channelID, message)
	if err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Posted to channel %s (message id %s)", posted.ChannelID, posted.ID)), nil
}

func (s *Server) handleChatThreadReplies(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.chat == nil {
		return notConfigured("chat", "DISCORD_BOT_TOKEN"), nil
	}
	args := toolArgs(req)
	threadID := argString(args, "thread_id")
	if threadID == "" {
		return mcp.NewToolResultError("thread_id is required"), nil
	}

	replies, err := s.chat.ThreadReplies(threadID, argInt(args, "limit"))
	if err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(formatMessages(replies)), nil
}

func (s *Server) handleChatFindMentions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.chat == nil {
		return notConfigured("chat", "DISCORD_BOT_TOKEN"), nil
	}
	if len(s.cfg.ChatChannelIDs) == 0 {
		return mcp.NewToolResultError("no channels configured: set DISCORD_CHANNEL_IDS"), nil
	}
	args := toolArgs(req)
	userID := argString(args, "user_id")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}

	found, err := s.chat.FindMentions(s.cfg.ChatChannelIDs, userID, argInt(args, "limit"))
	if err != nil {
		return errResult(err), nil
	}
	if len(found) == 0 {
		return mcp.NewToolResultText("No mentions found"), nil
	}
	return mcp.NewToolResultText(formatMessages(found)), nil
}

func formatMessages(msgs []chat.Message) string {
	if len(msgs) == 0 {
		return "No messages"
	}
	blocks := make([]string, 0, len(msgs))
	for _, m := range msgs {
		var b strings.Builder
		fmt.Fprintf(&b, "[%s] %s: %s", m.Timestamp.Format(time.RFC3339), m.Author, m.Content)
		if m.ThreadID != "" {
			fmt.Fprintf(&b, "\n  thread: %s (%d replies)", m.ThreadID, m.ReplyCount)
		}
		if m.IsEveryone {
			b.WriteString("\n  (@everyone)")
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n")
}
