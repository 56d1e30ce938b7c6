// Package chat adapts Discord as a team-chat service: channel listing,
// history with cursor pagination, posting, thread reconstruction, and
// mention lookup. Only the REST surface is used; no gateway connection is
// opened.
package chat

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// session is the slice of the Discord REST API the adapter uses. It is
// satisfied by *discordgo.Session and by fakes in tests.
type session interface {
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
}

// Channel is a text channel summary.
type Channel struct {
	ID    string
	Name  string
	Topic string
}

// Message is a flattened chat message.
type Message struct {
	ID         string
	ChannelID  string
	Author     string
	Content    string
	Timestamp  time.Time
	ThreadID   string
	ReplyCount int
	IsMention  bool
	IsEveryone bool
}

// HistoryPage is one page of channel history. NextCursor is the oldest
// message id in the page and threads into the next (older) page; empty when
// the channel start was reached.
type HistoryPage struct {
	Messages   []Message
	NextCursor string
}

// Adapter wraps a Discord session restricted to one guild.
type Adapter struct {
	session session
	guildID string
}

// New creates an adapter from a bot token. The session is REST-only.
func New(token, guildID string) (*Adapter, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}
	return &Adapter{session: s, guildID: guildID}, nil
}

// ListChannels returns the guild's text channels.
func (a *Adapter) ListChannels() ([]Channel, error) {
	channels, err := a.session.GuildChannels(a.guildID)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}

	var out []Channel
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		out = append(out, Channel{ID: ch.ID, Name: ch.Name, Topic: ch.Topic})
	}
	return out, nil
}

// History fetches up to limit messages from a channel, newest first. An
// empty cursor starts at the latest message; pass the returned NextCursor to
// page further back.
func (a *Adapter) History(channelID string, limit int, cursor string) (*HistoryPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	msgs, err := a.session.ChannelMessages(channelID, limit, cursor, "", "")
	if err != nil {
		return nil, fmt.Errorf("channel history: %w", err)
	}

	page := &HistoryPage{Messages: make([]Message, 0, len(msgs))}
	for _, m := range msgs {
		page.Messages = append(page.Messages, flatten(m))
	}
	if len(msgs) == limit {
		page.NextCursor = msgs[len(msgs)-1].ID
	}
	return page, nil
}

// Post sends a message to a channel and returns its flattened form.
func (a *Adapter) Post(channelID, content string) (Message, error) {
	m, err := a.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return Message{}, fmt.Errorf("post message: %w", err)
	}
	return flatten(m), nil
}

// ThreadReplies reconstructs a thread: the starter message from the parent
// channel followed by the thread's messages, oldest first. A thread channel
// shares its id with the message that started it.
func (a *Adapter) ThreadReplies(threadID string, limit int) ([]Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	msgs, err := a.session.ChannelMessages(threadID, limit, "", "", "")
	if err != nil {
		return nil, fmt.Errorf("thread messages: %w", err)
	}

	// ChannelMessages returns newest first; a thread reads oldest first.
	ordered := make([]Message, 0, len(msgs)+1)
	for i := len(msgs) - 1; i >= 0; i-- {
		ordered = append(ordered, flatten(msgs[i]))
	}

	// Best effort: prepend the starter message from the parent channel.
	if ch, err := a.session.Channel(threadID); err == nil && ch.ParentID != "" {
		if starter, err := a.session.ChannelMessage(ch.ParentID, threadID); err == nil {
			ordered = append([]Message{flatten(starter)}, ordered...)
		}
	}

	return ordered, nil
}

// FindMentions scans recent history of the given channels for messages
// mentioning userID — directly, through one of the user's roles, or via
// @everyone. Results are grouped per channel in scan order, capped at limit
// overall.
func (a *Adapter) FindMentions(channelIDs []string, userID string, limit int) ([]Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	// Role lookup is best-effort; without member data only direct and
	// @everyone mentions match.
	roles := map[string]bool{}
	if member, err := a.session.GuildMember(a.guildID, userID); err == nil && member != nil {
		for _, r := range member.Roles {
			roles[r] = true
		}
	}

	var found []Message
	for _, channelID := range channelIDs {
		msgs, err := a.session.ChannelMessages(channelID, 100, "", "", "")
		if err != nil {
			return nil, fmt.Errorf("scan %s for mentions: %w", channelID, err)
		}
		for _, m := range msgs {
			flat := flatten(m)
			flat.IsEveryone = m.MentionEveryone
			flat.IsMention = mentionsUser(m, userID) || mentionsRole(m, roles)
			if flat.IsMention || flat.IsEveryone {
				found = append(found, flat)
				if len(found) == limit {
					return found, nil
				}
			}
		}
	}
	return found, nil
}

func mentionsUser(m *discordgo.Message, userID string) bool {
	for _, u := range m.Mentions {
		if u != nil && u.ID == userID {
			return true
		}
	}
	return false
}

func mentionsRole(m *discordgo.Message, roles map[string]bool) bool {
	for _, id := range m.MentionRoles {
		if roles[id] {
			return true
		}
	}
	return false
}

func flatten(m *discordgo.Message) Message {
	out := Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
	if m.Author != nil {
		out.Author = m.Author.Username
	}
	if m.Thread != nil {
		out.ThreadID = m.Thread.ID
		out.ReplyCount = m.Thread.MessageCount
	}
	return out
}
