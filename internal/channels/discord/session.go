package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Session defines the discordgo calls used by the connector.
// It allows mock implementations in tests without a gateway connection.
type Session interface {
	Open() error
	Close() error
	AddHandler(handler any) func()
	UpdateStatusComplex(data discordgo.UpdateStatusData) error

	// State lookups, populated after the Ready event.
	BotUserID() string
	StateGuilds() []*discordgo.Guild

	ChannelMessages(ctx context.Context, channelID string, limit int, beforeID string) ([]*discordgo.Message, error)
	ChannelMessagesBulkDelete(ctx context.Context, channelID string, messageIDs []string) error
	ChannelMessageDelete(ctx context.Context, channelID, messageID string) error
	ChannelMessageSendReply(ctx context.Context, channelID, content string, ref *discordgo.MessageReference) (*discordgo.Message, error)
	MessageReactionAdd(ctx context.Context, channelID, messageID, emoji string) error
	ChannelTyping(ctx context.Context, channelID string) error

	Guild(ctx context.Context, guildID string) (*discordgo.Guild, error)
	Channel(ctx context.Context, channelID string) (*discordgo.Channel, error)
	GuildChannels(ctx context.Context, guildID string) ([]*discordgo.Channel, error)
	UserChannelPermissions(ctx context.Context, userID, channelID string) (int64, error)
}

// sessionAdapter wraps *discordgo.Session; every REST call carries ctx.
type sessionAdapter struct {
	s *discordgo.Session
}

// NewSessionAdapter creates a Session from a discordgo session.
func NewSessionAdapter(s *discordgo.Session) Session {
	return &sessionAdapter{s: s}
}

func (a *sessionAdapter) Open() error  { return a.s.Open() }
func (a *sessionAdapter) Close() error { return a.s.Close() }

func (a *sessionAdapter) AddHandler(handler any) func() {
	return a.s.AddHandler(handler)
}

func (a *sessionAdapter) UpdateStatusComplex(data discordgo.UpdateStatusData) error {
	return a.s.UpdateStatusComplex(data)
}

func (a *sessionAdapter) BotUserID() string {
	if a.s.State == nil || a.s.State.User == nil {
		return ""
	}
	return a.s.State.User.ID
}

func (a *sessionAdapter) StateGuilds() []*discordgo.Guild {
	if a.s.State == nil {
		return nil
	}
	a.s.State.RLock()
	defer a.s.State.RUnlock()
	return append([]*discordgo.Guild(nil), a.s.State.Guilds...)
}

func (a *sessionAdapter) ChannelMessages(ctx context.Context, channelID string, limit int, beforeID string) ([]*discordgo.Message, error) {
	return a.s.ChannelMessages(channelID, limit, beforeID, "", "", discordgo.WithContext(ctx))
}

func (a *sessionAdapter) ChannelMessagesBulkDelete(ctx context.Context, channelID string, messageIDs []string) error {
	return a.s.ChannelMessagesBulkDelete(channelID, messageIDs, discordgo.WithContext(ctx))
}

func (a *sessionAdapter) ChannelMessageDelete(ctx context.Context, channelID, messageID string) error {
	return a.s.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

func (a *sessionAdapter) ChannelMessageSendReply(ctx context.Context, channelID, content string, ref *discordgo.MessageReference) (*discordgo.Message, error) {
	return a.s.ChannelMessageSendReply(channelID, content, ref, discordgo.WithContext(ctx))
}

func (a *sessionAdapter) MessageReactionAdd(ctx context.Context, channelID, messageID, emoji string) error {
	return a.s.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
}

func (a *sessionAdapter) ChannelTyping(ctx context.Context, channelID string) error {
	return a.s.ChannelTyping(channelID, discordgo.WithContext(ctx))
}

func (a *sessionAdapter) Guild(ctx context.Context, guildID string) (*discordgo.Guild, error) {
	if a.s.State != nil {
		if g, err := a.s.State.Guild(guildID); err == nil {
			return g, nil
		}
	}
	return a.s.Guild(guildID, discordgo.WithContext(ctx))
}

func (a *sessionAdapter) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	return a.s.Channel(channelID, discordgo.WithContext(ctx))
}

func (a *sessionAdapter) GuildChannels(ctx context.Context, guildID string) ([]*discordgo.Channel, error) {
	return a.s.GuildChannels(guildID, discordgo.WithContext(ctx))
}

func (a *sessionAdapter) UserChannelPermissions(ctx context.Context, userID, channelID string) (int64, error) {
	return a.s.UserChannelPermissions(userID, channelID, discordgo.WithContext(ctx))
}
