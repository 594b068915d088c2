package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/aatumaykin/janitor/internal/platform"
)

// Guilds lists the guilds of the session state, i.e. those the bot is in.
func (c *Connector) Guilds(_ context.Context) ([]platform.Guild, error) {
	state := c.session.StateGuilds()
	guilds := make([]platform.Guild, 0, len(state))
	for _, g := range state {
		if g.Unavailable {
			continue
		}
		guilds = append(guilds, platform.Guild{ID: g.ID, Name: g.Name})
	}
	return guilds, nil
}

func (c *Connector) Guild(ctx context.Context, guildID string) (platform.Guild, error) {
	g, err := c.session.Guild(ctx, guildID)
	if err != nil {
		return platform.Guild{}, classify("guild", "", err)
	}
	return platform.Guild{ID: g.ID, Name: g.Name}, nil
}

func (c *Connector) Channel(ctx context.Context, channelID string) (platform.Channel, error) {
	ch, err := c.session.Channel(ctx, channelID)
	if err != nil {
		return platform.Channel{}, classify("channel", channelID, err)
	}
	return toChannel(ch), nil
}

// GuildChannels lists the text channels of guildID.
func (c *Connector) GuildChannels(ctx context.Context, guildID string) ([]platform.Channel, error) {
	all, err := c.session.GuildChannels(ctx, guildID)
	if err != nil {
		return nil, classify("guild_channels", "", err)
	}

	channels := make([]platform.Channel, 0, len(all))
	for _, ch := range all {
		if ch.Type != discordgo.ChannelTypeGuildText && ch.Type != discordgo.ChannelTypeGuildNews {
			continue
		}
		channels = append(channels, toChannel(ch))
	}
	return channels, nil
}

// IsAdministrator reports whether userID holds the Administrator permission
// in channelID of guildID.
func (c *Connector) IsAdministrator(ctx context.Context, guildID, channelID, userID string) (bool, error) {
	perms, err := c.session.UserChannelPermissions(ctx, userID, channelID)
	if err != nil {
		return false, fmt.Errorf("permissions of %s in guild %s: %w", userID, guildID, classify("permissions", channelID, err))
	}
	return perms&discordgo.PermissionAdministrator != 0, nil
}

func toChannel(ch *discordgo.Channel) platform.Channel {
	return platform.Channel{ID: ch.ID, GuildID: ch.GuildID, Name: ch.Name}
}
