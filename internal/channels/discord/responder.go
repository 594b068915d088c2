package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/aatumaykin/janitor/internal/platform"
	"github.com/aatumaykin/janitor/internal/retry"
)

// Reply answers the message to.MessageID.
func (c *Connector) Reply(ctx context.Context, to platform.Reply, content string) error {
	_, err := c.sendReply(ctx, to, content)
	return err
}

// React adds emoji to the message to.MessageID.
func (c *Connector) React(ctx context.Context, to platform.Reply, emoji string) error {
	return c.AddOption(ctx, to.ChannelID, to.MessageID, emoji)
}

// StartTyping keeps a typing indicator in channelID until stop is called.
func (c *Connector) StartTyping(ctx context.Context, channelID string) func() {
	return c.typing.Start(ctx, channelID)
}

// SendPrompt posts a confirmation prompt as a reply to replyToID.
func (c *Connector) SendPrompt(ctx context.Context, channelID, replyToID, text string) (string, error) {
	msg, err := c.sendReply(ctx, platform.Reply{ChannelID: channelID, MessageID: replyToID}, text)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

// AddOption adds a reaction to messageID.
func (c *Connector) AddOption(ctx context.Context, channelID, messageID, emoji string) error {
	return retry.Do(ctx, c.retry, func(ctx context.Context) error {
		return classify("reaction_add", channelID, c.session.MessageReactionAdd(ctx, channelID, messageID, emoji))
	})
}

// DeletePrompt removes a confirmation prompt. A prompt that is already gone
// is not an error.
func (c *Connector) DeletePrompt(ctx context.Context, channelID, messageID string) error {
	err := retry.Do(ctx, c.retry, func(ctx context.Context) error {
		return classify("delete", channelID, c.session.ChannelMessageDelete(ctx, channelID, messageID))
	})
	if isUnknownMessage(err) {
		return nil
	}
	return err
}

func (c *Connector) sendReply(ctx context.Context, to platform.Reply, content string) (*discordgo.Message, error) {
	ref := &discordgo.MessageReference{
		MessageID: to.MessageID,
		ChannelID: to.ChannelID,
		GuildID:   to.GuildID,
	}

	var msg *discordgo.Message
	err := retry.Do(ctx, c.retry, func(ctx context.Context) error {
		var err error
		msg, err = c.session.ChannelMessageSendReply(ctx, to.ChannelID, content, ref)
		return classify("send_reply", to.ChannelID, err)
	})
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, fmt.Errorf("send_reply: empty response for channel %s", to.ChannelID)
	}
	return msg, nil
}
