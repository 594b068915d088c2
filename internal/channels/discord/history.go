package discord

import (
	"context"
	"iter"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/aatumaykin/janitor/internal/constants"
	"github.com/aatumaykin/janitor/internal/logger"
	"github.com/aatumaykin/janitor/internal/platform"
	"github.com/aatumaykin/janitor/internal/retry"
)

// historyPageSize is the largest page the messages endpoint returns.
const historyPageSize = 100

// History pages channelID from newest to oldest, one request per page.
// Iteration stops early when the consumer breaks out.
func (c *Connector) History(ctx context.Context, channelID string) iter.Seq2[platform.Message, error] {
	return func(yield func(platform.Message, error) bool) {
		before := ""
		for {
			var page []*discordgo.Message
			err := retry.Do(ctx, c.retry, func(ctx context.Context) error {
				var err error
				page, err = c.session.ChannelMessages(ctx, channelID, historyPageSize, before)
				return classify("history", channelID, err)
			})
			if err != nil {
				yield(platform.Message{}, err)
				return
			}

			for _, m := range page {
				if !yield(toMessage(m), nil) {
					return
				}
			}
			if len(page) < historyPageSize {
				return
			}
			before = page[len(page)-1].ID
		}
	}
}

// DeleteMessages deletes messages from channelID. Messages the platform
// refuses to bulk delete (older than two weeks) go one by one, paced by the
// delete limiter. A single recent message is deleted directly since bulk
// delete requires at least two.
func (c *Connector) DeleteMessages(ctx context.Context, channelID string, messages []platform.Message) error {
	cutoff := c.now().Add(-constants.BulkDeleteMaxAge).Add(time.Minute)

	var recent, old []string
	for _, m := range messages {
		if m.CreatedAt.Before(cutoff) {
			old = append(old, m.ID)
		} else {
			recent = append(recent, m.ID)
		}
	}

	switch len(recent) {
	case 0:
	case 1:
		old = append(old, recent[0])
	default:
		err := retry.Do(ctx, c.retry, func(ctx context.Context) error {
			return classify("bulk_delete", channelID, c.session.ChannelMessagesBulkDelete(ctx, channelID, recent))
		})
		if err != nil {
			return err
		}
	}

	for _, id := range old {
		if err := c.deleteOne(ctx, channelID, id); err != nil {
			return err
		}
	}
	return nil
}

func (c *Connector) deleteOne(ctx context.Context, channelID, messageID string) error {
	if err := c.deleteLimiter.Wait(ctx); err != nil {
		return err
	}

	err := retry.Do(ctx, c.retry, func(ctx context.Context) error {
		return classify("delete", channelID, c.session.ChannelMessageDelete(ctx, channelID, messageID))
	})
	if isUnknownMessage(err) {
		c.logger.DebugCtx(ctx, "message already deleted",
			logger.Field{Key: "channel_id", Value: channelID},
			logger.Field{Key: "message_id", Value: messageID})
		return nil
	}
	return err
}

func toMessage(m *discordgo.Message) platform.Message {
	created := m.Timestamp
	if created.IsZero() {
		if ts, err := discordgo.SnowflakeTimestamp(m.ID); err == nil {
			created = ts
		}
	}
	return platform.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		CreatedAt: created,
		Pinned:    m.Pinned,
	}
}
