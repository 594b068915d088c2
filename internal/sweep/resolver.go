package sweep

import (
	"context"
	"fmt"

	"github.com/aatumaykin/janitor/internal/logger"
	"github.com/aatumaykin/janitor/internal/platform"
)

// ChannelLister lists the live channels of a guild.
type ChannelLister interface {
	GuildChannels(ctx context.Context, guildID string) ([]platform.Channel, error)
}

// Resolver maps stored channel ids onto live channels.
type Resolver struct {
	lister ChannelLister
	log    *logger.Logger
}

func NewResolver(lister ChannelLister, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{lister: lister, log: log}
}

// Resolve returns the live channels for ids in input order. Ids with no live
// channel are dropped with a warning; ids matching more than one channel are
// dropped with an error log.
func (r *Resolver) Resolve(ctx context.Context, guildID string, ids []string) ([]platform.Channel, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	live, err := r.lister.GuildChannels(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("list channels of guild %s: %w", guildID, err)
	}

	byID := make(map[string][]platform.Channel, len(live))
	for _, ch := range live {
		byID[ch.ID] = append(byID[ch.ID], ch)
	}

	resolved := make([]platform.Channel, 0, len(ids))
	for _, id := range ids {
		switch matches := byID[id]; len(matches) {
		case 0:
			r.log.WarnCtx(ctx, "configured channel not found",
				logger.Field{Key: "guild_id", Value: guildID},
				logger.Field{Key: "channel_id", Value: id})
		case 1:
			resolved = append(resolved, matches[0])
		default:
			r.log.ErrorCtx(ctx, "configured channel is ambiguous",
				fmt.Errorf("%d live channels share id %s", len(matches), id),
				logger.Field{Key: "guild_id", Value: guildID})
		}
	}
	return resolved, nil
}
