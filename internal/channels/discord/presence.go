package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/aatumaykin/janitor/internal/constants"
	"github.com/aatumaykin/janitor/internal/platform"
)

// SetBusy shows do-not-disturb with the channel being swept. Presence is
// process-wide, so concurrent sweeps overwrite each other.
func (c *Connector) SetBusy(_ context.Context, channel platform.Channel) error {
	if !c.showStatus {
		return nil
	}
	return c.session.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status: string(discordgo.StatusDoNotDisturb),
		Activities: []*discordgo.Activity{{
			Name: fmt.Sprintf(constants.MsgPresenceSweeping, channel.Name),
			Type: discordgo.ActivityTypeGame,
		}},
	})
}

// SetIdle returns to online with no activity.
func (c *Connector) SetIdle(_ context.Context) error {
	if !c.showStatus {
		return nil
	}
	return c.session.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status:     string(discordgo.StatusOnline),
		Activities: []*discordgo.Activity{},
	})
}
