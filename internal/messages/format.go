// Package messages renders user-facing reply text.
package messages

import (
	"fmt"
	"strings"

	"github.com/aatumaykin/janitor/internal/constants"
)

// FormatMaxAge renders a retention in minutes as "N days, N hours, N minutes".
// Zero units are omitted, except that minutes are always shown when nothing
// else is.
func FormatMaxAge(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	days, rest := minutes/(24*60), minutes%(24*60)
	hours, mins := rest/60, rest%60

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d days", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d hours", hours))
	}
	if mins > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d minutes", mins))
	}
	return strings.Join(parts, ", ")
}

// ChannelMention renders the platform mention markup for a channel id.
func ChannelMention(channelID string) string {
	return "<#" + channelID + ">"
}

// FormatChannelList renders the reply of "channels list".
func FormatChannelList(guildName string, channelIDs []string) string {
	if len(channelIDs) == 0 {
		return fmt.Sprintf(constants.MsgNoChannels, guildName)
	}
	mentions := make([]string, len(channelIDs))
	for i, id := range channelIDs {
		mentions[i] = ChannelMention(id)
	}
	return fmt.Sprintf(constants.MsgSweepingList, guildName, strings.Join(mentions, constants.MsgChannelListIndent))
}

// FormatValidationErrors formats a list of validation errors, one per line.
func FormatValidationErrors(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	builder := &strings.Builder{}
	builder.WriteString(constants.MsgConfigValidationError)
	for i, err := range errs {
		builder.WriteString(fmt.Sprintf(constants.MsgConfigValidatePrefix, fmt.Sprintf("%d. %v", i+1, err)))
	}
	return builder.String()
}
