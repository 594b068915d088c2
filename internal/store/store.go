// Package store persists per-channel sweep settings.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a channel has no stored configuration.
	ErrNotFound = errors.New("channel not configured")
	// ErrAlreadyExists is returned when adding a channel that is already configured.
	ErrAlreadyExists = errors.New("channel already configured")
)

// ChannelConfig is the persisted sweep setting of one channel.
type ChannelConfig struct {
	ChannelID        string
	GuildID          string
	RetentionMinutes int
	CreatedAt        time.Time
}

// Retention returns the retention window as a duration.
func (c ChannelConfig) Retention() time.Duration {
	return time.Duration(c.RetentionMinutes) * time.Minute
}

// Repository is the channel configuration store. Implementations are safe
// for concurrent use.
type Repository interface {
	// Add registers channelID in guildID with the default retention.
	Add(ctx context.Context, guildID, channelID string) error
	// Remove unregisters channelID.
	Remove(ctx context.Context, channelID string) error
	Exists(ctx context.Context, channelID string) (bool, error)
	Get(ctx context.Context, channelID string) (ChannelConfig, error)
	// ListByGuild returns the guild's channels ordered by registration time.
	ListByGuild(ctx context.Context, guildID string) ([]ChannelConfig, error)
	// SetRetention stores minutes (clamped to the minimum) and returns the stored value.
	SetRetention(ctx context.Context, channelID string, minutes int) (int, error)
	// Retention returns the stored retention, or the default for unknown channels.
	Retention(ctx context.Context, channelID string) (int, error)
	Close() error
}
