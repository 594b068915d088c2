// Package platform holds the chat-platform entities the sweep core works on.
// The Discord adapter converts its wire types into these.
package platform

import "time"

type Guild struct {
	ID   string
	Name string
}

type Channel struct {
	ID      string
	GuildID string
	Name    string
}

// Message is read-only to janitor except for deletion.
type Message struct {
	ID        string
	ChannelID string
	CreatedAt time.Time
	Pinned    bool
}

// Age reports how old m is relative to now.
func (m Message) Age(now time.Time) time.Duration {
	return now.Sub(m.CreatedAt)
}

// ReactionEvent is a reaction added by a user to a message.
type ReactionEvent struct {
	MessageID string
	ChannelID string
	UserID    string
	Emoji     string
}

// Reply identifies a message to respond to.
type Reply struct {
	ChannelID string
	MessageID string
	GuildID   string
}
