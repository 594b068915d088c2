package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"
)

// MockSession is a mock implementation of Session for testing.
type MockSession struct {
	mock.Mock
}

func (m *MockSession) Open() error {
	return m.Called().Error(0)
}

func (m *MockSession) Close() error {
	return m.Called().Error(0)
}

func (m *MockSession) AddHandler(handler any) func() {
	m.Called(handler)
	return func() {}
}

func (m *MockSession) UpdateStatusComplex(data discordgo.UpdateStatusData) error {
	return m.Called(data).Error(0)
}

func (m *MockSession) BotUserID() string {
	return m.Called().String(0)
}

func (m *MockSession) StateGuilds() []*discordgo.Guild {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*discordgo.Guild)
}

func (m *MockSession) ChannelMessages(ctx context.Context, channelID string, limit int, beforeID string) ([]*discordgo.Message, error) {
	args := m.Called(ctx, channelID, limit, beforeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*discordgo.Message), args.Error(1)
}

func (m *MockSession) ChannelMessagesBulkDelete(ctx context.Context, channelID string, messageIDs []string) error {
	return m.Called(ctx, channelID, messageIDs).Error(0)
}

func (m *MockSession) ChannelMessageDelete(ctx context.Context, channelID, messageID string) error {
	return m.Called(ctx, channelID, messageID).Error(0)
}

func (m *MockSession) ChannelMessageSendReply(ctx context.Context, channelID, content string, ref *discordgo.MessageReference) (*discordgo.Message, error) {
	args := m.Called(ctx, channelID, content, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Message), args.Error(1)
}

func (m *MockSession) MessageReactionAdd(ctx context.Context, channelID, messageID, emoji string) error {
	return m.Called(ctx, channelID, messageID, emoji).Error(0)
}

func (m *MockSession) ChannelTyping(ctx context.Context, channelID string) error {
	return m.Called(ctx, channelID).Error(0)
}

func (m *MockSession) Guild(ctx context.Context, guildID string) (*discordgo.Guild, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Guild), args.Error(1)
}

func (m *MockSession) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Channel), args.Error(1)
}

func (m *MockSession) GuildChannels(ctx context.Context, guildID string) ([]*discordgo.Channel, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*discordgo.Channel), args.Error(1)
}

func (m *MockSession) UserChannelPermissions(ctx context.Context, userID, channelID string) (int64, error) {
	args := m.Called(ctx, userID, channelID)
	return args.Get(0).(int64), args.Error(1)
}
