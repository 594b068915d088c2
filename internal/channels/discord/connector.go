// Package discord connects janitor to Discord through discordgo.
//
// The Connector owns the gateway session and implements every platform port
// the rest of the bot depends on:
//   - history paging and deletion for the sweep engine
//   - presence updates while a sweep runs
//   - replies, reactions and typing for the command surface
//   - confirmation prompts for the confirmation gate
//   - guild, channel and permission lookups
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"github.com/aatumaykin/janitor/internal/commands"
	"github.com/aatumaykin/janitor/internal/constants"
	"github.com/aatumaykin/janitor/internal/logger"
	"github.com/aatumaykin/janitor/internal/platform"
	"github.com/aatumaykin/janitor/internal/retry"
	"github.com/aatumaykin/janitor/internal/version"
)

// Intents requested on the gateway.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsMessageContent

// CommandHandler executes a command addressed to the bot.
type CommandHandler interface {
	Handle(ctx context.Context, inv commands.Invocation)
}

// ReactionDispatcher receives reactions for pending confirmations.
type ReactionDispatcher interface {
	Dispatch(ev platform.ReactionEvent)
}

// Connector represents the Discord bot connector
type Connector struct {
	session       Session
	logger        *logger.Logger
	prefix        string
	showStatus    bool
	deleteLimiter *rate.Limiter
	retry         retry.Config
	now           func() time.Time

	gatewayLogLevel slog.Level

	handlerMu sync.RWMutex
	commands  CommandHandler
	reactions ReactionDispatcher

	ctx      context.Context
	cancel   context.CancelFunc
	removers []func()

	ready     chan struct{}
	readyOnce sync.Once
	botName   string
	typing    *typingManager
}

// Option configures a Connector.
type Option func(*Connector)

func WithLogger(log *logger.Logger) Option {
	return func(c *Connector) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithCommandPrefix enables a text prefix besides the bot mention.
func WithCommandPrefix(prefix string) Option {
	return func(c *Connector) { c.prefix = prefix }
}

// WithStatus toggles presence updates while sweeping.
func WithStatus(enabled bool) Option {
	return func(c *Connector) { c.showStatus = enabled }
}

// WithDeleteRate paces single-message deletes to perSecond.
func WithDeleteRate(perSecond float64) Option {
	return func(c *Connector) {
		if perSecond > 0 {
			c.deleteLimiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithLogLevel sets how verbose discordgo's own logging is.
func WithLogLevel(level string) Option {
	return func(c *Connector) {
		if l, ok := logger.ParseLevel(level); ok {
			c.gatewayLogLevel = l
		}
	}
}

func WithRetry(cfg retry.Config) Option {
	return func(c *Connector) { c.retry = cfg }
}

func WithClock(now func() time.Time) Option {
	return func(c *Connector) { c.now = now }
}

// New creates a connector with a new discordgo session for token.
func New(token string, opts ...Option) (*Connector, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = Intents
	s.UserAgent = version.UserAgent()
	s.StateEnabled = true

	c := NewWithSession(NewSessionAdapter(s), opts...)
	s.LogLevel = logLevel(c.gatewayLogLevel)
	return c, nil
}

// NewWithSession creates a connector on top of an existing session.
func NewWithSession(session Session, opts ...Option) *Connector {
	c := &Connector{
		session:         session,
		logger:          logger.Nop(),
		showStatus:      true,
		deleteLimiter:   rate.NewLimiter(rate.Limit(constants.DefaultDeleteRate), 1),
		now:             time.Now,
		gatewayLogLevel: slog.LevelWarn,
		ready:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.Logger == nil {
		c.retry.Logger = c.logger
	}
	c.typing = newTypingManager(session, c.logger)
	return c
}

// SetHandlers wires the command handler and the reaction dispatcher. Both
// depend on the connector, so they are attached after construction.
func (c *Connector) SetHandlers(cmd CommandHandler, reactions ReactionDispatcher) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.commands = cmd
	c.reactions = reactions
}

// Start registers the gateway handlers and opens the connection.
func (c *Connector) Start(ctx context.Context) error {
	c.logger.Info("starting discord connector",
		logger.Field{Key: "prefix", Value: c.prefix},
		logger.Field{Key: "show_status", Value: c.showStatus})

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.removers = append(c.removers,
		c.session.AddHandler(c.onReady),
		c.session.AddHandler(c.onMessageCreate),
		c.session.AddHandler(c.onReactionAdd),
	)

	if err := c.session.Open(); err != nil {
		c.cancel()
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	return nil
}

// Stop closes the gateway connection.
func (c *Connector) Stop() error {
	c.logger.Info("stopping discord connector")

	c.typing.StopAll()
	for _, remove := range c.removers {
		remove()
	}
	c.removers = nil
	if c.cancel != nil {
		c.cancel()
	}

	if err := c.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}
	c.logger.Info("discord connector stopped gracefully")
	return nil
}

// Ready is closed once the gateway reports the bot as connected.
func (c *Connector) Ready() <-chan struct{} {
	return c.ready
}

func (c *Connector) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	if r.User != nil {
		c.handlerMu.Lock()
		c.botName = r.User.Username
		c.handlerMu.Unlock()
		c.logger.Info("logged in",
			logger.Field{Key: "user", Value: r.User.Username},
			logger.Field{Key: "user_id", Value: r.User.ID},
			logger.Field{Key: "guilds", Value: len(r.Guilds)})
	}

	if err := c.SetIdle(c.baseContext()); err != nil {
		c.logger.Warn("failed to reset presence", logger.Field{Key: "error", Value: err})
	}
	c.readyOnce.Do(func() { close(c.ready) })
}

func (c *Connector) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	text, ok := commands.StripInvocation(m.Content, c.session.BotUserID(), c.prefix)
	if !ok {
		return
	}

	c.handlerMu.RLock()
	handler, invoker := c.commands, c.invoker()
	c.handlerMu.RUnlock()
	if handler == nil {
		c.logger.Warn("command received before handlers were set", logger.Field{Key: "message_id", Value: m.ID})
		return
	}

	handler.Handle(c.baseContext(), commands.Invocation{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
		AuthorID:  m.Author.ID,
		Text:      text,
		Invoker:   invoker,
	})
}

func (c *Connector) onReactionAdd(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.MessageReaction == nil || r.UserID == c.session.BotUserID() {
		return
	}

	c.handlerMu.RLock()
	dispatcher := c.reactions
	c.handlerMu.RUnlock()
	if dispatcher == nil {
		return
	}

	dispatcher.Dispatch(platform.ReactionEvent{
		MessageID: r.MessageID,
		ChannelID: r.ChannelID,
		UserID:    r.UserID,
		Emoji:     r.Emoji.Name,
	})
}

// invoker is how help output addresses the bot. Caller holds handlerMu.
func (c *Connector) invoker() string {
	if c.botName != "" {
		return "@" + c.botName
	}
	return "@janitor"
}

func (c *Connector) baseContext() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}
