// Package commands implements the administrator command surface: parsing,
// permission checks, dispatch and mapping of errors to replies.
package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aatumaykin/janitor/internal/confirm"
	"github.com/aatumaykin/janitor/internal/constants"
	"github.com/aatumaykin/janitor/internal/logger"
	"github.com/aatumaykin/janitor/internal/messages"
	"github.com/aatumaykin/janitor/internal/platform"
	"github.com/aatumaykin/janitor/internal/store"
	"github.com/aatumaykin/janitor/internal/sweep"
)

// Store is the subset of store.Repository the commands use.
type Store interface {
	Add(ctx context.Context, guildID, channelID string) error
	Remove(ctx context.Context, channelID string) error
	Exists(ctx context.Context, channelID string) (bool, error)
	ListByGuild(ctx context.Context, guildID string) ([]store.ChannelConfig, error)
	SetRetention(ctx context.Context, channelID string, minutes int) (int, error)
	Retention(ctx context.Context, channelID string) (int, error)
}

// Responder sends replies back to the invoking message.
type Responder interface {
	Reply(ctx context.Context, to platform.Reply, content string) error
	React(ctx context.Context, to platform.Reply, emoji string) error
	// StartTyping shows a typing indicator in channelID until stop is called.
	StartTyping(ctx context.Context, channelID string) (stop func())
}

// Directory looks up guild state and permissions.
type Directory interface {
	Guild(ctx context.Context, guildID string) (platform.Guild, error)
	Channel(ctx context.Context, channelID string) (platform.Channel, error)
	GuildChannels(ctx context.Context, guildID string) ([]platform.Channel, error)
	IsAdministrator(ctx context.Context, guildID, channelID, userID string) (bool, error)
}

type ChannelResolver interface {
	Resolve(ctx context.Context, guildID string, ids []string) ([]platform.Channel, error)
}

type Sweeper interface {
	Sweep(ctx context.Context, job sweep.Job) (sweep.Result, error)
}

type Confirmer interface {
	Request(ctx context.Context, req confirm.Request) (confirm.Outcome, error)
}

// Invocation is one command message addressed to the bot.
type Invocation struct {
	GuildID   string
	ChannelID string
	MessageID string
	AuthorID  string
	// Text is the message content with the mention or prefix removed.
	Text string
	// Invoker is how the bot is addressed in help output, e.g. "@janitor".
	Invoker string
}

func (inv Invocation) reply() platform.Reply {
	return platform.Reply{ChannelID: inv.ChannelID, MessageID: inv.MessageID, GuildID: inv.GuildID}
}

// Deps holds the Handler collaborators.
type Deps struct {
	Store     Store
	Responder Responder
	Directory Directory
	Resolver  ChannelResolver
	Sweeper   Sweeper
	Confirmer Confirmer
	Logger    *logger.Logger
}

// Handler executes commands.
type Handler struct {
	store     Store
	responder Responder
	directory Directory
	resolver  ChannelResolver
	sweeper   Sweeper
	confirmer Confirmer
	logger    *logger.Logger
}

// NewHandler creates a new command handler.
func NewHandler(deps Deps) *Handler {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		store:     deps.Store,
		responder: deps.Responder,
		directory: deps.Directory,
		resolver:  deps.Resolver,
		sweeper:   deps.Sweeper,
		confirmer: deps.Confirmer,
		logger:    log,
	}
}

// Handle executes inv and turns any error into the matching user reply.
func (h *Handler) Handle(ctx context.Context, inv Invocation) {
	h.logger.InfoCtx(ctx, "command received",
		logger.Field{Key: "guild_id", Value: inv.GuildID},
		logger.Field{Key: "channel_id", Value: inv.ChannelID},
		logger.Field{Key: "author_id", Value: inv.AuthorID},
		logger.Field{Key: "text", Value: inv.Text})

	if err := h.Execute(ctx, inv); err != nil {
		h.reportError(ctx, inv, err)
	}
}

// Execute parses and runs inv. Configuration outcomes (duplicate add,
// unregistered channel) are replied to directly and return nil.
func (h *Handler) Execute(ctx context.Context, inv Invocation) error {
	words, err := tokenize(inv.Text)
	if err != nil {
		return &InputError{Message: err.Error()}
	}
	if len(words) == 0 {
		return h.help(ctx, inv, nil)
	}

	name, args := words[0], words[1:]
	switch name {
	case constants.CommandHelp:
		return h.help(ctx, inv, args)
	case constants.CommandChannels, constants.CommandMaxAge, constants.CommandSweepNow:
	default:
		return &UnknownCommandError{Name: name}
	}

	if err := h.requireAdmin(ctx, inv); err != nil {
		return err
	}

	switch name {
	case constants.CommandChannels:
		return h.channels(ctx, inv, args)
	case constants.CommandMaxAge:
		return h.maxAge(ctx, inv, args)
	default:
		return h.sweepNow(ctx, inv, args)
	}
}

func (h *Handler) requireAdmin(ctx context.Context, inv Invocation) error {
	ok, err := h.directory.IsAdministrator(ctx, inv.GuildID, inv.ChannelID, inv.AuthorID)
	if err != nil {
		return fmt.Errorf("check permissions of %s: %w", inv.AuthorID, err)
	}
	if !ok {
		return ErrMissingPermission
	}
	return nil
}

// requireEnabled replies and reports false when the current channel is not swept.
func (h *Handler) requireEnabled(ctx context.Context, inv Invocation) (bool, error) {
	enabled, err := h.store.Exists(ctx, inv.ChannelID)
	if err != nil {
		return false, fmt.Errorf("look up channel %s: %w", inv.ChannelID, err)
	}
	if !enabled {
		return false, h.replyf(ctx, inv, constants.MsgSweepNotEnabled, messages.ChannelMention(inv.ChannelID))
	}
	return true, nil
}

func (h *Handler) channels(ctx context.Context, inv Invocation, args []string) error {
	if len(args) == 0 {
		return inputErrorf(constants.CommandChannels, constants.MsgExpectedSubcmd)
	}

	sub, rest := args[0], args[1:]
	path := constants.CommandChannels + " " + sub

	switch sub {
	case constants.SubcommandAdd:
		ch, err := h.channelArg(ctx, inv, path, rest)
		if err != nil {
			return err
		}
		err = h.store.Add(ctx, inv.GuildID, ch.ID)
		if errors.Is(err, store.ErrAlreadyExists) {
			return h.replyf(ctx, inv, constants.MsgAlreadySweeping, messages.ChannelMention(ch.ID))
		}
		if err != nil {
			return fmt.Errorf("add channel %s: %w", ch.ID, err)
		}
		h.logger.InfoCtx(ctx, "channel added", logger.Field{Key: "channel_id", Value: ch.ID}, logger.Field{Key: "guild_id", Value: inv.GuildID})
		return h.responder.React(ctx, inv.reply(), constants.EmojiCheck)

	case constants.SubcommandRemove:
		ch, err := h.channelArg(ctx, inv, path, rest)
		if err != nil {
			return err
		}
		err = h.store.Remove(ctx, ch.ID)
		if errors.Is(err, store.ErrNotFound) {
			return h.replyf(ctx, inv, constants.MsgNotSweeping, messages.ChannelMention(ch.ID))
		}
		if err != nil {
			return fmt.Errorf("remove channel %s: %w", ch.ID, err)
		}
		h.logger.InfoCtx(ctx, "channel removed", logger.Field{Key: "channel_id", Value: ch.ID}, logger.Field{Key: "guild_id", Value: inv.GuildID})
		return h.responder.React(ctx, inv.reply(), constants.EmojiCheck)

	case constants.SubcommandList:
		if len(rest) > 0 {
			return inputErrorf(path, constants.MsgTooManyArguments, path)
		}
		return h.listChannels(ctx, inv)

	default:
		return inputErrorf(constants.CommandChannels, constants.MsgExpectedSubcmd)
	}
}

func (h *Handler) listChannels(ctx context.Context, inv Invocation) error {
	guild, err := h.directory.Guild(ctx, inv.GuildID)
	if err != nil {
		return fmt.Errorf("look up guild %s: %w", inv.GuildID, err)
	}

	configs, err := h.store.ListByGuild(ctx, inv.GuildID)
	if err != nil {
		return fmt.Errorf("list channels of guild %s: %w", inv.GuildID, err)
	}

	ids := make([]string, len(configs))
	for i, c := range configs {
		ids[i] = c.ChannelID
	}

	live, err := h.resolver.Resolve(ctx, inv.GuildID, ids)
	if err != nil {
		return err
	}

	liveIDs := make([]string, len(live))
	for i, ch := range live {
		liveIDs[i] = ch.ID
	}
	return h.reply(ctx, inv, messages.FormatChannelList(guild.Name, liveIDs))
}

// channelArg resolves the single channel argument of path within the
// invoking guild, by mention, id or name.
func (h *Handler) channelArg(ctx context.Context, inv Invocation, path string, args []string) (platform.Channel, error) {
	switch {
	case len(args) == 0:
		return platform.Channel{}, inputErrorf(path, constants.MsgMissingArgument, "channel")
	case len(args) > 1:
		return platform.Channel{}, inputErrorf(path, constants.MsgTooManyArguments, path)
	}

	ref := parseChannelRef(args[0])
	channels, err := h.directory.GuildChannels(ctx, inv.GuildID)
	if err != nil {
		return platform.Channel{}, fmt.Errorf("list channels of guild %s: %w", inv.GuildID, err)
	}

	for _, ch := range channels {
		if ch.ID == ref {
			return ch, nil
		}
	}
	for _, ch := range channels {
		if ch.Name == ref {
			return ch, nil
		}
	}
	return platform.Channel{}, inputErrorf(path, constants.MsgChannelNotFound, args[0])
}

func (h *Handler) maxAge(ctx context.Context, inv Invocation, args []string) error {
	var (
		minutes int
		set     bool
	)
	switch len(args) {
	case 0:
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return inputErrorf(constants.CommandMaxAge, constants.MsgBadInteger, "ageMinutes")
		}
		minutes, set = n, true
	default:
		return inputErrorf(constants.CommandMaxAge, constants.MsgTooManyArguments, constants.CommandMaxAge)
	}

	enabled, err := h.requireEnabled(ctx, inv)
	if err != nil || !enabled {
		return err
	}

	if set {
		minutes, err = h.store.SetRetention(ctx, inv.ChannelID, minutes)
		if err != nil {
			return fmt.Errorf("set retention of %s: %w", inv.ChannelID, err)
		}
		h.logger.InfoCtx(ctx, "retention updated",
			logger.Field{Key: "channel_id", Value: inv.ChannelID},
			logger.Field{Key: "minutes", Value: minutes})
	} else {
		minutes, err = h.store.Retention(ctx, inv.ChannelID)
		if err != nil {
			return fmt.Errorf("get retention of %s: %w", inv.ChannelID, err)
		}
	}

	return h.replyf(ctx, inv, constants.MsgMaxAge, messages.ChannelMention(inv.ChannelID), messages.FormatMaxAge(minutes))
}

func (h *Handler) sweepNow(ctx context.Context, inv Invocation, args []string) error {
	ignoreAge := false
	switch len(args) {
	case 0:
	case 1:
		v, ok := parseBool(args[0])
		if !ok {
			return inputErrorf(constants.CommandSweepNow, constants.MsgBadBool, args[0])
		}
		ignoreAge = v
	default:
		return inputErrorf(constants.CommandSweepNow, constants.MsgTooManyArguments, constants.CommandSweepNow)
	}

	enabled, err := h.requireEnabled(ctx, inv)
	if err != nil || !enabled {
		return err
	}

	channel, err := h.directory.Channel(ctx, inv.ChannelID)
	if err != nil {
		return fmt.Errorf("look up channel %s: %w", inv.ChannelID, err)
	}

	if ignoreAge {
		outcome, err := h.confirmer.Request(ctx, confirm.Request{
			ChannelID:   inv.ChannelID,
			ReplyToID:   inv.MessageID,
			RequesterID: inv.AuthorID,
			Text:        fmt.Sprintf(constants.MsgConfirmIgnoreAge, messages.ChannelMention(inv.ChannelID)),
		})
		switch {
		case outcome == confirm.Approved:
		case outcome == confirm.Denied:
			return h.responder.React(ctx, inv.reply(), constants.EmojiStop)
		case err == nil || errors.Is(err, ctx.Err()):
			return h.responder.React(context.WithoutCancel(ctx), inv.reply(), constants.EmojiPoop)
		default:
			return err
		}
	}

	minutes, err := h.store.Retention(ctx, inv.ChannelID)
	if err != nil {
		return fmt.Errorf("get retention of %s: %w", inv.ChannelID, err)
	}

	stop := h.responder.StartTyping(ctx, inv.ChannelID)
	defer stop()

	res, err := h.sweeper.Sweep(ctx, sweep.Job{
		Channel:   channel,
		Retention: store.ChannelConfig{RetentionMinutes: minutes}.Retention(),
		IgnoreAge: ignoreAge,
		Trigger:   constants.TriggerManual,
	})
	if err != nil {
		return fmt.Errorf("sweep channel %s: %w", inv.ChannelID, err)
	}

	h.logger.InfoCtx(ctx, "manual sweep finished",
		logger.Field{Key: "channel_id", Value: inv.ChannelID},
		logger.Field{Key: "ignore_age", Value: ignoreAge},
		logger.Field{Key: "deleted", Value: res.Deleted})

	// An ignore-age sweep has deleted the command message itself.
	if ignoreAge {
		return nil
	}
	return h.responder.React(ctx, inv.reply(), constants.EmojiCheck)
}

func (h *Handler) help(ctx context.Context, inv Invocation, args []string) error {
	text, err := HelpText(inv.Invoker, strings.Join(args, " "))
	if err != nil {
		return &InputError{Command: constants.CommandHelp, Message: err.Error()}
	}
	return h.reply(ctx, inv, text)
}

// reportError reacts with the failure emoji and replies according to the
// error category. Internal errors are logged in full and never shown.
func (h *Handler) reportError(ctx context.Context, inv Invocation, err error) {
	if rerr := h.responder.React(ctx, inv.reply(), constants.EmojiPoop); rerr != nil {
		h.logger.WarnCtx(ctx, "failed to react to failed command", logger.Field{Key: "error", Value: rerr})
	}

	var (
		inputErr *InputError
		unknown  *UnknownCommandError
		replies  []string
	)
	switch {
	case errors.As(err, &unknown):
		h.logger.InfoCtx(ctx, "unknown command", logger.Field{Key: "command", Value: unknown.Name})
		overview, _ := HelpText(inv.Invoker, "")
		replies = append(replies, fmt.Sprintf(constants.MsgUnknownCommand, unknown.Name), overview)
	case errors.As(err, &inputErr):
		h.logger.InfoCtx(ctx, "bad command input", logger.Field{Key: "error", Value: inputErr.Message})
		replies = append(replies, inputErr.Message)
		if usage, uerr := HelpText(inv.Invoker, inputErr.Command); uerr == nil {
			replies = append(replies, usage)
		}
	case errors.Is(err, ErrMissingPermission):
		h.logger.WarnCtx(ctx, "command rejected, missing permission",
			logger.Field{Key: "author_id", Value: inv.AuthorID},
			logger.Field{Key: "guild_id", Value: inv.GuildID})
		replies = append(replies, constants.MsgMissingPermission)
	default:
		h.logger.ErrorCtx(ctx, "command failed", err,
			logger.Field{Key: "guild_id", Value: inv.GuildID},
			logger.Field{Key: "channel_id", Value: inv.ChannelID},
			logger.Field{Key: "text", Value: inv.Text})
		replies = append(replies, constants.MsgStroke)
	}

	for _, r := range replies {
		if rerr := h.reply(ctx, inv, r); rerr != nil {
			h.logger.WarnCtx(ctx, "failed to send error reply", logger.Field{Key: "error", Value: rerr})
			return
		}
	}
}

func (h *Handler) reply(ctx context.Context, inv Invocation, content string) error {
	if err := h.responder.Reply(ctx, inv.reply(), content); err != nil {
		return fmt.Errorf("reply: %w", err)
	}
	return nil
}

func (h *Handler) replyf(ctx context.Context, inv Invocation, format string, args ...any) error {
	return h.reply(ctx, inv, fmt.Sprintf(format, args...))
}
