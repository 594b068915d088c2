// Package confirm implements the approve/deny/timeout round-trip that guards
// destructive sweeps.
package confirm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/aatumaykin/janitor/internal/constants"
	"github.com/aatumaykin/janitor/internal/logger"
	"github.com/aatumaykin/janitor/internal/platform"
)

// Outcome is the resolution of a confirmation request.
type Outcome int

const (
	TimedOut Outcome = iota
	Approved
	Denied
)

func (o Outcome) String() string {
	switch o {
	case Approved:
		return "approved"
	case Denied:
		return "denied"
	default:
		return "timed_out"
	}
}

// Prompter posts and removes the prompt message and its reaction options.
type Prompter interface {
	SendPrompt(ctx context.Context, channelID, replyToID, text string) (messageID string, err error)
	AddOption(ctx context.Context, channelID, messageID, emoji string) error
	DeletePrompt(ctx context.Context, channelID, messageID string) error
}

// Request describes one confirmation.
type Request struct {
	ChannelID   string
	ReplyToID   string
	RequesterID string
	Text        string
}

type pending struct {
	id          uuid.UUID
	requesterID string
	events      chan platform.ReactionEvent
}

// Gate runs confirmations. Reaction events are fed in through Dispatch.
type Gate struct {
	prompter Prompter
	timeout  time.Duration
	log      *logger.Logger
	metrics  *PrometheusMetrics

	affirmative string
	negative    string

	mu      sync.Mutex
	waiters map[string]*pending
}

// Option configures a Gate.
type Option func(*Gate)

func WithTimeout(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(g *Gate) { g.log = log }
}

func WithMetrics(m *PrometheusMetrics) Option {
	return func(g *Gate) { g.metrics = m }
}

func NewGate(prompter Prompter, opts ...Option) *Gate {
	g := &Gate{
		prompter:    prompter,
		timeout:     constants.DefaultConfirmTimeout,
		log:         logger.Nop(),
		affirmative: normalizeEmoji(constants.EmojiCheck),
		negative:    normalizeEmoji(constants.EmojiCross),
		waiters:     make(map[string]*pending),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Request posts the prompt and waits for the requester to pick an option.
// Reactions from anyone else, or with any other emoji, are ignored. The
// prompt is deleted on every path. Cancellation of ctx resolves to TimedOut
// together with the context error.
func (g *Gate) Request(ctx context.Context, req Request) (outcome Outcome, err error) {
	promptID, err := g.prompter.SendPrompt(ctx, req.ChannelID, req.ReplyToID, req.Text)
	if err != nil {
		return TimedOut, fmt.Errorf("send confirmation prompt: %w", err)
	}

	p := &pending{
		id:          uuid.New(),
		requesterID: req.RequesterID,
		events:      make(chan platform.ReactionEvent, 8),
	}
	g.register(promptID, p)

	log := g.log.With(
		logger.Field{Key: "confirmation_id", Value: p.id.String()},
		logger.Field{Key: "channel_id", Value: req.ChannelID},
		logger.Field{Key: "requester_id", Value: req.RequesterID})

	started := time.Now()
	defer func() {
		g.unregister(promptID)
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if derr := g.prompter.DeletePrompt(cleanupCtx, req.ChannelID, promptID); derr != nil {
			log.Warn("failed to delete confirmation prompt", logger.Field{Key: "error", Value: derr})
		}
		g.metrics.Record(outcome, time.Since(started))
		log.Debug("confirmation resolved", logger.Field{Key: "outcome", Value: outcome.String()})
	}()

	for _, emoji := range []string{constants.EmojiCheck, constants.EmojiCross} {
		if err := g.prompter.AddOption(ctx, req.ChannelID, promptID, emoji); err != nil {
			return TimedOut, fmt.Errorf("add confirmation option %s: %w", emoji, err)
		}
	}

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	for {
		select {
		case ev := <-p.events:
			if ev.UserID != p.requesterID {
				continue
			}
			switch normalizeEmoji(ev.Emoji) {
			case g.affirmative:
				return Approved, nil
			case g.negative:
				return Denied, nil
			}
		case <-timer.C:
			return TimedOut, nil
		case <-ctx.Done():
			return TimedOut, ctx.Err()
		}
	}
}

// Dispatch routes a reaction to the waiter of its message. It never blocks;
// events for unknown messages are dropped.
func (g *Gate) Dispatch(ev platform.ReactionEvent) {
	g.mu.Lock()
	p, ok := g.waiters[ev.MessageID]
	g.mu.Unlock()
	if !ok {
		return
	}

	select {
	case p.events <- ev:
	default:
		g.log.Debug("confirmation event dropped, waiter busy",
			logger.Field{Key: "message_id", Value: ev.MessageID})
	}
}

// Pending returns the number of unresolved confirmations.
func (g *Gate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.waiters)
}

func (g *Gate) register(promptID string, p *pending) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.waiters[promptID] = p
}

func (g *Gate) unregister(promptID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.waiters, promptID)
}

// normalizeEmoji folds an emoji to NFC and strips the variation selector so
// "✅" and "✅\uFE0F" compare equal.
func normalizeEmoji(s string) string {
	s = norm.NFC.String(s)
	for _, vs := range []string{"\uFE0F", "\uFE0E"} {
		s = strings.TrimSuffix(s, vs)
	}
	return s
}
