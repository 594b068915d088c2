// Package scheduler runs the recurring sweep of every configured channel.
// It uses robfig/cron/v3 for the trigger and hands each channel sweep to the
// worker pool as an independent task.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aatumaykin/janitor/internal/constants"
	"github.com/aatumaykin/janitor/internal/logger"
	"github.com/aatumaykin/janitor/internal/platform"
	"github.com/aatumaykin/janitor/internal/store"
	"github.com/aatumaykin/janitor/internal/sweep"
	"github.com/aatumaykin/janitor/internal/workers"
)

// GuildLister enumerates the guilds the bot is a member of.
type GuildLister interface {
	Guilds(ctx context.Context) ([]platform.Guild, error)
}

// ChannelStore is the read side of the channel configuration store.
type ChannelStore interface {
	ListByGuild(ctx context.Context, guildID string) ([]store.ChannelConfig, error)
}

// ChannelResolver maps stored ids to live channels.
type ChannelResolver interface {
	Resolve(ctx context.Context, guildID string, ids []string) ([]platform.Channel, error)
}

// Sweeper runs one channel sweep.
type Sweeper interface {
	Sweep(ctx context.Context, job sweep.Job) (sweep.Result, error)
}

// TaskPool accepts tasks without blocking.
type TaskPool interface {
	TrySubmit(task workers.Task) error
}

// Config holds the scheduler collaborators.
type Config struct {
	Spec     string
	Ready    <-chan struct{}
	Guilds   GuildLister
	Store    ChannelStore
	Resolver ChannelResolver
	Sweeper  Sweeper
	Pool     TaskPool
	Metrics  *sweep.PrometheusMetrics
	Logger   *logger.Logger
}

// TickSummary describes what one tick did.
type TickSummary struct {
	Guilds       int
	Channels     int
	Submitted    int
	SkippedBusy  int
	Dropped      int
	FailedGuilds int
}

// Scheduler fires a sweep of every configured channel on a cron schedule,
// starting only once the platform connection is ready.
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	ready    <-chan struct{}
	guilds   GuildLister
	store    ChannelStore
	resolver ChannelResolver
	sweeper  Sweeper
	pool     TaskPool
	metrics  *sweep.PrometheusMetrics
	logger   *logger.Logger

	mu      sync.Mutex
	started bool
	entryID cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

// New creates a scheduler. The cron expression is validated here so a bad schedule
// fails at startup rather than at the first tick.
func New(cfg Config) (*Scheduler, error) {
	spec := cfg.Spec
	if spec == "" {
		spec = constants.DefaultSweepInterval
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(spec); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}

	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		spec:     spec,
		ready:    cfg.Ready,
		guilds:   cfg.Guilds,
		store:    cfg.Store,
		resolver: cfg.Resolver,
		sweeper:  cfg.Sweeper,
		pool:     cfg.Pool,
		metrics:  cfg.Metrics,
		logger:   log,
		inflight: make(map[string]struct{}),
	}, nil
}

// Start returns immediately. A background goroutine waits for the ready
// signal, registers the recurring entry and runs one tick right away.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("scheduler already started")
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(s.ctx)
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	if s.ready != nil {
		s.logger.Info("sweep scheduler waiting for platform connection")
		select {
		case <-s.ready:
		case <-ctx.Done():
			return
		}
	}

	id, err := s.cron.AddFunc(s.spec, func() { s.Tick(ctx) })
	if err != nil {
		s.logger.Error("failed to register sweep schedule", err, logger.Field{Key: "spec", Value: s.spec})
		return
	}

	s.mu.Lock()
	s.entryID = id
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("sweep scheduler started", logger.Field{Key: "spec", Value: s.spec})

	s.Tick(ctx)

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("sweep scheduler stopped")
}

// Stop cancels the trigger and waits for a running tick to return.
// Sweeps already handed to the pool are owned by the pool.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Next returns the time of the next scheduled tick, or zero before the
// scheduler is running.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	id := s.entryID
	s.mu.Unlock()

	if id == 0 {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Tick sweeps every configured channel of every guild once. Failures are
// isolated per guild and per channel.
func (s *Scheduler) Tick(ctx context.Context) TickSummary {
	var summary TickSummary

	guilds, err := s.guilds.Guilds(ctx)
	if err != nil {
		s.logger.ErrorCtx(ctx, "failed to list guilds", err)
		return summary
	}
	summary.Guilds = len(guilds)

	for _, guild := range guilds {
		if ctx.Err() != nil {
			break
		}
		if err := s.tickGuild(ctx, guild, &summary); err != nil {
			summary.FailedGuilds++
			s.logger.ErrorCtx(ctx, "skipping guild for this tick", err,
				logger.Field{Key: "guild_id", Value: guild.ID},
				logger.Field{Key: "guild", Value: guild.Name})
		}
	}

	s.logger.DebugCtx(ctx, "sweep tick finished",
		logger.Field{Key: "guilds", Value: summary.Guilds},
		logger.Field{Key: "channels", Value: summary.Channels},
		logger.Field{Key: "submitted", Value: summary.Submitted},
		logger.Field{Key: "skipped_busy", Value: summary.SkippedBusy},
		logger.Field{Key: "dropped", Value: summary.Dropped})
	return summary
}

func (s *Scheduler) tickGuild(ctx context.Context, guild platform.Guild, summary *TickSummary) error {
	configs, err := s.store.ListByGuild(ctx, guild.ID)
	if err != nil {
		return fmt.Errorf("read channel configuration: %w", err)
	}
	if len(configs) == 0 {
		return nil
	}

	ids := make([]string, len(configs))
	retention := make(map[string]time.Duration, len(configs))
	for i, c := range configs {
		ids[i] = c.ChannelID
		retention[c.ChannelID] = c.Retention()
	}

	channels, err := s.resolver.Resolve(ctx, guild.ID, ids)
	if err != nil {
		return fmt.Errorf("resolve channels: %w", err)
	}

	for _, ch := range channels {
		summary.Channels++
		s.submit(ctx, sweep.Job{
			Channel:   ch,
			Retention: retention[ch.ID],
			Trigger:   constants.TriggerScheduled,
		}, summary)
	}
	return nil
}

func (s *Scheduler) submit(ctx context.Context, job sweep.Job, summary *TickSummary) {
	fields := []logger.Field{
		{Key: "guild_id", Value: job.Channel.GuildID},
		{Key: "channel_id", Value: job.Channel.ID},
		{Key: "channel", Value: job.Channel.Name},
	}

	if !s.claim(job.Channel.ID) {
		summary.SkippedBusy++
		s.metrics.RecordSkipped()
		s.logger.DebugCtx(ctx, "channel still being swept, skipping", fields...)
		return
	}

	err := s.pool.TrySubmit(workers.Task{
		ID:   "sweep:" + job.Channel.ID,
		Type: constants.TriggerScheduled,
		Execute: func(taskCtx context.Context) error {
			_, err := s.sweeper.Sweep(taskCtx, job)
			return err
		},
		OnDone: func(r workers.Result) {
			s.release(job.Channel.ID)
		},
	})
	if err != nil {
		s.release(job.Channel.ID)
		summary.Dropped++
		if errors.Is(err, workers.ErrQueueFull) {
			s.logger.WarnCtx(ctx, "sweep queue full, dropping channel for this tick", fields...)
			return
		}
		s.logger.ErrorCtx(ctx, "failed to submit sweep", err, fields...)
		return
	}
	summary.Submitted++
}

func (s *Scheduler) claim(channelID string) bool {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()

	if _, busy := s.inflight[channelID]; busy {
		return false
	}
	s.inflight[channelID] = struct{}{}
	return true
}

func (s *Scheduler) release(channelID string) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	delete(s.inflight, channelID)
}
