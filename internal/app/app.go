// Package app wires janitor together: the channel store, the Discord
// connector, the sweep engine with its worker pool and scheduler, the
// confirmation gate and the command handler.
package app

import (
	"context"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/aatumaykin/janitor/internal/channels/discord"
	"github.com/aatumaykin/janitor/internal/commands"
	"github.com/aatumaykin/janitor/internal/config"
	"github.com/aatumaykin/janitor/internal/confirm"
	"github.com/aatumaykin/janitor/internal/logger"
	"github.com/aatumaykin/janitor/internal/pidfile"
	"github.com/aatumaykin/janitor/internal/scheduler"
	"github.com/aatumaykin/janitor/internal/store"
	"github.com/aatumaykin/janitor/internal/sweep"
	"github.com/aatumaykin/janitor/internal/workers"
)

// Platform is everything janitor needs from the chat platform.
// *discord.Connector implements it.
type Platform interface {
	Start(ctx context.Context) error
	Stop() error
	Ready() <-chan struct{}
	SetHandlers(cmd discord.CommandHandler, reactions discord.ReactionDispatcher)

	sweep.HistorySource
	sweep.BulkDeleter
	sweep.StatusSetter
	commands.Responder
	commands.Directory
	confirm.Prompter
	scheduler.GuildLister
}

// App represents the main application structure.
// It holds references to all major components and manages their lifecycle.
type App struct {
	config *config.Config
	logger *logger.Logger
	token  string

	store     *store.SQLiteStore
	platform  Platform
	pool      *workers.WorkerPool
	engine    *sweep.Engine
	gate      *confirm.Gate
	handler   *commands.Handler
	scheduler *scheduler.Scheduler
	pid       *pidfile.PIDFile

	registry      *prometheus.Registry
	metricsServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	started   bool
	connected bool
}

// Option configures an App.
type Option func(*App)

// WithPlatform replaces the Discord connector, e.g. with a test double.
func WithPlatform(p Platform) Option {
	return func(a *App) { a.platform = p }
}

// New creates a new App. Components are built in Initialize.
func New(cfg *config.Config, log *logger.Logger, token string, opts ...Option) *App {
	a := &App{
		config: cfg,
		logger: log,
		token:  token,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run initializes every component and blocks until ctx is cancelled or the
// metrics server fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	if err := a.Initialize(ctx); err != nil {
		if serr := a.Shutdown(); serr != nil {
			a.logger.Error("shutdown after failed start", serr)
		}
		return err
	}

	a.logger.Info("janitor is running")

	g, gctx := errgroup.WithContext(a.ctx)
	if a.metricsServer != nil {
		g.Go(func() error { return a.serveMetrics(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	runErr := g.Wait()
	if err := a.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Handler exposes the command handler.
func (a *App) Handler() *commands.Handler {
	return a.handler
}

// Scheduler exposes the sweep scheduler.
func (a *App) Scheduler() *scheduler.Scheduler {
	return a.scheduler
}
