package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aatumaykin/janitor/internal/channels/discord"
	"github.com/aatumaykin/janitor/internal/commands"
	"github.com/aatumaykin/janitor/internal/confirm"
	"github.com/aatumaykin/janitor/internal/constants"
	"github.com/aatumaykin/janitor/internal/logger"
	"github.com/aatumaykin/janitor/internal/pidfile"
	"github.com/aatumaykin/janitor/internal/scheduler"
	"github.com/aatumaykin/janitor/internal/store"
	"github.com/aatumaykin/janitor/internal/sweep"
	"github.com/aatumaykin/janitor/internal/workers"
)

// Initialize builds and starts all components. On error the components
// started so far are left for Shutdown to stop.
func (a *App) Initialize(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// 1. Application context
	a.ctx, a.cancel = context.WithCancel(ctx)
	a.started = true

	// 2. Single instance guard
	pid, err := pidfile.Acquire(a.config.PIDFile(constants.PIDFileName))
	if err != nil {
		return err
	}
	a.pid = pid

	// 3. Metrics
	a.registry = prometheus.NewRegistry()
	var (
		sweepMetrics   *sweep.PrometheusMetrics
		confirmMetrics *confirm.PrometheusMetrics
	)
	if a.config.Metrics.Enabled {
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		sweepMetrics = sweep.InitPrometheusMetrics(a.config.Metrics.Namespace, a.registry)
		confirmMetrics = confirm.InitPrometheusMetrics(a.config.Metrics.Namespace, a.registry)
		a.metricsServer = newMetricsServer(a.config.Metrics.Listen, a.registry)
	}

	// 4. Channel store
	st, err := store.Open(a.config.Store.Path,
		store.WithLogger(a.logger),
		store.WithDefaultRetention(a.config.Sweep.DefaultRetentionMinutes))
	if err != nil {
		return fmt.Errorf("failed to open channel store: %w", err)
	}
	a.store = st

	// 5. Platform connector
	if a.platform == nil {
		conn, err := discord.New(a.token,
			discord.WithLogger(a.logger.With(logger.Field{Key: "component", Value: "discord"})),
			discord.WithLogLevel(a.config.Logging.Level),
			discord.WithCommandPrefix(a.config.Discord.CommandPrefix),
			discord.WithStatus(a.config.Sweep.StatusEnabled()),
			discord.WithDeleteRate(a.config.Sweep.DeleteRatePerSecond))
		if err != nil {
			return err
		}
		discord.InstallLogBridge(a.logger)
		a.platform = conn
	}

	// 6. Sweep engine, pool and resolver
	a.pool = workers.NewPool(a.config.Sweep.Workers, a.config.Sweep.QueueSize, a.logger)
	a.pool.Start()

	a.engine = sweep.NewEngine(sweep.Config{
		History:   a.platform,
		Deleter:   a.platform,
		Status:    a.platform,
		Metrics:   sweepMetrics,
		Logger:    a.logger.With(logger.Field{Key: "component", Value: "sweep"}),
		BatchSize: a.config.Sweep.BatchSize,
	})
	resolver := sweep.NewResolver(a.platform, a.logger)

	// 7. Confirmation gate and commands
	a.gate = confirm.NewGate(a.platform,
		confirm.WithTimeout(a.config.Confirm.Timeout()),
		confirm.WithLogger(a.logger),
		confirm.WithMetrics(confirmMetrics))

	a.handler = commands.NewHandler(commands.Deps{
		Store:     a.store,
		Responder: a.platform,
		Directory: a.platform,
		Resolver:  resolver,
		Sweeper:   a.engine,
		Confirmer: a.gate,
		Logger:    a.logger.With(logger.Field{Key: "component", Value: "commands"}),
	})
	a.platform.SetHandlers(a.handler, a.gate)

	// 8. Scheduler, gated on the platform being ready
	sched, err := scheduler.New(scheduler.Config{
		Spec:     a.config.Sweep.Interval,
		Ready:    a.platform.Ready(),
		Guilds:   a.platform,
		Store:    a.store,
		Resolver: resolver,
		Sweeper:  a.engine,
		Pool:     a.pool,
		Metrics:  sweepMetrics,
		Logger:   a.logger.With(logger.Field{Key: "component", Value: "scheduler"}),
	})
	if err != nil {
		return err
	}
	a.scheduler = sched

	// 9. Connect and start the schedule
	if err := a.platform.Start(a.ctx); err != nil {
		return fmt.Errorf("failed to start platform connector: %w", err)
	}
	a.connected = true
	if err := a.scheduler.Start(a.ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	a.logger.Info("components initialized",
		logger.Field{Key: "db", Value: a.config.Store.Path},
		logger.Field{Key: "schema_version", Value: a.store.SchemaVersion()},
		logger.Field{Key: "sweep_interval", Value: a.config.Sweep.Interval},
		logger.Field{Key: "workers", Value: a.pool.WorkerCount()},
		logger.Field{Key: "metrics", Value: a.config.Metrics.Enabled})
	return nil
}

func newMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promHandler(reg))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
