// Package sweep deletes aged, unpinned messages from a channel in bounded
// batches and resolves stored channel ids to live channels.
package sweep

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/aatumaykin/janitor/internal/constants"
	"github.com/aatumaykin/janitor/internal/logger"
	"github.com/aatumaykin/janitor/internal/platform"
)

// HistorySource pages a channel's history lazily, newest first.
type HistorySource interface {
	History(ctx context.Context, channelID string) iter.Seq2[platform.Message, error]
}

// BulkDeleter deletes up to constants.MaxBulkDeleteMessages messages in one call.
type BulkDeleter interface {
	DeleteMessages(ctx context.Context, channelID string, messages []platform.Message) error
}

// StatusSetter controls the process-wide presence. It is best-effort shared
// state: concurrent sweeps overwrite each other's status.
type StatusSetter interface {
	SetBusy(ctx context.Context, channel platform.Channel) error
	SetIdle(ctx context.Context) error
}

// Job is one sweep invocation.
type Job struct {
	Channel   platform.Channel
	Retention time.Duration
	IgnoreAge bool
	Trigger   string
}

// Result summarizes a sweep.
type Result struct {
	Scanned  int
	Deleted  int
	Batches  int
	Duration time.Duration
}

// Config holds the engine collaborators. Status and Metrics are optional.
type Config struct {
	History   HistorySource
	Deleter   BulkDeleter
	Status    StatusSetter
	Metrics   *PrometheusMetrics
	Logger    *logger.Logger
	BatchSize int
	Now       func() time.Time
}

// Engine runs sweeps. Sweeps of different channels run concurrently; sweeps
// of the same channel are serialized.
type Engine struct {
	history   HistorySource
	deleter   BulkDeleter
	status    StatusSetter
	metrics   *PrometheusMetrics
	log       *logger.Logger
	locks     *KeyedMutex
	batchSize int
	now       func() time.Time
}

func NewEngine(cfg Config) *Engine {
	batch := cfg.BatchSize
	if batch <= 0 || batch > constants.MaxBulkDeleteMessages {
		batch = constants.MaxBulkDeleteMessages
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Engine{
		history:   cfg.History,
		deleter:   cfg.Deleter,
		status:    cfg.Status,
		metrics:   cfg.Metrics,
		log:       log,
		locks:     NewKeyedMutex(),
		batchSize: batch,
		now:       now,
	}
}

// Sweep deletes every unpinned message of job.Channel that is at least
// job.Retention old (or every unpinned message when IgnoreAge is set).
// It waits for a running sweep of the same channel to finish first.
func (e *Engine) Sweep(ctx context.Context, job Job) (Result, error) {
	unlock, err := e.locks.Lock(ctx, job.Channel.ID)
	if err != nil {
		return Result{}, fmt.Errorf("wait for channel %s: %w", job.Channel.ID, err)
	}
	defer unlock()

	return e.run(ctx, job)
}

// Busy reports whether channelID is being swept right now.
func (e *Engine) Busy(channelID string) bool {
	unlock, ok := e.locks.TryLock(channelID)
	if ok {
		unlock()
	}
	return !ok
}

func (e *Engine) run(ctx context.Context, job Job) (res Result, err error) {
	start := e.now()
	log := e.log.With(
		logger.Field{Key: "sweep_id", Value: uuid.NewString()},
		logger.Field{Key: "channel_id", Value: job.Channel.ID},
		logger.Field{Key: "channel", Value: job.Channel.Name},
		logger.Field{Key: "trigger", Value: job.Trigger},
	)

	e.metrics.SweepStarted()
	defer func() {
		res.Duration = e.now().Sub(start)
		e.metrics.SweepFinished()
		e.metrics.RecordRun(job.Trigger, res, err)
		if err != nil {
			log.Error("sweep failed", err,
				logger.Field{Key: "deleted", Value: res.Deleted},
				logger.Field{Key: "scanned", Value: res.Scanned})
			return
		}
		log.Debug("sweep finished",
			logger.Field{Key: "deleted", Value: res.Deleted},
			logger.Field{Key: "scanned", Value: res.Scanned},
			logger.Field{Key: "batches", Value: res.Batches},
			logger.Field{Key: "duration", Value: res.Duration})
	}()

	if e.status != nil {
		if serr := e.status.SetBusy(ctx, job.Channel); serr != nil {
			log.Warn("failed to set busy status", logger.Field{Key: "error", Value: serr})
		}
		defer func() {
			if serr := e.status.SetIdle(context.WithoutCancel(ctx)); serr != nil {
				log.Warn("failed to restore idle status", logger.Field{Key: "error", Value: serr})
			}
		}()
	}

	cutoff := start.Add(-job.Retention)
	batch := make([]platform.Message, 0, e.batchSize)

	for msg, herr := range e.history.History(ctx, job.Channel.ID) {
		if herr != nil {
			return res, fmt.Errorf("read history of %s: %w", job.Channel.ID, herr)
		}
		res.Scanned++

		if !eligible(msg, job.IgnoreAge, cutoff) {
			continue
		}

		batch = append(batch, msg)
		if len(batch) == e.batchSize {
			if err := e.flush(ctx, job.Channel.ID, batch, &res); err != nil {
				return res, err
			}
			batch = make([]platform.Message, 0, e.batchSize)
		}
	}

	if err := e.flush(ctx, job.Channel.ID, batch, &res); err != nil {
		return res, err
	}
	return res, nil
}

func eligible(msg platform.Message, ignoreAge bool, cutoff time.Time) bool {
	if msg.Pinned {
		return false
	}
	return ignoreAge || !msg.CreatedAt.After(cutoff)
}

// flush deletes batch in one call. An empty batch is a no-op.
func (e *Engine) flush(ctx context.Context, channelID string, batch []platform.Message, res *Result) error {
	if len(batch) == 0 {
		return nil
	}

	e.metrics.RecordDeleteCall()
	if err := e.deleter.DeleteMessages(ctx, channelID, batch); err != nil {
		return fmt.Errorf("delete %d messages in %s: %w", len(batch), channelID, err)
	}

	res.Batches++
	res.Deleted += len(batch)
	return nil
}
