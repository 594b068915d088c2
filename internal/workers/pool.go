package workers

import (
	"context"
	"sync"

	"github.com/aatumaykin/janitor/internal/logger"
)

// WorkerPool manages a pool of goroutine workers for concurrent task execution.
type WorkerPool struct {
	taskQueue chan Task
	workers   int
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	logger    *logger.Logger

	mu      sync.RWMutex // guards stopped
	stopped bool

	metricsMu sync.RWMutex
	metrics   PoolMetrics
}

// NewPool creates a new worker pool. Non-positive sizes fall back to defaults.
func NewPool(workers int, bufferSize int, log *logger.Logger) *WorkerPool {
	if workers <= 0 {
		workers = DefaultPoolSize
	}
	if bufferSize <= 0 {
		bufferSize = DefaultQueueSize
	}
	if log == nil {
		log = logger.Nop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		taskQueue: make(chan Task, bufferSize),
		workers:   workers,
		ctx:       ctx,
		cancel:    cancel,
		logger:    log,
	}
}

// Start initializes and starts all worker goroutines.
func (p *WorkerPool) Start() {
	p.logger.Info("starting worker pool",
		logger.Field{Key: "workers", Value: p.workers},
		logger.Field{Key: "buffer_size", Value: cap(p.taskQueue)})

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// TrySubmit enqueues task without blocking.
func (p *WorkerPool) TrySubmit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.taskQueue <- task:
		p.logger.DebugCtx(p.ctx, "task submitted",
			logger.Field{Key: "task_id", Value: task.ID},
			logger.Field{Key: "task_type", Value: task.Type})
		p.count(func(m *PoolMetrics) { m.TasksSubmitted++ })
		return nil
	default:
		p.count(func(m *PoolMetrics) { m.TasksRejected++ })
		return ErrQueueFull
	}
}

// SubmitWithContext waits for queue room until ctx is done.
func (p *WorkerPool) SubmitWithContext(ctx context.Context, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.taskQueue <- task:
		p.count(func(m *PoolMetrics) { m.TasksSubmitted++ })
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolStopped
	}
}

// Stop cancels the pool context, which cancels running tasks, and waits for
// the workers to exit. Queued tasks that have not started are dropped.
func (p *WorkerPool) Stop() {
	p.cancel()

	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	p.wg.Wait()

	metrics := p.Metrics()
	p.logger.Info("worker pool stopped",
		logger.Field{Key: "tasks_submitted", Value: metrics.TasksSubmitted},
		logger.Field{Key: "tasks_completed", Value: metrics.TasksCompleted},
		logger.Field{Key: "tasks_failed", Value: metrics.TasksFailed},
		logger.Field{Key: "tasks_rejected", Value: metrics.TasksRejected},
		logger.Field{Key: "tasks_dropped", Value: len(p.taskQueue)})
}

// WorkerCount returns the number of workers.
func (p *WorkerPool) WorkerCount() int {
	return p.workers
}

// QueueSize returns the current number of tasks waiting in the queue.
func (p *WorkerPool) QueueSize() int {
	return len(p.taskQueue)
}
