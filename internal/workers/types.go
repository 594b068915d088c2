// Package workers provides a bounded worker pool for background task execution.
package workers

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrQueueFull is returned by TrySubmit when the task queue has no room.
	ErrQueueFull = errors.New("worker pool queue is full")
	// ErrPoolStopped is returned when submitting to a stopped pool.
	ErrPoolStopped = errors.New("worker pool is stopped")
)

// Task represents a unit of work to be executed by a worker.
type Task struct {
	ID      string                          // Unique task identifier
	Type    string                          // Task type, used in logs
	Context context.Context                 // Task-specific context; defaults to the pool context
	Execute func(ctx context.Context) error // The work itself
	OnDone  func(Result)                    // Optional completion hook
}

// Result represents the outcome of a task execution.
type Result struct {
	TaskID   string
	Error    error
	Duration time.Duration
}

// PoolMetrics tracks execution metrics for the worker pool.
type PoolMetrics struct {
	TasksSubmitted uint64
	TasksCompleted uint64
	TasksFailed    uint64
	TasksRejected  uint64
	TotalDuration  time.Duration
}

const (
	DefaultPoolSize  = 4
	DefaultQueueSize = 100
)
