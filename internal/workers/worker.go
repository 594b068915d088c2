package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/aatumaykin/janitor/internal/logger"
)

// worker is the main worker goroutine that processes tasks from the queue.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.DebugCtx(p.ctx, "worker started",
		logger.Field{Key: "worker_id", Value: id})

	for {
		select {
		case <-p.ctx.Done():
			p.logger.DebugCtx(p.ctx, "worker stopping",
				logger.Field{Key: "worker_id", Value: id})
			return
		case task := <-p.taskQueue:
			p.processTask(id, task)
		}
	}
}

// processTask handles a single task execution with metrics and error handling.
func (p *WorkerPool) processTask(workerID int, task Task) {
	startTime := time.Now()

	execCtx := p.ctx
	if task.Context != nil {
		execCtx = task.Context
	}

	result := Result{TaskID: task.ID, Error: p.executeTask(execCtx, task)}
	result.Duration = time.Since(startTime)

	p.count(func(m *PoolMetrics) {
		if result.Error != nil {
			m.TasksFailed++
		} else {
			m.TasksCompleted++
		}
		m.TotalDuration += result.Duration
	})

	p.logger.DebugCtx(execCtx, "task processed",
		logger.Field{Key: "worker_id", Value: workerID},
		logger.Field{Key: "task_id", Value: task.ID},
		logger.Field{Key: "task_type", Value: task.Type},
		logger.Field{Key: "duration_ms", Value: result.Duration.Milliseconds()},
		logger.Field{Key: "error", Value: result.Error})

	if task.OnDone != nil {
		task.OnDone(result)
	}
}

// executeTask runs task.Execute, converting a panic into an error so one bad
// task never takes a worker down.
func (p *WorkerPool) executeTask(ctx context.Context, task Task) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if task.Execute == nil {
		return fmt.Errorf("task %s has nothing to execute", task.ID)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during task execution: %v", r)
			p.logger.ErrorCtx(ctx, "task panic recovered", err,
				logger.Field{Key: "task_id", Value: task.ID})
		}
	}()

	return task.Execute(ctx)
}
