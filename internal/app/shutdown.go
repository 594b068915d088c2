package app

import (
	"errors"
)

// Shutdown performs graceful shutdown of all components.
// It stops the application in the following order:
//  1. Cancels the application context
//  2. Stops the scheduler, so no new sweeps are queued
//  3. Stops the platform connector, so no new commands arrive
//  4. Stops the worker pool, waiting for running sweeps
//  5. Closes the channel store and releases the PID file
//
// Shutdown is idempotent.
func (a *App) Shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.started {
		return nil
	}

	a.cancel()

	var errs []error
	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	if a.connected {
		if err := a.platform.Stop(); err != nil {
			a.logger.Error("failed to stop platform connector", err)
			errs = append(errs, err)
		}
	}

	if a.pool != nil {
		a.pool.Stop()
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("failed to close channel store", err)
			errs = append(errs, err)
		}
	}

	if a.pid != nil {
		if err := a.pid.Release(); err != nil {
			a.logger.Error("failed to release PID file", err)
			errs = append(errs, err)
		}
	}

	a.started, a.connected = false, false
	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
