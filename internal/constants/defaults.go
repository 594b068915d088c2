package constants

import "time"

const (
	// DefaultRetentionMinutes is applied to newly added channels and to
	// lookups of channels that have no stored row.
	DefaultRetentionMinutes = 5

	// MinRetentionMinutes is the lower clamp for any retention write.
	MinRetentionMinutes = 1

	// MaxBulkDeleteMessages is the platform ceiling for one bulk delete call.
	MaxBulkDeleteMessages = 100

	// DefaultSweepInterval is the cron spec of the recurring sweep.
	DefaultSweepInterval = "@every 1m"

	// DefaultConfirmTimeout bounds the wait for an approval reaction.
	DefaultConfirmTimeout = 15 * time.Second

	DefaultSweepWorkers   = 4
	DefaultSweepQueueSize = 100

	// DefaultDeleteRate paces single-message deletes (messages/second).
	DefaultDeleteRate = 5.0

	// BulkDeleteMaxAge is the oldest message the platform accepts in a bulk delete.
	BulkDeleteMaxAge = 14 * 24 * time.Hour

	DefaultMetricsNamespace = "janitor"
	DefaultMetricsListen    = "127.0.0.1:9464"
)
