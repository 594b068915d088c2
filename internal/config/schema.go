// Package config provides configuration loading and validation for janitor.
// It supports TOML configuration files with environment variable expansion,
// default values, environment overrides and validation.
//
// Configuration structure:
//   - [discord]: Bot token, token file and optional command prefix
//   - [store]: Location of the SQLite database
//   - [sweep]: Schedule, retention default, batching and concurrency
//   - [confirm]: Confirmation prompt timeout
//   - [logging]: Logging level, format, and output
//   - [metrics]: Prometheus endpoint
//
// Environment variables:
// Values can reference ${VAR} or ${VAR:default}. BOT_TOKEN, JANITOR_LOG_LEVEL
// and JANITOR_DB_PATH override the file when set.
package config

import (
	"path/filepath"
	"time"
)

// Config represents the main application configuration.
type Config struct {
	Discord DiscordConfig `toml:"discord" yaml:"discord"`
	Store   StoreConfig   `toml:"store" yaml:"store"`
	Sweep   SweepConfig   `toml:"sweep" yaml:"sweep"`
	Confirm ConfirmConfig `toml:"confirm" yaml:"confirm"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Metrics MetricsConfig `toml:"metrics" yaml:"metrics"`
}

// DiscordConfig представляет конфигурацию подключения к Discord
type DiscordConfig struct {
	Token     string `toml:"token" yaml:"token"`
	TokenFile string `toml:"token_file" yaml:"token_file"`
	// CommandPrefix is accepted in addition to a bot mention. Empty means mention only.
	CommandPrefix string `toml:"command_prefix" yaml:"command_prefix"`
}

// StoreConfig представляет конфигурацию хранилища
type StoreConfig struct {
	Path string `toml:"path" yaml:"path"`
}

// SweepConfig представляет конфигурацию периодической очистки
type SweepConfig struct {
	Interval                string  `toml:"interval" yaml:"interval"`
	DefaultRetentionMinutes int     `toml:"default_retention_minutes" yaml:"default_retention_minutes"`
	BatchSize               int     `toml:"batch_size" yaml:"batch_size"`
	Workers                 int     `toml:"workers" yaml:"workers"`
	QueueSize               int     `toml:"queue_size" yaml:"queue_size"`
	DeleteRatePerSecond     float64 `toml:"delete_rate_per_second" yaml:"delete_rate_per_second"`
	ShowStatus              *bool   `toml:"show_status" yaml:"show_status"`
}

// StatusEnabled reports whether the busy presence should be shown while sweeping.
func (s SweepConfig) StatusEnabled() bool {
	return s.ShowStatus == nil || *s.ShowStatus
}

// ConfirmConfig представляет конфигурацию подтверждения
type ConfirmConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds" yaml:"timeout_seconds"`
}

// Timeout returns the confirmation wait as a duration.
func (c ConfirmConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoggingConfig представляет конфигурацию логирования
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
	Output string `toml:"output" yaml:"output"`
}

// MetricsConfig представляет конфигурацию Prometheus
type MetricsConfig struct {
	Enabled   bool   `toml:"enabled" yaml:"enabled"`
	Listen    string `toml:"listen" yaml:"listen"`
	Namespace string `toml:"namespace" yaml:"namespace"`
}

// PIDFile returns the single-instance guard path, kept next to the database.
func (c *Config) PIDFile(name string) string {
	return filepath.Join(filepath.Dir(c.Store.Path), name)
}
