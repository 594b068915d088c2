package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"

	"github.com/aatumaykin/janitor/internal/constants"
)

// Load загружает конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return finish(&cfg)
}

// LoadOrDefault loads path when it exists and falls back to defaults otherwise.
// The config file is optional: a bare BOT_TOKEN is enough to run.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return finish(&Config{})
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	return Load(path)
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func finish(cfg *Config) (*Config, error) {
	applyDefaults(cfg)

	if err := expandEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("failed to expand environment variables: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return cfg, nil
}

// Validate проверяет валидность конфигурации
func (c *Config) Validate() []error {
	var errs []error

	if c.Store.Path == "" {
		errs = append(errs, fmt.Errorf("store.path is required"))
	} else if err := validatePath(c.Store.Path, "store.path"); err != nil {
		errs = append(errs, err)
	}

	// Проверка расписания
	if c.Sweep.Interval == "" {
		errs = append(errs, fmt.Errorf("sweep.interval is required"))
	} else if _, err := cron.ParseStandard(c.Sweep.Interval); err != nil {
		errs = append(errs, fmt.Errorf("invalid sweep.interval %q: %w", c.Sweep.Interval, err))
	}

	if c.Sweep.DefaultRetentionMinutes < constants.MinRetentionMinutes {
		errs = append(errs, fmt.Errorf("sweep.default_retention_minutes must be >= %d", constants.MinRetentionMinutes))
	}
	if c.Sweep.BatchSize < 1 || c.Sweep.BatchSize > constants.MaxBulkDeleteMessages {
		errs = append(errs, fmt.Errorf("sweep.batch_size must be between 1 and %d (got %d)", constants.MaxBulkDeleteMessages, c.Sweep.BatchSize))
	}
	if c.Sweep.Workers < 1 {
		errs = append(errs, fmt.Errorf("sweep.workers must be >= 1"))
	}
	if c.Sweep.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("sweep.queue_size must be >= 1"))
	}
	if c.Sweep.DeleteRatePerSecond <= 0 {
		errs = append(errs, fmt.Errorf("sweep.delete_rate_per_second must be > 0"))
	}

	if c.Confirm.TimeoutSeconds < 1 {
		errs = append(errs, fmt.Errorf("confirm.timeout_seconds must be >= 1"))
	}

	if c.Discord.Token != "" {
		if err := validateToken(c.Discord.Token); err != nil {
			errs = append(errs, err)
		}
	}

	// Проверка logging config
	if c.Logging.Level == "" {
		errs = append(errs, fmt.Errorf("logging.level is required"))
	} else {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[strings.ToLower(c.Logging.Level)] {
			errs = append(errs, fmt.Errorf("invalid logging.level: %s (expected: debug, info, warn, error)", c.Logging.Level))
		}
	}

	if c.Logging.Format == "" {
		errs = append(errs, fmt.Errorf("logging.format is required"))
	} else {
		validFormats := map[string]bool{"json": true, "text": true}
		if !validFormats[strings.ToLower(c.Logging.Format)] {
			errs = append(errs, fmt.Errorf("invalid logging.format: %s (expected: json, text)", c.Logging.Format))
		}
	}

	if c.Logging.Output == "" {
		errs = append(errs, fmt.Errorf("logging.output is required"))
	}

	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		errs = append(errs, fmt.Errorf("metrics.listen is required when metrics are enabled"))
	}

	return errs
}

func validateToken(token string) error {
	if strings.ContainsAny(token, " \t\r\n") {
		return formatValidationError("discord.token", "must not contain whitespace", token)
	}
	if len(token) < 20 {
		return formatValidationError("discord.token", fmt.Sprintf("is too short (minimum 20 characters, got %d)", len(token)), token)
	}
	return nil
}

func validatePath(path, fieldName string) error {
	if path == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	if strings.HasPrefix(path, "~") {
		return nil
	}

	if strings.Contains(path, "..") {
		return fmt.Errorf("%s contains potentially dangerous path traversal sequence", fieldName)
	}

	return nil
}

// applyDefaults применяет значения по умолчанию
func applyDefaults(c *Config) {
	if c.Discord.TokenFile == "" {
		c.Discord.TokenFile = constants.DefaultTokenFile
	}

	if c.Store.Path == "" {
		c.Store.Path = constants.DefaultDBPath
	}

	if c.Sweep.Interval == "" {
		c.Sweep.Interval = constants.DefaultSweepInterval
	}
	if c.Sweep.DefaultRetentionMinutes == 0 {
		c.Sweep.DefaultRetentionMinutes = constants.DefaultRetentionMinutes
	}
	if c.Sweep.BatchSize == 0 {
		c.Sweep.BatchSize = constants.MaxBulkDeleteMessages
	}
	if c.Sweep.Workers == 0 {
		c.Sweep.Workers = constants.DefaultSweepWorkers
	}
	if c.Sweep.QueueSize == 0 {
		c.Sweep.QueueSize = constants.DefaultSweepQueueSize
	}
	if c.Sweep.DeleteRatePerSecond == 0 {
		c.Sweep.DeleteRatePerSecond = constants.DefaultDeleteRate
	}

	if c.Confirm.TimeoutSeconds == 0 {
		c.Confirm.TimeoutSeconds = int(constants.DefaultConfirmTimeout.Seconds())
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}

	if c.Metrics.Listen == "" {
		c.Metrics.Listen = constants.DefaultMetricsListen
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = constants.DefaultMetricsNamespace
	}
}

// expandEnvVars расширяет переменные окружения в конфигурации
func expandEnvVars(c *Config) error {
	if strings.HasPrefix(c.Discord.Token, "${") {
		c.Discord.Token = expandEnv(c.Discord.Token)
	}

	if strings.HasPrefix(c.Discord.TokenFile, "${") {
		c.Discord.TokenFile = expandEnv(c.Discord.TokenFile)
	}
	c.Discord.TokenFile = expandHome(c.Discord.TokenFile)

	if strings.HasPrefix(c.Store.Path, "${") {
		c.Store.Path = expandEnv(c.Store.Path)
	}
	c.Store.Path = expandHome(c.Store.Path)

	if strings.HasPrefix(c.Logging.Output, "${") {
		c.Logging.Output = expandEnv(c.Logging.Output)
	}

	return nil
}

// expandEnv расширяет переменную окружения формата ${VAR:default}
func expandEnv(s string) string {
	if !strings.HasPrefix(s, "${") {
		return s
	}

	end := strings.Index(s, "}")
	if end == -1 {
		return s
	}

	content := s[2:end]
	if parts := strings.SplitN(content, ":", 2); len(parts) == 2 {
		key := parts[0]
		defaultVal := parts[1]
		if val := os.Getenv(key); val != "" {
			return val
		}
		return defaultVal
	}

	// Без значения по умолчанию
	return os.Getenv(content)
}

// expandHome расширяет ~ в пути
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
