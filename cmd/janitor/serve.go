package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/janitor/internal/app"
	"github.com/aatumaykin/janitor/internal/config"
	"github.com/aatumaykin/janitor/internal/constants"
	"github.com/aatumaykin/janitor/internal/logger"
	"github.com/aatumaykin/janitor/internal/messages"
)

// errNeedToken is printed as is when no bot token can be found.
var errNeedToken = errors.New(constants.MsgNeedToken + "\n" + constants.MsgNeedTokenHint)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Connect to Discord and start sweeping (default command)",
	Long: `Connect to Discord, answer admin commands and sweep the configured
channels on schedule until interrupted.`,
	Args: cobra.NoArgs,
	RunE: serveHandler,
}

// loadConfig loads .env, the optional config file and flag overrides, then
// validates the result.
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnvOptional(envPath); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
	}

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errors.New(messages.FormatValidationErrors(errs))
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

func serveHandler(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	token, err := cfg.ResolveToken()
	if errors.Is(err, config.ErrNoToken) {
		return errNeedToken
	}
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	logger.SetDefault(log)

	log.Info("starting janitor",
		logger.Field{Key: "version", Value: Version},
		logger.Field{Key: "git_commit", Value: GitCommit},
		logger.Field{Key: "config", Value: configPath},
		logger.Field{Key: "db", Value: cfg.Store.Path})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.New(cfg, log, token).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("janitor stopped with error", err)
		return err
	}
	log.Info("janitor stopped")
	return nil
}
