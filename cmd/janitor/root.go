package main

import (
	"github.com/spf13/cobra"

	"github.com/aatumaykin/janitor/internal/constants"
)

var (
	configPath string
	envPath    string
	logLevel   string
)

// rootCmd runs the bot when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "janitor",
	Short: "janitor - deletes old messages from Discord channels",
	Long: `janitor is a Discord bot that periodically deletes unpinned messages
older than a per-channel retention from the channels it is told to sweep.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          serveHandler,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", constants.DefaultConfigPath, "path to config.toml (optional)")
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", constants.DefaultEnvPath, "path to a .env file loaded before the config")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(channelsCmd)
	rootCmd.AddCommand(migrateCmd)
}
