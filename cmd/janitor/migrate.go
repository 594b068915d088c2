package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/janitor/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the channel database",
	Long:  `Apply the embedded schema migrations to the configured database and exit.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Database %s is at schema version %d\n", cfg.Store.Path, st.SchemaVersion())
		return nil
	},
}
