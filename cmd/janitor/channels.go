package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aatumaykin/janitor/internal/messages"
	"github.com/aatumaykin/janitor/internal/store"
)

var channelsGuildID string

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "Inspect swept channels without connecting to Discord",
}

var channelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the channels configured for a guild",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, err := store.Open(cfg.Store.Path, store.WithDefaultRetention(cfg.Sweep.DefaultRetentionMinutes))
		if err != nil {
			return err
		}
		defer st.Close()

		rows, err := st.ListByGuild(cmd.Context(), channelsGuildID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			fmt.Fprintf(out, "No channels configured for guild %s\n", channelsGuildID)
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CHANNEL\tMAX AGE\tADDED")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.ChannelID, messages.FormatMaxAge(r.RetentionMinutes), r.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	channelsListCmd.Flags().StringVarP(&channelsGuildID, "guild", "g", "", "guild id")
	_ = channelsListCmd.MarkFlagRequired("guild")
	channelsCmd.AddCommand(channelsListCmd)
}
