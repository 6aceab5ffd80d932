package main

import (
	"github.com/spf13/cobra"
)

func historyCmd(configPath *string) *cobra.Command {
	var (
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent evaluations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if limit <= 0 {
				limit = a.cfg.History.RecentLimit
			}
			entries, err := a.service.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, map[string]interface{}{"history": entries})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of entries (defaults to history.recent_limit)")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format (json, yaml)")

	return cmd
}
