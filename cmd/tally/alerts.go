package main

import (
	"errors"

	"github.com/spf13/cobra"

	"tally/internal/backend"
	"tally/internal/cli"
)

func alertsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List budget alerts recorded by the worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if backend.BackendType(cfg.DataBackend) != backend.SQLiteBackend {
				return errors.New("alert history needs DATA_BACKEND=sqlite")
			}
			if limit <= 0 {
				return errors.New("--limit must be positive")
			}

			repo, err := cli.InitSQLite(logger, cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			alerts, err := repo.ListAlerts(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return cli.WriteAlerts(cmd.OutOrStdout(), alerts)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of alerts to show")
	return cmd
}
