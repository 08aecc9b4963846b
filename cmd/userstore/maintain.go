package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/saltyorg/userstore/internal/maintenance"
)

func newMaintainCmd(a *app) *cobra.Command {
	var cfg maintenance.Config

	cmd := &cobra.Command{
		Use:   "maintain",
		Short: "Optimize (and optionally vacuum) the database, once or on a cron schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			scheduler := maintenance.NewScheduler(db, cfg)

			if cfg.Schedule == "" {
				_, err := scheduler.RunNow(ctx)
				return err
			}

			if err := scheduler.Start(); err != nil {
				return err
			}
			defer scheduler.Stop()

			log.Info().Time("next_run", scheduler.NextRun()).Msg("Waiting for scheduled maintenance")
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().BoolVar(&cfg.Vacuum, "vacuum", false, "Also VACUUM the database file")
	cmd.Flags().StringVar(&cfg.Schedule, "schedule", "", `Cron schedule, e.g. "@daily" or "0 3 * * *"`)
	return cmd
}
