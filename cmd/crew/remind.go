package main

import (
	"context"
	"fmt"
	"time"

	"github.com/crewline/crewline/internal/config"
	"github.com/crewline/crewline/internal/notify"
	"github.com/crewline/crewline/internal/reminder"
	"github.com/spf13/cobra"
)

func newRemindCmd() *cobra.Command {
	var (
		configPath string
		once       bool
	)

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run the stale-stage reminder sweep",
		Long: `Runs the stale-stage reminder sweep: scans the stage ledger for onboarding
stages that have sat pending longer than reminders.stale_after_hours and
nudges the responsible party. With --once, sweeps a single time and exits;
otherwise runs on the configured cron schedule until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemind(cmd, configPath, once)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "crewline.yaml", "path to Crewline config file")
	cmd.Flags().BoolVar(&once, "once", false, "sweep once and exit")
	return cmd
}

func runRemind(cmd *cobra.Command, configPath string, once bool) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gormDB, err := connectDB(cfg)
	if err != nil {
		return err
	}

	adapters, err := buildAdapters(cfg)
	if err != nil {
		return err
	}

	dispatcher := notify.NewDispatcher(gormDB, adapters...)
	sweeper := reminder.NewSweeper(gormDB, dispatcher, time.Duration(cfg.Reminders.StaleAfter)*time.Hour)

	if once {
		n, err := sweeper.Sweep(cmd.Context(), time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Swept %d stale stage(s)\n", n)
		return nil
	}

	fmt.Fprintf(out, "Reminder sweeper running on schedule %q\n", cfg.Reminders.Schedule)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return sweeper.Run(ctx, cfg.Reminders.Schedule)
}
