package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Triage the project's tasks once",
		Long: "Drains the configured task source and runs every task through the\n" +
			"configured rules and workflows. With a repeating or modified-since\n" +
			"source this keeps running until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := cmdCtx.newLogger()
			if err != nil {
				return err
			}
			triager, cleanup, err := cmdCtx.buildTriager(ctx, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := triager.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}

func newSortCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sort",
		Short: "Reconcile section order with the configured sorters",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := cmdCtx.newLogger()
			if err != nil {
				return err
			}
			triager, cleanup, err := cmdCtx.buildTriager(ctx, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			return triager.Sort(ctx)
		},
	}
}
