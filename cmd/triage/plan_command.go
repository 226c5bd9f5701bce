package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPlanCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the moves a sort pass would make, without applying them",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := cmdCtx.newLogger()
			if err != nil {
				return err
			}
			triager, cleanup, err := cmdCtx.buildTriager(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer cleanup()

			plans, err := triager.Plan(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(plans) == 0 {
				fmt.Fprintln(out, "No sort sections configured")
				return nil
			}
			for _, plan := range plans {
				fmt.Fprintf(out, "Section %q: %d move(s)\n", plan.Section, len(plan.Moves))
				if len(plan.Moves) == 0 {
					continue
				}
				rows := make([][]string, 0, len(plan.Moves))
				for i, move := range plan.Moves {
					rows = append(rows, []string{
						fmt.Sprintf("%d", i+1),
						taskLabel(move.Task),
						string(move.Direction),
						taskLabel(move.Reference),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Task", "Direction", "Reference"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
			}
			return nil
		},
	}
}
