package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"triage/internal/asana"
)

func newShowCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the project and its sections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			client := asana.NewClient(cfg.Asana.BaseURL, cfg.Asana.AccessToken, nil)

			project, err := client.ProjectByGID(ctx, cfg.Project.GID)
			if err != nil {
				return fmt.Errorf("fetch project: %w", err)
			}
			sections, err := client.SectionsByProject(ctx, project)
			if err != nil {
				return fmt.Errorf("list sections: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Project: %s (%s)\n", project.Name, project.GID)

			rows := make([][]string, 0, len(sections))
			for _, section := range sections {
				tasks, err := client.TasksBySection(ctx, section, false)
				if err != nil {
					return fmt.Errorf("count tasks in %q: %w", section.Name, err)
				}
				rows = append(rows, []string{
					section.Name,
					section.GID,
					fmt.Sprintf("%d", len(tasks)),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Section", "GID", "Tasks"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func taskLabel(task *asana.Task) string {
	if task.Name != "" {
		return task.Name
	}
	return task.GID
}
