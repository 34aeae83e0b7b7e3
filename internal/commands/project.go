package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/planora/planora/internal/models"
)

func newProjectCmd(f *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects", "p"},
		Short:   "Manage projects",
	}

	cmd.AddCommand(
		newProjectListCmd(f),
		newProjectStatusCmd(f, "archive", models.ProjectArchived, "🗃️  Archived"),
		newProjectStatusCmd(f, "unarchive", models.ProjectActive, "📤 Unarchived"),
		newProjectStatusCmd(f, "complete", models.ProjectCompleted, "🏁 Completed"),
		newProjectRemoveCmd(f),
	)
	return cmd
}

func newProjectListCmd(f *globalFlags) *cobra.Command {
	var (
		status     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List projects with their progress",
		Args:    cobra.NoArgs,
		RunE: f.withUser(func(cmd *cobra.Command, args []string, a *app, user *models.User) error {
			projects, err := a.store.ListProjects(cmd.Context(), user.ID, status)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, projects)
			}
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects yet. Try 'planora plan \"your goal\"'.")
				return nil
			}

			fmt.Fprintf(out, "%-5s %-32s %-10s %-12s %s\n", "ID", "NAME", "STATUS", "PROGRESS", "CREATED")
			for _, p := range projects {
				progress := fmt.Sprintf("%d/%d %3.0f%%", p.CompletedTasks, p.TaskCount, p.Progress)
				fmt.Fprintf(out, "%-5d %-32s %-10s %-12s %s\n",
					p.ID, clip(p.Name, 32), p.Status, progress, humanize.Time(p.CreatedAt))
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status: active, completed, archived")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newProjectStatusCmd(f *globalFlags, use, status, verb string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [project-id]",
		Short: fmt.Sprintf("Mark a project as %s", status),
		Args:  cobra.ExactArgs(1),
		RunE: f.withUser(func(cmd *cobra.Command, args []string, a *app, user *models.User) error {
			id, err := parseID(args[0], "project")
			if err != nil {
				return err
			}

			project, err := a.store.SetProjectStatus(cmd.Context(), user.ID, id, status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s project #%d: %s\n", verb, project.ID, project.Name)
			return nil
		}),
	}
}

func newProjectRemoveCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "rm [project-id]",
		Aliases: []string{"delete"},
		Short:   "Delete a project; its tasks and notes are kept",
		Args:    cobra.ExactArgs(1),
		RunE: f.withUser(func(cmd *cobra.Command, args []string, a *app, user *models.User) error {
			id, err := parseID(args[0], "project")
			if err != nil {
				return err
			}
			if err := a.store.DeleteProject(cmd.Context(), user.ID, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project #%d\n", id)
			return nil
		}),
	}
}
