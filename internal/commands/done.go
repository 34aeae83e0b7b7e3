package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planora/planora/internal/models"
)

func newDoneCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "done [task-id]",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: f.withUser(func(cmd *cobra.Command, args []string, a *app, user *models.User) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}

			task, err := a.store.MarkTaskDone(cmd.Context(), user.ID, id)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Marked task #%d as done: %s\n", task.ID, task.Title)
			if task.CompletedAt != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Completed at: %s\n", task.CompletedAt.Local().Format("15:04:05"))
			}
			return nil
		}),
	}
}

func newUndoneCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "undone [task-id]",
		Short: "Mark a completed task back to todo status",
		Args:  cobra.ExactArgs(1),
		RunE: f.withUser(func(cmd *cobra.Command, args []string, a *app, user *models.User) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}

			task, err := a.store.MarkTaskUndone(cmd.Context(), user.ID, id)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "↩️  Marked task #%d back to todo: %s\n", task.ID, task.Title)
			fmt.Fprintf(cmd.OutOrStdout(), "Status: %s\n", task.Status)
			return nil
		}),
	}
}
