package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/planora/planora/internal/db"
	"github.com/planora/planora/internal/models"
	"github.com/planora/planora/internal/tui"
)

func newListCmd(f *globalFlags) *cobra.Command {
	var (
		status, project, tag, sortBy string
		overdue, jsonOutput          bool
		interactive                  bool
		limit                        int
	)

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Long: `List tasks with optional filters for status, project, tag and overdue tasks.

Examples:
  planora ls --status todo --sort due_date
  planora ls --project learn-go -i
  planora ls --overdue --json`,
		Args: cobra.NoArgs,
		RunE: f.withUser(func(cmd *cobra.Command, args []string, a *app, user *models.User) error {
			ctx := cmd.Context()
			opts := db.TaskQueryOptions{
				Status:  status,
				Tag:     tag,
				Overdue: overdue,
				SortBy:  sortBy,
				PerPage: limit,
			}
			if project != "" {
				p, err := resolveProject(ctx, a.store, user.ID, project)
				if err != nil {
					return err
				}
				opts.ProjectID = &p.ID
			}

			tasks, total, err := a.store.ListTasks(ctx, user.ID, opts)
			if err != nil {
				return err
			}

			switch {
			case jsonOutput:
				return writeJSON(cmd.OutOrStdout(), tasks)
			case interactive:
				return tui.RunTaskListTUI(tasks, func(t models.Task) (*models.Task, error) {
					if t.IsCompleted() {
						return a.store.MarkTaskUndone(ctx, user.ID, t.ID)
					}
					return a.store.MarkTaskDone(ctx, user.ID, t.ID)
				})
			}

			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks found. Use 'planora add \"task description\"' to create your first task.")
				return nil
			}
			renderTaskTable(cmd.OutOrStdout(), tasks, time.Now())
			if int64(len(tasks)) < total {
				fmt.Fprintf(cmd.OutOrStdout(), "\nShowing %d of %d tasks, use --limit to see more.\n", len(tasks), total)
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status: todo, in-progress, completed")
	cmd.Flags().StringVarP(&project, "project", "p", "", "Filter by project name or ID")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Filter by tag")
	cmd.Flags().BoolVar(&overdue, "overdue", false, "Show only overdue tasks")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort by position, due_date, priority, created_at, title or status")
	cmd.Flags().IntVarP(&limit, "limit", "l", 100, "Maximum number of tasks (at most 100)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Browse tasks in an interactive table")
	return cmd
}

// resolveProject finds a project by ID or by name, ignoring case
func resolveProject(ctx context.Context, store *db.Store, userID uint, ref string) (*models.Project, error) {
	if id, err := strconv.ParseUint(strings.TrimPrefix(ref, "#"), 10, 32); err == nil {
		detail, err := store.GetProject(ctx, userID, uint(id))
		if err != nil {
			return nil, err
		}
		return &detail.Project, nil
	}

	projects, err := store.ListProjects(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if strings.EqualFold(p.Name, ref) {
			return &p.Project, nil
		}
	}
	return nil, fmt.Errorf("project %q: %w", ref, db.ErrNotFound)
}

// renderTaskTable prints tasks as a fixed-width table for 80-character terminals
func renderTaskTable(w io.Writer, tasks []models.Task, now time.Time) {
	fmt.Fprintf(w, "%-5s %-12s %-32s %-12s %-7s %s\n", "ID", "STATUS", "TITLE", "PROJECT", "PRIO", "DUE")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, t := range tasks {
		project := "-"
		if len(t.Projects) > 0 {
			project = t.Projects[0].Name
		}
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Local().Format("2006-01-02")
			if t.IsOverdue(now) {
				due += " !"
			}
		}

		fmt.Fprintf(w, "%-5d %-12s %-32s %-12s %-7s %s\n",
			t.ID, t.Status, clip(t.Title, 32), clip(project, 12), t.Priority, due)
	}
}

// clip shortens s to width runes, marking the cut with an ellipsis
func clip(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
