package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/planora/planora/internal/models"
)

func newSearchCmd(f *globalFlags) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search tasks by title and description",
		Long: `Search tasks with ranked matching:
- Exact title match (highest priority)
- Title prefix match
- Title suffix match
- Title contains, then description contains (lowest priority)

Search is case insensitive.`,
		Args: cobra.MinimumNArgs(1),
		RunE: f.withUser(func(cmd *cobra.Command, args []string, a *app, user *models.User) error {
			query := strings.Join(args, " ")

			tasks, err := a.store.SearchTasks(cmd.Context(), user.ID, query, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, struct {
					Query string        `json:"query"`
					Count int           `json:"count"`
					Tasks []models.Task `json:"tasks"`
				}{query, len(tasks), tasks})
			}

			fmt.Fprintf(out, "Search results for '%s' (%d found):\n", query, len(tasks))
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks found matching your search.")
				return nil
			}
			fmt.Fprintln(out)
			renderTaskTable(out, tasks, time.Now())
			return nil
		}),
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Limit number of results")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
