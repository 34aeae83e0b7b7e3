package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/planora/planora/internal/llm"
	"github.com/planora/planora/internal/models"
	"github.com/planora/planora/internal/parser"
	"github.com/planora/planora/internal/planner"
	"github.com/planora/planora/internal/tui"
)

func newPlanCmd(f *globalFlags) *cobra.Command {
	var noUI bool

	cmd := &cobra.Command{
		Use:   "plan [goal]",
		Short: "Draft a dated roadmap project for a goal",
		Long: `Ask the AI mentor for a step-by-step roadmap toward a goal and save it as a project.
Each roadmap step becomes a task due on its planned day, counting today as day 1.

Examples:
  planora plan "Learn Go well enough to build a REST API"
  planora plan "Prepare for a half marathon" --no-ui`,
		Args: cobra.MinimumNArgs(1),
		RunE: f.withUser(func(cmd *cobra.Command, args []string, a *app, user *models.User) error {
			gen, err := llm.New(a.cfg.AI, llm.WithLogger(a.logger))
			if err != nil {
				return err
			}
			return runPlan(cmd, a, planner.NewService(a.store, gen, planner.WithLogger(a.logger)), user, strings.Join(args, " "), noUI)
		}),
	}

	cmd.Flags().BoolVar(&noUI, "no-ui", false, "print progress instead of showing a spinner")
	return cmd
}

func runPlan(cmd *cobra.Command, a *app, svc *planner.Service, user *models.User, goal string, noUI bool) error {
	out := cmd.OutOrStdout()

	var result *planner.Result
	job := func(ctx context.Context) error {
		var err error
		result, err = svc.GeneratePlanFromGoal(ctx, user.ID, goal)
		return err
	}

	var err error
	if noUI {
		fmt.Fprintln(out, "Drafting your roadmap...")
		err = job(cmd.Context())
	} else {
		err = tui.RunSpinner(cmd.Context(), "Drafting your roadmap", job)
	}

	if errors.Is(err, tui.ErrCancelled) {
		fmt.Fprintln(out, "Plan generation cancelled.")
		return nil
	}
	if err != nil {
		a.logger.Debug("plan generation failed", "error", err)
		_, msg := planner.StatusFor(err)
		return errors.New(msg)
	}

	fmt.Fprintf(out, "Created project #%d: %s (%d tasks)\n", result.ProjectID, result.ProjectName, result.TaskCount)

	tasks, err := a.store.ProjectTasks(cmd.Context(), user.ID, result.ProjectID)
	if err != nil {
		return err
	}
	// Roadmap days are UTC dates
	now := time.Now().UTC()
	for _, t := range tasks {
		line := fmt.Sprintf("  #%-4d %s", t.ID, t.Title)
		if due := parser.FormatDueDate(t.DueDate, now); due != "" {
			line += "  " + due
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
