package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planora/planora/internal/agent"
	"github.com/planora/planora/internal/db"
	"github.com/planora/planora/internal/llm"
	"github.com/planora/planora/internal/models"
	"github.com/planora/planora/internal/planner"
)

func newChatCmd(f *globalFlags) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask the planning agent a question or give it an instruction",
		Long: `Send one message to the planning agent. It answers questions, and can create a
project or add a task to the selected project.

Examples:
  planora chat "what should I focus on today?" --project learn-go
  planora chat "add a task to review goroutine leaks" -p learn-go`,
		Args: cobra.MinimumNArgs(1),
		RunE: f.withUser(func(cmd *cobra.Command, args []string, a *app, user *models.User) error {
			ctx := cmd.Context()

			var projectID *uint
			if project != "" {
				p, err := resolveProject(ctx, a.store, user.ID, project)
				if err != nil {
					return err
				}
				projectID = &p.ID
			}

			gen, err := llm.New(a.cfg.AI, llm.WithLogger(a.logger))
			if err != nil {
				return err
			}

			reply, err := agent.New(a.store, gen, agent.WithLogger(a.logger)).
				Chat(ctx, user.ID, projectID, strings.Join(args, " "))
			if err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return err
				}
				a.logger.Debug("chat failed", "error", err)
				_, msg := planner.StatusFor(err)
				return errors.New(msg)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, reply.Reply)
			if reply.TaskID != nil {
				fmt.Fprintf(out, "  (task #%d)\n", *reply.TaskID)
			} else if reply.ProjectID != nil && reply.ActionTaken == agent.ActionReload {
				fmt.Fprintf(out, "  (project #%d)\n", *reply.ProjectID)
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project name or ID to talk about")
	return cmd
}
