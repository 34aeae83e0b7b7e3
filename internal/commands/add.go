package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planora/planora/internal/db"
	"github.com/planora/planora/internal/models"
	"github.com/planora/planora/internal/parser"
)

// addOptions holds the add command flags; they take precedence over inline syntax
type addOptions struct {
	project     string
	tags        []string
	priority    string
	due         string
	description string
	estimate    int
}

func newAddCmd(f *globalFlags) *cobra.Command {
	opts := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add [task description]",
		Short: "Add a new task",
		Long: `Add a new task with optional metadata written inline.

Smart parsing syntax:
  #tag1,tag2  - Tags (comma-separated or individual)
  @project    - Project name, created if it does not exist
  +priority   - Priority (low/medium/high or 1/2/3)
  due:3days   - Due date (dd/mm/yyyy, X days, X hours, X weeks)

Examples:
  planora add "Read the Go memory model #go,reading @learn-go +high due:3days"
  planora add "Write retro notes" --project team --due 15/12/2026`,
		Args: cobra.MinimumNArgs(1),
		RunE: f.withUser(func(cmd *cobra.Command, args []string, a *app, user *models.User) error {
			parsed := parser.ParseTitle(strings.Join(args, " "))
			if len(parsed.Errors) > 0 {
				return fmt.Errorf("could not parse task: %s", strings.Join(parsed.Errors, "; "))
			}

			req, project, err := opts.request(cmd, parsed)
			if err != nil {
				return err
			}

			if project != "" {
				p, err := findOrCreateProject(cmd.Context(), a.store, user.ID, project)
				if err != nil {
					return err
				}
				req.ProjectID = &p.ID
			}

			task, err := a.store.CreateTask(cmd.Context(), user.ID, req)
			if err != nil {
				return err
			}
			printCreatedTask(cmd, task)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&opts.project, "project", "p", "", "Project name")
	cmd.Flags().StringSliceVarP(&opts.tags, "tags", "t", nil, "Comma-separated tags")
	cmd.Flags().StringVar(&opts.priority, "priority", "", "Priority: low, medium, high, or 1-3")
	cmd.Flags().StringVar(&opts.due, "due", "", "Due date: dd/mm/yyyy, X days, X hours, X weeks")
	cmd.Flags().StringVarP(&opts.description, "desc", "d", "", "Description")
	cmd.Flags().IntVar(&opts.estimate, "estimate", 0, "Estimated minutes")
	return cmd
}

// request merges parsed inline metadata with explicit flags
func (o *addOptions) request(cmd *cobra.Command, parsed parser.ParsedTask) (db.CreateTaskRequest, string, error) {
	req := db.CreateTaskRequest{
		Title:       parsed.Title,
		Description: o.description,
		Priority:    parsed.Priority,
		DueDate:     parsed.DueDate,
		Tags:        parsed.Tags,
	}
	project := parsed.Project

	if cmd.Flags().Changed("project") {
		project = o.project
	}
	if cmd.Flags().Changed("tags") {
		req.Tags = o.tags
	}
	if cmd.Flags().Changed("priority") {
		req.Priority = parser.NormalizePriority(o.priority)
		if req.Priority == "" {
			return req, "", fmt.Errorf("invalid priority '%s'. Use: low, medium, high, 1, 2, or 3", o.priority)
		}
	}
	if cmd.Flags().Changed("due") {
		due, err := parser.ParseDueDate(o.due)
		if err != nil {
			return req, "", fmt.Errorf("invalid due date '%s': %w", o.due, err)
		}
		req.DueDate = due
	}
	if cmd.Flags().Changed("estimate") {
		estimate := o.estimate
		req.EstimatedDuration = &estimate
	}

	return req, project, nil
}

// findOrCreateProject looks a project up by name, ignoring case, creating it when missing
func findOrCreateProject(ctx context.Context, store *db.Store, userID uint, name string) (*models.Project, error) {
	projects, err := store.ListProjects(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if strings.EqualFold(p.Name, name) {
			return &p.Project, nil
		}
	}
	return store.CreateProject(ctx, userID, db.CreateProjectRequest{Name: name})
}

func printCreatedTask(cmd *cobra.Command, task *models.Task) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created task #%d: %s\n", task.ID, task.Title)
	if len(task.Projects) > 0 {
		fmt.Fprintf(out, "  Project: %s\n", task.Projects[0].Name)
	}
	if len(task.Tags) > 0 {
		fmt.Fprintf(out, "  Tags: %s\n", tagNames(task.Tags))
	}
	fmt.Fprintf(out, "  Priority: %s\n", task.Priority)
	if task.DueDate != nil {
		fmt.Fprintf(out, "  Due: %s\n", task.DueDate.Local().Format("02/01/2006 15:04"))
	}
}

func tagNames(tags []models.Tag) string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	return strings.Join(names, ",")
}
