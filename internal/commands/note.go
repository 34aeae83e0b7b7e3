package commands

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/planora/planora/internal/db"
	"github.com/planora/planora/internal/models"
)

func newNoteCmd(f *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"notes"},
		Short:   "Write and read markdown notes",
	}
	cmd.AddCommand(newNoteAddCmd(f), newNoteListCmd(f), newNoteShowCmd(f), newNoteRemoveCmd(f))
	return cmd
}

func newNoteAddCmd(f *globalFlags) *cobra.Command {
	var title, project string

	cmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Add a note",
		Long: `Add a markdown note, optionally attached to a project.

Examples:
  planora note add "Channels are typed pipes" --title "Go concurrency" --project learn-go`,
		Args: cobra.MinimumNArgs(1),
		RunE: f.withUser(func(cmd *cobra.Command, args []string, a *app, user *models.User) error {
			content := strings.Join(args, " ")
			req := db.NoteRequest{Title: &title, Content: &content}
			if project != "" {
				p, err := resolveProject(cmd.Context(), a.store, user.ID, project)
				if err != nil {
					return err
				}
				req.ProjectID = &p.ID
			}

			note, err := a.store.CreateNote(cmd.Context(), user.ID, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created note #%d%s\n", note.ID, noteTitle(note))
			return nil
		}),
	}

	cmd.Flags().StringVar(&title, "title", "", "Note title")
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project name or ID")
	return cmd
}

func newNoteListCmd(f *globalFlags) *cobra.Command {
	var project, query string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List or search notes",
		Args:    cobra.NoArgs,
		RunE: f.withUser(func(cmd *cobra.Command, args []string, a *app, user *models.User) error {
			ctx := cmd.Context()

			var (
				notes []models.Note
				err   error
			)
			switch {
			case query != "":
				notes, err = a.store.SearchNotes(ctx, user.ID, query)
			case project != "":
				var p *models.Project
				if p, err = resolveProject(ctx, a.store, user.ID, project); err == nil {
					notes, err = a.store.ListNotes(ctx, user.ID, &p.ID)
				}
			default:
				notes, err = a.store.ListNotes(ctx, user.ID, nil)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(notes) == 0 {
				fmt.Fprintln(out, "No notes found.")
				return nil
			}
			for _, n := range notes {
				fmt.Fprintf(out, "#%-4d %-30s %s\n", n.ID, clip(notePreview(n), 30), humanize.Time(n.UpdatedAt))
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Only notes of this project")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Search titles and content")
	return cmd
}

func newNoteShowCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show [note-id]",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: f.withUser(func(cmd *cobra.Command, args []string, a *app, user *models.User) error {
			id, err := parseID(args[0], "note")
			if err != nil {
				return err
			}
			note, err := a.store.GetNote(cmd.Context(), user.ID, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if note.Title != "" {
				fmt.Fprintf(out, "# %s\n\n", note.Title)
			}
			fmt.Fprintln(out, note.Content)
			return nil
		}),
	}
}

func newNoteRemoveCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rm [note-id]",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: f.withUser(func(cmd *cobra.Command, args []string, a *app, user *models.User) error {
			id, err := parseID(args[0], "note")
			if err != nil {
				return err
			}
			if err := a.store.DeleteNote(cmd.Context(), user.ID, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted note #%d\n", id)
			return nil
		}),
	}
}

func noteTitle(n *models.Note) string {
	if n.Title == "" {
		return ""
	}
	return ": " + n.Title
}

// notePreview is the title, or the first line of the content for untitled notes
func notePreview(n models.Note) string {
	if n.Title != "" {
		return n.Title
	}
	first, _, _ := strings.Cut(strings.TrimSpace(n.Content), "\n")
	return first
}
