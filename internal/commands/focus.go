package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/planora/planora/internal/db"
	"github.com/planora/planora/internal/models"
	"github.com/planora/planora/internal/tui"
)

func newFocusCmd(f *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Track focus sessions",
	}
	cmd.AddCommand(newFocusStartCmd(f), newFocusStopCmd(f), newFocusStatusCmd(f), newFocusListCmd(f))
	return cmd
}

func newFocusStartCmd(f *globalFlags) *cobra.Command {
	var (
		sessionType string
		minutes     int
		noUI        bool
	)

	cmd := &cobra.Command{
		Use:   "start [task-id]",
		Short: "Start a focus session, optionally on a task",
		Long: `Start a focus session. Opens an interactive timer by default, use --no-ui for a simple start.

Examples:
  planora focus start 42              # 25 minute pomodoro on task 42
  planora focus start --type deep_work --minutes 90
  planora focus start 42 --no-ui`,
		Args: cobra.MaximumNArgs(1),
		RunE: f.withUser(func(cmd *cobra.Command, args []string, a *app, user *models.User) error {
			req := db.StartSessionRequest{SessionType: sessionType, PlannedMinutes: minutes}
			if len(args) == 1 {
				id, err := parseID(args[0], "task")
				if err != nil {
					return err
				}
				req.TaskID = &id
			}

			session, err := a.store.StartSession(cmd.Context(), user.ID, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if noUI {
				fmt.Fprintf(out, "⏱️  Started %s session #%d%s\n", session.SessionType, session.ID, sessionSubject(session))
				fmt.Fprintf(out, "Started at: %s, planned %d minutes\n", session.StartedAt.Local().Format("15:04:05"), session.PlannedMinutes)
				return nil
			}

			stop, err := tui.RunFocusTUI(session)
			if err != nil {
				return err
			}
			if !stop {
				fmt.Fprintf(out, "\n💡 Session #%d is still running%s\n", session.ID, sessionSubject(session))
				fmt.Fprintln(out, "   Use 'planora focus status' to check it or 'planora focus stop' to end it.")
				return nil
			}

			stopped, err := a.store.StopSession(cmd.Context(), user.ID, session.ID, db.StopSessionRequest{})
			if err != nil {
				return fmt.Errorf("failed to stop session: %w", err)
			}
			printStopped(out, stopped)
			return nil
		}),
	}

	cmd.Flags().StringVar(&sessionType, "type", models.SessionPomodoro, "Session type: pomodoro, deep_work or break")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "Planned minutes (default 25)")
	cmd.Flags().BoolVar(&noUI, "no-ui", false, "Start without the interactive timer")
	return cmd
}

func newFocusStopCmd(f *globalFlags) *cobra.Command {
	var (
		notes      string
		score      int
		incomplete bool
	)

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the active focus session",
		Args:  cobra.NoArgs,
		RunE: f.withUser(func(cmd *cobra.Command, args []string, a *app, user *models.User) error {
			req := db.StopSessionRequest{Notes: notes}
			if cmd.Flags().Changed("score") {
				req.ProductivityScore = &score
			}
			if incomplete {
				completed := false
				req.WasCompleted = &completed
			}

			session, err := a.store.StopActiveSession(cmd.Context(), user.ID, req)
			if err != nil {
				return err
			}
			printStopped(cmd.OutOrStdout(), session)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Reflection notes")
	cmd.Flags().IntVar(&score, "score", 0, "Productivity score from 1 to 10")
	cmd.Flags().BoolVar(&incomplete, "incomplete", false, "Record the session as not completed")
	return cmd
}

func newFocusStatusCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active focus session",
		Args:  cobra.NoArgs,
		RunE: f.withUser(func(cmd *cobra.Command, args []string, a *app, user *models.User) error {
			session, err := a.store.GetActiveSession(cmd.Context(), user.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if session == nil {
				fmt.Fprintln(out, "No active focus session")
				return nil
			}

			elapsed := time.Since(session.StartedAt)
			fmt.Fprintf(out, "⏱️  Focusing: %s session #%d%s\n", session.SessionType, session.ID, sessionSubject(session))
			fmt.Fprintf(out, "Started at: %s\n", session.StartedAt.Local().Format("15:04:05"))
			fmt.Fprintf(out, "Elapsed time: %s of %dm\n", tui.FormatDuration(elapsed), session.PlannedMinutes)
			return nil
		}),
	}
}

func newFocusListCmd(f *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"log"},
		Short:   "List recent focus sessions",
		Args:    cobra.NoArgs,
		RunE: f.withUser(func(cmd *cobra.Command, args []string, a *app, user *models.User) error {
			sessions, err := a.store.ListSessions(cmd.Context(), user.ID, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No focus sessions yet.")
				return nil
			}
			for _, s := range sessions {
				length := "running"
				if !s.IsActive() {
					length = fmt.Sprintf("%dm", s.Duration)
				}
				fmt.Fprintf(out, "#%-4d %-10s %-8s %-14s%s\n",
					s.ID, s.SessionType, length, humanize.Time(s.StartedAt), sessionSubject(&s))
			}
			return nil
		}),
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Number of sessions to show")
	return cmd
}

func sessionSubject(s *models.FocusSession) string {
	if s.Task == nil {
		return ""
	}
	return fmt.Sprintf(" on task #%d: %s", s.Task.ID, s.Task.Title)
}

func printStopped(w io.Writer, s *models.FocusSession) {
	fmt.Fprintf(w, "⏹️  Stopped %s session #%d%s\n", s.SessionType, s.ID, sessionSubject(s))
	fmt.Fprintf(w, "📊 Session duration: %s\n", tui.FormatDuration(time.Duration(s.Duration)*time.Minute))
}
