package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/planora/planora/internal/db"
	"github.com/planora/planora/internal/models"
)

var dayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// timesheet holds focus minutes per task and weekday for one week
type timesheet struct {
	weekStart time.Time
	rows      []timesheetRow
	days      [7]int
	total     int
}

type timesheetRow struct {
	label   string
	taskID  uint // zero for sessions without a task
	minutes [7]int
	total   int
}

func newReportCmd(f *globalFlags) *cobra.Command {
	var weeksAgo int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show a weekly focus timesheet",
		Long: `Show a weekly timesheet of focus time grouped by task and day, in hours.

Weekdays are always shown; weekend days only when focus time was tracked.

Example output:
  Task                      Mon  Tue  Wed  Thu  Fri  Total
  #12 Read the Go tour      1.5  0.5    -    -    -    2.0
  (no task)                   -  1.0    -    -    -    1.0
  Total                     1.5  1.5    0    0    0    3.0`,
		Args: cobra.NoArgs,
		RunE: f.withUser(func(cmd *cobra.Command, args []string, a *app, user *models.User) error {
			weekStart := db.StartOfWeek(time.Now()).AddDate(0, 0, -7*weeksAgo)
			weekEnd := weekStart.AddDate(0, 0, 7).Add(-time.Second)

			sessions, err := a.store.GetSessionsInRange(cmd.Context(), user.ID, weekStart, weekEnd)
			if err != nil {
				return fmt.Errorf("failed to get sessions: %w", err)
			}
			ts := buildTimesheet(sessions, weekStart)
			if ts.total == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No focus time tracked this week.")
				return nil
			}

			ts.render(cmd.OutOrStdout())
			return nil
		}),
	}

	cmd.Flags().IntVarP(&weeksAgo, "weeks-ago", "w", 0, "Report an earlier week, 1 is last week")
	return cmd
}

// buildTimesheet groups finished sessions by task and weekday, weekStart being a Monday midnight UTC
func buildTimesheet(sessions []models.FocusSession, weekStart time.Time) timesheet {
	ts := timesheet{weekStart: weekStart}
	byTask := map[uint]*timesheetRow{}

	for _, s := range sessions {
		day := int(s.StartedAt.UTC().Sub(weekStart).Hours() / 24)
		if day < 0 || day > 6 || s.Duration <= 0 {
			continue
		}

		var key uint
		label := "(no task)"
		if s.TaskID != nil {
			key = *s.TaskID
			if s.Task != nil {
				label = fmt.Sprintf("#%d %s", s.Task.ID, s.Task.Title)
			} else {
				label = fmt.Sprintf("#%d", key)
			}
		}

		row, ok := byTask[key]
		if !ok {
			row = &timesheetRow{label: label, taskID: key}
			byTask[key] = row
		}
		row.minutes[day] += s.Duration
		row.total += s.Duration
		ts.days[day] += s.Duration
		ts.total += s.Duration
	}

	for _, row := range byTask {
		ts.rows = append(ts.rows, *row)
	}
	// Tasks by ID, sessions without a task last
	sort.Slice(ts.rows, func(i, j int) bool {
		a, b := ts.rows[i].taskID, ts.rows[j].taskID
		if a == 0 || b == 0 {
			return b == 0 && a != 0
		}
		return a < b
	})
	return ts
}

// visibleDays are the weekday columns to print: Monday to Friday plus any weekend day with time
func (ts timesheet) visibleDays() []int {
	var days []int
	for i := range dayNames {
		if i < 5 || ts.days[i] > 0 {
			days = append(days, i)
		}
	}
	return days
}

func hours(minutes int) string {
	if minutes == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", float64(minutes)/60)
}

func (ts timesheet) render(w io.Writer) {
	days := ts.visibleDays()

	nameWidth := 20
	for _, row := range ts.rows {
		nameWidth = max(nameWidth, len([]rune(row.label)))
	}
	nameWidth = min(nameWidth, 40)

	separator := strings.Repeat("-", nameWidth) + strings.Repeat("  ----", len(days)) + "  -----"

	fmt.Fprintf(w, "%-*s", nameWidth, "Task")
	for _, d := range days {
		fmt.Fprintf(w, "  %4s", dayNames[d])
	}
	fmt.Fprintf(w, "  %5s\n", "Total")
	fmt.Fprintln(w, separator)

	for _, row := range ts.rows {
		fmt.Fprintf(w, "%-*s", nameWidth, clip(row.label, nameWidth))
		for _, d := range days {
			fmt.Fprintf(w, "  %4s", hours(row.minutes[d]))
		}
		fmt.Fprintf(w, "  %5s\n", hours(row.total))
	}

	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "%-*s", nameWidth, "Total")
	for _, d := range days {
		cell := hours(ts.days[d])
		if cell == "-" {
			cell = "0"
		}
		fmt.Fprintf(w, "  %4s", cell)
	}
	fmt.Fprintf(w, "  %5s\n", hours(ts.total))

	fmt.Fprintf(w, "\nWeek of %s to %s\n",
		ts.weekStart.Format("Jan 2"),
		ts.weekStart.AddDate(0, 0, 6).Format("Jan 2, 2006"))
}
