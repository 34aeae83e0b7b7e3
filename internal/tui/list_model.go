package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/planora/planora/internal/models"
	"github.com/planora/planora/internal/parser"
)

// ToggleFunc flips a task between completed and todo, returning the updated task
type ToggleFunc func(task models.Task) (*models.Task, error)

// TaskListModel is an interactive task table with a detail panel for the selected row
type TaskListModel struct {
	width  int
	height int

	table  table.Model
	tasks  []models.Task
	now    time.Time
	toggle ToggleFunc

	// feedback from the last toggle
	message string
}

// NewTaskListModel creates a list over tasks. toggle may be nil for a read-only list.
func NewTaskListModel(tasks []models.Task, now time.Time, toggle ToggleFunc) TaskListModel {
	t := table.New(
		table.WithColumns(taskColumns(80)),
		table.WithRows(TaskRows(tasks, now)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		BorderBottom(true).
		Foreground(lipgloss.Color(ColorAccentBright)).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Background(lipgloss.Color(ColorAccentMain)).
		Bold(true)
	t.SetStyles(styles)

	return TaskListModel{table: t, tasks: tasks, now: now, toggle: toggle}
}

func taskColumns(width int) []table.Column {
	title := max(width-5-12-14-8-12-10, 16)
	return []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Status", Width: 12},
		{Title: "Title", Width: title},
		{Title: "Project", Width: 14},
		{Title: "Priority", Width: 8},
		{Title: "Due", Width: 12},
	}
}

// TaskRows renders tasks as table rows
func TaskRows(tasks []models.Task, now time.Time) []table.Row {
	rows := make([]table.Row, len(tasks))
	for i, t := range tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.UTC().Format("2006-01-02")
			if t.IsOverdue(now) {
				due += "!"
			}
		}
		rows[i] = table.Row{
			strconv.FormatUint(uint64(t.ID), 10),
			t.Status,
			t.Title,
			projectNames(t),
			t.Priority,
			due,
		}
	}
	return rows
}

func projectNames(t models.Task) string {
	if len(t.Projects) == 0 {
		return "-"
	}
	names := make([]string, len(t.Projects))
	for i, p := range t.Projects {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

// Init implements tea.Model
func (m TaskListModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m TaskListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetColumns(taskColumns(msg.Width))
		m.table.SetHeight(max(msg.Height-14, 3))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case " ", "x":
			return m.toggleSelected(), nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m TaskListModel) toggleSelected() TaskListModel {
	i := m.table.Cursor()
	if m.toggle == nil || i < 0 || i >= len(m.tasks) {
		return m
	}

	updated, err := m.toggle(m.tasks[i])
	if err != nil {
		m.message = "Error: " + err.Error()
		return m
	}

	// Keep the loaded associations, they are not reloaded on toggle
	updated.Projects = m.tasks[i].Projects
	updated.Tags = m.tasks[i].Tags

	tasks := make([]models.Task, len(m.tasks))
	copy(tasks, m.tasks)
	tasks[i] = *updated
	m.tasks = tasks
	m.table.SetRows(TaskRows(m.tasks, m.now))
	m.message = fmt.Sprintf("Task #%d is now %s", updated.ID, updated.Status)
	return m
}

// Selected returns the task under the cursor, if any
func (m TaskListModel) Selected() *models.Task {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.tasks) {
		return nil
	}
	return &m.tasks[i]
}

// View renders the table, the detail panel and the help bar
func (m TaskListModel) View() string {
	if len(m.tasks) == 0 {
		return "No tasks.\n"
	}

	parts := []string{
		lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).
			Render(m.table.View()),
	}

	if t := m.Selected(); t != nil {
		parts = append(parts, m.renderDetails(*t))
	}
	if m.message != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Render(m.message))
	}

	help := "↑/↓ move · space toggle done · q quit"
	if m.toggle == nil {
		help = "↑/↓ move · q quit"
	}
	parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText)).Italic(true).Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m TaskListModel) renderDetails(t models.Task) string {
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	value := func(color, s string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(s)
	}

	lines := []string{
		lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText)).Bold(true).Render(t.Title),
		label.Render("Status:   ") + value(statusColor(t.Status), t.Status),
		label.Render("Priority: ") + value(priorityColor(t.Priority), t.Priority),
	}

	if t.DueDate != nil {
		lines = append(lines, label.Render("Due:      ")+value(ColorWarning, parser.FormatDueDate(t.DueDate, m.now)))
	}
	if len(t.Tags) > 0 {
		tags := make([]string, len(t.Tags))
		for i, tag := range t.Tags {
			tags[i] = "#" + tag.Name
		}
		lines = append(lines, label.Render("Tags:     ")+value(ColorAccentBright, strings.Join(tags, " ")))
	}
	if t.EstimatedDuration != nil {
		lines = append(lines, label.Render("Estimate: ")+value(ColorPrimaryText, FormatDuration(time.Duration(*t.EstimatedDuration)*time.Minute)))
	}
	if t.Description != "" {
		lines = append(lines, value(ColorDisabledText, truncate(t.Description, max(m.width-4, 40))))
	}

	return lipgloss.NewStyle().
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// RunTaskListTUI shows the interactive task list until the user quits
func RunTaskListTUI(tasks []models.Task, toggle ToggleFunc) error {
	_, err := tea.NewProgram(NewTaskListModel(tasks, time.Now(), toggle), tea.WithAltScreen()).Run()
	return err
}
