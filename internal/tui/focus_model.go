package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/planora/planora/internal/models"
)

// FocusModel shows a running focus session with a big clock and progress toward its planned length
type FocusModel struct {
	width  int
	height int

	session  *models.FocusSession
	progress progress.Model
	elapsed  time.Duration
	now      func() time.Time

	frame int

	// stopping is set when the user asked to end the session,
	// leaving keeps it running in the background
	stopping bool
	leaving  bool
}

// focusTickMsg is sent every second to update the clock
type focusTickMsg time.Time

// NewFocusModel creates a model for an active session
func NewFocusModel(session *models.FocusSession) FocusModel {
	return FocusModel{
		session: session,
		progress: progress.New(
			progress.WithGradient(ColorAccentMain, ColorAccentBright),
			progress.WithoutPercentage(),
		),
		elapsed: time.Since(session.StartedAt),
		now:     time.Now,
	}
}

// Init starts the clock
func (m FocusModel) Init() tea.Cmd {
	return focusTick()
}

func focusTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return focusTickMsg(t)
	})
}

// Update handles messages
func (m FocusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case focusTickMsg:
		m.elapsed = m.now().Sub(m.session.StartedAt)
		m.frame = (m.frame + 1) % 2
		if m.stopping || m.leaving {
			return m, nil
		}
		return m, focusTick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-10, 10), 60)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "s", "S":
			m.stopping = true
			return m, tea.Quit
		case "ctrl+c", "esc", "q":
			m.leaving = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// Stopping reports whether the user asked to end the session
func (m FocusModel) Stopping() bool {
	return m.stopping
}

// View renders the timer screen
func (m FocusModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	center := lipgloss.NewStyle().Align(lipgloss.Center).Width(m.width)

	icon := []string{"◐", "◑"}[m.frame]
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentBright)).
		Bold(true).
		Render(fmt.Sprintf("%s  %s  %s", icon, strings.ToUpper(strings.ReplaceAll(m.session.SessionType, "_", " ")), icon))

	parts := []string{center.Render(header)}

	if task := m.session.Task; task != nil {
		title := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText)).Bold(true).
			Render(truncate(task.Title, m.width-4))
		id := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentMain)).Bold(true).
			Render(fmt.Sprintf("#%d", task.ID))
		parts = append(parts, center.Render(id+" "+title))
	}

	parts = append(parts, center.Render(bigClock(m.elapsed)))

	ratio := progressRatio(m.elapsed, m.session.PlannedMinutes)
	parts = append(parts, center.Render(m.progress.ViewAs(ratio)))

	info := fmt.Sprintf("Started at %s · planned %dm", m.session.StartedAt.Local().Format("15:04"), m.session.PlannedMinutes)
	infoColor := ColorSecondaryText
	if over := m.elapsed - time.Duration(m.session.PlannedMinutes)*time.Minute; m.session.PlannedMinutes > 0 && over > 0 {
		info += fmt.Sprintf(" · %s over", FormatDuration(over))
		infoColor = ColorWarning
	}
	parts = append(parts, center.Render(lipgloss.NewStyle().Foreground(lipgloss.Color(infoColor)).Italic(true).Render(info)))

	content := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(parts, "\n\n"))

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true).
		Align(lipgloss.Center).
		Width(m.width).
		Render("s stop & save · esc/q leave running")

	return lipgloss.JoinVertical(lipgloss.Left, content, help)
}

// progressRatio is the share of the planned minutes already spent, capped at 1
func progressRatio(elapsed time.Duration, plannedMinutes int) float64 {
	if plannedMinutes <= 0 || elapsed <= 0 {
		return 0
	}
	ratio := elapsed.Minutes() / float64(plannedMinutes)
	if ratio > 1 {
		return 1
	}
	return ratio
}

// five-row block glyphs for the clock
var clockGlyphs = map[rune][5]string{
	'0': {" ███ ", "█   █", "█   █", "█   █", " ███ "},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {" ███ ", "█   █", "   █ ", "  █  ", "█████"},
	'3': {" ███ ", "█   █", "  ██ ", "█   █", " ███ "},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "████ ", "    █", "████ "},
	'6': {" ███ ", "█    ", "████ ", "█   █", " ███ "},
	'7': {"█████", "    █", "   █ ", "  █  ", " █   "},
	'8': {" ███ ", "█   █", " ███ ", "█   █", " ███ "},
	'9': {" ███ ", "█   █", " ████", "    █", " ███ "},
	':': {"     ", "  █  ", "     ", "  █  ", "     "},
}

// ClockText formats d as mm:ss, or hh:mm:ss from one hour on
func ClockText(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, mins, secs)
	}
	return fmt.Sprintf("%02d:%02d", mins, secs)
}

func bigClock(d time.Duration) string {
	var rows [5]strings.Builder
	for _, r := range ClockText(d) {
		glyph := clockGlyphs[r]
		for i := range rows {
			rows[i].WriteString(glyph[i])
			rows[i].WriteString(" ")
		}
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
	lines := make([]string, len(rows))
	for i := range rows {
		lines[i] = style.Render(rows[i].String())
	}
	return strings.Join(lines, "\n")
}

// FormatDuration formats a duration compactly: 1h05m, 12m or 40s
func FormatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if width < 4 || len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// RunFocusTUI shows the timer for session and reports whether the user asked to stop it
func RunFocusTUI(session *models.FocusSession) (bool, error) {
	finalModel, err := tea.NewProgram(NewFocusModel(session), tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	return finalModel.(FocusModel).Stopping(), nil
}
