package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planora/planora/internal/models"
)

func TestClockText(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{-time.Second, "00:00"},
		{65 * time.Second, "01:05"},
		{59*time.Minute + 59*time.Second, "59:59"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClockText(tt.in), tt.in.String())
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "40s", FormatDuration(40*time.Second))
	assert.Equal(t, "12m", FormatDuration(12*time.Minute+30*time.Second))
	assert.Equal(t, "1h05m", FormatDuration(65*time.Minute))
}

func TestProgressRatio(t *testing.T) {
	assert.Equal(t, 0.0, progressRatio(10*time.Minute, 0))
	assert.Equal(t, 0.0, progressRatio(-time.Minute, 25))
	assert.InDelta(t, 0.5, progressRatio(12*time.Minute+30*time.Second, 25), 1e-9)
	assert.Equal(t, 1.0, progressRatio(time.Hour, 25))
}

func TestBlend(t *testing.T) {
	assert.Equal(t, "#B1B8C7", blend(0))
	assert.Equal(t, "#EAE6FF", blend(1))
	assert.Equal(t, "#B1B8C7", blend(-3))
}

func TestShimmerWrapsAndPauses(t *testing.T) {
	s := NewShimmer()

	for i := 0; i < 100 && s.paused == 0; i++ {
		s.Advance()
	}
	require.Equal(t, s.pauseFrames, s.paused)
	assert.Equal(t, -s.width, s.center)

	for i := 0; i < s.pauseFrames; i++ {
		s.Advance()
		assert.Equal(t, -s.width, s.center)
	}
	s.Advance()
	assert.Greater(t, s.center, -s.width)
}

func TestShimmerRenderEmpty(t *testing.T) {
	assert.Empty(t, NewShimmer().Render(""))
	assert.NotEmpty(t, NewShimmer().Render("Planning"))
}

func TestSpinnerModelJobDone(t *testing.T) {
	jobErr := errors.New("boom")
	m := NewSpinnerModel(context.Background(), "Working", func(context.Context) error { return jobErr })

	next, cmd := m.Update(jobDoneMsg{err: jobErr})
	require.NotNil(t, cmd)

	sm := next.(SpinnerModel)
	assert.ErrorIs(t, sm.Err(), jobErr)
	assert.Empty(t, sm.View())
}

func TestSpinnerModelCancel(t *testing.T) {
	m := NewSpinnerModel(context.Background(), "Working", func(context.Context) error { return nil })

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)

	sm := next.(SpinnerModel)
	assert.ErrorIs(t, sm.Err(), ErrCancelled)
	assert.ErrorIs(t, sm.ctx.Err(), context.Canceled)
}

func TestSpinnerModelRunsJob(t *testing.T) {
	called := false
	m := NewSpinnerModel(context.Background(), "Working", func(ctx context.Context) error {
		called = true
		return ctx.Err()
	})

	msg := m.run()
	assert.True(t, called)
	assert.Equal(t, jobDoneMsg{}, msg)
}

func TestFocusModelKeys(t *testing.T) {
	session := &models.FocusSession{ID: 1, SessionType: models.SessionPomodoro, PlannedMinutes: 25, StartedAt: time.Now()}

	next, _ := NewFocusModel(session).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	assert.True(t, next.(FocusModel).Stopping())

	next, _ = NewFocusModel(session).Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, next.(FocusModel).Stopping())
	assert.True(t, next.(FocusModel).leaving)
}

func TestFocusModelTick(t *testing.T) {
	started := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	session := &models.FocusSession{ID: 1, SessionType: models.SessionDeepWork, PlannedMinutes: 50, StartedAt: started}

	m := NewFocusModel(session)
	m.now = func() time.Time { return started.Add(90 * time.Second) }

	next, cmd := m.Update(focusTickMsg(started))
	assert.NotNil(t, cmd)
	assert.Equal(t, 90*time.Second, next.(FocusModel).elapsed)

	sized, _ := next.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := sized.View()
	assert.Contains(t, view, "DEEP WORK")
	assert.Contains(t, view, "planned 50m")
}

func TestTaskRows(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)

	rows := TaskRows([]models.Task{
		{ID: 1, Title: "Late", Status: models.StatusTodo, Priority: models.PriorityHigh, DueDate: &past,
			Projects: []models.Project{{Name: "Go"}}},
		{ID: 2, Title: "Done late", Status: models.StatusCompleted, Priority: models.PriorityLow, DueDate: &past},
		{ID: 3, Title: "Later", Status: models.StatusTodo, Priority: models.PriorityMedium, DueDate: &future},
		{ID: 4, Title: "Someday", Status: models.StatusInProgress, Priority: models.PriorityMedium},
	}, now)

	require.Len(t, rows, 4)
	assert.Equal(t, []string{"1", "todo", "Late", "Go", "high", "2026-03-01!"}, []string(rows[0]))
	assert.Equal(t, "2026-03-01", rows[1][5])
	assert.Equal(t, "2026-03-20", rows[2][5])
	assert.Equal(t, "-", rows[3][3])
	assert.Equal(t, "-", rows[3][5])
}

func TestTaskListToggle(t *testing.T) {
	tasks := []models.Task{
		{ID: 7, Title: "Write tests", Status: models.StatusTodo, Priority: models.PriorityMedium,
			Tags: []models.Tag{{Name: "go"}}},
	}

	var toggled uint
	m := NewTaskListModel(tasks, time.Now(), func(task models.Task) (*models.Task, error) {
		toggled = task.ID
		task.Status = models.StatusCompleted
		task.Tags = nil
		return &task, nil
	})

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	lm := next.(TaskListModel)

	assert.Equal(t, uint(7), toggled)
	assert.Equal(t, models.StatusCompleted, lm.Selected().Status)
	assert.Len(t, lm.Selected().Tags, 1)
	assert.Contains(t, lm.message, "completed")
	// The original slice is left alone
	assert.Equal(t, models.StatusTodo, tasks[0].Status)
}

func TestTaskListToggleError(t *testing.T) {
	m := NewTaskListModel([]models.Task{{ID: 1, Title: "x", Status: models.StatusTodo}}, time.Now(),
		func(models.Task) (*models.Task, error) { return nil, errors.New("locked") })

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Equal(t, "Error: locked", next.(TaskListModel).message)
}

func TestTaskListEmptyView(t *testing.T) {
	assert.Equal(t, "No tasks.\n", NewTaskListModel(nil, time.Now(), nil).View())
}
