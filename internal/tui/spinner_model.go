package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user interrupts a running job
var ErrCancelled = errors.New("cancelled")

const shimmerInterval = 100 * time.Millisecond

// jobDoneMsg carries the result of the background job
type jobDoneMsg struct{ err error }

// shimmerTickMsg advances the label highlight
type shimmerTickMsg struct{}

// SpinnerModel shows a spinner and a shimmering label while a job runs
type SpinnerModel struct {
	spinner spinner.Model
	shimmer *Shimmer
	label   string
	started time.Time

	ctx    context.Context
	cancel context.CancelFunc
	job    func(ctx context.Context) error

	done bool
	err  error
}

// NewSpinnerModel creates a model that runs job once Init is called
func NewSpinnerModel(ctx context.Context, label string, job func(ctx context.Context) error) SpinnerModel {
	ctx, cancel := context.WithCancel(ctx)
	return SpinnerModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentMain))),
		),
		shimmer: NewShimmer(),
		label:   label,
		started: time.Now(),
		ctx:     ctx,
		cancel:  cancel,
		job:     job,
	}
}

// Init starts the job alongside the animations
func (m SpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run, shimmerTick())
}

func (m SpinnerModel) run() tea.Msg {
	return jobDoneMsg{err: m.job(m.ctx)}
}

func shimmerTick() tea.Cmd {
	return tea.Tick(shimmerInterval, func(time.Time) tea.Msg {
		return shimmerTickMsg{}
	})
}

// Update handles messages
func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case jobDoneMsg:
		m.done = true
		m.err = msg.err
		m.cancel()
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "esc" {
			m.done = true
			m.err = ErrCancelled
			m.cancel()
			return m, tea.Quit
		}
		return m, nil

	case shimmerTickMsg:
		if m.done {
			return m, nil
		}
		m.shimmer.Advance()
		return m, shimmerTick()

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the spinner line; it is empty once the job is done
func (m SpinnerModel) View() string {
	if m.done {
		return ""
	}

	elapsed := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Render(fmt.Sprintf(" %ds · esc to cancel", int(time.Since(m.started).Seconds())))

	return fmt.Sprintf("%s %s%s\n", m.spinner.View(), m.shimmer.Render(m.label), elapsed)
}

// Err returns the job's error, ErrCancelled if the user interrupted it
func (m SpinnerModel) Err() error {
	return m.err
}

// RunSpinner runs job while showing label, returning the job's error
func RunSpinner(ctx context.Context, label string, job func(ctx context.Context) error) error {
	model := NewSpinnerModel(ctx, label, job)

	finalModel, err := tea.NewProgram(model).Run()
	if err != nil {
		return err
	}
	return finalModel.(SpinnerModel).Err()
}
