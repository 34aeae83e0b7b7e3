// Package planner turns a free-text goal into a persisted project plan.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/planora/planora/internal/db"
	"github.com/planora/planora/internal/llm"
	"github.com/planora/planora/internal/models"
	"github.com/planora/planora/internal/parser"
)

// MaxGoalLength is the longest goal accepted, in characters
const MaxGoalLength = 2000

// Recorder receives one observation per ingestion
type Recorder interface {
	ObservePlanGeneration(outcome string, tasks int)
}

// Result identifies what an ingestion created
type Result struct {
	ProjectID   uint   `json:"project_id"`
	ProjectName string `json:"project_name"`
	TaskCount   int    `json:"task_count"`
}

// Service generates plans with a text generator and stores them
type Service struct {
	store   *db.Store
	gen     llm.TextGenerator
	logger  *slog.Logger
	metrics Recorder
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r Recorder) Option {
	return func(s *Service) {
		s.metrics = r
	}
}

// WithClock sets the clock used to compute due dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a planner over store and gen
func NewService(store *db.Store, gen llm.TextGenerator, opts ...Option) *Service {
	s := &Service{
		store:  store,
		gen:    gen,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GeneratePlanFromGoal asks the generator for a roadmap toward goal and stores it as one
// project with its tasks, owned by userID. Either everything is stored or nothing is.
func (s *Service) GeneratePlanFromGoal(ctx context.Context, userID uint, goal string) (*Result, error) {
	startedAt := time.Now()
	result, err := s.generate(ctx, userID, goal)

	outcome := Outcome(err)
	if s.metrics != nil {
		tasks := 0
		if result != nil {
			tasks = result.TaskCount
		}
		s.metrics.ObservePlanGeneration(outcome, tasks)
	}

	if err != nil {
		level := slog.LevelError
		if errors.Is(err, ErrValidation) {
			level = slog.LevelInfo
		}
		s.logger.Log(ctx, level, "Plan generation failed",
			"user_id", userID,
			"outcome", outcome,
			"duration", time.Since(startedAt),
			"error", err)
		return nil, err
	}

	s.logger.Info("Plan generated",
		"user_id", userID,
		"project_id", result.ProjectID,
		"tasks", result.TaskCount,
		"duration", time.Since(startedAt))
	return result, nil
}

func (s *Service) generate(ctx context.Context, userID uint, goal string) (*Result, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, invalid("Goal is required")
	}
	if utf8.RuneCountInString(goal) > MaxGoalLength {
		return nil, invalid(fmt.Sprintf("Goal must be at most %d characters", MaxGoalLength))
	}

	// Check if the user exists
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, invalid("User not found")
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	raw, err := s.gen.Generate(ctx, BuildPlanPrompt(goal))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExternalService, err)
	}

	plan, err := parser.ParsePlan(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAIResponseParse, err)
	}

	result, err := s.persist(ctx, userID, plan)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return result, nil
}

// persist writes the project and its tasks in one transaction
func (s *Service) persist(ctx context.Context, userID uint, plan *parser.Plan) (*Result, error) {
	today := s.now()
	steps := plan.Flatten()
	result := &Result{}

	err := s.store.Transaction(ctx, func(tx *db.Store) error {
		project, err := tx.CreateProject(ctx, userID, db.CreateProjectRequest{
			Name:        plan.ProjectName,
			Description: plan.ProjectDescription,
		})
		if err != nil {
			return fmt.Errorf("create project: %w", err)
		}

		for i, step := range steps {
			due := parser.DueDateForDay(today, step.Day)
			_, err := tx.CreateTask(ctx, userID, db.CreateTaskRequest{
				Title:             step.Title,
				Description:       step.Description,
				Status:            models.StatusTodo,
				DueDate:           &due,
				EstimatedDuration: step.EstimatedMinutes,
				ProjectID:         &project.ID,
				Resources:         resources(step.Resources),
			})
			if err != nil {
				return fmt.Errorf("create task %d %q: %w", i+1, step.Title, err)
			}
		}

		result.ProjectID = project.ID
		result.ProjectName = project.Name
		result.TaskCount = len(steps)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func resources(in []parser.Resource) []models.Resource {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.Resource, len(in))
	for i, r := range in {
		out[i] = models.Resource{Name: r.Name, Link: r.Link}
	}
	return out
}
