// Package agent answers roadmap chat messages and carries out the small
// actions the model asks for.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/planora/planora/internal/db"
	"github.com/planora/planora/internal/llm"
	"github.com/planora/planora/internal/models"
	"github.com/planora/planora/internal/parser"
	"github.com/planora/planora/internal/planner"
)

// What the client should do after showing a reply
const (
	ActionNone   = "none"
	ActionReload = "reload"
)

const (
	maxMessageLength  = 2000
	projectNamePrefix = "New Project: "
	maxProjectName    = 255

	replySelectProject = "Please select a project first before adding a task."
	replyFallback      = "I'm not sure how to handle that, but I'm learning!"
)

// Recorder receives the action chosen for each message
type Recorder interface {
	ObserveChatAction(action string)
}

// Reply is the agent's answer to one message
type Reply struct {
	Reply       string `json:"reply"`
	ActionTaken string `json:"action_taken"`
	ProjectID   *uint  `json:"project_id,omitempty"`
	TaskID      *uint  `json:"task_id,omitempty"`
}

// Agent classifies chat messages with a text generator
type Agent struct {
	store   *db.Store
	gen     llm.TextGenerator
	logger  *slog.Logger
	metrics Recorder
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r Recorder) Option {
	return func(a *Agent) {
		a.metrics = r
	}
}

// New creates an agent over store and gen
func New(store *db.Store, gen llm.TextGenerator, opts ...Option) *Agent {
	a := &Agent{
		store:  store,
		gen:    gen,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Chat handles one message from userID. projectID is the project the user is
// looking at, if any; it must belong to the user.
func (a *Agent) Chat(ctx context.Context, userID uint, projectID *uint, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, &planner.ValidationError{Message: "Message is required."}
	}
	if utf8.RuneCountInString(message) > maxMessageLength {
		return nil, &planner.ValidationError{Message: fmt.Sprintf("Message must be at most %d characters.", maxMessageLength)}
	}

	var project *models.Project
	var tasks []models.Task
	if projectID != nil {
		detail, err := a.store.GetProject(ctx, userID, *projectID)
		if err != nil {
			return nil, err
		}
		project = &detail.Project
		if tasks, err = a.store.ProjectTasks(ctx, userID, project.ID); err != nil {
			return nil, err
		}
	}

	raw, err := a.gen.Generate(ctx, BuildChatPrompt(project, tasks, message))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", planner.ErrExternalService, err)
	}

	action, err := parser.ParseAgentAction(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", planner.ErrAIResponseParse, err)
	}

	reply, err := a.dispatch(ctx, userID, project, action)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", planner.ErrPersistence, err)
	}

	a.logger.Info("Chat message handled",
		"user_id", userID,
		"action", action.Action,
		"action_taken", reply.ActionTaken)
	return reply, nil
}

func (a *Agent) dispatch(ctx context.Context, userID uint, project *models.Project, action *parser.AgentAction) (*Reply, error) {
	kind := action.Action
	switch {
	case kind == parser.ActionAnswer && action.Response == "",
		kind == parser.ActionCreateProject && action.Goal == "",
		kind == parser.ActionAddTask && action.Title == "":
		kind = "unrecognized"
	case kind != parser.ActionAnswer && kind != parser.ActionCreateProject && kind != parser.ActionAddTask:
		kind = "unrecognized"
	}
	if a.metrics != nil {
		a.metrics.ObserveChatAction(kind)
	}

	switch kind {
	case parser.ActionAnswer:
		return &Reply{Reply: action.Response, ActionTaken: ActionNone}, nil

	case parser.ActionCreateProject:
		created, err := a.store.CreateProject(ctx, userID, db.CreateProjectRequest{
			Name: projectName(action.Goal),
		})
		if err != nil {
			return nil, err
		}
		return &Reply{
			Reply: fmt.Sprintf("I have created a new project for you: '%s'. "+
				"I recommend using the 'Generate with AI' button for a full plan.", created.Name),
			ActionTaken: ActionReload,
			ProjectID:   &created.ID,
		}, nil

	case parser.ActionAddTask:
		if project == nil {
			return &Reply{Reply: replySelectProject, ActionTaken: ActionNone}, nil
		}
		task, err := a.store.CreateTask(ctx, userID, db.CreateTaskRequest{
			Title:     truncate(action.Title, 200),
			ProjectID: &project.ID,
		})
		if err != nil {
			return nil, err
		}
		return &Reply{
			Reply:       fmt.Sprintf("OK, I've added the task '%s' to the '%s' project.", task.Title, project.Name),
			ActionTaken: ActionReload,
			ProjectID:   &project.ID,
			TaskID:      &task.ID,
		}, nil
	}

	a.logger.Warn("Unrecognized chat action", "user_id", userID, "action", action.Action)
	return &Reply{Reply: replyFallback, ActionTaken: ActionNone}, nil
}

// projectName prefixes goal, cut to fit the project name limit
func projectName(goal string) string {
	return projectNamePrefix + truncate(goal, maxProjectName-utf8.RuneCountInString(projectNamePrefix))
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n]))
}
