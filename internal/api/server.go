// Package api serves the planora JSON API over gin.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/planora/planora/internal/agent"
	"github.com/planora/planora/internal/auth"
	"github.com/planora/planora/internal/db"
	"github.com/planora/planora/internal/metrics"
	"github.com/planora/planora/internal/planner"
)

// PlanGenerator creates a project plan from a goal
type PlanGenerator interface {
	GeneratePlanFromGoal(ctx context.Context, userID uint, goal string) (*planner.Result, error)
}

// ChatAgent answers roadmap chat messages
type ChatAgent interface {
	Chat(ctx context.Context, userID uint, projectID *uint, message string) (*agent.Reply, error)
}

// Options holds the server's collaborators
type Options struct {
	Store   *db.Store
	Planner PlanGenerator
	Agent   ChatAgent
	Tokens  *auth.TokenIssuer
	Logger  *slog.Logger

	// Metrics and Gatherer are optional; /metrics is served only when Gatherer is set
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	MetricsPath string

	// Mode is the gin mode: debug, release or test
	Mode string
	Now  func() time.Time
}

// Server is the planora API server
type Server struct {
	store   *db.Store
	planner PlanGenerator
	agent   ChatAgent
	tokens  *auth.TokenIssuer
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	router  *gin.Engine
}

// NewServer creates a server and registers every route
func NewServer(opts Options) *Server {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	router := gin.New()
	s := &Server{
		store:   opts.Store,
		planner: opts.Planner,
		agent:   opts.Agent,
		tokens:  opts.Tokens,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Now,
		router:  router,
	}

	router.Use(s.recovery(), s.requestLogger(), s.instrument())

	router.GET("/healthz", s.handleHealth)
	if opts.Gatherer != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", s.handleRegister)
		authRoutes.POST("/login", s.handleLogin)
		authRoutes.GET("/me", s.requireAuth(), s.handleMe)
	}

	private := api.Group("", s.requireAuth())

	profile := private.Group("/profile")
	{
		profile.GET("", s.handleGetProfile)
		profile.PUT("", s.handleUpdateProfile)
	}

	tasks := private.Group("/tasks")
	{
		tasks.POST("", s.handleCreateTask)
		tasks.GET("", s.handleListTasks)
		tasks.GET("/search", s.handleSearchTasks)
		tasks.PUT("/reorder", s.handleReorderTasks)
		tasks.GET("/:id", s.handleGetTask)
		tasks.PUT("/:id", s.handleUpdateTask)
		tasks.DELETE("/:id", s.handleDeleteTask)
	}

	projects := private.Group("/projects")
	{
		projects.POST("", s.handleCreateProject)
		projects.GET("", s.handleListProjects)
		projects.GET("/:id", s.handleGetProject)
		projects.PUT("/:id", s.handleUpdateProject)
		projects.DELETE("/:id", s.handleDeleteProject)
	}

	categories := private.Group("/categories")
	{
		categories.POST("", s.handleCreateCategory)
		categories.GET("", s.handleListCategories)
		categories.PUT("/:id", s.handleUpdateCategory)
		categories.DELETE("/:id", s.handleDeleteCategory)
	}

	notes := private.Group("/notes")
	{
		notes.GET("", s.handleListNotes)
		notes.POST("", s.handleCreateNote)
		notes.PUT("/:id", s.handleUpdateNote)
		notes.DELETE("/:id", s.handleDeleteNote)
	}

	focus := private.Group("/focus_sessions")
	{
		focus.POST("/start", s.handleStartSession)
		focus.POST("/:id/stop", s.handleStopSession)
		focus.GET("/active", s.handleActiveSession)
		focus.GET("", s.handleListSessions)
	}

	private.GET("/dashboard/data", s.handleDashboard)
	private.POST("/ai/generate-project", s.handleGenerateProject)

	roadmap := private.Group("/roadmap")
	{
		roadmap.GET("/data", s.handleRoadmapData)
		roadmap.POST("/chat", s.handleRoadmapChat)
	}

	return s
}

// Handler returns the server's http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Gorm().WithContext(c.Request.Context()).Exec("SELECT 1").Error; err != nil {
		s.logger.Error("Health check failed", "error", err)
		fail(c, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
}
