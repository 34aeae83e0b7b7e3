package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planora/planora/internal/agent"
	"github.com/planora/planora/internal/auth"
	"github.com/planora/planora/internal/db"
	"github.com/planora/planora/internal/logging"
	"github.com/planora/planora/internal/metrics"
	"github.com/planora/planora/internal/models"
	"github.com/planora/planora/internal/planner"
)

var testNow = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

type fakeGenerator struct {
	reply string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.reply, f.err
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testEnv struct {
	t      *testing.T
	store  *db.Store
	gen    *fakeGenerator
	server *Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := db.OpenSQLite(filepath.Join(t.TempDir(), "planora.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tokens, err := auth.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	logger := logging.Discard()
	gen := &fakeGenerator{}
	clock := func() time.Time { return testNow }

	server := NewServer(Options{
		Store:    store,
		Planner:  planner.NewService(store, gen, planner.WithLogger(logger), planner.WithMetrics(m), planner.WithClock(clock)),
		Agent:    agent.New(store, gen, agent.WithLogger(logger), agent.WithMetrics(m)),
		Tokens:   tokens,
		Logger:   logger,
		Metrics:  m,
		Gatherer: reg,
		Mode:     gin.TestMode,
		Now:      clock,
	})
	return &testEnv{t: t, store: store, gen: gen, server: server}
}

func (e *testEnv) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	e.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (e *testEnv) register(username string) (string, uint) {
	e.t.Helper()
	w, env := e.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	var data sessionResponse
	require.NoError(e.t, json.Unmarshal(env.Data, &data))
	return data.AccessToken, data.User.ID
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	w, env := e.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestAuthFlow(t *testing.T) {
	e := newTestEnv(t)
	token, userID := e.register("alice")

	w, env := e.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "email": "other@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Username already exists", env.Message)

	w, env = e.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username, email, and password are required", env.Message)

	w, _ = e.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = e.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "nobody", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = e.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[sessionResponse](t, env.Data)
	assert.NotEmpty(t, login.AccessToken)
	require.NotNil(t, login.User.LastLogin)
	assert.NotContains(t, string(env.Data), "password")

	w, env = e.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[struct {
		User  models.User  `json:"user"`
		Stats db.TaskStats `json:"stats"`
	}](t, env.Data)
	assert.Equal(t, userID, me.User.ID)
	assert.Zero(t, me.Stats.Total)
}

func TestRequireAuth(t *testing.T) {
	e := newTestEnv(t)

	for _, header := range []string{"", "garbage", "not-a-jwt"} {
		w, env := e.do(http.MethodGet, "/api/tasks", header, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, env.Success)
	}
}

func TestProfile(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.register("alice")

	w, env := e.do(http.MethodPut, "/api/profile", token, gin.H{"first_name": "Alice", "theme": "dark"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Profile updated successfully", env.Message)

	w, env = e.do(http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[struct {
		User models.User `json:"user"`
	}](t, env.Data)
	assert.Equal(t, "Alice", got.User.FirstName)
	assert.Equal(t, "dark", got.User.Theme)

	w, _ = e.do(http.MethodPut, "/api/profile", token, gin.H{"theme": "neon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskEndpoints(t *testing.T) {
	e := newTestEnv(t)
	token, userID := e.register("alice")
	otherToken, _ := e.register("bob")

	w, env := e.do(http.MethodPost, "/api/tasks", token, gin.H{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Task title is required", env.Message)

	w, env = e.do(http.MethodPost, "/api/tasks", token, gin.H{
		"title":    "Write docs",
		"priority": "high",
		"due_date": "2024-01-12",
		"tags":     []string{"docs"},
		"user_id":  9999,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Task models.Task `json:"task"`
	}](t, env.Data).Task
	assert.Equal(t, userID, created.UserID)
	require.NotNil(t, created.DueDate)
	assert.True(t, time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC).Equal(*created.DueDate))

	_, _ = e.do(http.MethodPost, "/api/tasks", token, gin.H{"title": "Review docs"})
	_, _ = e.do(http.MethodPost, "/api/tasks", token, gin.H{"title": "Ship release"})

	w, env = e.do(http.MethodGet, "/api/tasks?per_page=2&page=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Tasks      []models.Task `json:"tasks"`
		Pagination pagination    `json:"pagination"`
	}](t, env.Data)
	assert.Len(t, list.Tasks, 2)
	assert.Equal(t, pagination{Page: 1, PerPage: 2, Total: 3, Pages: 2}, list.Pagination)

	w, env = e.do(http.MethodGet, "/api/tasks/search?q=docs", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	found := decode[struct {
		Tasks []models.Task `json:"tasks"`
	}](t, env.Data)
	require.Len(t, found.Tasks, 2)
	assert.ElementsMatch(t, []string{"Write docs", "Review docs"}, []string{found.Tasks[0].Title, found.Tasks[1].Title})

	path := fmt.Sprintf("/api/tasks/%d", created.ID)
	w, env = e.do(http.MethodPut, path, token, `{"status": "completed", "due_date": null}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[struct {
		Task models.Task `json:"task"`
	}](t, env.Data).Task
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.NotNil(t, updated.CompletedAt)
	assert.Nil(t, updated.DueDate)

	w, _ = e.do(http.MethodGet, path, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = e.do(http.MethodDelete, path, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = e.do(http.MethodGet, "/api/tasks/abc", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = e.do(http.MethodPut, "/api/tasks/reorder", token, gin.H{"task_ids": []uint{created.ID + 2, created.ID + 1, created.ID}})
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = e.do(http.MethodGet, "/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list = decode[struct {
		Tasks      []models.Task `json:"tasks"`
		Pagination pagination    `json:"pagination"`
	}](t, env.Data)
	require.Len(t, list.Tasks, 3)
	assert.Equal(t, "Ship release", list.Tasks[0].Title)

	w, env = e.do(http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Task deleted successfully", env.Message)
	w, _ = e.do(http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectEndpoints(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.register("alice")

	w, env := e.do(http.MethodPost, "/api/projects", token, gin.H{"name": "Launch", "description": "v1"})
	require.Equal(t, http.StatusCreated, w.Code)
	project := decode[struct {
		Project models.Project `json:"project"`
	}](t, env.Data).Project

	_, _ = e.do(http.MethodPost, "/api/tasks", token, gin.H{"title": "Landing page", "project_id": project.ID})

	path := fmt.Sprintf("/api/projects/%d", project.ID)
	w, env = e.do(http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[struct {
		Project db.ProjectDetail `json:"project"`
		Tasks   []models.Task    `json:"tasks"`
	}](t, env.Data)
	assert.EqualValues(t, 1, detail.Project.TaskCount)
	assert.Len(t, detail.Tasks, 1)

	w, _ = e.do(http.MethodPut, path, token, gin.H{"status": "archived"})
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = e.do(http.MethodGet, "/api/projects?status=active", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	active := decode[struct {
		Projects []db.ProjectDetail `json:"projects"`
	}](t, env.Data)
	assert.Empty(t, active.Projects)

	w, _ = e.do(http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = e.do(http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategoryEndpoints(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.register("alice")

	w, _ := e.do(http.MethodPost, "/api/categories", token, gin.H{"name": "Work", "color": "#ff0000"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := e.do(http.MethodPost, "/api/categories", token, gin.H{"name": "work"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, `Category "work" already exists`, env.Message)

	w, env = e.do(http.MethodGet, "/api/categories", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Categories []models.CategoryStats `json:"categories"`
	}](t, env.Data)
	require.Len(t, list.Categories, 1)
	assert.Equal(t, "#FF0000", list.Categories[0].Color)
}

func TestNoteEndpoints(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.register("alice")

	w, env := e.do(http.MethodPost, "/api/notes", token, gin.H{"title": "Ideas", "content": "# Heading\n\n*bold* <script>x</script>"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Note noteView `json:"note"`
	}](t, env.Data).Note
	assert.Contains(t, created.ContentHTML, "<h1>Heading</h1>")
	assert.Contains(t, created.ContentHTML, "<em>bold</em>")
	assert.NotContains(t, created.ContentHTML, "<script>")

	w, env = e.do(http.MethodGet, "/api/notes?q=heading", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	found := decode[struct {
		Notes []noteView `json:"notes"`
	}](t, env.Data)
	require.Len(t, found.Notes, 1)
	assert.NotEmpty(t, found.Notes[0].ContentHTML)

	w, _ = e.do(http.MethodPost, "/api/notes", token, gin.H{"title": "Empty"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFocusSessionEndpoints(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.register("alice")

	w, env := e.do(http.MethodPost, "/api/focus_sessions/start", token, gin.H{"planned_minutes": 50})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	started := decode[struct {
		SessionID uint `json:"session_id"`
	}](t, env.Data)

	w, _ = e.do(http.MethodPost, "/api/focus_sessions/start", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = e.do(http.MethodGet, "/api/focus_sessions/active", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	active := decode[struct {
		Session *models.FocusSession `json:"session"`
	}](t, env.Data)
	require.NotNil(t, active.Session)
	assert.Equal(t, 50, active.Session.PlannedMinutes)

	w, _ = e.do(http.MethodPost, fmt.Sprintf("/api/focus_sessions/%d/stop", started.SessionID), token, gin.H{"productivity_score": 8})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = e.do(http.MethodGet, "/api/focus_sessions/active", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	active = decode[struct {
		Session *models.FocusSession `json:"session"`
	}](t, env.Data)
	assert.Nil(t, active.Session)

	w, _ = e.do(http.MethodPost, fmt.Sprintf("/api/focus_sessions/%d/stop", started.SessionID), token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDashboardAndRoadmap(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.register("alice")
	_, _ = e.do(http.MethodPost, "/api/projects", token, gin.H{"name": "Launch"})

	w, env := e.do(http.MethodGet, "/api/dashboard/data", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decode[db.Dashboard](t, env.Data)
	assert.Len(t, dash.Projects, 1)

	w, env = e.do(http.MethodGet, "/api/roadmap/data", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	roadmap := decode[struct {
		Projects []models.Project `json:"projects"`
	}](t, env.Data)
	assert.Len(t, roadmap.Projects, 1)
}

const generatedPlan = "```json\n" + `{
  "project_name": "Backend Development",
  "project_description": "Become a backend developer.",
  "mini_projects": [{"title": "Basics", "tasks": [
    {"title": "HTTP", "day": 1},
    {"title": "REST", "day": 3}
  ]}],
  "major_projects": [{"title": "Capstone", "tasks": [
    {"title": "Deploy", "day": 10}
  ]}]
}` + "\n```"

func TestGenerateProject(t *testing.T) {
	e := newTestEnv(t)
	token, userID := e.register("alice")
	_, otherID := e.register("mallory")
	e.gen.reply = generatedPlan

	w, env := e.do(http.MethodPost, "/api/ai/generate-project", token, gin.H{
		"goal":    "Learn backend development",
		"user_id": otherID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)
	assert.Equal(t, "AI-powered project created successfully!", env.Message)
	result := decode[planner.Result](t, env.Data)
	assert.Equal(t, 3, result.TaskCount)

	project, err := e.store.GetProject(context.Background(), userID, result.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, userID, project.UserID)

	tasks, err := e.store.ProjectTasks(context.Background(), userID, result.ProjectID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	for i, offset := range []int{0, 2, 9} {
		want := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
		assert.True(t, want.Equal(*tasks[i].DueDate))
		assert.Equal(t, models.StatusTodo, tasks[i].Status)
	}
}

func TestGenerateProjectErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		reply   string
		genErr  error
		status  int
		message string
		calls   int
	}{
		{"empty goal", gin.H{"goal": "  "}, generatedPlan, nil, http.StatusBadRequest, "Goal is required", 0},
		{"absent goal", gin.H{}, generatedPlan, nil, http.StatusBadRequest, "Goal is required", 0},
		{"no body", nil, generatedPlan, nil, http.StatusBadRequest, "Goal is required", 0},
		{"malformed plan", gin.H{"goal": "x"}, `{"project_description": "d", "tasks": []}`, nil,
			http.StatusBadGateway, planner.MsgAIResponseParse, 1},
		{"generator down", gin.H{"goal": "x"}, "", errors.New("connection refused"),
			http.StatusBadGateway, planner.MsgExternalService, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			token, userID := e.register("alice")
			e.gen.reply, e.gen.err = tt.reply, tt.genErr

			w, env := e.do(http.MethodPost, "/api/ai/generate-project", token, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.message, env.Message)
			assert.Equal(t, tt.calls, e.gen.calls)

			projects, err := e.store.ListProjects(context.Background(), userID, "")
			require.NoError(t, err)
			assert.Empty(t, projects)
		})
	}
}

func TestRoadmapChat(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.register("alice")

	e.gen.reply = `{"action": "create_project", "goal": "Learn Rust"}`
	w, _ := e.do(http.MethodPost, "/api/roadmap/chat", token, gin.H{"message": "new project for rust"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Success     bool   `json:"success"`
		Reply       string `json:"reply"`
		ActionTaken string `json:"action_taken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "reload", body.ActionTaken)
	assert.Contains(t, body.Reply, "New Project: Learn Rust")

	w, env := e.do(http.MethodPost, "/api/roadmap/chat", token, gin.H{"message": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Message is required.", env.Message)

	w, _ = e.do(http.MethodPost, "/api/roadmap/chat", token, gin.H{"message": "hi", "project_id": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t)
	_, _ = e.do(http.MethodGet, "/healthz", "", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `planora_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}
