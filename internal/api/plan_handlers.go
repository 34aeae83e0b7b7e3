package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planora/planora/internal/planner"
)

const planCreatedMessage = "AI-powered project created successfully!"

type generateProjectRequest struct {
	Goal string `json:"goal"`
}

type chatRequest struct {
	ProjectID *uint  `json:"project_id"`
	Message   string `json:"message"`
}

func (s *Server) handleDashboard(c *gin.Context) {
	data, err := s.store.DashboardData(c.Request.Context(), currentUser(c), s.now())
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "", data)
}

// handleGenerateProject creates a project plan for the caller. Any user id in the
// body is ignored; ownership comes from the token.
func (s *Server) handleGenerateProject(c *gin.Context) {
	var req generateProjectRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	result, err := s.planner.GeneratePlanFromGoal(c.Request.Context(), currentUser(c), req.Goal)
	if err != nil {
		status, msg := planner.StatusFor(err)
		fail(c, status, msg)
		return
	}
	ok(c, http.StatusCreated, planCreatedMessage, result)
}

func (s *Server) handleRoadmapData(c *gin.Context) {
	projects, err := s.store.RoadmapData(c.Request.Context(), currentUser(c))
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"projects": projects})
}

func (s *Server) handleRoadmapChat(c *gin.Context) {
	var req chatRequest
	if !bindJSON(c, &req) {
		return
	}

	reply, err := s.agent.Chat(c.Request.Context(), currentUser(c), req.ProjectID, req.Message)
	if err != nil {
		if isStoreError(err) && !errors.Is(err, planner.ErrPersistence) {
			s.storeError(c, err)
			return
		}
		status, msg := planner.StatusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("Chat failed", "user_id", currentUser(c), "error", err)
		}
		fail(c, status, msg)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"reply":        reply.Reply,
		"action_taken": reply.ActionTaken,
		"data":         reply,
	})
}
