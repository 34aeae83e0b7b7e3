package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/planora/planora/internal/db"
)

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (s *Server) handleCreateProject(c *gin.Context) {
	var req createProjectRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		fail(c, http.StatusBadRequest, "Project name is required")
		return
	}

	project, err := s.store.CreateProject(c.Request.Context(), currentUser(c), db.CreateProjectRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Project created successfully", gin.H{"project": project})
}

func (s *Server) handleListProjects(c *gin.Context) {
	projects, err := s.store.ListProjects(c.Request.Context(), currentUser(c), c.Query("status"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"projects": projects})
}

func (s *Server) handleGetProject(c *gin.Context) {
	id, found := idParam(c, "id")
	if !found {
		return
	}

	ctx := c.Request.Context()
	project, err := s.store.GetProject(ctx, currentUser(c), id)
	if err != nil {
		s.storeError(c, err)
		return
	}
	tasks, err := s.store.ProjectTasks(ctx, currentUser(c), id)
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"project": project, "tasks": tasks})
}

func (s *Server) handleUpdateProject(c *gin.Context) {
	id, found := idParam(c, "id")
	if !found {
		return
	}
	var req updateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := s.store.UpdateProject(c.Request.Context(), currentUser(c), id, db.UpdateProjectRequest{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "Project updated", gin.H{"project": project})
}

func (s *Server) handleDeleteProject(c *gin.Context) {
	id, found := idParam(c, "id")
	if !found {
		return
	}
	if err := s.store.DeleteProject(c.Request.Context(), currentUser(c), id); err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "Project deleted successfully", nil)
}
