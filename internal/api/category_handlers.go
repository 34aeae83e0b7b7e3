package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planora/planora/internal/db"
)

type categoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
	IsDefault   *bool   `json:"is_default"`
	Position    *int    `json:"position"`
}

func (r categoryRequest) toStore() db.CategoryRequest {
	return db.CategoryRequest{
		Name:        r.Name,
		Description: r.Description,
		Color:       r.Color,
		Icon:        r.Icon,
		IsDefault:   r.IsDefault,
		Position:    r.Position,
	}
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	var req categoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := s.store.CreateCategory(c.Request.Context(), currentUser(c), req.toStore())
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Category created", gin.H{"category": category})
}

func (s *Server) handleListCategories(c *gin.Context) {
	categories, err := s.store.ListCategories(c.Request.Context(), currentUser(c))
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"categories": categories})
}

func (s *Server) handleUpdateCategory(c *gin.Context) {
	id, found := idParam(c, "id")
	if !found {
		return
	}
	var req categoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := s.store.UpdateCategory(c.Request.Context(), currentUser(c), id, req.toStore())
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "Category updated", gin.H{"category": category})
}

func (s *Server) handleDeleteCategory(c *gin.Context) {
	id, found := idParam(c, "id")
	if !found {
		return
	}
	if err := s.store.DeleteCategory(c.Request.Context(), currentUser(c), id); err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "Category deleted", nil)
}
