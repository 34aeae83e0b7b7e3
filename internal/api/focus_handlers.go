package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planora/planora/internal/db"
)

type startSessionRequest struct {
	TaskID         *uint  `json:"task_id"`
	SessionType    string `json:"session_type"`
	PlannedMinutes int    `json:"planned_minutes"`
}

type stopSessionRequest struct {
	Notes             string `json:"notes"`
	ProductivityScore *int   `json:"productivity_score"`
	WasCompleted      *bool  `json:"was_completed"`
}

func (s *Server) handleStartSession(c *gin.Context) {
	var req startSessionRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	session, err := s.store.StartSession(c.Request.Context(), currentUser(c), db.StartSessionRequest{
		TaskID:         req.TaskID,
		SessionType:    req.SessionType,
		PlannedMinutes: req.PlannedMinutes,
	})
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Session started", gin.H{"session_id": session.ID, "session": session})
}

func (s *Server) handleStopSession(c *gin.Context) {
	id, found := idParam(c, "id")
	if !found {
		return
	}
	var req stopSessionRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	session, err := s.store.StopSession(c.Request.Context(), currentUser(c), id, db.StopSessionRequest{
		Notes:             req.Notes,
		ProductivityScore: req.ProductivityScore,
		WasCompleted:      req.WasCompleted,
	})
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "Session stopped", gin.H{"session": session})
}

func (s *Server) handleActiveSession(c *gin.Context) {
	session, err := s.store.GetActiveSession(c.Request.Context(), currentUser(c))
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"session": session})
}

func (s *Server) handleListSessions(c *gin.Context) {
	limit, valid := queryInt(c, "limit")
	if !valid {
		return
	}
	sessions, err := s.store.ListSessions(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"sessions": sessions})
}
