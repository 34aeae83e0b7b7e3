package api

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"

	"github.com/planora/planora/internal/db"
	"github.com/planora/planora/internal/models"
)

type noteRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	ProjectID *uint   `json:"project_id"`
}

// noteView is a note with its markdown rendered to HTML
type noteView struct {
	models.Note
	ContentHTML string `json:"content_html"`
}

// renderNote converts the note's markdown; raw HTML in the source is not passed through
func renderNote(n models.Note) noteView {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(n.Content), &buf); err != nil {
		return noteView{Note: n, ContentHTML: "<p>Error rendering markdown</p>"}
	}
	return noteView{Note: n, ContentHTML: buf.String()}
}

func renderNotes(notes []models.Note) []noteView {
	views := make([]noteView, len(notes))
	for i, n := range notes {
		views[i] = renderNote(n)
	}
	return views
}

func (s *Server) handleListNotes(c *gin.Context) {
	ctx := c.Request.Context()

	var notes []models.Note
	var err error
	if q := c.Query("q"); q != "" {
		notes, err = s.store.SearchNotes(ctx, currentUser(c), q)
	} else {
		projectID, valid := queryUint(c, "project_id")
		if !valid {
			return
		}
		notes, err = s.store.ListNotes(ctx, currentUser(c), projectID)
	}
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"notes": renderNotes(notes)})
}

func (s *Server) handleCreateNote(c *gin.Context) {
	var req noteRequest
	if !bindJSON(c, &req) {
		return
	}
	note, err := s.store.CreateNote(c.Request.Context(), currentUser(c), db.NoteRequest{
		Title:     req.Title,
		Content:   req.Content,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Note created successfully", gin.H{"note": renderNote(*note)})
}

func (s *Server) handleUpdateNote(c *gin.Context) {
	id, found := idParam(c, "id")
	if !found {
		return
	}
	var req noteRequest
	if !bindJSON(c, &req) {
		return
	}
	note, err := s.store.UpdateNote(c.Request.Context(), currentUser(c), id, db.NoteRequest{
		Title:     req.Title,
		Content:   req.Content,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "Note updated", gin.H{"note": renderNote(*note)})
}

func (s *Server) handleDeleteNote(c *gin.Context) {
	id, found := idParam(c, "id")
	if !found {
		return
	}
	if err := s.store.DeleteNote(c.Request.Context(), currentUser(c), id); err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "Note deleted", nil)
}
