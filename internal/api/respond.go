package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/planora/planora/internal/db"
	"github.com/planora/planora/internal/planner"
)

// ok writes a success envelope. message and data are omitted when empty.
func ok(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// fail writes an error envelope
func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// storeError maps a store error to a response. Unknown errors are logged and hidden.
func (s *Server) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		fail(c, http.StatusNotFound, clientMessage(err, db.ErrNotFound))
	case errors.Is(err, db.ErrConflict):
		fail(c, http.StatusConflict, clientMessage(err, db.ErrConflict))
	case errors.Is(err, db.ErrInvalid):
		fail(c, http.StatusBadRequest, clientMessage(err, db.ErrInvalid))
	default:
		s.logger.Error("Request failed",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"user_id", c.GetUint(userIDKey),
			"error", err)
		fail(c, http.StatusInternalServerError, planner.MsgInternal)
	}
}

// isStoreError reports whether err carries one of the store's sentinels
func isStoreError(err error) bool {
	return errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrConflict) || errors.Is(err, db.ErrInvalid)
}

// clientMessage strips the sentinel suffix and capitalizes the first letter
func clientMessage(err, sentinel error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
	if msg == "" {
		return sentinel.Error()
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// idParam reads a positive numeric path parameter, answering 404 when it is not one
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		fail(c, http.StatusNotFound, "Not found")
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes the body into dst, answering 400 on malformed input
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func queryUint(c *gin.Context, key string) (*uint, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid "+key)
		return nil, false
	}
	id := uint(v)
	return &id, true
}

func queryInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid "+key)
		return 0, false
	}
	return v, true
}
