package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/planora/planora/internal/planner"
)

const userIDKey = "user_id"

// recovery turns panics into a 500 envelope
func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		s.logger.Error("Panic while handling request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", recovered)
		fail(c, http.StatusInternalServerError, planner.MsgInternal)
	})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info("Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
			"user_id", c.GetUint(userIDKey))
	}
}

func (s *Server) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.metrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// requireAuth resolves the bearer token to a user id. The id is the only
// identity handlers trust; ids in request bodies are ignored.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			fail(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		userID, err := s.tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			fail(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUser(c *gin.Context) uint {
	return c.GetUint(userIDKey)
}
