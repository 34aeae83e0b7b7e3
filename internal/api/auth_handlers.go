package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/planora/planora/internal/auth"
	"github.com/planora/planora/internal/db"
	"github.com/planora/planora/internal/models"
)

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "Username, email, and password are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrWeakPassword) {
		fail(c, http.StatusBadRequest, "Password must be between 8 and 72 characters")
		return
	}
	if err != nil {
		s.storeError(c, err)
		return
	}

	user, err := s.store.CreateUser(c.Request.Context(), db.CreateUserRequest{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if errors.Is(err, db.ErrConflict) {
		fail(c, http.StatusBadRequest, clientMessage(err, db.ErrConflict))
		return
	}
	if err != nil {
		s.storeError(c, err)
		return
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.storeError(c, err)
		return
	}

	s.logger.Info("User registered", "user_id", user.ID, "username", user.Username)
	ok(c, http.StatusCreated, "User registered successfully", sessionResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        user,
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	ctx := c.Request.Context()
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		s.storeError(c, err)
		return
	}
	if user == nil || !user.IsActive || auth.CheckPassword(user.PasswordHash, req.Password) != nil {
		fail(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	now := s.now().UTC()
	if err := s.store.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.storeError(c, err)
		return
	}
	user.LastLogin = &now

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.storeError(c, err)
		return
	}

	ok(c, http.StatusOK, "Login successful", sessionResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        user,
	})
}

func (s *Server) handleMe(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUser(c)

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		s.storeError(c, err)
		return
	}
	stats, err := s.store.TaskStats(ctx, userID, s.now())
	if err != nil {
		s.storeError(c, err)
		return
	}

	ok(c, http.StatusOK, "", gin.H{"user": user, "stats": stats})
}

type profileRequest struct {
	FirstName            *string `json:"first_name"`
	LastName             *string `json:"last_name"`
	Timezone             *string `json:"timezone"`
	Theme                *string `json:"theme"`
	AvatarURL            *string `json:"avatar_url"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
}

func (s *Server) handleGetProfile(c *gin.Context) {
	user, err := s.store.GetUser(c.Request.Context(), currentUser(c))
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"user": user})
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	var req profileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := s.store.UpdateProfile(c.Request.Context(), currentUser(c), db.UpdateProfileRequest{
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Timezone:             req.Timezone,
		Theme:                req.Theme,
		AvatarURL:            req.AvatarURL,
		NotificationsEnabled: req.NotificationsEnabled,
	})
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "Profile updated successfully", gin.H{"user": user})
}
