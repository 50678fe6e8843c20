package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadscout/auth"
)

func (s *Server) authMe(c *gin.Context) {
	sess := auth.SessionFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"user_id": sess.UserID,
		"email":   sess.Email,
		"name":    sess.Name,
	})
}

func (s *Server) authLogout(c *gin.Context) {
	token := c.GetString("session_token")
	if err := s.sessions.Delete(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logged_out": true})
}

// statusCheck is the legacy connectivity probe the dashboard writes on load.
type statusCheck struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Timestamp  time.Time `json:"timestamp"`
}

const (
	statusChecksKey  = "status:checks"
	statusChecksKeep = 999
)

func (s *Server) createStatusCheck(c *gin.Context) {
	var req struct {
		ClientName string `json:"client_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ClientName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_name is required"})
		return
	}
	check := statusCheck{
		ID:         uuid.New().String(),
		ClientName: req.ClientName,
		Timestamp:  time.Now(),
	}
	data, _ := json.Marshal(check)
	ctx := c.Request.Context()
	if err := s.redis.LPush(ctx, statusChecksKey, data).Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store status check"})
		return
	}
	_ = s.redis.LTrim(ctx, statusChecksKey, 0, statusChecksKeep).Err()
	c.JSON(http.StatusOK, check)
}

func (s *Server) listStatusChecks(c *gin.Context) {
	entries, err := s.redis.LRange(c.Request.Context(), statusChecksKey, 0, 99).Result()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read status checks"})
		return
	}
	checks := make([]statusCheck, 0, len(entries))
	for _, e := range entries {
		var check statusCheck
		if err := json.Unmarshal([]byte(e), &check); err == nil {
			checks = append(checks, check)
		}
	}
	c.JSON(http.StatusOK, checks)
}
