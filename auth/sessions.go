// Package auth validates bearer session tokens against Redis. Sessions are
// provisioned out of band (the login flow lives elsewhere); this package
// only resolves and revokes them.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned for unknown or expired tokens.
var ErrSessionNotFound = errors.New("session not found")

// Session identifies an authenticated user.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	sessionKeyPrefix = "session:"
	sessionTTL       = 7 * 24 * time.Hour
	// ContextUserKey is where middleware stores the resolved session.
	ContextUserKey = "session"
)

// Store resolves session tokens.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Create persists a session under the token. Used by provisioning tooling
// and tests.
func (s *Store) Create(ctx context.Context, token string, sess Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+token, data, sessionTTL).Err()
}

// Get resolves a token to its session.
func (s *Store) Get(ctx context.Context, token string) (*Session, error) {
	val, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Delete revokes a token.
func (s *Store) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKeyPrefix+token).Err()
}

// bearerToken pulls the token from the Authorization header or the
// session_token cookie.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie("session_token"); err == nil {
		return cookie
	}
	return ""
}

// Optional resolves the session when a token is present but lets
// anonymous requests through.
func (s *Store) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if sess, err := s.Get(c.Request.Context(), token); err == nil {
				c.Set(ContextUserKey, sess)
				c.Set("session_token", token)
			}
		}
		c.Next()
	}
}

// Required aborts with 401 unless the request carries a valid session.
func (s *Store) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		sess, err := s.Get(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}
		c.Set(ContextUserKey, sess)
		c.Set("session_token", token)
		c.Next()
	}
}

// SessionFrom returns the session middleware attached to the request, if any.
func SessionFrom(c *gin.Context) *Session {
	if v, ok := c.Get(ContextUserKey); ok {
		if sess, ok := v.(*Session); ok {
			return sess
		}
	}
	return nil
}
