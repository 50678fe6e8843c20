package main

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"leadscout/auth"
	"leadscout/gateway"
)

func (s *Server) gatewayStart(c *gin.Context) {
	sess := auth.SessionFrom(c)

	var cfg gateway.StartConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	err := s.gw.Start(sess.UserID, cfg)
	switch {
	case errors.Is(err, gateway.ErrAlreadyRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, s.gw.Status(sess.UserID))
	}
}

func (s *Server) gatewayStop(c *gin.Context) {
	sess := auth.SessionFrom(c)
	err := s.gw.Stop(sess.UserID)
	switch {
	case errors.Is(err, gateway.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, gateway.ErrNotRunning):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"stopped": true})
	}
}

// gatewayStatus is readable by anyone; owner-only fields are computed from
// whatever session the request carries.
func (s *Server) gatewayStatus(c *gin.Context) {
	userID := ""
	if sess := auth.SessionFrom(c); sess != nil {
		userID = sess.UserID
	}
	c.JSON(http.StatusOK, s.gw.Status(userID))
}

func (s *Server) gatewayToken(c *gin.Context) {
	sess := auth.SessionFrom(c)
	token, err := s.gw.Token(sess.UserID)
	switch {
	case errors.Is(err, gateway.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, gateway.ErrNotRunning):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

// gatewayProxy forwards plain HTTP requests to the running gateway
// process. WebSocket upgrade is not supported here.
func (s *Server) gatewayProxy(c *gin.Context) {
	if !s.gw.Status("").Running {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "gateway is not running"})
		return
	}

	target := strings.TrimRight(s.gw.BaseURL(), "/") + c.Param("path")
	if c.Request.URL.RawQuery != "" {
		target += "?" + c.Request.URL.RawQuery
	}

	var req *http.Request
	var err error
	method := c.Request.Method
	if method == http.MethodGet || method == http.MethodDelete || method == http.MethodHead {
		req, err = http.NewRequest(method, target, nil)
	} else {
		body, _ := io.ReadAll(c.Request.Body)
		req, err = http.NewRequest(method, target, strings.NewReader(string(body)))
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create proxy request"})
		return
	}
	for k, vals := range c.Request.Header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "gateway proxy failed", "details": err.Error()})
		return
	}
	defer resp.Body.Close()

	for k, vals := range resp.Header {
		for _, v := range vals {
			c.Writer.Header().Add(k, v)
		}
	}
	c.Status(resp.StatusCode)
	io.Copy(c.Writer, resp.Body)
}
