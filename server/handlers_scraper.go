package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"leadscout/scraper"
)

type startScrapeRequest struct {
	URLs     []string `json:"urls"`
	Industry string   `json:"industry"`
}

// startScrape validates the request and launches the scrape worker in the
// background. Polling happens via GET /api/scraper/jobs/:id.
func (s *Server) startScrape(c *gin.Context) {
	var req startScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.URLs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one group URL is required"})
		return
	}
	if !scraper.ValidIndustry(req.Industry) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown industry"})
		return
	}
	if !s.jar.Configured() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no Facebook cookies configured; add cookies in settings"})
		return
	}

	job := scraper.NewJob(req.URLs, req.Industry)
	if err := s.store.Create(c.Request.Context(), job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job"})
		return
	}

	// Capture the response fields before the worker takes ownership of
	// the record; it starts mutating job state immediately.
	id, status := job.ID, job.Status

	// Worker outlives the request; it reports through the store.
	go s.worker.Run(context.Background(), job)

	c.JSON(http.StatusOK, gin.H{"job_id": id, "status": status})
}

func (s *Server) listJobs(c *gin.Context) {
	jobs, err := s.store.List(c.Request.Context(), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (s *Server) getJob(c *gin.Context) {
	job, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, scraper.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// stopJob requests cooperative cancellation; the worker honors it at its
// next checkpoint.
func (s *Server) stopJob(c *gin.Context) {
	id := c.Param("id")
	job, err := s.store.Get(c.Request.Context(), id)
	if errors.Is(err, scraper.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}
	if job.Terminal() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job already finished"})
		return
	}
	if err := s.store.RequestStop(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to request stop"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"job_id": id, "stopping": true})
}

func (s *Server) listIndustries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"industries": scraper.Industries()})
}

func (s *Server) cookiesStatus(c *gin.Context) {
	cookies, err := s.jar.Load()
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"configured": false, "error": "cookie file unreadable"})
		return
	}
	resp := gin.H{"configured": len(cookies) > 0, "count": len(cookies)}
	if expiry, ok := s.jar.EstimateExpiry(); ok {
		resp["estimated_expiry"] = expiry.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) setCookies(c *gin.Context) {
	var cookies []scraper.Cookie
	if err := c.ShouldBindJSON(&cookies); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cookies must be a JSON array"})
		return
	}
	if len(cookies) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cookie set is empty"})
		return
	}
	for _, ck := range cookies {
		if ck.Name == "" || ck.Value == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "every cookie needs a name and value"})
			return
		}
	}
	if err := s.jar.Save(cookies); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cookies"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": len(cookies)})
}

func (s *Server) deleteCookies(c *gin.Context) {
	if err := s.jar.Delete(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete cookies"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
