package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"leadscout/scrapes"
)

func (s *Server) listScrapes(c *gin.Context) {
	files, err := s.files.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list scrape files"})
		return
	}
	totalRecords := 0
	for _, f := range files {
		totalRecords += f.Records
	}
	c.JSON(http.StatusOK, gin.H{
		"files":         files,
		"total_files":   len(files),
		"total_records": totalRecords,
	})
}

func (s *Server) downloadScrape(c *gin.Context) {
	filename := c.Param("filename")
	f, err := s.files.Open(filename)
	if errors.Is(err, scrapes.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file"})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stat file"})
		return
	}
	c.DataFromReader(http.StatusOK, info.Size(), "text/csv", f, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filename),
	})
}

func (s *Server) deleteScrape(c *gin.Context) {
	filename := c.Param("filename")
	err := s.files.Delete(filename)
	if errors.Is(err, scrapes.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete file"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": filename})
}
