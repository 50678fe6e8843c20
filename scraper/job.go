package scraper

import (
	"time"

	"github.com/google/uuid"
)

// Job status constants
const (
	JobStatusStarting  = "starting"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusError     = "error"
	JobStatusStopped   = "stopped"
)

// Job represents one scrape run against a set of group URLs for an industry.
type Job struct {
	ID             string     `json:"id"`
	Status         string     `json:"status"`
	Industry       string     `json:"industry"`
	URLs           []string   `json:"urls"`
	Message        string     `json:"message,omitempty"`
	CurrentURL     string     `json:"current_url,omitempty"`
	Stage          string     `json:"stage,omitempty"`
	MembersScanned int        `json:"members_scanned"`
	MatchesFound   int        `json:"matches_found"`
	ResultFiles    []string   `json:"result_files,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	Stale          bool       `json:"stale"`
}

// NewJob builds a job record in the starting state.
func NewJob(urls []string, industry string) *Job {
	return &Job{
		ID:        uuid.New().String(),
		Status:    JobStatusStarting,
		Industry:  industry,
		URLs:      urls,
		StartedAt: time.Now(),
	}
}

// Terminal reports whether the job has reached a final status.
func (j *Job) Terminal() bool {
	return j.Status != JobStatusStarting && j.Status != JobStatusRunning
}

// Finish moves the job to a terminal status and stamps the finish time.
func (j *Job) Finish(status, message string) {
	now := time.Now()
	j.Status = status
	j.Message = message
	j.FinishedAt = &now
}

func (j *Job) clone() *Job {
	cp := *j
	cp.URLs = append([]string(nil), j.URLs...)
	cp.ResultFiles = append([]string(nil), j.ResultFiles...)
	return &cp
}
