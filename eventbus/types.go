package eventbus

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Event types published on the job subject.
const (
	EventJobStarted   = "scrape_job_started"
	EventJobCompleted = "scrape_job_completed"
	EventJobError     = "scrape_job_error"
	EventJobStopped   = "scrape_job_stopped"
)

// JobEvent is the envelope published for every job lifecycle transition.
type JobEvent struct {
	EventID        string    `json:"event_id"`
	Source         string    `json:"source"`
	Type           string    `json:"type"`
	Timestamp      time.Time `json:"timestamp"`
	JobID          string    `json:"job_id"`
	Industry       string    `json:"industry,omitempty"`
	MembersScanned int       `json:"members_scanned,omitempty"`
	MatchesFound   int       `json:"matches_found,omitempty"`
	Message        string    `json:"message,omitempty"`
}

// EventTypeForStatus maps a terminal job status to its event type.
func EventTypeForStatus(status string) string {
	switch status {
	case "completed":
		return EventJobCompleted
	case "stopped":
		return EventJobStopped
	default:
		return EventJobError
	}
}

// NewEventID generates a random 128-bit hex id.
func NewEventID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
