package http

import (
	"github.com/google/uuid"
	"time"
)

// StatusResponse describes the watcher state and the latest finished cycle.
type StatusResponse struct {
	State  string         `json:"state"`
	Cycles int64          `json:"cycles"`
	Last   *CycleResponse `json:"last_cycle,omitempty"`
}

// CycleResponse is the public view of a cycle report.
type CycleResponse struct {
	ID          uuid.UUID         `json:"id"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  time.Time         `json:"finished_at"`
	Stores      map[string]int    `json:"stores"`
	Failed      map[string]string `json:"failed,omitempty"`
	Available   bool              `json:"available"`
	Notified    bool              `json:"notified"`
	NotifyError string            `json:"notify_error,omitempty"`
}

// ErrorResponse defines a standard structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
