// Package models defines the data structures shared across the council review engine.
package models

import "time"

// Status represents the lifecycle state of a review job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// rank orders statuses along the lifecycle. Terminal states share a rank so
// a failed job can never be revived as completed (or vice versa).
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusProcessing:
		return 1
	case StatusCompleted, StatusFailed:
		return 2
	default:
		return -1
	}
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanAdvance reports whether moving from s to next is a legal forward transition.
func (s Status) CanAdvance(next Status) bool {
	return next.rank() > s.rank()
}

// Target identifies the changeset a job reviews: a provider name plus a
// provider-specific locator (directory path, PR reference, ...).
type Target struct {
	Provider string `json:"provider"`
	Locator  string `json:"locator"`
}

// SourceFile is one reviewable file of a fetched changeset.
type SourceFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Job represents a persisted review job.
// Mutation goes through the job store; the status only ever moves forward.
type Job struct {
	ID          string          `json:"id"`
	Status      Status          `json:"status"`
	Target      Target          `json:"target"`
	Progress    []ProgressEvent `json:"progress,omitempty"`
	Report      *Report         `json:"report,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// Advance moves the job to next if that is a forward transition and reports
// whether the move happened. Terminal transitions stamp CompletedAt.
func (j *Job) Advance(next Status) bool {
	if !j.Status.CanAdvance(next) {
		return false
	}
	j.Status = next
	if next.Terminal() {
		now := time.Now()
		j.CompletedAt = &now
	}
	return true
}
