package models

import "time"

// Phase names the stage of one agent's run within a job.
type Phase string

const (
	PhaseStarting  Phase = "starting"
	PhaseAnalyzing Phase = "analyzing"
	PhaseCompleted Phase = "completed"
	PhaseError     Phase = "error"
)

// Fraction returns the progress value a phase reports: 0.0 while starting or
// after an error, 0.5 mid-analysis, 1.0 on completion.
func (p Phase) Fraction() float64 {
	switch p {
	case PhaseAnalyzing:
		return 0.5
	case PhaseCompleted:
		return 1.0
	default:
		return 0.0
	}
}

// ProgressEvent records one step of one agent within a job's progress log.
// The log is append-only and ordered by completion, not by submission.
type ProgressEvent struct {
	Agent     string    `json:"agent"`
	Phase     Phase     `json:"phase"`
	Fraction  float64   `json:"progress"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewProgressEvent stamps a progress event for an agent with the phase's
// canonical fraction and the current time.
func NewProgressEvent(agent string, phase Phase, message string) ProgressEvent {
	return ProgressEvent{
		Agent:     agent,
		Phase:     phase,
		Fraction:  phase.Fraction(),
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}
