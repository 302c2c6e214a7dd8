package models

import "time"

// AgentReport is one agent's complete output for a job. A failed agent still
// produces a report with Succeeded false and the failure message; it never
// surfaces as an error to the orchestrator.
type AgentReport struct {
	AgentID   string    `json:"agent_id"`
	AgentName string    `json:"agent_name,omitempty"`
	Succeeded bool      `json:"succeeded"`
	Findings  []Finding `json:"findings,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// FileReport groups the findings that touch one file.
type FileReport struct {
	File     string         `json:"file"`
	Findings []Finding      `json:"findings"`
	ByAgent  map[string]int `json:"by_agent"`
}

// Summary totals a completed review.
//
// AgentsCompleted counts agents whose dispatch returned a report at all,
// failed ones included. AgentsSucceeded counts only clean runs, so a masked
// failure is visible in the gap between the two.
type Summary struct {
	Files                int `json:"files"`
	Findings             int `json:"findings"`
	CriticalFindings     int `json:"critical_findings"`
	HighPriorityFindings int `json:"high_priority_findings"`
	AgentsTotal          int `json:"agents_total"`
	AgentsCompleted      int `json:"agents_completed"`
	AgentsSucceeded      int `json:"agents_succeeded"`
}

// Report is the aggregated outcome of a review job.
type Report struct {
	Agents     []AgentReport `json:"agents"`
	Files      []FileReport  `json:"files"`
	Summary    Summary       `json:"summary"`
	AnalyzedAt time.Time     `json:"analyzed_at"`
}
