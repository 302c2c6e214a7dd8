package models

import "strings"

// Severity is the canonical scale all agent vocabularies normalize onto.
// Agents report severity under different names and value sets ("severity",
// "impact"); adapters map them here at ingestion so aggregation never probes
// raw fields.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityUnknown  Severity = "unknown"
)

// Rank orders severities with the most severe first. Unknown sorts last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// ParseSeverity maps a raw severity or impact word onto the canonical scale.
// Unrecognized values resolve to Unknown rather than an error.
func ParseSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	case "low":
		return SeverityLow
	default:
		return SeverityUnknown
	}
}

// Category classifies what kind of problem a finding describes.
type Category string

const (
	CategorySecurity     Category = "security"
	CategoryPerformance  Category = "performance"
	CategoryQuality      Category = "quality"
	CategoryArchitecture Category = "architecture"
	CategoryBug          Category = "bug"
	CategoryStyle        Category = "style"

	// CategoryDiagnostic marks synthetic findings the engine emits about its
	// own processing, e.g. an unparseable agent payload.
	CategoryDiagnostic Category = "diagnostic"
)

// UnknownFile is the bucket findings without a resolvable file fall into.
const UnknownFile = "unknown"

// Finding is a single normalized issue reported by an agent.
type Finding struct {
	File        string   `json:"file"`
	Line        int      `json:"line,omitempty"` // 0 means no line attribution
	Severity    Severity `json:"severity"`
	Category    Category `json:"category"`
	Subtype     string   `json:"subtype,omitempty"`
	Description string   `json:"description"`
	Suggestion  string   `json:"suggestion,omitempty"`
	DetectedBy  string   `json:"detected_by,omitempty"`
}

// Critical reports whether the finding counts toward the critical total:
// critical severity, or high severity in a bug or security category.
func (f Finding) Critical() bool {
	if f.Severity == SeverityCritical {
		return true
	}
	return f.Severity == SeverityHigh && (f.Category == CategoryBug || f.Category == CategorySecurity)
}
