package agents

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/perimetric/council/internal/models"
)

// promptCodeLimit caps how much of a file is sent to the model.
const promptCodeLimit = 2000

// rawIssue is the wire shape the agents ask the model to emit. The
// security agent reports the kind under "subtype", the others under
// "issue"; severity arrives as "severity" or "impact" depending on the
// agent vocabulary.
type rawIssue struct {
	Type        string `json:"type"`
	Subtype     string `json:"subtype"`
	Issue       string `json:"issue"`
	Severity    string `json:"severity"`
	Impact      string `json:"impact"`
	File        string `json:"file"`
	Line        int    `json:"line"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
}

// stripFences removes a markdown code fence wrapped around a model
// response.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func decodeIssues(payload string) ([]rawIssue, error) {
	cleaned := stripFences(payload)
	var issues []rawIssue
	if err := json.Unmarshal([]byte(cleaned), &issues); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	return issues, nil
}

// findingFromIssue normalizes one raw issue. Line numbers below 1 are
// dropped, a blank file falls back to the file the agent analyzed.
func findingFromIssue(issue rawIssue, category models.Category, severity models.Severity, fallbackFile string) models.Finding {
	f := models.Finding{
		File:        issue.File,
		Severity:    severity,
		Category:    category,
		Subtype:     issue.Subtype,
		Description: issue.Description,
		Suggestion:  issue.Suggestion,
	}
	if f.Subtype == "" {
		f.Subtype = issue.Issue
	}
	if f.File == "" {
		f.File = fallbackFile
	}
	if issue.Line >= 1 {
		f.Line = issue.Line
	}
	return f
}

// parseFailureFinding surfaces an unparseable model response as a
// diagnostic finding so the failure is visible in the report instead
// of silently dropping the file.
func parseFailureFinding(agentName, file string, err error) models.Finding {
	return models.Finding{
		File:        file,
		Severity:    models.SeverityLow,
		Category:    models.CategoryDiagnostic,
		Subtype:     "unparseable_response",
		Description: fmt.Sprintf("%s returned an unparseable response: %v", agentName, err),
		Suggestion:  "Re-run the review or switch to a model that returns the requested JSON format",
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// languageHint derives a language name from the file extension.
func languageHint(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "unknown"
	}
	return ext
}
