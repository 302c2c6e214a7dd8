package agents

import (
	"context"
	"fmt"

	"github.com/perimetric/council/internal/models"
)

const architectureSystem = "Architecture expert. Check: design patterns, SOLID principles, coupling, scalability, separation of concerns. Return JSON array only."

const architecturePrompt = `Analyze this code for ALL architecture issues in ONE pass:

File: %s
Code (first 2000 chars): %s

Check for: design patterns (good/bad/missing), SOLID violations, coupling issues, scalability concerns, separation of concerns.

Return ONLY valid JSON array:
[{"type": "architecture", "issue": "pattern|solid|coupling|scalability|separation", "line": number, "description": "...", "suggestion": "...", "severity": "high|medium|low"}]

Be concise. Max 8 issues.`

// Architecture reviews structure and design of the code.
type Architecture struct {
	base
}

func NewArchitecture(gen Generator) *Architecture {
	return &Architecture{base: base{
		id:      AgentArchitecture,
		name:    DisplayName(AgentArchitecture),
		gen:     gen,
		workers: defaultFileWorkers,
	}}
}

func (a *Architecture) Analyze(ctx context.Context, files []models.SourceFile) models.AgentReport {
	return a.run(ctx, files, a.analyzeFile)
}

func (a *Architecture) analyzeFile(ctx context.Context, file models.SourceFile) ([]models.Finding, error) {
	prompt := fmt.Sprintf(architecturePrompt, file.Path, truncate(file.Content, promptCodeLimit))
	response, err := a.gen.GenerateWithSystem(ctx, architectureSystem, prompt)
	if err != nil {
		return nil, err
	}

	issues, err := decodeIssues(response)
	if err != nil {
		return []models.Finding{parseFailureFinding(a.name, file.Path, err)}, nil
	}

	findings := make([]models.Finding, 0, len(issues))
	for _, issue := range issues {
		findings = append(findings, findingFromIssue(issue, models.CategoryArchitecture, models.ParseSeverity(issue.Severity), file.Path))
	}
	return findings, nil
}
