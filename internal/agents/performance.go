package agents

import (
	"context"
	"fmt"

	"github.com/perimetric/council/internal/models"
)

const performanceSystem = "Performance expert. Find: complexity issues, N+1 queries, memory leaks, caching opportunities, blocking ops. Return JSON array only."

const performancePrompt = `Analyze this %s code for ALL performance issues in ONE pass:

File: %s
Code (first 2000 chars): %s

Check for: time/space complexity, N+1 queries, memory leaks, missing caching, blocking operations, inefficient algorithms.

Return ONLY valid JSON array:
[{"type": "performance", "issue": "complexity|n_plus_one|memory|caching|blocking", "line": number, "description": "...", "suggestion": "...", "impact": "high|medium|low"}]

Be concise. Max 8 issues.`

// Performance looks for algorithmic and resource problems. Reported
// impact maps onto the canonical severity scale.
type Performance struct {
	base
}

func NewPerformance(gen Generator) *Performance {
	return &Performance{base: base{
		id:      AgentPerformance,
		name:    DisplayName(AgentPerformance),
		gen:     gen,
		workers: defaultFileWorkers,
	}}
}

func (a *Performance) Analyze(ctx context.Context, files []models.SourceFile) models.AgentReport {
	return a.run(ctx, files, a.analyzeFile)
}

func (a *Performance) analyzeFile(ctx context.Context, file models.SourceFile) ([]models.Finding, error) {
	prompt := fmt.Sprintf(performancePrompt, languageHint(file.Path), file.Path, truncate(file.Content, promptCodeLimit))
	response, err := a.gen.GenerateWithSystem(ctx, performanceSystem, prompt)
	if err != nil {
		return nil, err
	}

	issues, err := decodeIssues(response)
	if err != nil {
		return []models.Finding{parseFailureFinding(a.name, file.Path, err)}, nil
	}

	findings := make([]models.Finding, 0, len(issues))
	for _, issue := range issues {
		findings = append(findings, findingFromIssue(issue, models.CategoryPerformance, models.ParseSeverity(issue.Impact), file.Path))
	}
	return findings, nil
}
