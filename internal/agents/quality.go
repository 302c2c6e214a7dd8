package agents

import (
	"context"
	"fmt"

	"github.com/perimetric/council/internal/models"
)

const qualitySystem = "Code quality expert. Find: code smells, readability issues, duplication, complexity, error handling, naming. Return JSON array only."

const qualityPrompt = `Analyze this code for ALL quality issues in ONE pass:

File: %s
Code (first 2000 chars): %s

Check for: code smells (long methods, large classes), readability, duplication, complexity, error handling, naming.

Return ONLY valid JSON array:
[{"type": "quality", "issue": "smell|readability|duplication|complexity|error_handling|naming", "line": number, "description": "...", "suggestion": "...", "severity": "high|medium|low"}]

Be concise. Max 8 issues.`

// Quality reviews maintainability of the code itself.
type Quality struct {
	base
}

func NewQuality(gen Generator) *Quality {
	return &Quality{base: base{
		id:      AgentQuality,
		name:    DisplayName(AgentQuality),
		gen:     gen,
		workers: defaultFileWorkers,
	}}
}

func (a *Quality) Analyze(ctx context.Context, files []models.SourceFile) models.AgentReport {
	return a.run(ctx, files, a.analyzeFile)
}

func (a *Quality) analyzeFile(ctx context.Context, file models.SourceFile) ([]models.Finding, error) {
	prompt := fmt.Sprintf(qualityPrompt, file.Path, truncate(file.Content, promptCodeLimit))
	response, err := a.gen.GenerateWithSystem(ctx, qualitySystem, prompt)
	if err != nil {
		return nil, err
	}

	issues, err := decodeIssues(response)
	if err != nil {
		return []models.Finding{parseFailureFinding(a.name, file.Path, err)}, nil
	}

	findings := make([]models.Finding, 0, len(issues))
	for _, issue := range issues {
		findings = append(findings, findingFromIssue(issue, models.CategoryQuality, models.ParseSeverity(issue.Severity), file.Path))
	}
	return findings, nil
}
