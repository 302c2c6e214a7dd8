package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/perimetric/council/internal/models"
)

const securitySystem = "Security expert. Find vulnerabilities: injections, auth flaws, secrets, crypto issues, API security. Return JSON array only."

const securityPrompt = `Analyze this code for ALL security issues in ONE pass:

File: %s
Code (first 2000 chars): %s

Check for: injections (SQL/XSS/command), auth flaws, crypto weaknesses, API security issues.

Return ONLY valid JSON array:
[{"type": "security", "subtype": "injection|auth|secret|crypto|api", "severity": "critical|high|medium|low", "line": number, "description": "...", "suggestion": "..."}]

Be concise. Max 10 issues.`

var secretPatterns = []struct {
	kind string
	re   *regexp.Regexp
}{
	{"api_key", regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[=:]\s*["']([^"']{10,})["']`)},
	{"password", regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[=:]\s*["']([^"']+)["']`)},
	{"token", regexp.MustCompile(`(?i)(token|secret|secret[_-]?key)\s*[=:]\s*["']([^"']{10,})["']`)},
	{"aws_key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"private_key", regexp.MustCompile(`-----BEGIN\s+(RSA\s+)?PRIVATE\s+KEY-----`)},
}

// Security detects vulnerabilities and leaked credentials. A pattern
// pass catches hardcoded secrets before the model is consulted.
type Security struct {
	base
}

func NewSecurity(gen Generator) *Security {
	return &Security{base: base{
		id:      AgentSecurity,
		name:    DisplayName(AgentSecurity),
		gen:     gen,
		workers: defaultFileWorkers,
	}}
}

func (a *Security) Analyze(ctx context.Context, files []models.SourceFile) models.AgentReport {
	return a.run(ctx, files, a.analyzeFile)
}

func (a *Security) analyzeFile(ctx context.Context, file models.SourceFile) ([]models.Finding, error) {
	secrets := scanSecrets(file)

	prompt := fmt.Sprintf(securityPrompt, file.Path, truncate(file.Content, promptCodeLimit))
	response, err := a.gen.GenerateWithSystem(ctx, securitySystem, prompt)
	if err != nil {
		return nil, err
	}

	issues, err := decodeIssues(response)
	if err != nil {
		return append(secrets, parseFailureFinding(a.name, file.Path, err)), nil
	}

	findings := secrets
	for _, issue := range issues {
		findings = append(findings, findingFromIssue(issue, models.CategorySecurity, models.ParseSeverity(issue.Severity), file.Path))
	}
	return findings, nil
}

// scanSecrets is the pattern pass that needs no model round-trip.
func scanSecrets(file models.SourceFile) []models.Finding {
	var findings []models.Finding
	for _, p := range secretPatterns {
		for _, loc := range p.re.FindAllStringIndex(file.Content, -1) {
			line := strings.Count(file.Content[:loc[0]], "\n") + 1
			findings = append(findings, models.Finding{
				File:        file.Path,
				Line:        line,
				Severity:    models.SeverityCritical,
				Category:    models.CategorySecurity,
				Subtype:     "secret_exposure",
				Description: fmt.Sprintf("Potential %s exposure detected", p.kind),
				Suggestion:  "Move to environment variables or secure vault",
			})
		}
	}
	return findings
}
