package orchestrator

import (
	"sort"

	"github.com/perimetric/council/internal/models"
)

// aggregate folds per-agent reports into the final review report.
// Findings are bucketed by file with blank files collapsing into the
// "unknown" bucket, and every finding is stamped with the agent that
// detected it. Failed agents carry no findings and contribute zero.
func aggregate(reports []models.AgentReport, agentsTotal int) *models.Report {
	byFile := map[string]*models.FileReport{}

	summary := models.Summary{
		AgentsTotal:     agentsTotal,
		AgentsCompleted: len(reports),
	}

	for ri := range reports {
		ar := &reports[ri]
		if ar.Succeeded {
			summary.AgentsSucceeded++
		}
		for fi := range ar.Findings {
			f := ar.Findings[fi]
			f.DetectedBy = ar.AgentID
			if f.File == "" {
				f.File = models.UnknownFile
			}
			ar.Findings[fi] = f

			fr, ok := byFile[f.File]
			if !ok {
				fr = &models.FileReport{File: f.File, ByAgent: map[string]int{}}
				byFile[f.File] = fr
			}
			fr.Findings = append(fr.Findings, f)
			fr.ByAgent[ar.AgentID]++

			summary.Findings++
			if f.Critical() {
				summary.CriticalFindings++
			}
			if f.Severity == models.SeverityHigh {
				summary.HighPriorityFindings++
			}
		}
	}

	summary.Files = len(byFile)

	names := make([]string, 0, len(byFile))
	for name := range byFile {
		names = append(names, name)
	}
	sort.Strings(names)

	files := make([]models.FileReport, 0, len(names))
	for _, name := range names {
		files = append(files, *byFile[name])
	}

	return &models.Report{
		Agents:  reports,
		Files:   files,
		Summary: summary,
	}
}
