package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/perimetric/council/internal/jobstore"
	"github.com/perimetric/council/internal/metrics"
	"github.com/perimetric/council/internal/models"
	"github.com/perimetric/council/internal/review"
	"github.com/spf13/cobra"
)

var resultsJSON bool

var resultsCmd = &cobra.Command{
	Use:   "results <job-id>",
	Short: "Show the report of a completed review",
	Long: `Show the aggregated findings of a completed review job.

Examples:
  council results a1b2c3d4
  council results a1b2c3d4 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runResults,
}

func init() {
	resultsCmd.Flags().BoolVar(&resultsJSON, "json", false, "print the report as JSON")
}

func runResults(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	svc := getService(nil)

	report, err := svc.Result(ctx, args[0])
	if err != nil {
		switch {
		case errors.Is(err, jobstore.ErrNotFound):
			return fmt.Errorf("job not found: %s", args[0])
		case errors.Is(err, review.ErrJobPending), errors.Is(err, review.ErrJobProcessing):
			fmt.Printf("Review %s is still running. Watch it with:\n  council status %s\n", args[0], args[0])
			return nil
		default:
			return err
		}
	}

	if resultsJSON {
		return printReportJSON(report)
	}
	printReport(args[0], report)
	return nil
}

func printReportJSON(report *models.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// printReport renders the aggregated report: summary, agent outcomes, then
// per-file findings ordered by severity.
func printReport(jobID string, report *models.Report) {
	s := report.Summary

	fmt.Printf("\nReview %s\n", jobID)
	fmt.Printf("═══════════════════════════════════════\n")
	fmt.Printf("Findings: %d (%d critical, %d high priority)\n", s.Findings, s.CriticalFindings, s.HighPriorityFindings)
	fmt.Printf("Files: %d, Agents: %d/%d succeeded\n", s.Files, s.AgentsSucceeded, s.AgentsTotal)

	for _, agent := range report.Agents {
		if !agent.Succeeded {
			fmt.Printf("  ✗ %s: %s\n", agent.AgentName, agent.Error)
		}
	}

	for _, file := range report.Files {
		fmt.Printf("\n%s (%d findings)\n", file.File, len(file.Findings))

		findings := make([]models.Finding, len(file.Findings))
		copy(findings, file.Findings)
		sort.SliceStable(findings, func(i, j int) bool {
			if findings[i].Severity.Rank() != findings[j].Severity.Rank() {
				return findings[i].Severity.Rank() < findings[j].Severity.Rank()
			}
			return findings[i].Line < findings[j].Line
		})

		for _, f := range findings {
			line := ""
			if f.Line > 0 {
				line = fmt.Sprintf(" L%d", f.Line)
			}
			fmt.Printf("  [%s] %s/%s%s: %s\n", f.Severity, f.Category, f.Subtype, line, f.Description)
			if f.Suggestion != "" {
				fmt.Printf("      → %s\n", f.Suggestion)
			}
		}
	}

	if s.Findings == 0 {
		fmt.Println("\nNo findings. Clean review.")
	}
}

// printStats displays engine runtime statistics.
func printStats(snap metrics.Snapshot) {
	fmt.Printf("\nEngine Statistics (in-memory, this run)\n")
	fmt.Printf("═══════════════════════════════════════\n")
	fmt.Printf("Uptime: %.1f seconds\n", snap.UptimeSeconds)

	if snap.AgentRun != nil {
		fmt.Printf("\nAgent Runs:\n")
		printOpStats(snap.AgentRun)
		printFindingStats(snap.AgentRun)
	}

	if snap.LLMGenerate != nil {
		fmt.Printf("\nLLM Generate:\n")
		printOpStats(snap.LLMGenerate)
	}

	if snap.SourceFetch != nil {
		fmt.Printf("\nSource Fetch:\n")
		printOpStats(snap.SourceFetch)
	}

	if snap.JobRead != nil {
		fmt.Printf("\nJob Reads:\n")
		printOpStats(snap.JobRead)
	}

	if snap.JobWrite != nil {
		fmt.Printf("\nJob Writes:\n")
		printOpStats(snap.JobWrite)
	}
}

// printOpStats displays timing statistics for an operation.
func printOpStats(op *metrics.OperationSnapshot) {
	fmt.Printf("  Calls: %d, Total: %dms\n", op.Count, op.TotalTimeMs)
	fmt.Printf("  Time: avg %.1fms, min %dms, max %dms\n",
		op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}

// printFindingStats displays finding volume statistics if available.
func printFindingStats(op *metrics.OperationSnapshot) {
	if op.TotalFindings == nil {
		return
	}
	fmt.Printf("  Findings: %d total", *op.TotalFindings)
	if op.AvgFindings != nil {
		fmt.Printf(", avg %.1f", *op.AvgFindings)
	}
	if op.MinFindings != nil && op.MaxFindings != nil {
		fmt.Printf(", min %d, max %d", *op.MinFindings, *op.MaxFindings)
	}
	fmt.Println()
}
