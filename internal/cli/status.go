package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/perimetric/council/internal/jobstore"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show the state of a review job",
	Long: `Show the lifecycle state and agent progress of a review job.

Examples:
  council status a1b2c3d4`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	svc := getService(nil)

	job, err := svc.Status(ctx, args[0])
	if err != nil {
		if errors.Is(err, jobstore.ErrNotFound) {
			return fmt.Errorf("job not found: %s", args[0])
		}
		return fmt.Errorf("get job: %w", err)
	}

	fmt.Printf("Job: %s\n", job.ID)
	fmt.Printf("  Status: %s\n", job.Status)
	fmt.Printf("  Target: %s %s\n", job.Target.Provider, job.Target.Locator)
	fmt.Printf("  Created: %s\n", job.CreatedAt.Format(time.RFC3339))
	if job.CompletedAt != nil {
		fmt.Printf("  Completed: %s\n", job.CompletedAt.Format(time.RFC3339))
		duration := job.CompletedAt.Sub(job.CreatedAt)
		fmt.Printf("  Duration: %s\n", duration.Round(time.Second))
	}
	if job.Error != "" {
		fmt.Printf("  Error: %s\n", job.Error)
	}

	if len(job.Progress) > 0 {
		fmt.Println("\nProgress:")
		for _, ev := range job.Progress {
			fmt.Printf("  %s  %-10s %s\n", ev.Timestamp.Format("15:04:05"), ev.Phase, ev.Message)
		}
	}

	if job.Report != nil {
		s := job.Report.Summary
		fmt.Println("\nReport:")
		fmt.Printf("  Findings: %d (%d critical, %d high)\n", s.Findings, s.CriticalFindings, s.HighPriorityFindings)
		fmt.Printf("  Files: %d\n", s.Files)
		fmt.Printf("  Agents: %d/%d succeeded\n", s.AgentsSucceeded, s.AgentsTotal)
		fmt.Printf("\nFull report: council results %s\n", job.ID)
	}

	return nil
}
