package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/perimetric/council/internal/agents"
	"github.com/perimetric/council/internal/models"
	"github.com/perimetric/council/internal/ratelimit"
	"github.com/perimetric/council/internal/review"
	"github.com/spf13/cobra"
)

var (
	reviewAgents []string
	reviewRoster string
	reviewJSON   bool
	reviewNoUI   bool
	reviewStats  bool
)

var reviewCmd = &cobra.Command{
	Use:   "review <path>",
	Short: "Run a multi-agent review of a directory",
	Long: `Review the code files under a directory with the agent panel.

The review runs as a background job. By default an interactive progress
view tracks the agents; detach with Ctrl+C and the job keeps running,
retrievable later with 'council results <job-id>'.

Examples:
  council review ./src
  council review ./api --agents security,performance
  council review ./svc --roster team.yaml
  council review ./lib --no-ui --json`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().StringSliceVarP(&reviewAgents, "agents", "a", nil, "agent ids to run (default: all)")
	reviewCmd.Flags().StringVar(&reviewRoster, "roster", "", "YAML roster file (enable agents, override models)")
	reviewCmd.Flags().BoolVar(&reviewJSON, "json", false, "print the report as JSON")
	reviewCmd.Flags().BoolVar(&reviewNoUI, "no-ui", false, "plain progress output instead of the interactive view")
	reviewCmd.Flags().BoolVar(&reviewStats, "stats", false, "print runtime statistics after the review")
}

func runReview(cmd *cobra.Command, args []string) error {
	path := args[0]

	// Verify path exists
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path must be a directory: %s", path)
	}

	rosterPath := reviewRoster
	if rosterPath == "" {
		rosterPath = cfg.RosterPath
	}

	roster, err := agents.BuildRoster(reviewAgents, rosterPath, cfg.AgentFileWorkers, newGenerator)
	if err != nil {
		return err
	}

	svc := getService(roster)

	ctx := context.Background()
	target := models.Target{Provider: "dir", Locator: path}
	jobID, err := svc.Submit(ctx, target, clientKey())
	if err != nil {
		var denied *ratelimit.AdmissionError
		if errors.As(err, &denied) {
			return fmt.Errorf("%w, retry in %s", denied, denied.RetryAfter)
		}
		return err
	}

	fmt.Printf("Review %s started (%d agents)\n", jobID, len(roster))

	if reviewNoUI {
		if err := watchPlain(ctx, svc, jobID); err != nil {
			return err
		}
	} else {
		if err := RunJobProgress(svc, jobID); err != nil {
			return err
		}
	}

	report, err := svc.Result(ctx, jobID)
	if err != nil {
		// Detached before the job finished
		if errors.Is(err, review.ErrJobPending) || errors.Is(err, review.ErrJobProcessing) {
			fmt.Printf("\nReview continues in background. Check it with:\n  council results %s\n", jobID)
			return nil
		}
		return err
	}

	if reviewJSON {
		if err := printReportJSON(report); err != nil {
			return err
		}
	} else {
		printReport(jobID, report)
	}

	if reviewStats {
		printStats(collector.Snapshot())
	}

	return nil
}

// watchPlain polls the job and streams progress messages as plain lines.
func watchPlain(ctx context.Context, svc *review.Service, jobID string) error {
	seen := 0
	for {
		job, err := svc.Status(ctx, jobID)
		if err != nil {
			return err
		}
		for ; seen < len(job.Progress); seen++ {
			ev := job.Progress[seen]
			fmt.Printf("  [%s] %s\n", ev.Phase, ev.Message)
		}
		if job.Status.Terminal() {
			return nil
		}
		time.Sleep(pollInterval)
	}
}
