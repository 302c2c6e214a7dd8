// Package orchestrator fans a review out over the agent roster and
// merges the per-agent reports into one aggregated result.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/perimetric/council/internal/agents"
	"github.com/perimetric/council/internal/metrics"
	"github.com/perimetric/council/internal/models"
)

// Orchestrator runs every analyzer in the roster once per review,
// bounded by a worker pool. Agent failures stay isolated: a crashing
// analyzer produces a failed report, never a failed review.
type Orchestrator struct {
	roster     []agents.Analyzer
	maxWorkers int
	onProgress func(models.ProgressEvent)
	collector  *metrics.Collector
}

// New creates an orchestrator over the given roster. maxWorkers bounds
// how many agents run at once; zero or negative runs the whole roster
// concurrently.
func New(roster []agents.Analyzer, maxWorkers int) *Orchestrator {
	return &Orchestrator{roster: roster, maxWorkers: maxWorkers}
}

// OnProgress registers a callback invoked for every phase change of
// every agent. Events arrive from multiple goroutines; the callback
// must be safe for concurrent use.
func (o *Orchestrator) OnProgress(fn func(models.ProgressEvent)) {
	o.onProgress = fn
}

// WithMetrics attaches a collector that records per-agent run stats.
func (o *Orchestrator) WithMetrics(c *metrics.Collector) {
	o.collector = c
}

// Run executes every analyzer against the files and aggregates their
// reports. It returns only after the whole roster has finished; there
// is no partial delivery. Report append order is completion order.
func (o *Orchestrator) Run(ctx context.Context, files []models.SourceFile) *models.Report {
	started := time.Now().UTC()

	for _, a := range o.roster {
		o.emit(a.Name(), models.PhaseStarting, fmt.Sprintf("%s initialized", a.Name()))
	}

	numWorkers := len(o.roster)
	if o.maxWorkers > 0 && o.maxWorkers < numWorkers {
		numWorkers = o.maxWorkers
	}

	jobs := make(chan agents.Analyzer, len(o.roster))
	results := make(chan models.AgentReport, len(o.roster))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for a := range jobs {
				results <- o.runAgent(ctx, a, files)
			}
		}()
	}

	for _, a := range o.roster {
		jobs <- a
	}
	close(jobs)
	wg.Wait()
	close(results)

	reports := make([]models.AgentReport, 0, len(o.roster))
	for r := range results {
		reports = append(reports, r)
	}

	report := aggregate(reports, len(o.roster))
	report.AnalyzedAt = started

	slog.Info("review aggregated",
		"agents", report.Summary.AgentsTotal,
		"succeeded", report.Summary.AgentsSucceeded,
		"files", report.Summary.Files,
		"findings", report.Summary.Findings,
		"duration_ms", time.Since(started).Milliseconds())

	return report
}

// runAgent drives one analyzer and converts any panic into a failed
// report so the rest of the pool keeps running.
func (o *Orchestrator) runAgent(ctx context.Context, a agents.Analyzer, files []models.SourceFile) (report models.AgentReport) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("agent panicked", "agent", a.ID(), "panic", r)
			report = models.AgentReport{
				AgentID:   a.ID(),
				AgentName: a.Name(),
				Error:     fmt.Sprintf("agent panicked: %v", r),
			}
			o.emit(a.Name(), models.PhaseError, fmt.Sprintf("%s failed: %v", a.Name(), r))
		}
	}()

	o.emit(a.Name(), models.PhaseAnalyzing, fmt.Sprintf("%s analyzing...", a.Name()))

	start := time.Now()
	report = a.Analyze(ctx, files)
	if o.collector != nil {
		o.collector.RecordAgentRun(metrics.OpAgentRun, time.Since(start), int64(len(report.Findings)))
	}

	if report.Succeeded {
		o.emit(a.Name(), models.PhaseCompleted, fmt.Sprintf("%s completed", a.Name()))
	} else {
		o.emit(a.Name(), models.PhaseError, fmt.Sprintf("%s failed: %s", a.Name(), report.Error))
	}
	return report
}

func (o *Orchestrator) emit(agent string, phase models.Phase, message string) {
	if o.onProgress == nil {
		return
	}
	o.onProgress(models.NewProgressEvent(agent, phase, message))
}
