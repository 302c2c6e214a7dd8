// Package review drives code review jobs end to end: admission
// control, job creation, asynchronous dispatch, and result retrieval.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/perimetric/council/internal/agents"
	"github.com/perimetric/council/internal/jobstore"
	"github.com/perimetric/council/internal/metrics"
	"github.com/perimetric/council/internal/models"
	"github.com/perimetric/council/internal/orchestrator"
	"github.com/perimetric/council/internal/ratelimit"
	"github.com/perimetric/council/internal/source"
)

// ratePrefix namespaces limiter keys so client identities never collide
// with other keys in the shared store.
const ratePrefix = "rate_limit:"

// Options carries the service knobs read from configuration.
type Options struct {
	MaxRequests int           // admission limit per client per window
	Window      time.Duration // admission window
	MaxWorkers  int           // orchestrator pool cap, 0 = roster size
	Metrics     *metrics.Collector
}

// Service owns the job pipeline. Submission returns immediately with a
// job id; analysis runs on a background goroutine and lands in the
// store, where Status and Result pick it up.
type Service struct {
	limiter   ratelimit.Limiter
	store     jobstore.Store
	providers map[string]source.Provider
	roster    []agents.Analyzer
	opts      Options
}

// NewService wires the job pipeline together.
func NewService(limiter ratelimit.Limiter, store jobstore.Store, providers []source.Provider, roster []agents.Analyzer, opts Options) *Service {
	byName := make(map[string]source.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Service{
		limiter:   limiter,
		store:     store,
		providers: byName,
		roster:    roster,
		opts:      opts,
	}
}

// Submit admits and creates a review job for the target, then kicks
// off analysis in the background. A denied admission returns a typed
// *ratelimit.AdmissionError and creates no job.
func (s *Service) Submit(ctx context.Context, target models.Target, clientKey string) (string, error) {
	allowed, count := s.limiter.Check(ctx, ratePrefix+clientKey, s.opts.MaxRequests, s.opts.Window)
	if !allowed {
		return "", &ratelimit.AdmissionError{
			Key:        clientKey,
			Limit:      s.opts.MaxRequests,
			Window:     s.opts.Window,
			Count:      count,
			RetryAfter: s.opts.Window,
		}
	}

	provider, ok := s.providers[target.Provider]
	if !ok {
		return "", fmt.Errorf("unknown source provider %q", target.Provider)
	}

	job := &models.Job{
		ID:        uuid.New().String()[:8], // Short ID for convenience
		Status:    models.StatusPending,
		Target:    target,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Create(ctx, job); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}

	slog.Info("job created", "job_id", job.ID, "provider", target.Provider, "locator", target.Locator)

	go s.dispatch(job.ID, provider, target)

	return job.ID, nil
}

// Status returns the stored job, progress log included.
func (s *Service) Status(ctx context.Context, id string) (*models.Job, error) {
	start := time.Now()
	job, err := s.store.Get(ctx, id)
	s.record(metrics.OpJobRead, time.Since(start))
	return job, err
}

// Result returns the aggregated report of a completed job. While the
// job is still underway it returns ErrJobPending or ErrJobProcessing,
// and a failed job surfaces as *JobFailedError.
func (s *Service) Result(ctx context.Context, id string) (*models.Report, error) {
	job, err := s.Status(ctx, id)
	if err != nil {
		return nil, err
	}
	switch job.Status {
	case models.StatusPending:
		return nil, ErrJobPending
	case models.StatusProcessing:
		return nil, ErrJobProcessing
	case models.StatusFailed:
		return nil, &JobFailedError{Message: job.Error}
	}
	return job.Report, nil
}

// dispatch runs the job to a terminal state. It never uses the
// submitter's context: the job outlives the submitting request.
func (s *Service) dispatch(jobID string, provider source.Provider, target models.Target) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("job goroutine panicked", "job_id", jobID, "panic", r)
			s.fail(context.Background(), jobID, fmt.Errorf("internal panic: %v", r))
		}
	}()

	bgCtx := context.Background()

	s.update(bgCtx, jobID, func(j *models.Job) {
		j.Advance(models.StatusProcessing)
	})

	start := time.Now()
	files, err := provider.Fetch(bgCtx, target.Locator)
	s.record(metrics.OpSourceFetch, time.Since(start))
	if err != nil {
		s.fail(bgCtx, jobID, err)
		return
	}

	orch := orchestrator.New(s.roster, s.opts.MaxWorkers)
	if s.opts.Metrics != nil {
		orch.WithMetrics(s.opts.Metrics)
	}

	// Progress events arrive from several agent goroutines; appends are
	// serialized so the store's read-modify-write never drops one.
	var progressMu sync.Mutex
	orch.OnProgress(func(ev models.ProgressEvent) {
		progressMu.Lock()
		defer progressMu.Unlock()
		s.update(bgCtx, jobID, func(j *models.Job) {
			j.Progress = append(j.Progress, ev)
		})
	})

	report := orch.Run(bgCtx, files)

	s.update(bgCtx, jobID, func(j *models.Job) {
		j.Report = report
		j.Advance(models.StatusCompleted)
	})

	slog.Info("job completed",
		"job_id", jobID,
		"findings", report.Summary.Findings,
		"agents_succeeded", report.Summary.AgentsSucceeded)
}

func (s *Service) fail(ctx context.Context, jobID string, cause error) {
	s.update(ctx, jobID, func(j *models.Job) {
		j.Error = cause.Error()
		j.Advance(models.StatusFailed)
	})
	slog.Error("job failed", "job_id", jobID, "error", cause)
}

func (s *Service) update(ctx context.Context, jobID string, mutate func(*models.Job)) {
	start := time.Now()
	if err := s.store.Update(ctx, jobID, mutate); err != nil {
		slog.Warn("failed to update job", "job_id", jobID, "error", err)
	}
	s.record(metrics.OpJobWrite, time.Since(start))
}

func (s *Service) record(op string, d time.Duration) {
	if s.opts.Metrics == nil {
		return
	}
	s.opts.Metrics.RecordTiming(op, d)
}
