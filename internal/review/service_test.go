package review

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/perimetric/council/internal/agents"
	"github.com/perimetric/council/internal/jobstore"
	"github.com/perimetric/council/internal/models"
	"github.com/perimetric/council/internal/ratelimit"
	"github.com/perimetric/council/internal/source"
)

type stubProvider struct {
	name  string
	files []models.SourceFile
	err   error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Fetch(_ context.Context, locator string) ([]models.SourceFile, error) {
	if p.err != nil {
		return nil, &source.FetchError{Provider: p.name, Locator: locator, Err: p.err}
	}
	return p.files, nil
}

type stubAnalyzer struct {
	id     string
	name   string
	report models.AgentReport
}

func (s *stubAnalyzer) ID() string   { return s.id }
func (s *stubAnalyzer) Name() string { return s.name }

func (s *stubAnalyzer) Analyze(context.Context, []models.SourceFile) models.AgentReport {
	return s.report
}

func testService(provider source.Provider, roster []agents.Analyzer, maxRequests int) (*Service, jobstore.Store) {
	store := jobstore.NewMemoryStore()
	svc := NewService(
		ratelimit.NewMemoryLimiter(),
		store,
		[]source.Provider{provider},
		roster,
		Options{MaxRequests: maxRequests, Window: time.Minute},
	)
	return svc, store
}

func waitForStatus(t *testing.T, svc *Service, id string, want models.Status) *models.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := svc.Status(context.Background(), id)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached %s", id, want)
	return nil
}

func TestSubmitRunsToCompletion(t *testing.T) {
	provider := &stubProvider{name: "dir", files: []models.SourceFile{{Path: "a.py", Content: "x = 1\n"}}}
	roster := []agents.Analyzer{&stubAnalyzer{
		id: "quality", name: "Quality Agent",
		report: models.AgentReport{
			AgentID: "quality", AgentName: "Quality Agent", Succeeded: true,
			Findings: []models.Finding{{File: "a.py", Severity: models.SeverityLow, Category: models.CategoryQuality}},
		},
	}}

	svc, _ := testService(provider, roster, 10)

	id, err := svc.Submit(context.Background(), models.Target{Provider: "dir", Locator: "./src"}, "alice")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if id == "" {
		t.Fatal("Submit returned empty job id")
	}

	job := waitForStatus(t, svc, id, models.StatusCompleted)
	if job.CompletedAt == nil {
		t.Error("CompletedAt not stamped")
	}
	if job.Target.Locator != "./src" {
		t.Errorf("target locator = %q, want ./src", job.Target.Locator)
	}

	report, err := svc.Result(context.Background(), id)
	if err != nil {
		t.Fatalf("Result returned error: %v", err)
	}
	if report.Summary.Findings != 1 {
		t.Errorf("Findings = %d, want 1", report.Summary.Findings)
	}

	var phases []models.Phase
	for _, ev := range job.Progress {
		phases = append(phases, ev.Phase)
	}
	if len(phases) != 3 {
		t.Fatalf("got %d progress events, want 3: %v", len(phases), phases)
	}
	if phases[0] != models.PhaseStarting || phases[2] != models.PhaseCompleted {
		t.Errorf("phases = %v, want starting ... completed", phases)
	}
}

func TestSubmitAdmissionDenied(t *testing.T) {
	provider := &stubProvider{name: "dir"}
	svc, _ := testService(provider, nil, 2)

	target := models.Target{Provider: "dir", Locator: "./src"}
	for i := 0; i < 2; i++ {
		if _, err := svc.Submit(context.Background(), target, "bob"); err != nil {
			t.Fatalf("submit %d denied: %v", i+1, err)
		}
	}

	_, err := svc.Submit(context.Background(), target, "bob")
	var admission *ratelimit.AdmissionError
	if !errors.As(err, &admission) {
		t.Fatalf("err = %v, want AdmissionError", err)
	}
	if admission.Limit != 2 || admission.Count != 3 {
		t.Errorf("admission = %+v, want limit 2 count 3", admission)
	}
	if admission.RetryAfter != time.Minute {
		t.Errorf("RetryAfter = %s, want the window", admission.RetryAfter)
	}
}

func TestSubmitKeysAreIndependent(t *testing.T) {
	provider := &stubProvider{name: "dir"}
	svc, _ := testService(provider, nil, 1)

	target := models.Target{Provider: "dir", Locator: "./src"}
	if _, err := svc.Submit(context.Background(), target, "carol"); err != nil {
		t.Fatalf("carol denied: %v", err)
	}
	if _, err := svc.Submit(context.Background(), target, "dave"); err != nil {
		t.Errorf("dave should have his own window: %v", err)
	}
}

func TestSubmitUnknownProvider(t *testing.T) {
	svc, _ := testService(&stubProvider{name: "dir"}, nil, 10)

	_, err := svc.Submit(context.Background(), models.Target{Provider: "github", Locator: "org/repo#1"}, "alice")
	if err == nil || !strings.Contains(err.Error(), `unknown source provider "github"`) {
		t.Errorf("err = %v, want unknown provider", err)
	}
}

func TestFetchFailureFailsJob(t *testing.T) {
	provider := &stubProvider{name: "dir", err: errors.New("no such directory")}
	svc, _ := testService(provider, nil, 10)

	id, err := svc.Submit(context.Background(), models.Target{Provider: "dir", Locator: "./gone"}, "alice")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	job := waitForStatus(t, svc, id, models.StatusFailed)
	if !strings.Contains(job.Error, "no such directory") {
		t.Errorf("job error = %q, want upstream message", job.Error)
	}

	_, err = svc.Result(context.Background(), id)
	var failed *JobFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("Result err = %v, want JobFailedError", err)
	}
	if !strings.Contains(failed.Message, "no such directory") {
		t.Errorf("failure message = %q", failed.Message)
	}
}

func TestAgentFailureDoesNotFailJob(t *testing.T) {
	provider := &stubProvider{name: "dir", files: []models.SourceFile{{Path: "a.py", Content: "x = 1\n"}}}
	roster := []agents.Analyzer{
		&stubAnalyzer{id: "security", name: "Security Agent", report: models.AgentReport{
			AgentID: "security", AgentName: "Security Agent", Error: "model unreachable",
		}},
	}

	svc, _ := testService(provider, roster, 10)

	id, err := svc.Submit(context.Background(), models.Target{Provider: "dir", Locator: "./src"}, "alice")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	waitForStatus(t, svc, id, models.StatusCompleted)

	report, err := svc.Result(context.Background(), id)
	if err != nil {
		t.Fatalf("Result returned error: %v", err)
	}
	if report.Summary.AgentsCompleted != 1 || report.Summary.AgentsSucceeded != 0 {
		t.Errorf("completed/succeeded = %d/%d, want 1/0",
			report.Summary.AgentsCompleted, report.Summary.AgentsSucceeded)
	}
}

func TestResultBeforeTerminal(t *testing.T) {
	store := jobstore.NewMemoryStore()
	svc := NewService(ratelimit.NewMemoryLimiter(), store, nil, nil, Options{MaxRequests: 10, Window: time.Minute})

	job := &models.Job{ID: "res1", Status: models.StatusPending, CreatedAt: time.Now()}
	if err := store.Create(context.Background(), job); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Result(context.Background(), "res1"); !errors.Is(err, ErrJobPending) {
		t.Errorf("pending err = %v, want ErrJobPending", err)
	}

	if err := store.Update(context.Background(), "res1", func(j *models.Job) {
		j.Advance(models.StatusProcessing)
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Result(context.Background(), "res1"); !errors.Is(err, ErrJobProcessing) {
		t.Errorf("processing err = %v, want ErrJobProcessing", err)
	}
}

func TestStatusAndResultUnknownJob(t *testing.T) {
	svc, _ := testService(&stubProvider{name: "dir"}, nil, 10)

	if _, err := svc.Status(context.Background(), "missing"); !errors.Is(err, jobstore.ErrNotFound) {
		t.Errorf("Status err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Result(context.Background(), "missing"); !errors.Is(err, jobstore.ErrNotFound) {
		t.Errorf("Result err = %v, want ErrNotFound", err)
	}
}
