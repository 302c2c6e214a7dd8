// Package agents implements the review agents that analyze source
// files and report findings. Each agent prompts a text generation
// backend per file and normalizes the JSON issues it returns.
package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/perimetric/council/internal/llm"
	"github.com/perimetric/council/internal/models"
)

// defaultFileWorkers bounds how many files one agent analyzes at once.
const defaultFileWorkers = 5

// Generator produces text from a system and user prompt. llm.Model
// satisfies it; tests substitute stubs.
type Generator interface {
	GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Analyzer is a single review agent. Analyze always returns a report:
// failures are carried in the report, never raised.
type Analyzer interface {
	ID() string
	Name() string
	Analyze(ctx context.Context, files []models.SourceFile) models.AgentReport
}

type base struct {
	id      string
	name    string
	gen     Generator
	workers int
}

func (b base) ID() string   { return b.id }
func (b base) Name() string { return b.name }

// run fans analyzeFile out over a bounded worker pool and folds the
// results into one report. Empty files are skipped. A failed file
// contributes no findings; the report only carries an error when every
// file failed or the generator reported a fatal API error, which also
// aborts the remaining files.
func (b base) run(ctx context.Context, files []models.SourceFile, analyzeFile func(context.Context, models.SourceFile) ([]models.Finding, error)) models.AgentReport {
	report := models.AgentReport{AgentID: b.id, AgentName: b.name}

	work := make([]models.SourceFile, 0, len(files))
	for _, f := range files {
		if strings.TrimSpace(f.Content) == "" {
			continue
		}
		work = append(work, f)
	}
	if len(work) == 0 {
		report.Succeeded = true
		return report
	}

	numWorkers := b.workers
	if numWorkers <= 0 {
		numWorkers = defaultFileWorkers
	}
	if numWorkers > len(work) {
		numWorkers = len(work)
	}

	jobs := make(chan models.SourceFile, len(work))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		findings []models.Finding
		failed   int
		fatal    error
	)

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				mu.Lock()
				aborted := fatal != nil
				mu.Unlock()
				if aborted {
					continue
				}

				got, err := analyzeFile(ctx, file)

				mu.Lock()
				if err != nil {
					failed++
					if fatal == nil && errors.Is(err, llm.ErrFatalAPI) {
						fatal = err
					}
					slog.Warn("file analysis failed", "agent", b.id, "file", file.Path, "error", err)
				} else {
					findings = append(findings, got...)
				}
				mu.Unlock()
			}
		}()
	}

	for _, f := range work {
		jobs <- f
	}
	close(jobs)
	wg.Wait()

	switch {
	case fatal != nil:
		report.Error = fatal.Error()
	case failed == len(work):
		report.Error = fmt.Sprintf("analysis failed for all %d files", len(work))
	default:
		report.Findings = findings
		report.Succeeded = true
	}
	return report
}
