package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/perimetric/council/internal/llm"
	"github.com/perimetric/council/internal/models"
)

type stubGenerator struct {
	fn func(system, user string) (string, error)
}

func (s *stubGenerator) GenerateWithSystem(_ context.Context, system, user string) (string, error) {
	return s.fn(system, user)
}

func TestAgentSkipsEmptyFiles(t *testing.T) {
	var calls atomic.Int32
	gen := &stubGenerator{fn: func(system, user string) (string, error) {
		calls.Add(1)
		return "[]", nil
	}}

	agent := NewQuality(gen)
	files := []models.SourceFile{
		{Path: "real.py", Content: "def f():\n    pass\n"},
		{Path: "blank.py", Content: "   \n\t\n"},
		{Path: "empty.py", Content: ""},
	}

	report := agent.Analyze(context.Background(), files)
	if !report.Succeeded {
		t.Fatalf("report failed: %s", report.Error)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("generator called %d times, want 1", got)
	}
	if len(report.Findings) != 0 {
		t.Errorf("got %d findings, want 0", len(report.Findings))
	}
}

func TestAgentNoFiles(t *testing.T) {
	gen := &stubGenerator{fn: func(system, user string) (string, error) {
		t.Error("generator should not be called")
		return "", nil
	}}

	report := NewArchitecture(gen).Analyze(context.Background(), nil)
	if !report.Succeeded {
		t.Errorf("empty file set should succeed, got error %q", report.Error)
	}
}

func TestAgentPartialFailure(t *testing.T) {
	gen := &stubGenerator{fn: func(system, user string) (string, error) {
		if strings.Contains(user, "bad.py") {
			return "", errors.New("connection reset")
		}
		return `[{"type": "quality", "issue": "naming", "severity": "low", "line": 1, "description": "d", "suggestion": "s"}]`, nil
	}}

	agent := NewQuality(gen)
	files := []models.SourceFile{
		{Path: "good.py", Content: "x = 1\n"},
		{Path: "bad.py", Content: "y = 2\n"},
	}

	report := agent.Analyze(context.Background(), files)
	if !report.Succeeded {
		t.Fatalf("partial failure should still succeed, got error %q", report.Error)
	}
	if len(report.Findings) != 1 {
		t.Fatalf("got %d findings, want 1 from the good file", len(report.Findings))
	}
	if report.Findings[0].File != "good.py" {
		t.Errorf("finding file = %q, want good.py", report.Findings[0].File)
	}
}

func TestAgentAllFilesFailed(t *testing.T) {
	gen := &stubGenerator{fn: func(system, user string) (string, error) {
		return "", errors.New("connection reset")
	}}

	agent := NewPerformance(gen)
	files := []models.SourceFile{
		{Path: "a.py", Content: "x = 1\n"},
		{Path: "b.py", Content: "y = 2\n"},
	}

	report := agent.Analyze(context.Background(), files)
	if report.Succeeded {
		t.Fatal("expected failed report when every file fails")
	}
	if !strings.Contains(report.Error, "all 2 files") {
		t.Errorf("error = %q, want mention of all 2 files", report.Error)
	}
	if len(report.Findings) != 0 {
		t.Errorf("failed report should carry no findings, got %d", len(report.Findings))
	}
}

func TestAgentFatalErrorAborts(t *testing.T) {
	var calls atomic.Int32
	gen := &stubGenerator{fn: func(system, user string) (string, error) {
		calls.Add(1)
		return "", fmt.Errorf("generate: %w", llm.ErrFatalAPI)
	}}

	agent := newAgent(AgentQuality, gen, 1)
	files := []models.SourceFile{
		{Path: "a.py", Content: "x = 1\n"},
		{Path: "b.py", Content: "y = 2\n"},
		{Path: "c.py", Content: "z = 3\n"},
	}

	report := agent.Analyze(context.Background(), files)
	if report.Succeeded {
		t.Fatal("expected failed report on fatal API error")
	}
	if !strings.Contains(report.Error, "fatal API error") {
		t.Errorf("error = %q, want fatal API error", report.Error)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("generator called %d times after fatal error, want 1", got)
	}
}

func TestAgentSeverityVocabularies(t *testing.T) {
	tests := []struct {
		name    string
		agent   func(Generator) Analyzer
		payload string
		want    models.Severity
	}{
		{
			"performance impact maps to severity",
			func(g Generator) Analyzer { return NewPerformance(g) },
			`[{"type": "performance", "issue": "n_plus_one", "line": 4, "description": "d", "suggestion": "s", "impact": "high"}]`,
			models.SeverityHigh,
		},
		{
			"quality severity kept",
			func(g Generator) Analyzer { return NewQuality(g) },
			`[{"type": "quality", "issue": "smell", "line": 4, "description": "d", "suggestion": "s", "severity": "medium"}]`,
			models.SeverityMedium,
		},
		{
			"architecture severity kept",
			func(g Generator) Analyzer { return NewArchitecture(g) },
			`[{"type": "architecture", "issue": "coupling", "line": 4, "description": "d", "suggestion": "s", "severity": "high"}]`,
			models.SeverityHigh,
		},
		{
			"unknown vocabulary degrades",
			func(g Generator) Analyzer { return NewQuality(g) },
			`[{"type": "quality", "issue": "smell", "line": 4, "description": "d", "suggestion": "s", "severity": "catastrophic"}]`,
			models.SeverityUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{fn: func(system, user string) (string, error) {
				return tt.payload, nil
			}}
			report := tt.agent(gen).Analyze(context.Background(), []models.SourceFile{{Path: "a.py", Content: "x = 1\n"}})
			if !report.Succeeded {
				t.Fatalf("report failed: %s", report.Error)
			}
			if len(report.Findings) != 1 {
				t.Fatalf("got %d findings, want 1", len(report.Findings))
			}
			if got := report.Findings[0].Severity; got != tt.want {
				t.Errorf("severity = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPerformancePromptCarriesLanguage(t *testing.T) {
	var sawUser string
	gen := &stubGenerator{fn: func(system, user string) (string, error) {
		sawUser = user
		return "[]", nil
	}}

	NewPerformance(gen).Analyze(context.Background(), []models.SourceFile{{Path: "svc/handler.go", Content: "package svc\n"}})
	if !strings.Contains(sawUser, "this go code") {
		t.Errorf("prompt should name the language, got %q", sawUser)
	}
}
