package jobstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/perimetric/council/internal/models"
)

func newJob(id string) *models.Job {
	return &models.Job{
		ID:        id,
		Status:    models.StatusPending,
		Target:    models.Target{Provider: "dir", Locator: "./src"},
		CreatedAt: time.Now().UTC(),
	}
}

func TestMemoryStoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Create(ctx, newJob("abc123")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := s.Get(ctx, "abc123")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != "abc123" {
		t.Errorf("ID = %q, want %q", got.ID, "abc123")
	}
	if got.Status != models.StatusPending {
		t.Errorf("Status = %q, want %q", got.Status, models.StatusPending)
	}
	if got.Target.Locator != "./src" {
		t.Errorf("Target.Locator = %q, want %q", got.Target.Locator, "./src")
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing job: err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreUpdateMissing(t *testing.T) {
	s := NewMemoryStore()

	err := s.Update(context.Background(), "nope", func(j *models.Job) {})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update missing job: err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Create(ctx, newJob("abc123"))

	err := s.Update(ctx, "abc123", func(j *models.Job) {
		j.Advance(models.StatusProcessing)
		j.Progress = append(j.Progress, models.NewProgressEvent("security", models.PhaseStarting, "Security Agent initialized"))
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := s.Get(ctx, "abc123")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != models.StatusProcessing {
		t.Errorf("Status = %q, want %q", got.Status, models.StatusProcessing)
	}
	if len(got.Progress) != 1 {
		t.Fatalf("Progress length = %d, want 1", len(got.Progress))
	}
	if got.Progress[0].Agent != "security" {
		t.Errorf("Progress agent = %q, want %q", got.Progress[0].Agent, "security")
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Create(ctx, newJob("abc123"))

	first, _ := s.Get(ctx, "abc123")
	first.Status = models.StatusFailed
	first.Progress = append(first.Progress, models.NewProgressEvent("x", models.PhaseError, "tampered"))

	second, _ := s.Get(ctx, "abc123")
	if second.Status != models.StatusPending {
		t.Error("mutating a returned job must not affect the stored record")
	}
	if len(second.Progress) != 0 {
		t.Error("appending to a returned job's progress must not affect the stored record")
	}
}
