package jobstore

import (
	"context"
	"slices"
	"sync"

	"github.com/perimetric/council/internal/models"
)

// MemoryStore keeps jobs in a process-local map. Jobs are never evicted, so a
// long-lived process accumulates them; acceptable for the fallback role, not
// for a multi-instance deployment.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*models.Job)}
}

// Create persists a new job.
func (s *MemoryStore) Create(ctx context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = snapshot(job)
	return nil
}

// Update applies mutate to the stored job under the store lock.
func (s *MemoryStore) Update(ctx context.Context, id string, mutate func(*models.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	mutate(job)
	return nil
}

// Get returns a copy of the job, or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot(job), nil
}

// snapshot copies a job so callers never alias the stored record.
func snapshot(job *models.Job) *models.Job {
	copied := *job
	copied.Progress = slices.Clone(job.Progress)
	return &copied
}
