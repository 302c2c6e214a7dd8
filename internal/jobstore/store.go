// Package jobstore persists review jobs in Redis or an in-process map.
package jobstore

import (
	"context"
	"errors"
	"time"

	"github.com/perimetric/council/internal/models"
)

// DefaultTTL is how long a persisted job survives after its last write.
const DefaultTTL = 24 * time.Hour

// ErrNotFound indicates the requested job does not exist. A persisted payload
// that can no longer be decoded reports the same: callers see "absent", never
// a decode failure.
var ErrNotFound = errors.New("job not found")

// Store persists jobs keyed by id.
//
// Update is read-modify-write without optimistic locking; concurrent updates
// to one job are last-writer-wins.
type Store interface {
	// Create persists a new job.
	Create(ctx context.Context, job *models.Job) error

	// Update loads the job, applies mutate to it, and writes it back.
	// Returns ErrNotFound if no such job exists.
	Update(ctx context.Context, id string, mutate func(*models.Job)) error

	// Get returns a copy of the job, or ErrNotFound.
	Get(ctx context.Context, id string) (*models.Job, error)
}
