package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/perimetric/council/internal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "job:"

// RedisStore persists jobs as JSON documents with a TTL, shared across every
// process pointing at the same Redis.
type RedisStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisStore creates a store on an existing Redis client. A non-positive
// ttl falls back to DefaultTTL.
func NewRedisStore(rdb redis.Cmdable, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Create persists a new job with the store's TTL.
func (s *RedisStore) Create(ctx context.Context, job *models.Job) error {
	return s.write(ctx, job)
}

// Update loads the job, applies mutate, and writes it back. The write
// refreshes the TTL, so active jobs outlive idle ones.
func (s *RedisStore) Update(ctx context.Context, id string, mutate func(*models.Job)) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	mutate(job)
	return s.write(ctx, job)
}

// Get returns the job, or ErrNotFound for missing and undecodable records.
func (s *RedisStore) Get(ctx context.Context, id string) (*models.Job, error) {
	payload, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}

	var job models.Job
	if err := json.Unmarshal(payload, &job); err != nil {
		slog.Warn("discarding corrupt job record", "job_id", id, "error", err)
		return nil, ErrNotFound
	}
	return &job, nil
}

func (s *RedisStore) write(ctx context.Context, job *models.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.ID, err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+job.ID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("write job %s: %w", job.ID, err)
	}
	return nil
}
