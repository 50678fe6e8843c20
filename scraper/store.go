package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrJobNotFound is returned when a job id is unknown to the store.
var ErrJobNotFound = errors.New("job not found")

// DefaultStaleAfter is how long a job may stay in a non-terminal status
// before List relabels it as stale.
const DefaultStaleAfter = 2 * time.Hour

// Store is the job tracker. All job state flows through a Store so that
// the HTTP layer and the scrape worker never share a bare map.
type Store interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	Update(ctx context.Context, job *Job) error
	// List returns recent jobs, newest first, with long-running ones
	// relabeled as stale.
	List(ctx context.Context, limit int) ([]*Job, error)
	// RequestStop asks the job's worker to stop at the next checkpoint.
	RequestStop(ctx context.Context, id string) error
	StopRequested(ctx context.Context, id string) (bool, error)
}

// MemoryStore keeps jobs in a mutex-guarded map. Used by the CLI runner
// and as a fallback when Redis is not configured.
type MemoryStore struct {
	mu         sync.RWMutex
	jobs       map[string]*Job
	stops      map[string]bool
	order      []string
	staleAfter time.Duration
}

func NewMemoryStore(staleAfter time.Duration) *MemoryStore {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &MemoryStore{
		jobs:       make(map[string]*Job),
		stops:      make(map[string]bool),
		staleAfter: staleAfter,
	}
}

func (s *MemoryStore) Create(ctx context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job.clone()
	s.order = append(s.order, job.ID)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	out := job.clone()
	markStale(out, s.staleAfter)
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return ErrJobNotFound
	}
	s.jobs[job.ID] = job.clone()
	return nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Job, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		job := s.jobs[s.order[i]].clone()
		markStale(job, s.staleAfter)
		out = append(out, job)
	}
	return out, nil
}

func (s *MemoryStore) RequestStop(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return ErrJobNotFound
	}
	s.stops[id] = true
	return nil
}

func (s *MemoryStore) StopRequested(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stops[id], nil
}

// RedisStore persists jobs as JSON values with a recency index so records
// survive server restarts and stay visible to every replica.
type RedisStore struct {
	client     *redis.Client
	staleAfter time.Duration
	ttl        time.Duration
}

const (
	jobKeyPrefix  = "scrape:job:"
	jobRecentKey  = "scrape:jobs:recent"
	jobRecentKeep = 49
)

func NewRedisStore(client *redis.Client, staleAfter time.Duration) *RedisStore {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &RedisStore{client: client, staleAfter: staleAfter, ttl: 24 * time.Hour}
}

func (s *RedisStore) Create(ctx context.Context, job *Job) error {
	if err := s.set(ctx, job); err != nil {
		return err
	}
	if err := s.client.LPush(ctx, jobRecentKey, job.ID).Err(); err != nil {
		return fmt.Errorf("index job %s: %w", job.ID, err)
	}
	return s.client.LTrim(ctx, jobRecentKey, 0, jobRecentKeep).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Job, error) {
	val, err := s.client.Get(ctx, jobKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	var job Job
	if err := json.Unmarshal([]byte(val), &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	markStale(&job, s.staleAfter)
	return &job, nil
}

func (s *RedisStore) Update(ctx context.Context, job *Job) error {
	exists, err := s.client.Exists(ctx, jobKeyPrefix+job.ID).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrJobNotFound
	}
	return s.set(ctx, job)
}

func (s *RedisStore) List(ctx context.Context, limit int) ([]*Job, error) {
	stop := int64(jobRecentKeep)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := s.client.LRange(ctx, jobRecentKey, 0, stop).Result()
	if err != nil {
		return nil, err
	}
	jobs := make([]*Job, 0, len(ids))
	for _, id := range ids {
		job, err := s.Get(ctx, id)
		if err != nil {
			continue // expired record, index entry is harmless
		}
		jobs = append(jobs, job)
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].StartedAt.After(jobs[j].StartedAt)
	})
	return jobs, nil
}

func (s *RedisStore) RequestStop(ctx context.Context, id string) error {
	exists, err := s.client.Exists(ctx, jobKeyPrefix+id).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrJobNotFound
	}
	return s.client.Set(ctx, jobKeyPrefix+id+":stop", "1", s.ttl).Err()
}

func (s *RedisStore) StopRequested(ctx context.Context, id string) (bool, error) {
	_, err := s.client.Get(ctx, jobKeyPrefix+id+":stop").Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisStore) set(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, jobKeyPrefix+job.ID, data, s.ttl).Err()
}

// markStale relabels a job that has been in a non-terminal status for
// longer than the threshold. The record itself is not rewritten; a stale
// job is presumed abandoned, not proven finished.
func markStale(job *Job, staleAfter time.Duration) {
	if !job.Terminal() && time.Since(job.StartedAt) > staleAfter {
		job.Stale = true
	}
}
