package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"autoapply/pkg/models"
)

// StatusStore persists run statuses so the boundary can report on
// asynchronous engine runs.
type StatusStore interface {
	Put(ctx context.Context, status *models.RunStatus) error
	Get(ctx context.Context, runID string) (*models.RunStatus, error)
	Close() error
}

// runStatusTTL bounds how long a finished run stays queryable
const runStatusTTL = 24 * time.Hour

// RedisStatusStore stores run statuses in Redis
type RedisStatusStore struct {
	client *redis.Client
}

// NewRedisStatusStore creates a Redis-backed status store
func NewRedisStatusStore(redisURL string) (*RedisStatusStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStatusStore{client: client}, nil
}

// Put stores or replaces the status of a run
func (s *RedisStatusStore) Put(ctx context.Context, status *models.RunStatus) error {
	status.UpdatedAt = time.Now()

	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal run status: %w", err)
	}

	if err := s.client.Set(ctx, s.runKey(status.RunID), data, runStatusTTL).Err(); err != nil {
		return fmt.Errorf("failed to store run status: %w", err)
	}
	return nil
}

// Get retrieves the status of a run
func (s *RedisStatusStore) Get(ctx context.Context, runID string) (*models.RunStatus, error) {
	data, err := s.client.Get(ctx, s.runKey(runID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, fmt.Errorf("failed to get run status: %w", err)
	}

	var status models.RunStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run status: %w", err)
	}
	return &status, nil
}

// Close closes the Redis connection
func (s *RedisStatusStore) Close() error {
	return s.client.Close()
}

func (s *RedisStatusStore) runKey(runID string) string {
	return fmt.Sprintf("autoapply:run:%s", runID)
}

// MemoryStatusStore is the fallback store used when Redis is not reachable.
// Statuses live only as long as the process.
type MemoryStatusStore struct {
	mu      sync.RWMutex
	entries map[string]*models.RunStatus
}

// NewMemoryStatusStore creates an in-memory status store
func NewMemoryStatusStore() *MemoryStatusStore {
	return &MemoryStatusStore{entries: make(map[string]*models.RunStatus)}
}

// Put stores or replaces the status of a run
func (s *MemoryStatusStore) Put(_ context.Context, status *models.RunStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	status.UpdatedAt = time.Now()
	copied := *status
	s.entries[status.RunID] = &copied
	return nil
}

// Get retrieves the status of a run
func (s *MemoryStatusStore) Get(_ context.Context, runID string) (*models.RunStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, ok := s.entries[runID]
	if !ok {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	copied := *status
	return &copied, nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStatusStore) Close() error {
	return nil
}
