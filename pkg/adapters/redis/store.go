package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/routine/pkg/clock"
	"github.com/aretw0/routine/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.TraceStore using Redis.
// Every run is a list of JSON reports; a sorted set indexes the runs by expiry.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	clock  clock.Source
}

type Option func(*Store)

// WithTTL sets the expiration for traces. It is refreshed on every append.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for traces.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithClock sets the time source used to score the index.
func WithClock(src clock.Source) Option {
	return func(s *Store) {
		if src != nil {
			s.clock = src
		}
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "routine:trace:",
		ttl:    0, // No expiration by default
		clock:  clock.System,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client returns the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(runID string) string {
	return s.prefix + runID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Append pushes the reports to the run list.
func (s *Store) Append(ctx context.Context, runID string, reports ...*domain.TickReport) error {
	if len(reports) == 0 {
		return nil
	}

	values := make([]any, 0, len(reports))
	for _, rep := range reports {
		data, err := json.Marshal(rep)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		values = append(values, data)
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, s.key(runID), values...)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(runID), s.ttl)
	}

	// Score = Now + TTL. If TTL = 0, Score = far future.
	score := float64(s.clock.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: runID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append to redis: %w", err)
	}
	return nil
}

// Load retrieves the whole run list.
func (s *Store) Load(ctx context.Context, runID string) ([]*domain.TickReport, error) {
	vals, err := s.client.LRange(ctx, s.key(runID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read from redis: %w", err)
	}
	if len(vals) == 0 {
		return nil, domain.ErrRunNotFound
	}

	trace := make([]*domain.TickReport, 0, len(vals))
	for i, val := range vals {
		var rep domain.TickReport
		if err := json.Unmarshal([]byte(val), &rep); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report %d: %w", i+1, err)
		}
		trace = append(trace, &rep)
	}
	return trace, nil
}

// Delete removes the run.
func (s *Store) Delete(ctx context.Context, runID string) error {
	pipe := s.client.Pipeline()

	pipe.Del(ctx, s.key(runID))
	pipe.ZRem(ctx, s.indexKey(), runID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns the stored runs, pruning expired entries from the index first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(s.clock.Now().Unix())

	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired runs: %w", err)
	}

	runs, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
