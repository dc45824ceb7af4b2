package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound indicates no record exists for the collection
	ErrNotFound = errors.New("record not found")

	// ErrInvalidRecord indicates the stored record is invalid or corrupted
	ErrInvalidRecord = errors.New("invalid record")
)

// Recorder stores discovery records in Redis.
type Recorder struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRecorder creates a recorder. A ttl of 0 keeps records indefinitely.
func NewRecorder(redisClient *redis.Client, ttl time.Duration) *Recorder {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Recorder{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Record stores rec under the key of rec.BaseURL, replacing any previous record.
func (r *Recorder) Record(ctx context.Context, rec Record) error {
	if rec.BaseURL == "" {
		return fmt.Errorf("record base url cannot be empty")
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		StoreErrors.WithLabelValues("record").Inc()
		return fmt.Errorf("marshal record: %w", err)
	}

	if err := r.redis.Set(ctx, Key(rec.BaseURL), data, r.ttl).Err(); err != nil {
		StoreErrors.WithLabelValues("record").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	RecordsWritten.Inc()
	return nil
}

// Last returns the latest record for baseURL.
// Returns ErrNotFound if none exists.
func (r *Recorder) Last(ctx context.Context, baseURL string) (*Record, error) {
	data, err := r.redis.Get(ctx, Key(baseURL)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		StoreErrors.WithLabelValues("last").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		StoreErrors.WithLabelValues("last").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	return &rec, nil
}

// Delete removes the record for baseURL.
func (r *Recorder) Delete(ctx context.Context, baseURL string) error {
	if err := r.redis.Del(ctx, Key(baseURL)).Err(); err != nil {
		StoreErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (r *Recorder) Ping(ctx context.Context) error {
	return r.redis.Ping(ctx).Err()
}
