package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"financeagent/internal/domain"
)

// NewRedis connects to Redis. A missing URL disables caching and
// returns a nil client, which SnapshotCache treats as a no-op.
func NewRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		log.Println("[WARN] REDIS_URL not set, snapshot cache disabled")
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Println("[OK] Redis connected successfully")
	return client, nil
}

// SnapshotCache is a short-lived cache for computed health snapshots.
// Reads for display paths may hit it; safety checks always recompute.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl}
}

func (c *SnapshotCache) key(userID uuid.UUID) string {
	return "snapshot:" + userID.String()
}

// Get returns the cached snapshot or nil on miss. Cache failures are
// treated as misses.
func (c *SnapshotCache) Get(ctx context.Context, userID uuid.UUID) *domain.HealthSnapshot {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[WARN] snapshot cache read failed: %v", err)
		}
		return nil
	}

	var snap domain.HealthSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("[WARN] snapshot cache decode failed: %v", err)
		return nil
	}
	return &snap
}

func (c *SnapshotCache) Set(ctx context.Context, userID uuid.UUID, snap *domain.HealthSnapshot) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(userID), data, c.ttl).Err(); err != nil {
		log.Printf("[WARN] snapshot cache write failed: %v", err)
	}
}

// Invalidate drops the cached snapshot after any financial write.
func (c *SnapshotCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		log.Printf("[WARN] snapshot cache invalidation failed: %v", err)
	}
}
