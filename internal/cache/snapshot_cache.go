package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ms-registration/internal/models"

	"github.com/go-redis/redis/v8"
)

const snapshotKeyPrefix = "dashboard:snapshot:"

// SnapshotCache holds the last reconciliation snapshot per event so every
// replica can answer reads without hitting the database.
type SnapshotCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{Client: client, TTL: ttl}
}

func (c *SnapshotCache) Get(ctx context.Context, eventCode string) (*models.Snapshot, error) {
	raw, err := c.Client.Get(ctx, snapshotKeyPrefix+eventCode).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get snapshot from Redis: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

func (c *SnapshotCache) Set(ctx context.Context, snap *models.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return c.Client.Set(ctx, snapshotKeyPrefix+snap.EventCode, raw, c.TTL).Err()
}

func (c *SnapshotCache) Invalidate(ctx context.Context, eventCode string) error {
	return c.Client.Del(ctx, snapshotKeyPrefix+eventCode).Err()
}
