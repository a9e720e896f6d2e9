package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ms-registration/internal/models"

	"github.com/go-redis/redis/v8"
)

const eventKeyPrefix = "event:"

// EventCache keeps event details by code. A miss returns nil, nil.
type EventCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewEventCache(client *redis.Client, ttl time.Duration) *EventCache {
	return &EventCache{Client: client, TTL: ttl}
}

func (c *EventCache) Get(ctx context.Context, code string) (*models.Event, error) {
	raw, err := c.Client.Get(ctx, eventKeyPrefix+code).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get event from Redis: %w", err)
	}

	var event models.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached event: %w", err)
	}
	return &event, nil
}

func (c *EventCache) Set(ctx context.Context, event *models.Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := c.Client.Set(ctx, eventKeyPrefix+event.Code, raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("failed to store event in Redis: %w", err)
	}
	return nil
}

func (c *EventCache) Invalidate(ctx context.Context, code string) error {
	return c.Client.Del(ctx, eventKeyPrefix+code).Err()
}
