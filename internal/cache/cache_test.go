package cache

import (
	"context"
	"testing"
	"time"

	"ms-registration/internal/config"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestConnect(t *testing.T) {
	_, mr := setupTestRedis(t)

	client, err := Connect(config.RedisConfig{Addr: mr.Addr()}, logger.Nop())
	require.NoError(t, err)
	client.Close()

	_, err = Connect(config.RedisConfig{Addr: "127.0.0.1:1"}, logger.Nop())
	assert.Error(t, err)
}

func TestEventCache(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewEventCache(client, time.Minute)
	ctx := context.Background()

	miss, err := c.Get(ctx, "COFFEE-2025-0726")
	require.NoError(t, err)
	assert.Nil(t, miss)

	event := &models.Event{ID: 7, Code: "COFFEE-2025-0726", Name: "Coffee Party", PriceConfig: map[string]float64{"default": 300}}
	require.NoError(t, c.Set(ctx, event))

	hit, err := c.Get(ctx, "COFFEE-2025-0726")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, int64(7), hit.ID)
	assert.Equal(t, 300.0, hit.PriceConfig["default"])

	mr.FastForward(2 * time.Minute)
	expired, err := c.Get(ctx, "COFFEE-2025-0726")
	require.NoError(t, err)
	assert.Nil(t, expired)

	require.NoError(t, c.Set(ctx, event))
	require.NoError(t, c.Invalidate(ctx, event.Code))
	gone, err := c.Get(ctx, event.Code)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestEventCacheCorruptEntry(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewEventCache(client, time.Minute)

	require.NoError(t, mr.Set(eventKeyPrefix+"BAD", "{not json"))
	_, err := c.Get(context.Background(), "BAD")
	assert.Error(t, err)
}

func TestSnapshotCache(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewSnapshotCache(client, 30*time.Second)
	ctx := context.Background()

	snap := &models.Snapshot{
		EventCode:   "COFFEE-2025-0726",
		Records:     []models.DashboardRecord{{PaymentOrderID: 1, ParticipantCount: 2}},
		Stats:       models.Stats{TotalCount: 1, TotalParticipants: 2},
		RefreshedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, c.Set(ctx, snap))
	assert.Equal(t, 30*time.Second, mr.TTL(snapshotKeyPrefix+"COFFEE-2025-0726"))

	got, err := c.Get(ctx, "COFFEE-2025-0726")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.Stats.TotalCount)
	assert.True(t, snap.RefreshedAt.Equal(got.RefreshedAt))

	require.NoError(t, c.Invalidate(ctx, "COFFEE-2025-0726"))
	got, err = c.Get(ctx, "COFFEE-2025-0726")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCheckInSet(t *testing.T) {
	client, _ := setupTestRedis(t)
	s := NewCheckInSet(client)
	ctx := context.Background()

	on, err := s.ToggleCheckIn(ctx, "EV", 11, "door")
	require.NoError(t, err)
	assert.True(t, on)

	require.NoError(t, s.SetCheckIn(ctx, "EV", 12, true, "scanner"))
	require.NoError(t, s.SetCheckIn(ctx, "EV", 12, true, "scanner"))
	require.NoError(t, s.SetCheckIn(ctx, "OTHER", 13, true, "scanner"))

	set, err := s.CheckedIn(ctx, "EV")
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{11: true, 12: true}, set)

	on, err = s.ToggleCheckIn(ctx, "EV", 11, "door")
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, s.SetCheckIn(ctx, "EV", 12, false, "scanner"))
	set, err = s.CheckedIn(ctx, "EV")
	require.NoError(t, err)
	assert.Empty(t, set)
}
