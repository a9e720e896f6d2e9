package sse

import (
	"context"
	"testing"
	"time"

	"ms-registration/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitReachesOnlyMatchingEvent(t *testing.T) {
	e := NewDashboardEventEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coffee := e.Subscribe(ctx, "COFFEE")
	other := e.Subscribe(ctx, "OTHER")

	e.Emit(models.Snapshot{EventCode: "COFFEE", Stats: models.Stats{TotalCount: 3}})

	select {
	case snap := <-coffee:
		assert.Equal(t, 3, snap.Stats.TotalCount)
	case <-time.After(time.Second):
		t.Fatal("expected snapshot")
	}

	select {
	case <-other:
		t.Fatal("unexpected snapshot for other event")
	default:
	}
}

func TestEmitDoesNotBlockOnSlowClient(t *testing.T) {
	e := NewDashboardEventEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e.Subscribe(ctx, "COFFEE")

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			e.Emit(models.Snapshot{EventCode: "COFFEE"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("emit blocked")
	}
}

func TestSubscriberRemovedWhenContextEnds(t *testing.T) {
	e := NewDashboardEventEmitter()
	ctx, cancel := context.WithCancel(context.Background())

	ch := e.Subscribe(ctx, "COFFEE")
	require.Equal(t, 1, e.ClientCount("COFFEE"))

	cancel()

	require.Eventually(t, func() bool { return e.ClientCount("COFFEE") == 0 }, time.Second, 10*time.Millisecond)
	_, open := <-ch
	assert.False(t, open)
}
