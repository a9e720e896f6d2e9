package sse

import (
	"context"
	"sync"

	"ms-registration/internal/models"
)

// DashboardEventEmitter fans reconciliation snapshots out to SSE clients,
// keyed by event code.
type DashboardEventEmitter struct {
	clients     map[string][]chan models.Snapshot
	clientMutex sync.RWMutex
}

func NewDashboardEventEmitter() *DashboardEventEmitter {
	return &DashboardEventEmitter{
		clients: make(map[string][]chan models.Snapshot),
	}
}

// Subscribe registers a client for eventCode. The channel is closed once ctx ends.
func (e *DashboardEventEmitter) Subscribe(ctx context.Context, eventCode string) <-chan models.Snapshot {
	clientChan := make(chan models.Snapshot, 10)

	e.clientMutex.Lock()
	e.clients[eventCode] = append(e.clients[eventCode], clientChan)
	e.clientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeClient(eventCode, clientChan)
	}()

	return clientChan
}

// Emit never blocks; a client with a full buffer misses this snapshot.
func (e *DashboardEventEmitter) Emit(snap models.Snapshot) {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()

	for _, clientChan := range e.clients[snap.EventCode] {
		select {
		case clientChan <- snap:
		default:
		}
	}
}

func (e *DashboardEventEmitter) removeClient(eventCode string, clientChan chan models.Snapshot) {
	e.clientMutex.Lock()
	defer e.clientMutex.Unlock()

	clients := e.clients[eventCode]
	for i, ch := range clients {
		if ch == clientChan {
			e.clients[eventCode] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	if len(e.clients[eventCode]) == 0 {
		delete(e.clients, eventCode)
	}
}

func (e *DashboardEventEmitter) ClientCount(eventCode string) int {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()
	return len(e.clients[eventCode])
}
