package service

import (
	"context"
	"sync"

	"scryfall/internal/logging"
)

// Events emitted by SyncService.
const (
	EventJobStarted   = "sync:job-started"
	EventJobCompleted = "sync:job-completed"
	EventJobsChanged  = "sync:jobs-changed"
)

// EventEmitter lets callers observe service activity without the service
// knowing who listens.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// LogEmitter writes every event to the structured log.
type LogEmitter struct{}

var eventLogger = logging.Logger("events")

func (LogEmitter) Emit(ctx context.Context, event string, data any) {
	eventLogger.InfoContext(ctx, event, "data", data)
}

// MockEmitter is a test-friendly EventEmitter that records all calls.
// It is safe for use from scheduler goroutines.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Named returns the recorded emissions of one event, oldest first.
func (m *MockEmitter) Named(event string) []EmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []EmittedEvent
	for _, e := range m.Events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
