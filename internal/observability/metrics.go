package observability

import (
	"context"
	"sync"

	"github.com/spec-kit/ticket-bot/internal/events"
)

// Metrics provides basic in-memory counters over ticket lifecycle events.
type Metrics struct {
	mu     sync.Mutex
	counts map[events.EventType]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{counts: make(map[events.EventType]int64)}
}

// Register subscribes the counters to every lifecycle event.
func (m *Metrics) Register(dispatcher events.Dispatcher) {
	for _, eventType := range []events.EventType{
		events.EventTicketOpened,
		events.EventTicketCloseRequested,
		events.EventTicketClosed,
		events.EventTicketCompleted,
	} {
		dispatcher.Subscribe(eventType, m.record)
	}
}

func (m *Metrics) record(_ context.Context, event events.Event) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[event.Type]++
	return nil
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() map[string]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.counts))
	for eventType, count := range m.counts {
		out[string(eventType)] = count
	}
	return out
}
