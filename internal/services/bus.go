package services

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"hiresense/evaluation-engine/internal/models"
	"hiresense/evaluation-engine/internal/repositories"
)

const subscriberBuffer = 64

// EventBus fans AgentEvents out to live subscribers and appends every
// event to the durable per-session log. Delivery to subscribers is
// best-effort and never blocks the publishing pipeline; the log is the
// source of truth for late or polling consumers.
type EventBus interface {
	Publish(sessionID uuid.UUID, event models.AgentEvent)
	Subscribe(sessionID uuid.UUID) (<-chan models.AgentEvent, func())
	History(sessionID uuid.UUID) ([]models.AgentEvent, error)
}

type eventBus struct {
	events repositories.EventRepository

	mu          sync.Mutex
	subscribers map[uuid.UUID][]chan models.AgentEvent
}

func NewEventBus(events repositories.EventRepository) EventBus {
	return &eventBus{
		events:      events,
		subscribers: make(map[uuid.UUID][]chan models.AgentEvent),
	}
}

// Publish implements EventBus. Stages for one session run sequentially, so
// publishes for a session arrive in order and the log sequence follows.
func (b *eventBus) Publish(sessionID uuid.UUID, event models.AgentEvent) {
	event.SessionID = sessionID
	if event.Timestamp == 0 {
		event.Timestamp = float64(time.Now().UnixNano()) / float64(time.Second)
	}

	if err := b.events.Append(&event); err != nil {
		log.Printf("⚠️  Failed to append event for session %s: %v\n", sessionID, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers[sessionID] {
		select {
		case ch <- event:
		default:
			// Slow subscriber, drop rather than stall the pipeline
		}
	}
}

// Subscribe implements EventBus. The returned cancel func must be called
// to release the channel.
func (b *eventBus) Subscribe(sessionID uuid.UUID) (<-chan models.AgentEvent, func()) {
	ch := make(chan models.AgentEvent, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[sessionID] = append(b.subscribers[sessionID], ch)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.subscribers[sessionID]
		for i, sub := range subs {
			if sub == ch {
				b.subscribers[sessionID] = append(subs[:i], subs[i+1:]...)
				close(ch)
				break
			}
		}
		if len(b.subscribers[sessionID]) == 0 {
			delete(b.subscribers, sessionID)
		}
	}

	return ch, cancel
}

// History implements EventBus.
func (b *eventBus) History(sessionID uuid.UUID) ([]models.AgentEvent, error) {
	return b.events.ListBySession(sessionID)
}
