package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"hiresense/evaluation-engine/internal/models"
)

func TestEventBusAppendsToLogInOrder(t *testing.T) {
	events := newMemEventRepo()
	bus := NewEventBus(events)
	sessionID := uuid.New()

	for i := 1; i <= 5; i++ {
		bus.Publish(sessionID, models.AgentEvent{
			Type:    models.EventTypeAgentMessage,
			Message: fmt.Sprintf("message %d", i),
			Step:    models.StepParsing,
		})
	}

	history, err := bus.History(sessionID)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 5 {
		t.Fatalf("len(history) = %d, want 5", len(history))
	}
	for i, event := range history {
		if event.Seq != i+1 {
			t.Errorf("event %d seq = %d, want %d", i, event.Seq, i+1)
		}
		if event.SessionID != sessionID {
			t.Errorf("event %d session = %s, want %s", i, event.SessionID, sessionID)
		}
		if event.Timestamp == 0 {
			t.Errorf("event %d has no timestamp", i)
		}
	}
}

func TestEventBusDeliversToSubscriber(t *testing.T) {
	bus := NewEventBus(newMemEventRepo())
	sessionID := uuid.New()

	ch, cancel := bus.Subscribe(sessionID)
	defer cancel()

	bus.Publish(sessionID, models.AgentEvent{Type: models.EventTypeAgentMessage, Message: "hello"})

	select {
	case event := <-ch:
		if event.Message != "hello" {
			t.Errorf("Message = %q, want %q", event.Message, "hello")
		}
		if event.Seq != 1 {
			t.Errorf("Seq = %d, want 1", event.Seq)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestEventBusIsolatesSessions(t *testing.T) {
	bus := NewEventBus(newMemEventRepo())
	sessionA, sessionB := uuid.New(), uuid.New()

	ch, cancel := bus.Subscribe(sessionA)
	defer cancel()

	bus.Publish(sessionB, models.AgentEvent{Message: "other session"})

	select {
	case event := <-ch:
		t.Fatalf("received event for the wrong session: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBusSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := NewEventBus(newMemEventRepo())
	sessionID := uuid.New()

	// The subscriber never drains; publishing far past the buffer must
	// still return.
	_, cancel := bus.Subscribe(sessionID)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*2; i++ {
			bus.Publish(sessionID, models.AgentEvent{Message: fmt.Sprintf("message %d", i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	// Every event still reached the durable log
	history, _ := bus.History(sessionID)
	if len(history) != subscriberBuffer*2 {
		t.Errorf("len(history) = %d, want %d", len(history), subscriberBuffer*2)
	}
}

type failingEventRepo struct{}

func (failingEventRepo) Append(event *models.AgentEvent) error {
	return fmt.Errorf("connection refused")
}

func (failingEventRepo) ListBySession(sessionID uuid.UUID) ([]models.AgentEvent, error) {
	return nil, nil
}

func TestEventBusFansOutWhenLogWriteFails(t *testing.T) {
	bus := NewEventBus(failingEventRepo{})
	sessionID := uuid.New()

	ch, cancel := bus.Subscribe(sessionID)
	defer cancel()

	bus.Publish(sessionID, models.AgentEvent{Type: models.EventTypeAgentMessage, Message: "still delivered"})

	select {
	case event := <-ch:
		if event.Message != "still delivered" {
			t.Errorf("Message = %q", event.Message)
		}
		// The event never reached the log, so it has no sequence
		if event.Seq != 0 {
			t.Errorf("Seq = %d, want 0 for an unlogged event", event.Seq)
		}
	case <-time.After(time.Second):
		t.Fatal("log-write failure suppressed live delivery")
	}
}

func TestEventBusCancelClosesChannel(t *testing.T) {
	bus := NewEventBus(newMemEventRepo())
	sessionID := uuid.New()

	ch, cancel := bus.Subscribe(sessionID)
	cancel()

	if _, ok := <-ch; ok {
		t.Error("channel still open after cancel")
	}

	// Publishing after cancel must not panic
	bus.Publish(sessionID, models.AgentEvent{Message: "after cancel"})
}
