package handlers

import (
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hiresense/evaluation-engine/internal/models"
	"hiresense/evaluation-engine/internal/services"
)

type StreamHandler struct {
	manager services.SessionManager
	bus     services.EventBus
}

func NewStreamHandler(manager services.SessionManager, bus services.EventBus) *StreamHandler {
	return &StreamHandler{
		manager: manager,
		bus:     bus,
	}
}

// Upgrade rejects non-websocket requests before the connection handler runs.
func (h *StreamHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleProgressStream streams the per-session event log over a websocket.
// The subscription is opened before history is replayed so no event can
// fall between replay and live delivery; live events already present in
// the replayed history are deduplicated by their log sequence.
func (h *StreamHandler) HandleProgressStream(conn *websocket.Conn) {
	defer conn.Close()

	sessionID, err := uuid.Parse(conn.Params("id"))
	if err != nil {
		_ = conn.WriteJSON(fiber.Map{"error": "Invalid session ID format"})
		return
	}

	if _, err := h.manager.GetSession(sessionID); err != nil {
		_ = conn.WriteJSON(fiber.Map{"error": "Session not found"})
		return
	}

	live, cancel := h.bus.Subscribe(sessionID)
	defer cancel()

	history, err := h.bus.History(sessionID)
	if err != nil {
		log.Printf("⚠️  Failed to load event history for session %s: %v\n", sessionID, err)
		_ = conn.WriteJSON(fiber.Map{"error": "Failed to load event history"})
		return
	}

	lastSeq := 0
	for _, event := range history {
		if err := conn.WriteJSON(event); err != nil {
			return
		}
		if event.Seq > lastSeq {
			lastSeq = event.Seq
		}
	}

	// Reader goroutine: the client never sends payloads, but reading is the
	// only way to observe the peer closing the socket.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-live:
			if !ok {
				return
			}
			forward, next := shouldForward(event, lastSeq)
			lastSeq = next
			if !forward {
				continue
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
			if isTerminalEvent(event) {
				return
			}
		case <-closed:
			return
		}
	}
}

// shouldForward decides whether a live event reaches the client given the
// highest sequence already replayed from history. An event that missed the
// durable log carries no sequence; it is always forwarded so a log-write
// error degrades to at-least-once delivery instead of a silent gap.
func shouldForward(event models.AgentEvent, lastSeq int) (forward bool, nextSeq int) {
	if event.Seq == 0 {
		return true, lastSeq
	}
	if event.Seq <= lastSeq {
		return false, lastSeq
	}
	return true, event.Seq
}

func isTerminalEvent(event models.AgentEvent) bool {
	if event.Type == models.EventTypeError || event.Type == models.EventTypeCancelled {
		return true
	}
	return event.Type == models.EventTypeAgentMessage && event.Step == models.StepCompleted
}
