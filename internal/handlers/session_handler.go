package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hiresense/evaluation-engine/internal/models"
	"hiresense/evaluation-engine/internal/services"
)

type SessionHandler struct {
	manager services.SessionManager
	bus     services.EventBus
}

func NewSessionHandler(manager services.SessionManager, bus services.EventBus) *SessionHandler {
	return &SessionHandler{
		manager: manager,
		bus:     bus,
	}
}

// HandleGetSession handles GET /sessions/:id. It is the polling fallback:
// current state plus whatever artifacts the completed stages produced.
func (h *SessionHandler) HandleGetSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID format",
		})
	}

	session, err := h.manager.GetSession(sessionID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	response := models.SessionResponse{
		ID:            session.ID.String(),
		JobID:         session.JobID.String(),
		CandidateName: session.CandidateName,
		State:         string(session.State),
		PartialDebate: session.PartialDebate,
		FailureReason: session.FailureReason,
	}

	if profile, err := session.DecodeProfile(); err == nil {
		response.ResumeAnalysis = profile
	}
	if analysis, err := session.DecodeIntersection(); err == nil {
		response.IntersectionAnalysis = analysis
	}
	if transcript, err := session.DecodeTranscript(); err == nil {
		response.Transcript = transcript
	}

	// A decision is only trustworthy on a completed session
	if session.State == models.StateCompleted {
		if decision, err := session.DecodeDecision(); err == nil {
			response.Decision = decision
		}
	}

	return c.JSON(response)
}

// HandleGetEvents handles GET /sessions/:id/events, serving the durable
// log for clients that missed the live stream.
func (h *SessionHandler) HandleGetEvents(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID format",
		})
	}

	events, err := h.bus.History(sessionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load events",
		})
	}

	return c.JSON(fiber.Map{
		"session_id": sessionID.String(),
		"events":     events,
	})
}

// HandleCancel handles POST /sessions/:id/cancel. Cancellation takes
// effect at the next stage boundary.
func (h *SessionHandler) HandleCancel(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID format",
		})
	}

	if err := h.manager.CancelSession(sessionID); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"session_id": sessionID.String(),
		"status":     "cancellation requested",
	})
}
