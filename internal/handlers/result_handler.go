package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hiresense/evaluation-engine/internal/models"
	"hiresense/evaluation-engine/internal/services"
)

type ResultHandler struct {
	manager services.SessionManager
}

func NewResultHandler(manager services.SessionManager) *ResultHandler {
	return &ResultHandler{
		manager: manager,
	}
}

// HandleGetResult handles GET /result/:id. Only a COMPLETED session yields
// the full result payload; anything else reports state so that callers
// never consume a partial decision.
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
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

	if session.State != models.StateCompleted {
		status := fiber.StatusConflict
		body := fiber.Map{
			"id":    session.ID.String(),
			"state": string(session.State),
		}
		if session.FailureReason != nil {
			body["error_message"] = *session.FailureReason
		}
		return c.Status(status).JSON(body)
	}

	profile, err := session.DecodeProfile()
	if err != nil || profile == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load resume analysis",
		})
	}

	analysis, err := session.DecodeIntersection()
	if err != nil || analysis == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load intersection analysis",
		})
	}

	decision, err := session.DecodeDecision()
	if err != nil || decision == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load decision",
		})
	}

	transcript, err := session.DecodeTranscript()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load transcript",
		})
	}

	return c.JSON(models.FinalResult{
		ResumeAnalysis:       *profile,
		IntersectionAnalysis: *analysis,
		Decision:             *decision,
		Transcript:           transcript,
	})
}
