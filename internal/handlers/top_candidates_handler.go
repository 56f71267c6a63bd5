package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"hiresense/evaluation-engine/internal/repositories"
)

const defaultTopCandidatesLimit = 20

type TopCandidatesHandler struct {
	topCandidates repositories.TopCandidateRepository
}

func NewTopCandidatesHandler(topCandidates repositories.TopCandidateRepository) *TopCandidatesHandler {
	return &TopCandidatesHandler{
		topCandidates: topCandidates,
	}
}

// HandleListTopCandidates handles GET /top-candidates, ordered by score.
func (h *TopCandidatesHandler) HandleListTopCandidates(c *fiber.Ctx) error {
	limit := defaultTopCandidatesLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "limit must be between 1 and 100",
			})
		}
		limit = parsed
	}

	candidates, err := h.topCandidates.List(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load top candidates",
		})
	}

	return c.JSON(fiber.Map{
		"count":      len(candidates),
		"candidates": candidates,
	})
}
