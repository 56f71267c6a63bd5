package handlers

import (
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hiresense/evaluation-engine/internal/models"
	"hiresense/evaluation-engine/internal/services"
)

type EvaluateHandler struct {
	manager       services.SessionManager
	worker        services.Worker
	pdfParser     services.PDFParserService
	maxResumeSize int64
}

func NewEvaluateHandler(
	manager services.SessionManager,
	worker services.Worker,
	pdfParser services.PDFParserService,
	maxResumeSize int64,
) *EvaluateHandler {
	return &EvaluateHandler{
		manager:       manager,
		worker:        worker,
		pdfParser:     pdfParser,
		maxResumeSize: maxResumeSize,
	}
}

// HandleEvaluate handles POST /evaluate. The resume arrives either as an
// uploaded PDF ("resume") or as plain text ("resume_text"); it is consumed
// in-request and never written to disk.
func (h *EvaluateHandler) HandleEvaluate(c *fiber.Ctx) error {
	candidateName := c.FormValue("candidate_name")
	if candidateName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "candidate_name is required",
		})
	}

	jobID, err := uuid.Parse(c.FormValue("job_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job_id format",
		})
	}

	resumeText, err := h.resolveResumeText(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	session, created, err := h.manager.StartEvaluation(resumeText, jobID, candidateName)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to start evaluation",
		})
	}

	response := models.EvaluateResponse{
		SessionID: session.ID.String(),
		State:     string(session.State),
	}

	// Duplicate submission while the first run is active returns the
	// existing session without enqueueing a second one
	if !created {
		return c.Status(fiber.StatusOK).JSON(response)
	}

	h.worker.EnqueueSession(session.ID)
	return c.Status(fiber.StatusAccepted).JSON(response)
}

func (h *EvaluateHandler) resolveResumeText(c *fiber.Ctx) (string, error) {
	if text := c.FormValue("resume_text"); text != "" {
		return text, nil
	}

	file, err := c.FormFile("resume")
	if err != nil {
		return "", fmt.Errorf("either 'resume' PDF or 'resume_text' is required")
	}

	if file.Size > h.maxResumeSize {
		return "", fmt.Errorf("resume file too large, max size: %d bytes", h.maxResumeSize)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded resume: %v", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("failed to read uploaded resume: %v", err)
	}

	text, err := h.pdfParser.ExtractText(data)
	if err != nil {
		return "", fmt.Errorf("could not extract text from resume PDF: %v", err)
	}

	return text, nil
}
