package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"resumatch/resume-matcher/internal/models"
	"resumatch/resume-matcher/internal/repositories"
)

type StatusHandler struct {
	statusRepo repositories.CandidateStatusRepository
}

func NewStatusHandler(statusRepo repositories.CandidateStatusRepository) *StatusHandler {
	return &StatusHandler{statusRepo: statusRepo}
}

// HandleBulkUpdate assigns one workflow status to several candidates at once.
func (h *StatusHandler) HandleBulkUpdate(c *fiber.Ctx) error {
	var req models.BulkStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if !models.IsValidStatus(req.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("invalid status: %s", req.Status),
		})
	}
	if len(req.ResumeIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume_ids must not be empty",
		})
	}

	jdID, err := uuid.Parse(req.JDID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid jd_id",
		})
	}

	resumeIDs := make([]uuid.UUID, 0, len(req.ResumeIDs))
	for _, raw := range req.ResumeIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("invalid resume id: %s", raw),
			})
		}
		resumeIDs = append(resumeIDs, id)
	}

	if err := h.statusRepo.BulkUpsert(jdID, resumeIDs, req.Status, req.Note); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update statuses",
		})
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("%d candidates set to %s", len(resumeIDs), req.Status),
	})
}

// HandleListByJD returns the workflow statuses recorded for one job.
func (h *StatusHandler) HandleListByJD(c *fiber.Ctx) error {
	jdID, err := uuid.Parse(c.Params("jdID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job description id",
		})
	}

	statuses, err := h.statusRepo.FindByJD(jdID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list statuses",
		})
	}

	return c.JSON(fiber.Map{"statuses": statuses, "count": len(statuses)})
}
