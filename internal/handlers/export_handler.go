package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"resumatch/resume-matcher/internal/repositories"
	"resumatch/resume-matcher/internal/services"
)

type ExportHandler struct {
	jdRepo     repositories.JobDescriptionRepository
	resumeRepo repositories.ResumeRepository
	exporter   *services.ExportService
}

func NewExportHandler(
	jdRepo repositories.JobDescriptionRepository,
	resumeRepo repositories.ResumeRepository,
	exporter *services.ExportService,
) *ExportHandler {
	return &ExportHandler{
		jdRepo:     jdRepo,
		resumeRepo: resumeRepo,
		exporter:   exporter,
	}
}

// HandleExportCSV downloads the ranked candidate list for one job as CSV.
// ?rating= keeps only rows with that match rating.
func (h *ExportHandler) HandleExportCSV(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("jdID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job description id",
		})
	}

	jd, err := h.jdRepo.FindByID(id)
	if err != nil {
		if err == repositories.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "job description not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load job description",
		})
	}

	resumes, err := h.resumeRepo.FindAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load resumes",
		})
	}

	data, err := h.exporter.ExportCSV(c.Context(), jd, resumes, c.Query("rating"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to build export",
		})
	}

	filename := fmt.Sprintf("candidates_%s_%s.csv", jd.ID, time.Now().UTC().Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(data)
}
