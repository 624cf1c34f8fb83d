package handlers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"resumatch/resume-matcher/internal/models"
	"resumatch/resume-matcher/internal/repositories"
	"resumatch/resume-matcher/internal/services"
)

type JDHandler struct {
	jdRepo     repositories.JobDescriptionRepository
	skillCache *services.SkillCache
	embedder   services.Embedder
	extractor  services.TextExtractor
	storage    services.StorageService
	index      services.VectorIndex
	maxJDs     int
	logger     *zap.Logger
}

func NewJDHandler(
	jdRepo repositories.JobDescriptionRepository,
	skillCache *services.SkillCache,
	embedder services.Embedder,
	extractor services.TextExtractor,
	storage services.StorageService,
	index services.VectorIndex,
	maxJDs int,
	logger *zap.Logger,
) *JDHandler {
	return &JDHandler{
		jdRepo:     jdRepo,
		skillCache: skillCache,
		embedder:   embedder,
		extractor:  extractor,
		storage:    storage,
		index:      index,
		maxJDs:     maxJDs,
		logger:     logger,
	}
}

// HandleUpload accepts a job description either as an uploaded file under
// "jd" or as a "text" form field. Skill extraction and embedding run
// concurrently before the record is stored.
func (h *JDHandler) HandleUpload(c *fiber.Ctx) error {
	count, err := h.jdRepo.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to count job descriptions",
		})
	}
	if count >= int64(h.maxJDs) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": fmt.Sprintf("job description limit reached (%d). Delete one first", h.maxJDs),
		})
	}

	title := strings.TrimSpace(c.FormValue("title"))
	text := strings.TrimSpace(c.FormValue("text"))

	if file, err := c.FormFile("jd"); err == nil && file != nil {
		_, filePath, err := h.storage.SaveFile(file, "jd")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to save job description file: %v", err),
			})
		}

		extracted, err := h.extractor.ExtractText(filePath)
		if err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to extract text: %v", err),
			})
		}
		text = extracted

		if title == "" {
			title = strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))
		}
	}

	if text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "provide a job description file or a text field",
		})
	}
	if title == "" {
		title = "Untitled Job"
	}

	var (
		skills    *services.JobSkills
		embedding []float32
	)

	g, gctx := errgroup.WithContext(c.Context())
	g.Go(func() error {
		extracted, err := h.skillCache.ExtractSkills(gctx, text)
		if err != nil {
			return err
		}
		skills = extracted
		return nil
	})
	g.Go(func() error {
		embedding = h.embedder.Embed(gctx, text)
		return nil
	})
	if err := g.Wait(); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to extract skills: %v", err),
		})
	}

	jd := &models.JobDescription{
		Title:            title,
		Text:             text,
		Embedding:        pgvector.NewVector(embedding),
		RequiredSkills:   services.DedupeSkills(skills.RequiredSkills),
		NiceToHaveSkills: services.DedupeSkills(skills.NiceToHaveSkills),
	}
	if err := h.jdRepo.Create(jd); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to store job description",
		})
	}

	if err := h.index.UpsertDocument(c.Context(), jd.ID.String(), services.DocTypeJD, text, embedding); err != nil {
		h.logger.Warn("failed to index job description",
			zap.String("jd_id", jd.ID.String()),
			zap.Error(err),
		)
	}

	return c.Status(fiber.StatusCreated).JSON(jd)
}

// HandleList returns all stored job descriptions.
func (h *JDHandler) HandleList(c *fiber.Ctx) error {
	jds, err := h.jdRepo.FindAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list job descriptions",
		})
	}

	return c.JSON(fiber.Map{"job_descriptions": jds})
}

// HandleDelete removes a job description and its vector index entry.
func (h *JDHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job description id",
		})
	}

	if err := h.jdRepo.Delete(id); err != nil {
		if err == repositories.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "job description not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete job description",
		})
	}

	if err := h.index.DeleteDocument(c.Context(), id.String()); err != nil {
		h.logger.Warn("failed to remove job description from index",
			zap.String("jd_id", id.String()),
			zap.Error(err),
		)
	}

	return c.JSON(fiber.Map{"message": "job description deleted"})
}
