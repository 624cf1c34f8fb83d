package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/models"
	"resumatch/resume-matcher/internal/repositories"
	"resumatch/resume-matcher/internal/services"
)

type CandidatesHandler struct {
	jdRepo       repositories.JobDescriptionRepository
	resumeRepo   repositories.ResumeRepository
	ranker       *services.RankingAggregator
	orchestrator *services.AnalysisOrchestrator
	logger       *zap.Logger
}

func NewCandidatesHandler(
	jdRepo repositories.JobDescriptionRepository,
	resumeRepo repositories.ResumeRepository,
	ranker *services.RankingAggregator,
	orchestrator *services.AnalysisOrchestrator,
	logger *zap.Logger,
) *CandidatesHandler {
	return &CandidatesHandler{
		jdRepo:       jdRepo,
		resumeRepo:   resumeRepo,
		ranker:       ranker,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

func (h *CandidatesHandler) loadJob(c *fiber.Ctx, param string) (*models.JobDescription, []models.Resume, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return nil, nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid job description id",
		})
	}

	jd, err := h.jdRepo.FindByID(id)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "job description not found",
			})
		}
		return nil, nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load job description",
		})
	}

	resumes, err := h.resumeRepo.FindAll()
	if err != nil {
		return nil, nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load resumes",
		})
	}

	return jd, resumes, nil
}

// HandleRankAll returns every candidate ranked against one job, mixing
// stored analyses and heuristic scores. No AI call happens here.
func (h *CandidatesHandler) HandleRankAll(c *fiber.Ctx) error {
	jd, resumes, err := h.loadJob(c, "jdID")
	if jd == nil {
		return err
	}

	matches := h.ranker.RankAll(jd, resumes)
	return c.JSON(fiber.Map{
		"jd_id":      jd.ID,
		"jd_title":   jd.Title,
		"candidates": matches,
		"count":      len(matches),
	})
}

// HandleAnalyzeOne runs (or reuses) the full analysis for a single
// candidate/job pair.
func (h *CandidatesHandler) HandleAnalyzeOne(c *fiber.Ctx) error {
	var req models.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	jdID, err := uuid.Parse(req.JDID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid jd_id",
		})
	}
	resumeID, err := uuid.Parse(req.ResumeID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid resume_id",
		})
	}

	jd, err := h.jdRepo.FindByID(jdID)
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

	resume, err := h.resumeRepo.FindByID(resumeID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "resume not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load resume",
		})
	}

	rec := h.orchestrator.EnsureAnalysis(c.Context(), resume, jd, services.AnalyzeOptions{Force: req.Force})
	return c.JSON(fiber.Map{
		"jd_id":     jd.ID,
		"resume_id": resume.ID,
		"analysis":  rec,
	})
}

// HandleFullAnalysis runs the batch analysis for the whole candidate pool.
// ?force=true recomputes even cached and low-similarity candidates.
func (h *CandidatesHandler) HandleFullAnalysis(c *fiber.Ctx) error {
	jd, resumes, err := h.loadJob(c, "jdID")
	if jd == nil {
		return err
	}

	force := c.QueryBool("force")
	results := h.ranker.FullAnalysis(c.Context(), jd, resumes, force)

	return c.JSON(fiber.Map{
		"jd_id":      jd.ID,
		"jd_title":   jd.Title,
		"candidates": results,
		"count":      len(results),
	})
}

// HandlePreliminary scores unanalyzed candidates heuristically and promotes
// the strongest few to a full AI analysis.
func (h *CandidatesHandler) HandlePreliminary(c *fiber.Ctx) error {
	jd, resumes, err := h.loadJob(c, "jdID")
	if jd == nil {
		return err
	}

	results := h.ranker.PreliminaryPass(c.Context(), jd, resumes)
	return c.JSON(fiber.Map{
		"jd_id":      jd.ID,
		"candidates": results,
		"count":      len(results),
	})
}

// HandleAnalysisStatus reports stored-analysis coverage for one job.
func (h *CandidatesHandler) HandleAnalysisStatus(c *fiber.Ctx) error {
	jd, resumes, err := h.loadJob(c, "jdID")
	if jd == nil {
		return err
	}

	return c.JSON(h.ranker.Progress(jd, resumes))
}
