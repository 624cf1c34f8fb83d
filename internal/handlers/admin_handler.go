package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/services"
)

type AdminHandler struct {
	skillCache *services.SkillCache
	logger     *zap.Logger
}

func NewAdminHandler(skillCache *services.SkillCache, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{skillCache: skillCache, logger: logger}
}

// HandleFlushCache clears the skill-extraction cache.
func (h *AdminHandler) HandleFlushCache(c *fiber.Ctx) error {
	if err := h.skillCache.Flush(c.Context()); err != nil {
		h.logger.Error("failed to flush skill cache", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to flush cache",
		})
	}

	return c.JSON(fiber.Map{"message": "skill cache flushed"})
}
