package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/cache"
)

// SkillCache wraps a SkillExtractor with a TTL-bounded cache so repeated
// extraction of the same job description text does not hit the model again.
// It is constructed once at process start and passed by reference; there is
// no ambient global state.
type SkillCache struct {
	store     cache.Cache
	extractor SkillExtractor
	ttl       time.Duration
	logger    *zap.Logger
}

func NewSkillCache(store cache.Cache, extractor SkillExtractor, ttl time.Duration, logger *zap.Logger) *SkillCache {
	return &SkillCache{
		store:     store,
		extractor: extractor,
		ttl:       ttl,
		logger:    logger,
	}
}

// ExtractSkills implements SkillExtractor. Cache failures are soft: a broken
// store degrades to calling the extractor directly.
func (c *SkillCache) ExtractSkills(ctx context.Context, jdText string) (*JobSkills, error) {
	key := skillCacheKey(jdText)

	var cached JobSkills
	hit, err := c.store.GetJSON(ctx, key, &cached)
	if err != nil {
		c.logger.Warn("skill cache read failed", zap.Error(err))
	}
	if hit {
		return &cached, nil
	}

	skills, err := c.extractor.ExtractSkills(ctx, jdText)
	if err != nil {
		return nil, err
	}

	if err := c.store.SetJSON(ctx, key, skills, c.ttl); err != nil {
		c.logger.Warn("skill cache write failed", zap.Error(err))
	}
	return skills, nil
}

func (c *SkillCache) Flush(ctx context.Context) error {
	return c.store.Flush(ctx)
}

func skillCacheKey(jdText string) string {
	sum := sha256.Sum256([]byte(jdText))
	return fmt.Sprintf("skills:%s", hex.EncodeToString(sum[:]))
}
