package services

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/models"
)

// AnalysisPersister writes a resume's per-job analysis map through to durable
// storage. The resume repository satisfies it.
type AnalysisPersister interface {
	UpdateAnalysisResults(id uuid.UUID, results models.AnalysisMap) error
}

// AnalysisCache stores computed analyses inside each resume's per-job map and
// writes the map through to storage. A failed write-through is a soft failure:
// it is logged and the in-memory record survives for the current request, so
// the caller still gets the fresh result and the next request recomputes.
type AnalysisCache struct {
	persister AnalysisPersister
	logger    *zap.Logger
}

func NewAnalysisCache(persister AnalysisPersister, logger *zap.Logger) *AnalysisCache {
	return &AnalysisCache{
		persister: persister,
		logger:    logger,
	}
}

// Get returns the stored analysis of resume against the given job, if any.
// Legacy-format blobs were already dropped when the map was loaded, so absence
// here means "never analyzed for this job".
func (c *AnalysisCache) Get(resume *models.Resume, jdID uuid.UUID) (models.AnalysisRecord, bool) {
	if resume.AnalysisResults == nil {
		return models.AnalysisRecord{}, false
	}
	rec, ok := resume.AnalysisResults[models.JobKey(jdID)]
	return rec, ok
}

// Put merges a record under the job's key, leaving every other job's record
// for the same resume untouched, and persists the updated map.
func (c *AnalysisCache) Put(resume *models.Resume, jdID uuid.UUID, rec models.AnalysisRecord) {
	if resume.AnalysisResults == nil {
		resume.AnalysisResults = models.AnalysisMap{}
	}
	resume.AnalysisResults[models.JobKey(jdID)] = rec

	if err := c.persister.UpdateAnalysisResults(resume.ID, resume.AnalysisResults); err != nil {
		c.logger.Warn("failed to persist analysis record",
			zap.String("resume_id", resume.ID.String()),
			zap.String("jd_id", jdID.String()),
			zap.Error(err),
		)
	}
}
