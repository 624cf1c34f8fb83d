package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"resumatch/resume-matcher/internal/models"
)

// exportSearchLimit caps how many vector-search hits narrow the export pool.
const exportSearchLimit = 20

var exportHeader = []string{
	"Candidate Name",
	"Email",
	"Phone",
	"Category",
	"Match Percentage",
	"Rationale",
	"Matched Skills",
	"Missing Skills",
}

// ExportService renders the ranked candidate list for one job as CSV. When
// the vector index is reachable the pool is narrowed to the most similar
// resumes first; otherwise every stored resume is ranked.
type ExportService struct {
	ranker *RankingAggregator
	cache  *AnalysisCache
	index  VectorIndex
	logger *zap.Logger
}

func NewExportService(ranker *RankingAggregator, cache *AnalysisCache, index VectorIndex, logger *zap.Logger) *ExportService {
	return &ExportService{
		ranker: ranker,
		cache:  cache,
		index:  index,
		logger: logger,
	}
}

// ExportCSV writes the ranked candidates to CSV. ratingFilter keeps only rows
// with the given match rating when non-empty.
func (e *ExportService) ExportCSV(ctx context.Context, jd *models.JobDescription, resumes []models.Resume, ratingFilter string) ([]byte, error) {
	pool := e.narrowPool(ctx, jd, resumes)
	ranked := e.ranker.RankAll(jd, pool)

	byID := make(map[uuid.UUID]*models.Resume, len(pool))
	for i := range pool {
		byID[pool[i].ID] = &pool[i]
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, match := range ranked {
		if ratingFilter != "" && !strings.EqualFold(string(match.MatchRating), ratingFilter) {
			continue
		}

		email, phone := "", ""
		rationale := ""
		if resume, ok := byID[match.ResumeID]; ok {
			if resume.Parsed != nil {
				email = resume.Parsed.Email
				phone = resume.Parsed.Phone
			}
			if rec, found := e.cache.Get(resume, jd.ID); found && rec.Rationale != nil {
				rationale = *rec.Rationale
			}
		}

		row := []string{
			match.CandidateName,
			email,
			phone,
			string(match.MatchRating),
			fmt.Sprintf("%.2f", match.Score),
			rationale,
			strings.Join(match.MatchedSkills, "; "),
			strings.Join(match.MissingSkills, "; "),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

// narrowPool keeps only the resumes the vector index ranks most similar to
// the job. Index failures fall back to the full pool.
func (e *ExportService) narrowPool(ctx context.Context, jd *models.JobDescription, resumes []models.Resume) []models.Resume {
	if e.index == nil || len(resumes) <= exportSearchLimit {
		return resumes
	}

	hits, err := e.index.SearchSimilar(ctx, jd.Embedding.Slice(), DocTypeResume, exportSearchLimit)
	if err != nil {
		e.logger.Warn("vector search failed, exporting full pool", zap.Error(err))
		return resumes
	}
	if len(hits) == 0 {
		return resumes
	}

	keep := make(map[string]bool, len(hits))
	for _, hit := range hits {
		keep[hit.ID] = true
	}

	narrowed := make([]models.Resume, 0, len(hits))
	for i := range resumes {
		if keep[resumes[i].ID.String()] {
			narrowed = append(narrowed, resumes[i])
		}
	}
	if len(narrowed) == 0 {
		return resumes
	}
	return narrowed
}
