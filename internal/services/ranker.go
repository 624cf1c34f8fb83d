package services

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"resumatch/resume-matcher/internal/models"
)

const (
	// preliminaryUpgradeLimit caps how many of the best heuristic candidates
	// the preliminary pass promotes to a full AI analysis.
	preliminaryUpgradeLimit = 5
	// preliminaryMinSimilarity gates those promotions.
	preliminaryMinSimilarity = 0.10

	lowSimilarityRationale = "Heuristic only (low similarity). Use force to run full AI analysis."
	awaitingAIRationale    = "Heuristic only (awaiting full analysis)."
)

// RankingAggregator is the top-level entry point of the matching engine. It
// ranks a candidate set against one job, reusing stored analyses where they
// exist and the heuristic scorer everywhere else, and runs the batch
// full-analysis fan-out under bounded concurrency.
type RankingAggregator struct {
	heuristic     *HeuristicScorer
	cache         *AnalysisCache
	orchestrator  *AnalysisOrchestrator
	concurrency   int
	skipThreshold float64
	logger        *zap.Logger
}

func NewRankingAggregator(
	heuristic *HeuristicScorer,
	cache *AnalysisCache,
	orchestrator *AnalysisOrchestrator,
	concurrency int,
	skipThreshold float64,
	logger *zap.Logger,
) *RankingAggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &RankingAggregator{
		heuristic:     heuristic,
		cache:         cache,
		orchestrator:  orchestrator,
		concurrency:   concurrency,
		skipThreshold: skipThreshold,
		logger:        logger,
	}
}

// RankAll produces the ranked candidate list without ever touching the
// external evaluator: stored analyses are projected as-is, everything else
// gets a heuristic preliminary score.
func (r *RankingAggregator) RankAll(jd *models.JobDescription, resumes []models.Resume) []models.CandidateMatch {
	results := make([]models.CandidateMatch, 0, len(resumes))
	for i := range resumes {
		resume := &resumes[i]
		if rec, ok := r.cache.Get(resume, jd.ID); ok {
			results = append(results, r.matchFromRecord(resume, rec))
			continue
		}
		results = append(results, r.matchFromHeuristic(resume, r.heuristic.Score(jd, resume)))
	}

	sortByScore(results, func(m models.CandidateMatch) float64 { return m.Score })
	return results
}

// FullAnalysis runs the batch analysis: each candidate either reuses its
// stored record, is admission-filtered to a heuristic result when its vector
// similarity is below the skip threshold, or goes through the orchestrator.
// Units run concurrently, bounded by the configured evaluator admission
// limit, and no failure of one unit aborts the batch.
func (r *RankingAggregator) FullAnalysis(ctx context.Context, jd *models.JobDescription, resumes []models.Resume, force bool) []models.DetailedCandidate {
	results := make([]models.DetailedCandidate, len(resumes))

	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)

	for i := range resumes {
		i := i
		resume := &resumes[i]
		g.Go(func() error {
			results[i] = r.analyzeOne(ctx, jd, resume, force)
			return nil
		})
	}
	// Units never return errors; Wait only synchronizes.
	_ = g.Wait()

	sortByScore(results, func(d models.DetailedCandidate) float64 { return d.Score })
	return results
}

func (r *RankingAggregator) analyzeOne(ctx context.Context, jd *models.JobDescription, resume *models.Resume, force bool) models.DetailedCandidate {
	sim := CosineSimilarity(resume.Embedding.Slice(), jd.Embedding.Slice())
	_, hasPrior := r.cache.Get(resume, jd.ID)

	if ctx.Err() != nil && !hasPrior {
		return r.heuristicDetail(jd, resume, sim, awaitingAIRationale)
	}

	if sim < r.skipThreshold && !force && !hasPrior {
		r.logger.Debug("similarity below threshold, skipping evaluator",
			zap.String("resume_id", resume.ID.String()),
			zap.Float64("similarity", sim),
		)
		return r.heuristicDetail(jd, resume, sim, lowSimilarityRationale)
	}

	rec := r.orchestrator.EnsureAnalysis(ctx, resume, jd, AnalyzeOptions{Force: force})
	return r.detailFromRecord(resume, rec)
}

// PreliminaryPass rescoring: candidates with no stored analysis get a fresh
// heuristic score, and the strongest few are promoted to a full AI analysis
// when their vector similarity justifies the spend.
func (r *RankingAggregator) PreliminaryPass(ctx context.Context, jd *models.JobDescription, resumes []models.Resume) []models.DetailedCandidate {
	type scored struct {
		resume *models.Resume
		base   HeuristicResult
	}

	var targets []scored
	for i := range resumes {
		resume := &resumes[i]
		if _, ok := r.cache.Get(resume, jd.ID); ok {
			continue
		}
		targets = append(targets, scored{resume: resume, base: r.heuristic.Score(jd, resume)})
	}
	if len(targets) == 0 {
		return []models.DetailedCandidate{}
	}

	sort.SliceStable(targets, func(a, b int) bool {
		return targets[a].base.Score > targets[b].base.Score
	})

	upgradeable := make(map[string]bool, preliminaryUpgradeLimit)
	for i := 0; i < len(targets) && i < preliminaryUpgradeLimit; i++ {
		upgradeable[targets[i].resume.ID.String()] = true
	}

	results := make([]models.DetailedCandidate, 0, len(targets))
	for _, t := range targets {
		sim := CosineSimilarity(t.resume.Embedding.Slice(), jd.Embedding.Slice())
		if upgradeable[t.resume.ID.String()] && sim >= preliminaryMinSimilarity {
			rec := r.orchestrator.EnsureAnalysis(ctx, t.resume, jd, AnalyzeOptions{})
			results = append(results, r.detailFromRecord(t.resume, rec))
			continue
		}

		detail := models.DetailedCandidate{
			CandidateMatch: r.matchFromHeuristic(t.resume, t.base),
			Rationale:      awaitingAIRationale,
		}
		vectorSim := round4(sim)
		detail.Similarity = &vectorSim
		results = append(results, detail)
	}

	sortByScore(results, func(d models.DetailedCandidate) float64 { return d.Score })
	return results
}

// Progress summarizes stored-analysis coverage for one job.
func (r *RankingAggregator) Progress(jd *models.JobDescription, resumes []models.Resume) models.AnalysisProgress {
	analyzed := 0
	for i := range resumes {
		if _, ok := r.cache.Get(&resumes[i], jd.ID); ok {
			analyzed++
		}
	}

	total := len(resumes)
	divisor := total
	if divisor == 0 {
		divisor = 1
	}

	preliminary := total - analyzed
	return models.AnalysisProgress{
		JDID:           jd.ID,
		TotalResumes:   total,
		Analyzed:       analyzed,
		Preliminary:    preliminary,
		AnalyzedPct:    round2(float64(analyzed) * 100 / float64(divisor)),
		PreliminaryPct: round2(float64(preliminary) * 100 / float64(divisor)),
	}
}

func (r *RankingAggregator) matchFromRecord(resume *models.Resume, rec models.AnalysisRecord) models.CandidateMatch {
	return models.CandidateMatch{
		ResumeID:      resume.ID,
		CandidateName: resume.CandidateName,
		Score:         rec.Score,
		MatchRating:   rec.MatchRating,
		MatchedSkills: rec.MatchedSkills,
		MissingSkills: rec.MissingSkills,
		AnalyzedAt:    rec.AnalyzedAt,
		Similarity:    rec.Similarity,
		ResumeExcerpt: Excerpt(resume.Text, excerptLength),
	}
}

func (r *RankingAggregator) matchFromHeuristic(resume *models.Resume, h HeuristicResult) models.CandidateMatch {
	matched := make([]string, 0, len(h.MatchedRequired)+len(h.MatchedNice))
	matched = append(matched, h.MatchedRequired...)
	matched = append(matched, h.MatchedNice...)

	similarity := round4(h.Similarity)
	return models.CandidateMatch{
		ResumeID:      resume.ID,
		CandidateName: resume.CandidateName,
		Score:         h.Score,
		MatchRating:   models.RatingPreliminary,
		MatchedSkills: matched,
		MissingSkills: h.MissingRequired,
		Similarity:    &similarity,
		ResumeExcerpt: h.ResumeExcerpt,
	}
}

func (r *RankingAggregator) heuristicDetail(jd *models.JobDescription, resume *models.Resume, vectorSim float64, rationale string) models.DetailedCandidate {
	detail := models.DetailedCandidate{
		CandidateMatch: r.matchFromHeuristic(resume, r.heuristic.Score(jd, resume)),
		Rationale:      rationale,
	}
	sim := round4(vectorSim)
	detail.Similarity = &sim
	return detail
}

func (r *RankingAggregator) detailFromRecord(resume *models.Resume, rec models.AnalysisRecord) models.DetailedCandidate {
	rationale := noRationale
	if rec.Rationale != nil {
		rationale = *rec.Rationale
	}
	return models.DetailedCandidate{
		CandidateMatch: r.matchFromRecord(resume, rec),
		Rationale:      rationale,
	}
}

// sortByScore sorts descending by score, keeping input order for ties.
func sortByScore[T any](items []T, score func(T) float64) {
	sort.SliceStable(items, func(a, b int) bool {
		return score(items[a]) > score(items[b])
	})
}
