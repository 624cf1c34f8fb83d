package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"resumatch/resume-matcher/internal/models"
)

const (
	requiredScoreWeight = 90.0
	niceScoreWeight     = 10.0

	noRequiredSkillsRationale = "Job description has no required skills defined."
	skipAIRationale           = "Skipped AI (heuristic-only mode)."
	fallbackRationale         = "AI unavailable; matched skills derived from the parsed resume only."
	noRationale               = "No rationale provided."
)

// AnalyzeOptions controls a single EnsureAnalysis call. Force recomputes and
// overwrites the stored record for this job only; SkipAI substitutes an empty
// evaluator result instead of calling out.
type AnalyzeOptions struct {
	Force  bool
	SkipAI bool
}

// AnalysisOrchestrator decides, per (resume, job) pair, whether to reuse a
// cached analysis or run the external evaluator, reconciles the evaluator's
// answer against the job's ground-truth skill lists, and persists the result.
// It never fails: every external failure degrades to a locally derived record.
type AnalysisOrchestrator struct {
	evaluator Evaluator
	cache     *AnalysisCache
	logger    *zap.Logger

	// flights serializes concurrent analyses of the same (resume, job) pair so
	// the evaluator is never called twice for one pair at the same time.
	flights singleflight.Group
}

func NewAnalysisOrchestrator(evaluator Evaluator, cache *AnalysisCache, logger *zap.Logger) *AnalysisOrchestrator {
	return &AnalysisOrchestrator{
		evaluator: evaluator,
		cache:     cache,
		logger:    logger,
	}
}

// EnsureAnalysis returns the analysis of resume against jd, computing and
// persisting it when absent or forced.
func (o *AnalysisOrchestrator) EnsureAnalysis(ctx context.Context, resume *models.Resume, jd *models.JobDescription, opts AnalyzeOptions) models.AnalysisRecord {
	required := DedupeSkills(jd.RequiredSkills)
	if len(required) == 0 {
		rationale := noRequiredSkillsRationale
		return models.AnalysisRecord{
			Score:         0.0,
			MatchRating:   models.RatingWeak,
			MatchedSkills: []string{},
			MissingSkills: []string{},
			Rationale:     &rationale,
		}
	}

	key := resume.ID.String() + "|" + models.JobKey(jd.ID)
	result, _, _ := o.flights.Do(key, func() (interface{}, error) {
		if !opts.Force {
			if rec, ok := o.cache.Get(resume, jd.ID); ok {
				return rec, nil
			}
		}
		return o.analyze(ctx, resume, jd, required, opts.SkipAI), nil
	})

	return result.(models.AnalysisRecord)
}

func (o *AnalysisOrchestrator) analyze(ctx context.Context, resume *models.Resume, jd *models.JobDescription, required []string, skipAI bool) models.AnalysisRecord {
	nice := DedupeSkills(jd.NiceToHaveSkills)
	skills := JobSkills{RequiredSkills: required, NiceToHaveSkills: nice}

	var evaluation *EvaluationResult
	if skipAI {
		evaluation = &EvaluationResult{Rationale: skipAIRationale}
	} else {
		var err error
		evaluation, err = o.evaluator.Evaluate(ctx, jd.Text, skills, resume.Text)
		if err != nil {
			o.logger.Error("evaluator failed, using parsed-skill fallback",
				zap.String("resume_id", resume.ID.String()),
				zap.String("jd_id", jd.ID.String()),
				zap.Error(err),
			)
			evaluation = o.fallbackEvaluation(resume, required, nice)
		}
	}

	// Resolve claimed skills back to the exact casing of the job's lists;
	// labels the job never mentioned pass through unchanged.
	canonical := make(map[string]string, len(required)+len(nice))
	for _, s := range required {
		canonical[strings.ToLower(s)] = s
	}
	for _, s := range nice {
		low := strings.ToLower(s)
		if _, ok := canonical[low]; !ok {
			canonical[low] = s
		}
	}

	matched := make([]string, 0, len(evaluation.MatchedSkills))
	matchedLower := make(map[string]bool, len(evaluation.MatchedSkills))
	for _, skill := range evaluation.MatchedSkills {
		low := strings.ToLower(skill)
		if low == "" || matchedLower[low] {
			continue
		}
		matchedLower[low] = true
		if name, ok := canonical[low]; ok {
			matched = append(matched, name)
		} else {
			matched = append(matched, skill)
		}
	}

	// Missing required skills are recomputed locally; the evaluator's own
	// missing list is never trusted.
	matchedRequiredCount := 0
	missingRequired := make([]string, 0, len(required))
	for _, s := range required {
		if matchedLower[strings.ToLower(s)] {
			matchedRequiredCount++
		} else {
			missingRequired = append(missingRequired, s)
		}
	}

	matchedNiceCount := 0
	for _, s := range nice {
		if matchedLower[strings.ToLower(s)] {
			matchedNiceCount++
		}
	}

	requiredTotal := len(required)
	if requiredTotal < 1 {
		requiredTotal = 1
	}
	requiredScore := float64(matchedRequiredCount) / float64(requiredTotal) * requiredScoreWeight

	niceScore := 0.0
	if len(nice) > 0 {
		niceScore = float64(matchedNiceCount) / float64(len(nice)) * niceScoreWeight
	}

	total := round2(requiredScore + niceScore)

	similarity := round4(CosineSimilarity(resume.Embedding.Slice(), jd.Embedding.Slice()))

	rationale := evaluation.Rationale
	if rationale == "" {
		rationale = noRationale
	}

	now := time.Now().UTC()
	rec := models.AnalysisRecord{
		Score:         total,
		MatchRating:   models.RatingForScore(total),
		MatchedSkills: matched,
		MissingSkills: missingRequired,
		Rationale:     &rationale,
		Similarity:    &similarity,
		AnalyzedAt:    &now,
	}

	// Persistence is best-effort; the record is returned either way.
	o.cache.Put(resume, jd.ID, rec)

	return rec
}

// fallbackEvaluation derives matches from the resume's structured skill list
// alone, intersected case-insensitively with the job's skill union.
func (o *AnalysisOrchestrator) fallbackEvaluation(resume *models.Resume, required, nice []string) *EvaluationResult {
	union := make(map[string]bool, len(required)+len(nice))
	for _, s := range required {
		union[strings.ToLower(s)] = true
	}
	for _, s := range nice {
		union[strings.ToLower(s)] = true
	}

	var matched []string
	for _, s := range resume.ParsedSkills() {
		if union[strings.ToLower(s)] {
			matched = append(matched, s)
		}
	}

	return &EvaluationResult{
		MatchedSkills: matched,
		Rationale:     fallbackRationale,
	}
}
