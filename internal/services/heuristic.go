package services

import (
	"regexp"
	"strconv"

	"resumatch/resume-matcher/internal/models"
)

// Heuristic weight split. Required-skill coverage dominates; the lexical and
// experience terms break ties between candidates with the same coverage.
const (
	weightRequired   = 0.55
	weightNice       = 0.20
	weightLexical    = 0.20
	weightExperience = 0.05

	experienceYearsCap = 20.0
	excerptLength      = 600
)

var experiencePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*\+?\s*(?:years|yrs)`)

// HeuristicResult is the outcome of the offline scoring path. Similarity here
// is the lexical similarity, not an embedding distance.
type HeuristicResult struct {
	Score           float64
	MatchedRequired []string
	MissingRequired []string
	MatchedNice     []string
	Similarity      float64
	ResumeExcerpt   string
}

// HeuristicScorer produces a fast preliminary score from lexical and
// statistical signals only. It is deterministic, never calls out, and never
// fails: any degenerate input degrades the affected term to zero.
type HeuristicScorer struct {
	matcher *SkillMatcher
}

func NewHeuristicScorer(matcher *SkillMatcher) *HeuristicScorer {
	return &HeuristicScorer{matcher: matcher}
}

func (s *HeuristicScorer) Score(jd *models.JobDescription, resume *models.Resume) HeuristicResult {
	required := DedupeSkills(jd.RequiredSkills)
	nice := DedupeSkills(jd.NiceToHaveSkills)

	normalized := NormalizeText(resume.Text)

	matchedRequired, missingRequired := s.matcher.MatchSkillSet(normalized, required)
	matchedNice, _ := s.matcher.MatchSkillSet(normalized, nice)

	requiredCoverage := 0.0
	if len(required) > 0 {
		requiredCoverage = float64(len(matchedRequired)) / float64(len(required))
	}

	niceDivisor := len(nice)
	if niceDivisor < 1 {
		niceDivisor = 1
	}
	niceCoverage := float64(len(matchedNice)) / float64(niceDivisor)

	lexical := LexicalSimilarity(jd.Text, resume.Text)
	experience := experienceFactor(resume.Text)

	score := round2(100 * (weightRequired*requiredCoverage +
		weightNice*niceCoverage +
		weightLexical*lexical +
		weightExperience*experience))

	return HeuristicResult{
		Score:           score,
		MatchedRequired: matchedRequired,
		MissingRequired: missingRequired,
		MatchedNice:     matchedNice,
		Similarity:      lexical,
		ResumeExcerpt:   Excerpt(resume.Text, excerptLength),
	}
}

// experienceFactor scans the raw text for "<n> years"/"<n> yrs" mentions and
// scales the largest one against a ten-year ceiling.
func experienceFactor(text string) float64 {
	years := 0.0
	for _, match := range experiencePattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		if v > years {
			years = v
		}
	}
	if years > experienceYearsCap {
		years = experienceYearsCap
	}

	factor := years / 10
	if factor > 1 {
		factor = 1
	}
	return factor
}
