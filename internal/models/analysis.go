package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

type MatchRating string

const (
	RatingStrong      MatchRating = "Strong"
	RatingGood        MatchRating = "Good"
	RatingWeak        MatchRating = "Weak"
	RatingPreliminary MatchRating = "Preliminary"
)

// RatingForScore maps an AI-path total score to its rating band. Boundary
// values fall to the lower band: exactly 70 is Good, exactly 35 is Weak.
func RatingForScore(total float64) MatchRating {
	switch {
	case total > 70:
		return RatingStrong
	case total > 35:
		return RatingGood
	default:
		return RatingWeak
	}
}

// AnalysisRecord is one stored evaluation of a resume against a single job
// description. A nil AnalyzedAt means the record came from the heuristic path
// and has never been through the AI evaluator.
type AnalysisRecord struct {
	Score         float64     `json:"score"`
	MatchRating   MatchRating `json:"match_rating"`
	MatchedSkills []string    `json:"matched_skills"`
	MissingSkills []string    `json:"missing_skills"`
	Rationale     *string     `json:"rationale,omitempty"`
	Similarity    *float64    `json:"similarity,omitempty"`
	AnalyzedAt    *time.Time  `json:"analyzed_at,omitempty"`
}

// JobKeyPrefix namespaces per-job entries inside a resume's analysis map.
const JobKeyPrefix = "jd_"

func JobKey(jdID uuid.UUID) string {
	return JobKeyPrefix + jdID.String()
}

// AnalysisMap stores analyses per job description, keyed by JobKey. Earlier
// versions of the service stored a single unkeyed analysis object in the same
// column; those legacy blobs are dropped during unmarshal so they get rebuilt
// on the next evaluation instead of being misread.
type AnalysisMap map[string]AnalysisRecord

func (m *AnalysisMap) UnmarshalJSON(data []byte) error {
	*m = AnalysisMap{}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// Legacy non-object blob. Treat as empty rather than failing the load.
		return nil
	}

	for key, val := range raw {
		if !strings.HasPrefix(key, JobKeyPrefix) {
			continue
		}
		var rec AnalysisRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			continue
		}
		(*m)[key] = rec
	}
	return nil
}
