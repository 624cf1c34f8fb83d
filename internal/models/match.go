package models

import (
	"time"

	"github.com/google/uuid"
)

// CandidateMatch is the unified shape for one ranked candidate, whether the
// score came from a stored AI analysis or the fast heuristic.
type CandidateMatch struct {
	ResumeID      uuid.UUID   `json:"resume_id"`
	CandidateName string      `json:"candidate_name"`
	Score         float64     `json:"score"`
	MatchRating   MatchRating `json:"match_rating"`
	MatchedSkills []string    `json:"matched_skills"`
	MissingSkills []string    `json:"missing_skills"`
	AnalyzedAt    *time.Time  `json:"analyzed_at,omitempty"`
	Similarity    *float64    `json:"similarity,omitempty"`
	ResumeExcerpt string      `json:"resume_excerpt,omitempty"`
}

// DetailedCandidate adds the evaluator's rationale to the base match shape.
type DetailedCandidate struct {
	CandidateMatch
	Rationale string `json:"rationale"`
}

// AnalysisProgress summarizes how much of the candidate pool has a stored AI
// analysis for one job description.
type AnalysisProgress struct {
	JDID           uuid.UUID `json:"jd_id"`
	TotalResumes   int       `json:"total_resumes"`
	Analyzed       int       `json:"analyzed"`
	Preliminary    int       `json:"preliminary"`
	AnalyzedPct    float64   `json:"analyzed_pct"`
	PreliminaryPct float64   `json:"preliminary_pct"`
}

// AnalyzeRequest is the body of POST /candidates/analyze.
type AnalyzeRequest struct {
	JDID     string `json:"jd_id"`
	ResumeID string `json:"resume_id"`
	Force    bool   `json:"force"`
}

// IngestStatus tracks progress of one background bulk-upload job.
type IngestStatus struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Total    int    `json:"total"`
}

const (
	IngestProcessing = "processing"
	IngestCompleted  = "completed"
)

// BulkUploadResponse acknowledges a bulk resume upload. Duplicates lists
// filenames skipped because their content was already ingested.
type BulkUploadResponse struct {
	JobID      string   `json:"job_id,omitempty"`
	Message    string   `json:"message"`
	Duplicates []string `json:"duplicates"`
}
