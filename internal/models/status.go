package models

import (
	"time"

	"github.com/google/uuid"
)

// Workflow statuses a recruiter can assign to a candidate for a job.
const (
	StatusNew         = "New"
	StatusReviewed    = "Reviewed"
	StatusShortlisted = "Shortlisted"
	StatusInterview   = "Interview"
	StatusContacted   = "Contacted"
	StatusRejected    = "Rejected"
)

var validStatuses = map[string]bool{
	StatusNew:         true,
	StatusReviewed:    true,
	StatusShortlisted: true,
	StatusInterview:   true,
	StatusContacted:   true,
	StatusRejected:    true,
}

func IsValidStatus(s string) bool {
	return validStatuses[s]
}

type CandidateStatus struct {
	JDID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"jd_id"`
	ResumeID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"resume_id"`
	Status    string    `gorm:"type:text;not null;default:'New'" json:"status"`
	Note      *string   `gorm:"type:text" json:"note,omitempty"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CandidateStatus) TableName() string {
	return "candidate_statuses"
}

// BulkStatusRequest updates the workflow status of several candidates at once.
type BulkStatusRequest struct {
	JDID      string   `json:"jd_id"`
	ResumeIDs []string `json:"resume_ids"`
	Status    string   `json:"status"`
	Note      *string  `json:"note"`
}
