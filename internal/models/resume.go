package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// ParsedResume is the structured output of the resume parser. Any field may be
// empty when the parser could not extract it.
type ParsedResume struct {
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Phone      string            `json:"phone"`
	Skills     []string          `json:"skills"`
	Experience []ExperienceEntry `json:"experience"`
}

type ExperienceEntry struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Duration string `json:"duration"`
}

type Resume struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CandidateName    string          `gorm:"type:text;index" json:"candidate_name"`
	Text             string          `gorm:"type:text" json:"-"`
	Parsed           *ParsedResume   `gorm:"type:jsonb;serializer:json" json:"parsed,omitempty"`
	Embedding        pgvector.Vector `gorm:"type:vector(768)" json:"-"`
	ContentHash      string          `gorm:"type:text;uniqueIndex" json:"-"`
	AnalysisResults  AnalysisMap     `gorm:"type:jsonb;serializer:json" json:"-"`
	FilePath         string          `gorm:"type:text" json:"-"`
	OriginalFilename string          `gorm:"type:text" json:"original_filename,omitempty"`
	MimeType         string          `gorm:"type:text" json:"mime_type,omitempty"`
	CreatedAt        time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Resume) TableName() string {
	return "resumes"
}

// ParsedSkills returns the structured skill list, or nil when the resume has
// no parse result.
func (r *Resume) ParsedSkills() []string {
	if r.Parsed == nil {
		return nil
	}
	return r.Parsed.Skills
}
