package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type JobDescription struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title            string          `gorm:"type:text;not null;index" json:"title"`
	Text             string          `gorm:"type:text" json:"text,omitempty"`
	Embedding        pgvector.Vector `gorm:"type:vector(768)" json:"-"`
	RequiredSkills   []string        `gorm:"type:jsonb;serializer:json" json:"required_skills"`
	NiceToHaveSkills []string        `gorm:"type:jsonb;serializer:json" json:"nice_to_have_skills"`
	CreatedAt        time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (JobDescription) TableName() string {
	return "job_descriptions"
}
