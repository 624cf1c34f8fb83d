package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resumatch/resume-matcher/internal/models"
)

type CandidateStatusRepository interface {
	BulkUpsert(jdID uuid.UUID, resumeIDs []uuid.UUID, status string, note *string) error
	FindByJD(jdID uuid.UUID) ([]models.CandidateStatus, error)
}

type candidateStatusRepository struct {
	db *gorm.DB
}

func NewCandidateStatusRepository(db *gorm.DB) CandidateStatusRepository {
	return &candidateStatusRepository{db: db}
}

func (r *candidateStatusRepository) BulkUpsert(jdID uuid.UUID, resumeIDs []uuid.UUID, status string, note *string) error {
	now := time.Now()
	records := make([]models.CandidateStatus, 0, len(resumeIDs))
	for _, resumeID := range resumeIDs {
		records = append(records, models.CandidateStatus{
			JDID:      jdID,
			ResumeID:  resumeID,
			Status:    status,
			Note:      note,
			UpdatedAt: now,
		})
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "jd_id"}, {Name: "resume_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "note", "updated_at"}),
	}).Create(&records).Error

	if err != nil {
		return fmt.Errorf("failed to upsert candidate statuses: %w", err)
	}
	return nil
}

func (r *candidateStatusRepository) FindByJD(jdID uuid.UUID) ([]models.CandidateStatus, error) {
	var statuses []models.CandidateStatus
	err := r.db.
		Where("jd_id = ?", jdID).
		Order("updated_at DESC").
		Find(&statuses).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list candidate statuses: %w", err)
	}
	return statuses, nil
}
