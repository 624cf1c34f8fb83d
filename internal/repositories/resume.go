package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"resumatch/resume-matcher/internal/models"
)

type ResumeRepository interface {
	Create(resume *models.Resume) error
	FindByID(id uuid.UUID) (*models.Resume, error)
	FindAll() ([]models.Resume, error)
	Count() (int64, error)
	ExistingContentHashes() (map[string]bool, error)
	UpdateAnalysisResults(id uuid.UUID, results models.AnalysisMap) error
	DeleteAll() error
}

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

func (r *resumeRepository) Create(resume *models.Resume) error {
	if err := r.db.Create(resume).Error; err != nil {
		return fmt.Errorf("failed to create resume: %w", err)
	}
	return nil
}

func (r *resumeRepository) FindByID(id uuid.UUID) (*models.Resume, error) {
	var resume models.Resume
	if err := r.db.Where("id = ?", id).First(&resume).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find resume: %w", err)
	}
	return &resume, nil
}

func (r *resumeRepository) FindAll() ([]models.Resume, error) {
	var resumes []models.Resume
	if err := r.db.Order("created_at ASC").Find(&resumes).Error; err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	return resumes, nil
}

func (r *resumeRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Resume{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count resumes: %w", err)
	}
	return count, nil
}

func (r *resumeRepository) ExistingContentHashes() (map[string]bool, error) {
	var hashes []string
	if err := r.db.Model(&models.Resume{}).Pluck("content_hash", &hashes).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch content hashes: %w", err)
	}

	set := make(map[string]bool, len(hashes))
	for _, h := range hashes {
		set[h] = true
	}
	return set, nil
}

func (r *resumeRepository) UpdateAnalysisResults(id uuid.UUID, results models.AnalysisMap) error {
	result := r.db.Model(&models.Resume{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"analysis_results": results,
			"updated_at":       time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update analysis results: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *resumeRepository) DeleteAll() error {
	if err := r.db.Where("1 = 1").Delete(&models.Resume{}).Error; err != nil {
		return fmt.Errorf("failed to delete resumes: %w", err)
	}
	return nil
}
