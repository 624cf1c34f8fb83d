package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"resumatch/resume-matcher/internal/models"
)

type JobDescriptionRepository interface {
	Create(jd *models.JobDescription) error
	FindByID(id uuid.UUID) (*models.JobDescription, error)
	FindAll() ([]models.JobDescription, error)
	Count() (int64, error)
	Delete(id uuid.UUID) error
}

type jobDescriptionRepository struct {
	db *gorm.DB
}

func NewJobDescriptionRepository(db *gorm.DB) JobDescriptionRepository {
	return &jobDescriptionRepository{db: db}
}

func (r *jobDescriptionRepository) Create(jd *models.JobDescription) error {
	if err := r.db.Create(jd).Error; err != nil {
		return fmt.Errorf("failed to create job description: %w", err)
	}
	return nil
}

func (r *jobDescriptionRepository) FindByID(id uuid.UUID) (*models.JobDescription, error) {
	var jd models.JobDescription
	if err := r.db.Where("id = ?", id).First(&jd).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find job description: %w", err)
	}
	return &jd, nil
}

func (r *jobDescriptionRepository) FindAll() ([]models.JobDescription, error) {
	var jds []models.JobDescription
	if err := r.db.Order("created_at DESC").Find(&jds).Error; err != nil {
		return nil, fmt.Errorf("failed to list job descriptions: %w", err)
	}
	return jds, nil
}

func (r *jobDescriptionRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.JobDescription{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count job descriptions: %w", err)
	}
	return count, nil
}

func (r *jobDescriptionRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.JobDescription{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete job description: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
