package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hiresense/evaluation-engine/internal/models"
)

type TopCandidateRepository interface {
	Create(candidate *models.TopCandidate) error
	ExistsForJob(candidateName string, jobID uuid.UUID) (bool, error)
	List(limit int) ([]models.TopCandidate, error)
}

type topCandidateRepository struct {
	db *gorm.DB
}

func NewTopCandidateRepository(db *gorm.DB) TopCandidateRepository {
	return &topCandidateRepository{db: db}
}

func (r *topCandidateRepository) Create(candidate *models.TopCandidate) error {
	if err := r.db.Create(candidate).Error; err != nil {
		return fmt.Errorf("failed to create top candidate: %w", err)
	}
	return nil
}

func (r *topCandidateRepository) ExistsForJob(candidateName string, jobID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.TopCandidate{}).
		Where("candidate_name = ? AND job_id = ?", candidateName, jobID).
		Count(&count).Error

	if err != nil {
		return false, fmt.Errorf("failed to check top candidate: %w", err)
	}
	return count > 0, nil
}

func (r *topCandidateRepository) List(limit int) ([]models.TopCandidate, error) {
	var candidates []models.TopCandidate
	err := r.db.
		Order("overall_score DESC").
		Limit(limit).
		Find(&candidates).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list top candidates: %w", err)
	}
	return candidates, nil
}
