package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hiresense/evaluation-engine/internal/models"
)

type SessionRepository interface {
	Create(session *models.EvaluationSession) error
	FindByID(id uuid.UUID) (*models.EvaluationSession, error)
	FindActive(candidateName string, jobID uuid.UUID) (*models.EvaluationSession, error)
	FindPending(limit int) ([]models.EvaluationSession, error)
	Transition(id uuid.UUID, from, to models.SessionState) error
	SaveProfile(id uuid.UUID, profile *models.CandidateProfile) error
	SaveIntersection(id uuid.UUID, analysis *models.IntersectionAnalysis) error
	SaveDecision(id uuid.UUID, decision *models.Decision) error
	SaveTranscript(id uuid.UUID, transcript []models.TranscriptEntry) error
	MarkPartialDebate(id uuid.UUID) error
	MarkFailed(id uuid.UUID, reason string) error
	MarkCancelled(id uuid.UUID) error
	RequestCancel(id uuid.UUID) error
	CancelRequested(id uuid.UUID) (bool, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *models.EvaluationSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *sessionRepository) FindByID(id uuid.UUID) (*models.EvaluationSession, error) {
	var session models.EvaluationSession
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("session not found")
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &session, nil
}

// FindActive returns the non-terminal session for a (candidate, job) pair,
// or nil when none is in flight.
func (r *sessionRepository) FindActive(candidateName string, jobID uuid.UUID) (*models.EvaluationSession, error) {
	var session models.EvaluationSession
	err := r.db.
		Where("candidate_name = ? AND job_id = ?", candidateName, jobID).
		Where("state NOT IN ?", []models.SessionState{
			models.StateCompleted, models.StateFailed, models.StateCancelled,
		}).
		Order("created_at ASC").
		First(&session).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) FindPending(limit int) ([]models.EvaluationSession, error) {
	var sessions []models.EvaluationSession
	err := r.db.
		Where("state = ?", models.StateInitializing).
		Order("created_at ASC").
		Limit(limit).
		Find(&sessions).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending sessions: %w", err)
	}
	return sessions, nil
}

// Transition moves a session from one state to the next. The WHERE guard on
// the current state keeps transitions monotonic: a terminal or already
// advanced session is never rewound.
func (r *sessionRepository) Transition(id uuid.UUID, from, to models.SessionState) error {
	result := r.db.Model(&models.EvaluationSession{}).
		Where("id = ? AND state = ?", id, from).
		Updates(map[string]interface{}{
			"state":      to,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("invalid transition %s -> %s for session %s", from, to, id)
	}
	return nil
}

func (r *sessionRepository) SaveProfile(id uuid.UUID, profile *models.CandidateProfile) error {
	return r.saveArtifact(id, "profile", profile)
}

func (r *sessionRepository) SaveIntersection(id uuid.UUID, analysis *models.IntersectionAnalysis) error {
	return r.saveArtifact(id, "intersection", analysis)
}

func (r *sessionRepository) SaveDecision(id uuid.UUID, decision *models.Decision) error {
	return r.saveArtifact(id, "decision", decision)
}

func (r *sessionRepository) SaveTranscript(id uuid.UUID, transcript []models.TranscriptEntry) error {
	return r.saveArtifact(id, "transcript", transcript)
}

func (r *sessionRepository) saveArtifact(id uuid.UUID, column string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", column, err)
	}

	result := r.db.Model(&models.EvaluationSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			column:       raw,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to save %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("session not found")
	}
	return nil
}

func (r *sessionRepository) MarkPartialDebate(id uuid.UUID) error {
	result := r.db.Model(&models.EvaluationSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"partial_debate": true,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark partial debate: %w", result.Error)
	}
	return nil
}

func (r *sessionRepository) MarkFailed(id uuid.UUID, reason string) error {
	result := r.db.Model(&models.EvaluationSession{}).
		Where("id = ?", id).
		Where("state NOT IN ?", []models.SessionState{
			models.StateCompleted, models.StateFailed, models.StateCancelled,
		}).
		Updates(map[string]interface{}{
			"state":          models.StateFailed,
			"failure_reason": reason,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark session failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("session not found or already terminal")
	}
	return nil
}

func (r *sessionRepository) MarkCancelled(id uuid.UUID) error {
	result := r.db.Model(&models.EvaluationSession{}).
		Where("id = ?", id).
		Where("state NOT IN ?", []models.SessionState{
			models.StateCompleted, models.StateFailed, models.StateCancelled,
		}).
		Updates(map[string]interface{}{
			"state":      models.StateCancelled,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark session cancelled: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("session not found or already terminal")
	}
	return nil
}

func (r *sessionRepository) RequestCancel(id uuid.UUID) error {
	result := r.db.Model(&models.EvaluationSession{}).
		Where("id = ?", id).
		Where("state NOT IN ?", []models.SessionState{
			models.StateCompleted, models.StateFailed, models.StateCancelled,
		}).
		Updates(map[string]interface{}{
			"cancel_asked": true,
			"updated_at":   time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to request cancellation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("session not found or already terminal")
	}
	return nil
}

func (r *sessionRepository) CancelRequested(id uuid.UUID) (bool, error) {
	var session models.EvaluationSession
	if err := r.db.Select("cancel_asked").Where("id = ?", id).First(&session).Error; err != nil {
		return false, fmt.Errorf("failed to read cancel flag: %w", err)
	}
	return session.CancelAsked, nil
}
