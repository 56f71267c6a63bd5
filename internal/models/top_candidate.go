package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TopCandidate is a read model row projected from completed sessions whose
// decision confidence reached the promotion threshold.
type TopCandidate struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"session_id"`
	JobID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"job_id"`
	CandidateName   string         `gorm:"type:text;not null" json:"candidate_name"`
	JobTitle        string         `gorm:"type:text;not null" json:"job_title"`
	OverallScore    float64        `gorm:"type:decimal(5,2)" json:"overall_score"`
	Confidence      float64        `gorm:"type:decimal(3,2)" json:"confidence"`
	Decision        string         `gorm:"type:text;not null" json:"decision"`
	Summary         string         `gorm:"type:text" json:"summary"`
	Strengths       datatypes.JSON `gorm:"type:jsonb" json:"strengths"`
	Concerns        datatypes.JSON `gorm:"type:jsonb" json:"concerns"`
	KeyFactors      datatypes.JSON `gorm:"type:jsonb" json:"key_factors"`
	SkillMatches    datatypes.JSON `gorm:"type:jsonb" json:"skill_matches"`
	SkillGaps       datatypes.JSON `gorm:"type:jsonb" json:"skill_gaps"`
	ExperienceMatch string         `gorm:"type:text" json:"experience_match"`
	CreatedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (TopCandidate) TableName() string {
	return "top_candidates"
}
