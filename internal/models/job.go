package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type JobPosting struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title              string         `gorm:"type:text;not null" json:"title"`
	Description        string         `gorm:"type:text" json:"description"`
	RequiredSkills     datatypes.JSON `gorm:"type:jsonb" json:"required_skills"`
	BonusSkills        datatypes.JSON `gorm:"type:jsonb" json:"bonus_skills"`
	MinExperienceYears int            `gorm:"not null;default:0" json:"min_experience_years"`
	Status             string         `gorm:"type:text;not null;default:'ACTIVE'" json:"status"`
	CreatedAt          time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (JobPosting) TableName() string {
	return "job_postings"
}
