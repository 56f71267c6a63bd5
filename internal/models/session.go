package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SessionState string

const (
	StateInitializing SessionState = "INITIALIZING"
	StateParsing      SessionState = "PARSING"
	StateEvaluating   SessionState = "EVALUATING"
	StateDebating     SessionState = "DEBATING"
	StateDeciding     SessionState = "DECIDING"
	StateCompleted    SessionState = "COMPLETED"
	StateFailed       SessionState = "FAILED"
	StateCancelled    SessionState = "CANCELLED"
)

// Terminal reports whether no further stage may run for this state.
func (s SessionState) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

type EvaluationSession struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"job_id"`
	CandidateName string         `gorm:"type:text;not null;index" json:"candidate_name"`
	State         SessionState   `gorm:"not null;default:'INITIALIZING'" json:"state"`
	FailureReason *string        `gorm:"type:text" json:"failure_reason,omitempty"`
	PartialDebate bool           `gorm:"not null;default:false" json:"partial_debate"`
	CancelAsked   bool           `gorm:"not null;default:false" json:"-"`
	ResumeText    string         `gorm:"type:text" json:"-"`
	Profile       datatypes.JSON `gorm:"type:jsonb" json:"-"`
	Intersection  datatypes.JSON `gorm:"type:jsonb" json:"-"`
	Decision      datatypes.JSON `gorm:"type:jsonb" json:"-"`
	Transcript    datatypes.JSON `gorm:"type:jsonb" json:"-"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	Job JobPosting `gorm:"foreignKey:JobID" json:"-"`
}

func (EvaluationSession) TableName() string {
	return "evaluation_sessions"
}
