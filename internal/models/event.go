package models

import (
	"github.com/google/uuid"
)

// Event steps follow the session state machine order.
const (
	StepInitialization = "initialization"
	StepParsing        = "parsing"
	StepEvaluation     = "evaluation"
	StepDebate         = "debate"
	StepDecision       = "decision"
	StepCompleted      = "completed"
)

const (
	EventTypeAgentMessage = "agent_message"
	EventTypeError        = "error"
	EventTypeCancelled    = "cancelled"
)

// AgentEvent is one progress notification. The JSON shape is the wire
// contract consumed by the live stream and the polling endpoint; the
// unexported-looking fields with json:"-" are storage bookkeeping only.
type AgentEvent struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index:idx_agent_events_session_seq,priority:1" json:"-"`
	Seq       int       `gorm:"not null;index:idx_agent_events_session_seq,priority:2" json:"-"`
	Type      string    `gorm:"type:text;not null" json:"type"`
	AgentName string    `gorm:"type:text;not null" json:"agent_name"`
	Message   string    `gorm:"type:text" json:"message"`
	Step      string    `gorm:"type:text;not null" json:"step"`
	Position  string    `gorm:"type:text" json:"position"`
	Timestamp float64   `gorm:"type:double precision;not null" json:"timestamp"`
}

func (AgentEvent) TableName() string {
	return "agent_events"
}
