package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hiresense/evaluation-engine/internal/models"
)

type EventRepository interface {
	Append(event *models.AgentEvent) error
	ListBySession(sessionID uuid.UUID) ([]models.AgentEvent, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// Append assigns the next per-session sequence number and persists the
// event. Appends for one session are serialized by the event bus, so the
// read-then-insert pair needs no row locking.
func (r *eventRepository) Append(event *models.AgentEvent) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var maxSeq int64
		err := tx.Model(&models.AgentEvent{}).
			Where("session_id = ?", event.SessionID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&maxSeq).Error
		if err != nil {
			return fmt.Errorf("failed to read event sequence: %w", err)
		}

		event.Seq = int(maxSeq) + 1
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to append event: %w", err)
		}
		return nil
	})
}

func (r *eventRepository) ListBySession(sessionID uuid.UUID) ([]models.AgentEvent, error) {
	var events []models.AgentEvent
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("seq ASC").
		Find(&events).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}
