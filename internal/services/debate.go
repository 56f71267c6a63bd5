package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"hiresense/evaluation-engine/internal/models"
)

const (
	proAdvocateName  = "Pro-Hire Advocate"
	antiAdvocateName = "Anti-Hire Advocate"
)

// DebateCoordinator runs the adversarial rounds between the advocate
// roles. A failed turn removes its whole round from the transcript without
// failing the session; only a fully failed debate is fatal.
type DebateCoordinator interface {
	Run(ctx context.Context, sessionID uuid.UUID, analysis *models.IntersectionAnalysis) (turns []models.DebateTurn, partial bool, err error)
}

type debateCoordinator struct {
	reasoner ReasoningService
	bus      EventBus
	prompts  *PromptBuilder
	rounds   int
}

func NewDebateCoordinator(reasoner ReasoningService, bus EventBus, rounds int) DebateCoordinator {
	if rounds < 1 {
		rounds = 1
	}
	return &debateCoordinator{
		reasoner: reasoner,
		bus:      bus,
		prompts:  NewPromptBuilder(),
		rounds:   rounds,
	}
}

type advocatePayload struct {
	Argument   string   `json:"argument"`
	Confidence float64  `json:"confidence"`
	KeyPoints  []string `json:"key_points"`
}

// Run implements DebateCoordinator.
func (d *debateCoordinator) Run(ctx context.Context, sessionID uuid.UUID, analysis *models.IntersectionAnalysis) ([]models.DebateTurn, bool, error) {
	var turns []models.DebateTurn
	failedRounds := 0

	for round := 1; round <= d.rounds; round++ {
		proTurn, err := d.takeTurn(ctx, models.PositionPro, len(turns)+1, analysis, turns)
		if err != nil {
			log.Printf("⚠️  Debate round dropped (pro turn failed): %v\n", err)
			failedRounds++
			continue
		}

		antiTurn, err := d.takeTurn(ctx, models.PositionAnti, len(turns)+2, analysis, append(turns, *proTurn))
		if err != nil {
			// The pro half of a broken round is discarded with it
			log.Printf("⚠️  Debate round dropped (anti turn failed): %v\n", err)
			failedRounds++
			continue
		}

		turns = append(turns, *proTurn, *antiTurn)
		d.publishTurn(sessionID, proTurn)
		d.publishTurn(sessionID, antiTurn)
	}

	if len(turns) == 0 {
		return nil, false, fmt.Errorf("%w: all %d rounds failed", ErrDebate, d.rounds)
	}

	return turns, failedRounds > 0, nil
}

func (d *debateCoordinator) takeTurn(
	ctx context.Context,
	position string,
	turnIndex int,
	analysis *models.IntersectionAnalysis,
	transcript []models.DebateTurn,
) (*models.DebateTurn, error) {
	round := ClientRound(turnIndex, position)
	prompt := d.prompts.BuildAdvocatePrompt(position, round, analysis, transcript)

	var payload advocatePayload
	if err := d.reasoner.GenerateJSON(ctx, prompt, 0.3, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s turn %d: %v", ErrDebateTurn, position, turnIndex, err)
	}

	agentName := proAdvocateName
	if position == models.PositionAnti {
		agentName = antiAdvocateName
	}

	return &models.DebateTurn{
		AgentName:  agentName,
		Position:   position,
		Round:      round,
		Content:    payload.Argument,
		Confidence: payload.Confidence,
		KeyPoints:  payload.KeyPoints,
		Timestamp:  float64(time.Now().UnixNano()) / 1e9,
	}, nil
}

func (d *debateCoordinator) publishTurn(sessionID uuid.UUID, turn *models.DebateTurn) {
	d.bus.Publish(sessionID, models.AgentEvent{
		Type:      models.EventTypeAgentMessage,
		AgentName: turn.AgentName,
		Message:   turn.Content,
		Step:      models.StepDebate,
		Position:  turn.Position,
	})
}

// ClientRound converts a 1-based turn index into the round number exposed
// to observers: pro turns use the ceiling of index/2, anti turns the
// floor. Existing clients key off this exact numbering; keep it.
func ClientRound(turnIndex int, position string) int {
	if position == models.PositionPro {
		return (turnIndex + 1) / 2
	}
	return turnIndex / 2
}
