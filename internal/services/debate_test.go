package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"hiresense/evaluation-engine/internal/models"
)

func TestClientRound(t *testing.T) {
	tests := []struct {
		turnIndex int
		position  string
		want      int
	}{
		{1, models.PositionPro, 1},
		{2, models.PositionAnti, 1},
		{3, models.PositionPro, 2},
		{4, models.PositionAnti, 2},
		{5, models.PositionPro, 3},
		{6, models.PositionAnti, 3},
	}

	for _, tt := range tests {
		if got := ClientRound(tt.turnIndex, tt.position); got != tt.want {
			t.Errorf("ClientRound(%d, %q) = %d, want %d", tt.turnIndex, tt.position, got, tt.want)
		}
	}
}

func advocateResponse(argument string, confidence float64) string {
	return fmt.Sprintf(`{"argument": %q, "confidence": %v, "key_points": ["point"]}`, argument, confidence)
}

func newTestDebate(rounds int, generate func(prompt string, call int) (string, error)) (DebateCoordinator, *memEventRepo) {
	events := newMemEventRepo()
	bus := NewEventBus(events)
	reasoner := &fakeReasoner{generate: generate}
	return NewDebateCoordinator(reasoner, bus, rounds), events
}

func TestDebateRunAllRoundsSucceed(t *testing.T) {
	coordinator, events := newTestDebate(2, func(prompt string, call int) (string, error) {
		return advocateResponse(fmt.Sprintf("argument %d", call), 0.8), nil
	})

	sessionID := uuid.New()
	analysis := &models.IntersectionAnalysis{OverallCompatibility: 0.8}

	turns, partial, err := coordinator.Run(context.Background(), sessionID, analysis)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if partial {
		t.Error("partial = true for a fully successful debate")
	}
	if len(turns) != 4 {
		t.Fatalf("len(turns) = %d, want 4", len(turns))
	}

	wantPositions := []string{models.PositionPro, models.PositionAnti, models.PositionPro, models.PositionAnti}
	wantRounds := []int{1, 1, 2, 2}
	for i, turn := range turns {
		if turn.Position != wantPositions[i] {
			t.Errorf("turn %d position = %q, want %q", i, turn.Position, wantPositions[i])
		}
		if turn.Round != wantRounds[i] {
			t.Errorf("turn %d round = %d, want %d", i, turn.Round, wantRounds[i])
		}
	}

	if turns[0].AgentName != "Pro-Hire Advocate" || turns[1].AgentName != "Anti-Hire Advocate" {
		t.Errorf("agent names = %q, %q", turns[0].AgentName, turns[1].AgentName)
	}

	published, _ := events.ListBySession(sessionID)
	if len(published) != 4 {
		t.Fatalf("published events = %d, want 4", len(published))
	}
	for _, event := range published {
		if event.Step != models.StepDebate {
			t.Errorf("event step = %q, want %q", event.Step, models.StepDebate)
		}
	}
}

func TestDebateRunDropsWholeRoundOnTurnFailure(t *testing.T) {
	// First round's anti turn fails; the round is dropped entirely and the
	// second round renumbers over the surviving turns.
	coordinator, events := newTestDebate(2, func(prompt string, call int) (string, error) {
		if call == 1 {
			return "", fmt.Errorf("model overloaded")
		}
		return advocateResponse(fmt.Sprintf("argument %d", call), 0.7), nil
	})

	sessionID := uuid.New()
	turns, partial, err := coordinator.Run(context.Background(), sessionID, &models.IntersectionAnalysis{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !partial {
		t.Error("partial = false, want true after a dropped round")
	}
	if len(turns) != 2 {
		t.Fatalf("len(turns) = %d, want 2", len(turns))
	}

	if turns[0].Position != models.PositionPro || turns[0].Round != 1 {
		t.Errorf("surviving pro turn = %+v, want round 1", turns[0])
	}
	if turns[1].Position != models.PositionAnti || turns[1].Round != 1 {
		t.Errorf("surviving anti turn = %+v, want round 1", turns[1])
	}

	// The discarded pro half of the broken round must not be published
	published, _ := events.ListBySession(sessionID)
	if len(published) != 2 {
		t.Fatalf("published events = %d, want 2", len(published))
	}
	for _, event := range published {
		if strings.Contains(event.Message, "argument 0") {
			t.Errorf("discarded turn was published: %q", event.Message)
		}
	}
}

func TestDebateRunAllRoundsFail(t *testing.T) {
	coordinator, events := newTestDebate(2, func(prompt string, call int) (string, error) {
		return "", fmt.Errorf("model overloaded")
	})

	sessionID := uuid.New()
	turns, _, err := coordinator.Run(context.Background(), sessionID, &models.IntersectionAnalysis{})
	if !errors.Is(err, ErrDebate) {
		t.Fatalf("Run() error = %v, want ErrDebate", err)
	}
	if turns != nil {
		t.Errorf("turns = %v, want nil", turns)
	}

	published, _ := events.ListBySession(sessionID)
	if len(published) != 0 {
		t.Errorf("published events = %d, want 0", len(published))
	}
}

func TestDebateAlternatesAdvocateDirections(t *testing.T) {
	var prompts []string
	coordinator, _ := newTestDebate(1, func(prompt string, call int) (string, error) {
		prompts = append(prompts, prompt)
		return advocateResponse("argument", 0.5), nil
	})

	if _, _, err := coordinator.Run(context.Background(), uuid.New(), &models.IntersectionAnalysis{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(prompts) != 2 {
		t.Fatalf("reasoner calls = %d, want 2", len(prompts))
	}
	if !strings.Contains(prompts[0], "for hiring this candidate") {
		t.Error("first turn is not the pro advocate")
	}
	if !strings.Contains(prompts[1], "against hiring this candidate") {
		t.Error("second turn is not the anti advocate")
	}
	// The anti advocate sees the pro argument
	if !strings.Contains(prompts[1], "Debate so far") {
		t.Error("anti prompt does not include the debate transcript")
	}
}
