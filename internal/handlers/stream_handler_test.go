package handlers

import (
	"testing"

	"hiresense/evaluation-engine/internal/models"
)

func TestShouldForward(t *testing.T) {
	tests := []struct {
		name        string
		seq         int
		lastSeq     int
		wantForward bool
		wantNext    int
	}{
		{"new event advances", 5, 4, true, 5},
		{"replayed duplicate dropped", 4, 4, false, 4},
		{"stale event dropped", 2, 4, false, 4},
		{"unsequenced event always forwarded", 0, 4, true, 4},
		{"first live event on empty history", 1, 0, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forward, next := shouldForward(models.AgentEvent{Seq: tt.seq}, tt.lastSeq)
			if forward != tt.wantForward {
				t.Errorf("forward = %v, want %v", forward, tt.wantForward)
			}
			if next != tt.wantNext {
				t.Errorf("nextSeq = %d, want %d", next, tt.wantNext)
			}
		})
	}
}

func TestIsTerminalEvent(t *testing.T) {
	tests := []struct {
		event models.AgentEvent
		want  bool
	}{
		{models.AgentEvent{Type: models.EventTypeError, Step: models.StepDebate}, true},
		{models.AgentEvent{Type: models.EventTypeCancelled, Step: models.StepEvaluation}, true},
		{models.AgentEvent{Type: models.EventTypeAgentMessage, Step: models.StepCompleted}, true},
		{models.AgentEvent{Type: models.EventTypeAgentMessage, Step: models.StepDebate}, false},
	}

	for _, tt := range tests {
		if got := isTerminalEvent(tt.event); got != tt.want {
			t.Errorf("isTerminalEvent(%+v) = %v, want %v", tt.event, got, tt.want)
		}
	}
}
