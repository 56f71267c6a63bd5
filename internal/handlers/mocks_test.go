package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"hiresense/evaluation-engine/internal/models"
)

type fakeManager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.EvaluationSession

	startResult  *models.EvaluationSession
	startCreated bool
	startErr     error
	cancelErr    error
	cancelled    []uuid.UUID
}

func newFakeManager() *fakeManager {
	return &fakeManager{sessions: make(map[uuid.UUID]*models.EvaluationSession)}
}

func (f *fakeManager) StartEvaluation(resumeText string, jobID uuid.UUID, candidateName string) (*models.EvaluationSession, bool, error) {
	return f.startResult, f.startCreated, f.startErr
}

func (f *fakeManager) GetSession(id uuid.UUID) (*models.EvaluationSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	return session, nil
}

func (f *fakeManager) CancelSession(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, id)
	return nil
}

func (f *fakeManager) RunSession(ctx context.Context, id uuid.UUID) error {
	return nil
}

type fakeWorker struct {
	mu       sync.Mutex
	enqueued []uuid.UUID
}

func (f *fakeWorker) Start(ctx context.Context) {}
func (f *fakeWorker) Stop()                     {}

func (f *fakeWorker) EnqueueSession(sessionID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, sessionID)
}

type fakeBus struct {
	history map[uuid.UUID][]models.AgentEvent
}

func newFakeBus() *fakeBus {
	return &fakeBus{history: make(map[uuid.UUID][]models.AgentEvent)}
}

func (f *fakeBus) Publish(sessionID uuid.UUID, event models.AgentEvent) {
	event.SessionID = sessionID
	event.Seq = len(f.history[sessionID]) + 1
	f.history[sessionID] = append(f.history[sessionID], event)
}

func (f *fakeBus) Subscribe(sessionID uuid.UUID) (<-chan models.AgentEvent, func()) {
	ch := make(chan models.AgentEvent)
	return ch, func() {}
}

func (f *fakeBus) History(sessionID uuid.UUID) ([]models.AgentEvent, error) {
	return f.history[sessionID], nil
}

type fakePDFParser struct {
	text string
	err  error
}

func (f *fakePDFParser) ExtractText(data []byte) (string, error) {
	return f.text, f.err
}

func (f *fakePDFParser) ExtractTextFromFile(path string) (string, error) {
	return f.text, f.err
}

func mustJSON(value interface{}) datatypes.JSON {
	raw, err := json.Marshal(value)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(raw)
}

func completedSession(id, jobID uuid.UUID) *models.EvaluationSession {
	return &models.EvaluationSession{
		ID:            id,
		JobID:         jobID,
		CandidateName: "Jordan Diaz",
		State:         models.StateCompleted,
		Profile: mustJSON(models.CandidateProfile{
			CandidateName:   "Jordan Diaz",
			Skills:          []string{"React", "TypeScript"},
			ExperienceYears: 6,
			ExperienceLevel: models.LevelSenior,
			Analysis:        "Strong frontend engineer",
		}),
		Intersection: mustJSON(models.IntersectionAnalysis{
			Analysis:             "Covers the required stack",
			OverallCompatibility: 0.8,
			SkillMatches:         []string{"React", "TypeScript"},
			SkillGaps:            []string{"Node.js"},
			ExperienceMatch:      models.ExperienceExceeds,
		}),
		Decision: mustJSON(models.Decision{
			Decision:   models.DecisionHire,
			Confidence: 0.9,
			Reasoning:  models.Reasoning{Summary: "Clear hire"},
			KeyFactors: []string{"Skill coverage"},
		}),
		Transcript: mustJSON([]models.TranscriptEntry{
			{AgentName: "Intersection Evaluator", Position: models.PositionEvaluation, Content: "Covers the required stack"},
			{AgentName: "Pro-Hire Advocate", Position: models.PositionPro, Content: "Hire"},
			{AgentName: "Anti-Hire Advocate", Position: models.PositionAnti, Content: "Risky"},
			{AgentName: "Decision Maker", Position: models.PositionDecision, Content: "Clear hire"},
		}),
	}
}
