package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"hiresense/evaluation-engine/internal/models"
	"hiresense/evaluation-engine/internal/repositories"
)

const minResumeTextLength = 10

// SessionManager owns the session lifecycle: it accepts evaluation
// requests idempotently, sequences the pipeline stages per session, and
// enforces the wall-clock budget and cancellation at stage boundaries.
type SessionManager interface {
	StartEvaluation(resumeText string, jobID uuid.UUID, candidateName string) (session *models.EvaluationSession, created bool, err error)
	GetSession(id uuid.UUID) (*models.EvaluationSession, error)
	CancelSession(id uuid.UUID) error
	RunSession(ctx context.Context, id uuid.UUID) error
}

type sessionManager struct {
	sessions      repositories.SessionRepository
	jobs          repositories.JobRepository
	topCandidates repositories.TopCandidateRepository
	bus           EventBus
	extractor     ResumeExtractor
	fit           FitEvaluator
	debate        DebateCoordinator
	decision      DecisionSynthesizer
	budget        time.Duration

	startMu sync.Mutex
	runMu   sync.Mutex
	running map[uuid.UUID]bool
}

func NewSessionManager(
	sessions repositories.SessionRepository,
	jobs repositories.JobRepository,
	topCandidates repositories.TopCandidateRepository,
	bus EventBus,
	extractor ResumeExtractor,
	fit FitEvaluator,
	debate DebateCoordinator,
	decision DecisionSynthesizer,
	budget time.Duration,
) SessionManager {
	return &sessionManager{
		sessions:      sessions,
		jobs:          jobs,
		topCandidates: topCandidates,
		bus:           bus,
		extractor:     extractor,
		fit:           fit,
		debate:        debate,
		decision:      decision,
		budget:        budget,
		running:       make(map[uuid.UUID]bool),
	}
}

// StartEvaluation implements SessionManager. A duplicate request while a
// session for the same (candidate, job) pair is in flight returns that
// session instead of starting a second one.
func (m *sessionManager) StartEvaluation(resumeText string, jobID uuid.UUID, candidateName string) (*models.EvaluationSession, bool, error) {
	resumeText = CleanText(resumeText)
	candidateName = strings.TrimSpace(candidateName)

	if len(resumeText) < minResumeTextLength {
		return nil, false, fmt.Errorf("%w: resume content is empty or too short", ErrInvalidInput)
	}
	if candidateName == "" {
		return nil, false, fmt.Errorf("%w: candidate name is required", ErrInvalidInput)
	}
	if _, err := m.jobs.FindByID(jobID); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	m.startMu.Lock()
	defer m.startMu.Unlock()

	existing, err := m.sessions.FindActive(candidateName, jobID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		log.Printf("🔁 Session %s already in flight for %s, returning it\n", existing.ID, candidateName)
		return existing, false, nil
	}

	session := &models.EvaluationSession{
		ID:            uuid.New(),
		JobID:         jobID,
		CandidateName: candidateName,
		State:         models.StateInitializing,
		ResumeText:    resumeText,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := m.sessions.Create(session); err != nil {
		return nil, false, err
	}

	m.emit(session.ID, models.EventTypeAgentMessage, "System",
		"Starting hiring evaluation process...", models.StepInitialization, "")

	return session, true, nil
}

// GetSession implements SessionManager.
func (m *sessionManager) GetSession(id uuid.UUID) (*models.EvaluationSession, error) {
	return m.sessions.FindByID(id)
}

// CancelSession implements SessionManager. The flag takes effect at the
// next stage boundary; an in-flight reasoning call is left to finish or
// time out on its own.
func (m *sessionManager) CancelSession(id uuid.UUID) error {
	return m.sessions.RequestCancel(id)
}

// RunSession implements SessionManager. It drives one session through the
// whole pipeline; concurrent invocations for the same session are no-ops.
func (m *sessionManager) RunSession(ctx context.Context, id uuid.UUID) error {
	m.runMu.Lock()
	if m.running[id] {
		m.runMu.Unlock()
		return nil
	}
	m.running[id] = true
	m.runMu.Unlock()

	defer func() {
		m.runMu.Lock()
		delete(m.running, id)
		m.runMu.Unlock()
	}()

	session, err := m.sessions.FindByID(id)
	if err != nil {
		return err
	}
	if session.State != models.StateInitializing {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, m.budget)
	defer cancel()

	job, err := m.jobs.FindByID(session.JobID)
	if err != nil {
		return m.failSession(ctx, id, models.StepInitialization, err)
	}

	// Stage 1: parse the resume
	if err := m.checkBoundary(ctx, id, models.StepInitialization); err != nil {
		return err
	}
	if err := m.sessions.Transition(id, models.StateInitializing, models.StateParsing); err != nil {
		return err
	}
	m.emit(id, models.EventTypeAgentMessage, "Resume Parser",
		fmt.Sprintf("Analyzing resume for %s...", session.CandidateName), models.StepParsing, "")

	profile, err := m.extractor.Extract(ctx, session.ResumeText, session.CandidateName)
	if err != nil {
		return m.failSession(ctx, id, models.StepParsing, err)
	}
	if err := m.sessions.SaveProfile(id, profile); err != nil {
		return m.failSession(ctx, id, models.StepParsing, err)
	}
	m.emit(id, models.EventTypeAgentMessage, "Resume Parser",
		"Resume analysis complete", models.StepParsing, "")

	// Stage 2: evaluate fit
	if err := m.checkBoundary(ctx, id, models.StepParsing); err != nil {
		return err
	}
	if err := m.sessions.Transition(id, models.StateParsing, models.StateEvaluating); err != nil {
		return err
	}
	m.emit(id, models.EventTypeAgentMessage, "Intersection Evaluator",
		fmt.Sprintf("Evaluating fit against %s...", job.Title), models.StepEvaluation, models.PositionEvaluation)

	analysis, err := m.fit.Evaluate(ctx, profile, job)
	if err != nil {
		return m.failSession(ctx, id, models.StepEvaluation, err)
	}
	if err := m.sessions.SaveIntersection(id, analysis); err != nil {
		return m.failSession(ctx, id, models.StepEvaluation, err)
	}
	m.emit(id, models.EventTypeAgentMessage, "Intersection Evaluator",
		fmt.Sprintf("Overall compatibility: %.2f", analysis.OverallCompatibility),
		models.StepEvaluation, models.PositionEvaluation)

	// Stage 3: run the debate
	if err := m.checkBoundary(ctx, id, models.StepEvaluation); err != nil {
		return err
	}
	if err := m.sessions.Transition(id, models.StateEvaluating, models.StateDebating); err != nil {
		return err
	}
	m.emit(id, models.EventTypeAgentMessage, "Hiring Coordinator",
		"Conducting debate between advocates...", models.StepDebate, "")

	turns, partial, err := m.debate.Run(ctx, id, analysis)
	if err != nil {
		return m.failSession(ctx, id, models.StepDebate, err)
	}
	debateSummary := "Debate complete"
	if partial {
		if err := m.sessions.MarkPartialDebate(id); err != nil {
			log.Printf("⚠️  Failed to mark partial debate for %s: %v\n", id, err)
		}
		debateSummary = "Debate completed with fewer rounds than configured"
	}
	m.emit(id, models.EventTypeAgentMessage, "Hiring Coordinator", debateSummary, models.StepDebate, "")

	transcript := buildTranscript(analysis, turns, nil)
	if err := m.sessions.SaveTranscript(id, transcript); err != nil {
		return m.failSession(ctx, id, models.StepDebate, err)
	}

	// Stage 4: synthesize the decision
	if err := m.checkBoundary(ctx, id, models.StepDebate); err != nil {
		return err
	}
	if err := m.sessions.Transition(id, models.StateDebating, models.StateDeciding); err != nil {
		return err
	}
	m.emit(id, models.EventTypeAgentMessage, "Decision Maker",
		"Making final hiring decision...", models.StepDecision, models.PositionDecision)

	decision, err := m.decision.Synthesize(ctx, profile, analysis, turns)
	if err != nil {
		return m.failSession(ctx, id, models.StepDecision, err)
	}
	if err := m.sessions.SaveDecision(id, decision); err != nil {
		return m.failSession(ctx, id, models.StepDecision, err)
	}

	transcript = buildTranscript(analysis, turns, decision)
	if err := m.sessions.SaveTranscript(id, transcript); err != nil {
		return m.failSession(ctx, id, models.StepDecision, err)
	}
	m.emit(id, models.EventTypeAgentMessage, "Decision Maker",
		fmt.Sprintf("Decision: %s (confidence %.2f)", decision.Decision, decision.Confidence),
		models.StepDecision, models.PositionDecision)

	// Terminal transition, then the post-commit projection
	if err := m.sessions.Transition(id, models.StateDeciding, models.StateCompleted); err != nil {
		return err
	}
	m.emit(id, models.EventTypeAgentMessage, "System",
		"Analysis completed successfully!", models.StepCompleted, "")

	m.publishTopCandidate(session, job, analysis, decision, turns)

	log.Printf("✅ Session %s completed: %s\n", id, decision.Decision)
	return nil
}

// checkBoundary applies budget and cancellation checks between stages.
func (m *sessionManager) checkBoundary(ctx context.Context, id uuid.UUID, step string) error {
	if ctx.Err() != nil {
		return m.failSession(ctx, id, step, ctx.Err())
	}

	cancelled, err := m.sessions.CancelRequested(id)
	if err != nil {
		return err
	}
	if cancelled {
		if err := m.sessions.MarkCancelled(id); err != nil {
			return err
		}
		m.emit(id, models.EventTypeCancelled, "System", "Evaluation cancelled", step, "")
		return ErrCancelled
	}
	return nil
}

func (m *sessionManager) failSession(ctx context.Context, id uuid.UUID, step string, cause error) error {
	if errors.Is(cause, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		cause = fmt.Errorf("%w: %v", ErrTimeout, cause)
	}

	if err := m.sessions.MarkFailed(id, cause.Error()); err != nil {
		log.Printf("⚠️  Failed to mark session %s failed: %v\n", id, err)
	}
	m.emit(id, models.EventTypeError, "System", cause.Error(), step, "")

	log.Printf("❌ Session %s failed at %s: %v\n", id, step, cause)
	return cause
}

func (m *sessionManager) emit(id uuid.UUID, eventType, agentName, message, step, position string) {
	m.bus.Publish(id, models.AgentEvent{
		Type:      eventType,
		AgentName: agentName,
		Message:   message,
		Step:      step,
		Position:  position,
	})
}

func buildTranscript(analysis *models.IntersectionAnalysis, turns []models.DebateTurn, decision *models.Decision) []models.TranscriptEntry {
	transcript := []models.TranscriptEntry{
		{
			AgentName: "Intersection Evaluator",
			Position:  models.PositionEvaluation,
			Content:   analysis.Analysis,
			Details: map[string]any{
				"overall_compatibility": analysis.OverallCompatibility,
				"skill_matches":         analysis.SkillMatches,
				"skill_gaps":            analysis.SkillGaps,
				"experience_match":      analysis.ExperienceMatch,
			},
		},
	}

	for _, turn := range turns {
		transcript = append(transcript, models.TranscriptEntry{
			AgentName: turn.AgentName,
			Position:  turn.Position,
			Content:   turn.Content,
			Details: map[string]any{
				"round":      turn.Round,
				"confidence": turn.Confidence,
				"key_points": turn.KeyPoints,
			},
		})
	}

	if decision != nil {
		transcript = append(transcript, models.TranscriptEntry{
			AgentName: "Decision Maker",
			Position:  models.PositionDecision,
			Content:   decision.Reasoning.Summary,
			Details: map[string]any{
				"decision":    decision.Decision,
				"confidence":  decision.Confidence,
				"key_factors": decision.KeyFactors,
			},
		})
	}

	return transcript
}

// publishTopCandidate projects a completed high-confidence session into
// the top-candidates read model. Failures here never touch the session.
func (m *sessionManager) publishTopCandidate(
	session *models.EvaluationSession,
	job *models.JobPosting,
	analysis *models.IntersectionAnalysis,
	decision *models.Decision,
	turns []models.DebateTurn,
) {
	if decision.Confidence < HighConfidenceThreshold {
		return
	}

	exists, err := m.topCandidates.ExistsForJob(session.CandidateName, session.JobID)
	if err != nil {
		log.Printf("⚠️  Failed to check top candidates: %v\n", err)
		return
	}
	if exists {
		log.Printf("🔁 Candidate %s already in top candidates for %s, skipping\n", session.CandidateName, job.Title)
		return
	}

	var strengths, concerns []string
	for _, turn := range turns {
		if turn.Position == models.PositionPro {
			strengths = append(strengths, turn.KeyPoints...)
		} else {
			concerns = append(concerns, turn.KeyPoints...)
		}
	}

	candidate := &models.TopCandidate{
		ID:              uuid.New(),
		SessionID:       session.ID,
		JobID:           session.JobID,
		CandidateName:   session.CandidateName,
		JobTitle:        job.Title,
		OverallScore:    decision.Confidence * 100,
		Confidence:      decision.Confidence,
		Decision:        decision.Decision,
		Summary:         decision.Reasoning.Summary,
		Strengths:       mustJSON(strengths),
		Concerns:        mustJSON(concerns),
		KeyFactors:      mustJSON(decision.KeyFactors),
		SkillMatches:    mustJSON(analysis.SkillMatches),
		SkillGaps:       mustJSON(analysis.SkillGaps),
		ExperienceMatch: analysis.ExperienceMatch,
		CreatedAt:       time.Now(),
	}

	if err := m.topCandidates.Create(candidate); err != nil {
		log.Printf("⚠️  Failed to save top candidate: %v\n", err)
		return
	}
	log.Printf("⭐ Saved top candidate %s (%.0f%%)\n", session.CandidateName, decision.Confidence*100)
}

func mustJSON(value any) datatypes.JSON {
	raw, err := json.Marshal(value)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}
