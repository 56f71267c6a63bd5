package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"hiresense/evaluation-engine/internal/models"
)

// fakeReasoner stands in for the Gemini service. Each call hands the prompt
// and a 0-based call index to generate, and the returned text goes through
// the same JSON parsing as real model output.
type fakeReasoner struct {
	mu       sync.Mutex
	prompts  []string
	generate func(prompt string, call int) (string, error)
}

func (f *fakeReasoner) GenerateJSON(ctx context.Context, prompt string, temperature float32, target interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	call := len(f.prompts)
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	response, err := f.generate(prompt, call)
	if err != nil {
		return err
	}
	return ParseJSONResponse(response, target)
}

func (f *fakeReasoner) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return make([]float32, 768), nil
}

// memEventRepo is an in-memory stand-in for the durable event log. It
// assigns sequence numbers the same way the postgres repository does.
type memEventRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID][]models.AgentEvent
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: make(map[uuid.UUID][]models.AgentEvent)}
}

func (r *memEventRepo) Append(event *models.AgentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event.Seq = len(r.events[event.SessionID]) + 1
	r.events[event.SessionID] = append(r.events[event.SessionID], *event)
	return nil
}

func (r *memEventRepo) ListBySession(sessionID uuid.UUID) ([]models.AgentEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]models.AgentEvent(nil), r.events[sessionID]...), nil
}

// memSessionRepo is an in-memory SessionRepository with the same
// transition and terminal-state guards as the postgres implementation.
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.EvaluationSession
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[uuid.UUID]*models.EvaluationSession)}
}

func (r *memSessionRepo) Create(session *models.EvaluationSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *memSessionRepo) FindByID(id uuid.UUID) (*models.EvaluationSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	copied := *session
	return &copied, nil
}

func (r *memSessionRepo) FindActive(candidateName string, jobID uuid.UUID) (*models.EvaluationSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range r.sessions {
		if session.CandidateName == candidateName && session.JobID == jobID && !session.State.Terminal() {
			copied := *session
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) FindPending(limit int) ([]models.EvaluationSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []models.EvaluationSession
	for _, session := range r.sessions {
		if session.State == models.StateInitializing && len(pending) < limit {
			pending = append(pending, *session)
		}
	}
	return pending, nil
}

func (r *memSessionRepo) Transition(id uuid.UUID, from, to models.SessionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok || session.State != from {
		return fmt.Errorf("invalid transition for session %s: %s -> %s", id, from, to)
	}
	session.State = to
	return nil
}

func (r *memSessionRepo) saveJSON(id uuid.UUID, set func(*models.EvaluationSession, datatypes.JSON), value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	set(session, datatypes.JSON(raw))
	return nil
}

func (r *memSessionRepo) SaveProfile(id uuid.UUID, profile *models.CandidateProfile) error {
	return r.saveJSON(id, func(s *models.EvaluationSession, raw datatypes.JSON) { s.Profile = raw }, profile)
}

func (r *memSessionRepo) SaveIntersection(id uuid.UUID, analysis *models.IntersectionAnalysis) error {
	return r.saveJSON(id, func(s *models.EvaluationSession, raw datatypes.JSON) { s.Intersection = raw }, analysis)
}

func (r *memSessionRepo) SaveDecision(id uuid.UUID, decision *models.Decision) error {
	return r.saveJSON(id, func(s *models.EvaluationSession, raw datatypes.JSON) { s.Decision = raw }, decision)
}

func (r *memSessionRepo) SaveTranscript(id uuid.UUID, transcript []models.TranscriptEntry) error {
	return r.saveJSON(id, func(s *models.EvaluationSession, raw datatypes.JSON) { s.Transcript = raw }, transcript)
}

func (r *memSessionRepo) MarkPartialDebate(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[id]; ok {
		session.PartialDebate = true
	}
	return nil
}

func (r *memSessionRepo) MarkFailed(id uuid.UUID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok || session.State.Terminal() {
		return nil
	}
	session.State = models.StateFailed
	session.FailureReason = &reason
	return nil
}

func (r *memSessionRepo) MarkCancelled(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok || session.State.Terminal() {
		return nil
	}
	session.State = models.StateCancelled
	return nil
}

func (r *memSessionRepo) RequestCancel(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[id]; ok {
		session.CancelAsked = true
	}
	return nil
}

func (r *memSessionRepo) CancelRequested(id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[id]; ok {
		return session.CancelAsked, nil
	}
	return false, nil
}

type memJobRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*models.JobPosting
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[uuid.UUID]*models.JobPosting)}
}

func (r *memJobRepo) Create(job *models.JobPosting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *job
	r.jobs[job.ID] = &copied
	return nil
}

func (r *memJobRepo) FindByID(id uuid.UUID) (*models.JobPosting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s not found", id)
	}
	copied := *job
	return &copied, nil
}

type memTopCandidateRepo struct {
	mu         sync.Mutex
	candidates []models.TopCandidate
}

func newMemTopCandidateRepo() *memTopCandidateRepo {
	return &memTopCandidateRepo{}
}

func (r *memTopCandidateRepo) Create(candidate *models.TopCandidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.candidates = append(r.candidates, *candidate)
	return nil
}

func (r *memTopCandidateRepo) ExistsForJob(candidateName string, jobID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, candidate := range r.candidates {
		if candidate.CandidateName == candidateName && candidate.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memTopCandidateRepo) List(limit int) ([]models.TopCandidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit > len(r.candidates) {
		limit = len(r.candidates)
	}
	return append([]models.TopCandidate(nil), r.candidates[:limit]...), nil
}
