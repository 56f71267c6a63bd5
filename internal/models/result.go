package models

// Experience levels form a closed vocabulary; the extractor maps whatever
// the reasoning provider says onto one of these.
const (
	LevelEntry   = "Entry"
	LevelMid     = "Mid"
	LevelSenior  = "Senior"
	LevelLead    = "Lead"
	LevelUnknown = "Unknown"
)

const (
	ExperienceUnder   = "Under"
	ExperienceGood    = "Good"
	ExperienceExceeds = "Exceeds"
)

const (
	DecisionHire   = "HIRE"
	DecisionNoHire = "NO_HIRE"
)

// Transcript positions as exposed to observers.
const (
	PositionEvaluation = "evaluation"
	PositionPro        = "pro"
	PositionAnti       = "anti"
	PositionDecision   = "decision"
)

// CandidateProfile is the structured resume produced by the extractor.
type CandidateProfile struct {
	CandidateName   string   `json:"candidate_name"`
	Skills          []string `json:"skills"`
	ExperienceYears int      `json:"experience_years"`
	ExperienceLevel string   `json:"experience_level"`
	KeyAchievements []string `json:"key_achievements"`
	Analysis        string   `json:"analysis"`
}

// IntersectionAnalysis is the candidate-to-job fit summary.
type IntersectionAnalysis struct {
	Analysis             string   `json:"analysis"`
	OverallCompatibility float64  `json:"overall_compatibility"`
	SkillMatches         []string `json:"skill_matches"`
	SkillGaps            []string `json:"skill_gaps"`
	ExperienceMatch      string   `json:"experience_match"`
}

// DebateTurn is one advocate utterance. Round carries the client-visible
// round number, not the raw turn index.
type DebateTurn struct {
	AgentName  string   `json:"agent_name"`
	Position   string   `json:"position"`
	Round      int      `json:"round"`
	Content    string   `json:"content"`
	Confidence float64  `json:"confidence"`
	KeyPoints  []string `json:"key_points"`
	Timestamp  float64  `json:"timestamp"`
}

type Reasoning struct {
	Summary string   `json:"summary"`
	Pros    []string `json:"pros"`
	Cons    []string `json:"cons"`
}

type Decision struct {
	Decision   string    `json:"decision"`
	Confidence float64   `json:"confidence"`
	Reasoning  Reasoning `json:"reasoning"`
	KeyFactors []string  `json:"key_factors"`
}

// TranscriptEntry is one entry of the full evaluation transcript as
// returned over REST.
type TranscriptEntry struct {
	AgentName string         `json:"agent_name"`
	Position  string         `json:"position"`
	Content   string         `json:"content"`
	Details   map[string]any `json:"details"`
}

// FinalResult is the evaluation result wire contract.
type FinalResult struct {
	ResumeAnalysis       CandidateProfile     `json:"resume_analysis"`
	IntersectionAnalysis IntersectionAnalysis `json:"intersection_analysis"`
	Decision             Decision             `json:"decision"`
	Transcript           []TranscriptEntry    `json:"transcript"`
}

type EvaluateResponse struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
}

type SessionResponse struct {
	ID                   string                `json:"id"`
	JobID                string                `json:"job_id"`
	CandidateName        string                `json:"candidate_name"`
	State                string                `json:"state"`
	PartialDebate        bool                  `json:"partial_debate"`
	FailureReason        *string               `json:"failure_reason,omitempty"`
	ResumeAnalysis       *CandidateProfile     `json:"resume_analysis,omitempty"`
	IntersectionAnalysis *IntersectionAnalysis `json:"intersection_analysis,omitempty"`
	Decision             *Decision             `json:"decision,omitempty"`
	Transcript           []TranscriptEntry     `json:"transcript,omitempty"`
}
