package models

import (
	"encoding/json"
	"fmt"
)

// Artifact columns hold write-once JSON children of a session; nil means
// the producing stage has not completed yet.

func (s *EvaluationSession) DecodeProfile() (*CandidateProfile, error) {
	if len(s.Profile) == 0 {
		return nil, nil
	}
	var profile CandidateProfile
	if err := json.Unmarshal(s.Profile, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &profile, nil
}

func (s *EvaluationSession) DecodeIntersection() (*IntersectionAnalysis, error) {
	if len(s.Intersection) == 0 {
		return nil, nil
	}
	var analysis IntersectionAnalysis
	if err := json.Unmarshal(s.Intersection, &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode intersection analysis: %w", err)
	}
	return &analysis, nil
}

func (s *EvaluationSession) DecodeDecision() (*Decision, error) {
	if len(s.Decision) == 0 {
		return nil, nil
	}
	var decision Decision
	if err := json.Unmarshal(s.Decision, &decision); err != nil {
		return nil, fmt.Errorf("failed to decode decision: %w", err)
	}
	return &decision, nil
}

func (s *EvaluationSession) DecodeTranscript() ([]TranscriptEntry, error) {
	if len(s.Transcript) == 0 {
		return nil, nil
	}
	var transcript []TranscriptEntry
	if err := json.Unmarshal(s.Transcript, &transcript); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %w", err)
	}
	return transcript, nil
}

func (j *JobPosting) RequiredSkillList() []string {
	return decodeSkillList(j.RequiredSkills)
}

func (j *JobPosting) BonusSkillList() []string {
	return decodeSkillList(j.BonusSkills)
}

func decodeSkillList(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var skills []string
	if err := json.Unmarshal(raw, &skills); err != nil {
		return nil
	}
	return skills
}
