package services

import (
	"context"
	"fmt"
	"strings"

	"hiresense/evaluation-engine/internal/models"
)

// ResumeExtractor turns raw resume text into a structured CandidateProfile.
type ResumeExtractor interface {
	Extract(ctx context.Context, resumeText, candidateName string) (*models.CandidateProfile, error)
}

type resumeExtractor struct {
	reasoner ReasoningService
	prompts  *PromptBuilder
}

func NewResumeExtractor(reasoner ReasoningService) ResumeExtractor {
	return &resumeExtractor{
		reasoner: reasoner,
		prompts:  NewPromptBuilder(),
	}
}

type resumeExtractionPayload struct {
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experience_years"`
	ExperienceLevel string   `json:"experience_level"`
	KeyAchievements []string `json:"key_achievements"`
	Analysis        string   `json:"analysis"`
}

// Extract implements ResumeExtractor. Sparse resumes produce a valid
// profile with empty lists; only an exhausted reasoning call is an error.
func (e *resumeExtractor) Extract(ctx context.Context, resumeText, candidateName string) (*models.CandidateProfile, error) {
	prompt := e.prompts.BuildResumeExtractionPrompt(resumeText, candidateName)

	var payload resumeExtractionPayload
	if err := e.reasoner.GenerateJSON(ctx, prompt, 0.3, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	years := int(payload.ExperienceYears)
	if years < 0 {
		years = 0
	}

	return &models.CandidateProfile{
		CandidateName:   candidateName,
		Skills:          DedupeSkills(payload.Skills),
		ExperienceYears: years,
		ExperienceLevel: NormalizeExperienceLevel(payload.ExperienceLevel),
		KeyAchievements: payload.KeyAchievements,
		Analysis:        payload.Analysis,
	}, nil
}

// DedupeSkills removes case-insensitive duplicates, preserving the order
// of first appearance.
func DedupeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	var result []string

	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, skill)
	}

	return result
}

// NormalizeExperienceLevel maps free-form model output onto the closed
// vocabulary used downstream.
func NormalizeExperienceLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	switch {
	case strings.Contains(normalized, "entry"), strings.Contains(normalized, "junior"),
		strings.Contains(normalized, "intern"):
		return models.LevelEntry
	case strings.Contains(normalized, "lead"), strings.Contains(normalized, "principal"),
		strings.Contains(normalized, "staff"):
		return models.LevelLead
	case strings.Contains(normalized, "senior"):
		return models.LevelSenior
	case strings.Contains(normalized, "mid"):
		return models.LevelMid
	default:
		return models.LevelUnknown
	}
}
