package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"hiresense/evaluation-engine/internal/models"
)

// Weights of the compatibility formula: skill coverage dominates, the
// experience term fills the rest.
const (
	skillCoverageWeight  = 0.6
	experienceTermWeight = 0.4
)

// FitEvaluator produces the IntersectionAnalysis for a candidate against a
// job posting. Matches, gaps and the compatibility score are computed
// deterministically; the reasoning provider only writes the narrative.
type FitEvaluator interface {
	Evaluate(ctx context.Context, profile *models.CandidateProfile, job *models.JobPosting) (*models.IntersectionAnalysis, error)
}

type fitEvaluator struct {
	reasoner  ReasoningService
	retriever ContextRetriever
	prompts   *PromptBuilder
}

// NewFitEvaluator creates a fit evaluator; retriever may be nil, in which
// case prompts run without reference context.
func NewFitEvaluator(reasoner ReasoningService, retriever ContextRetriever) FitEvaluator {
	return &fitEvaluator{
		reasoner:  reasoner,
		retriever: retriever,
		prompts:   NewPromptBuilder(),
	}
}

type fitAnalysisPayload struct {
	Analysis string `json:"analysis"`
}

// Evaluate implements FitEvaluator.
func (f *fitEvaluator) Evaluate(ctx context.Context, profile *models.CandidateProfile, job *models.JobPosting) (*models.IntersectionAnalysis, error) {
	required := job.RequiredSkillList()
	matches, gaps := MatchSkills(profile.Skills, required)

	analysis := &models.IntersectionAnalysis{
		SkillMatches:         matches,
		SkillGaps:            gaps,
		OverallCompatibility: Compatibility(len(matches), len(required), profile.ExperienceYears, job.MinExperienceYears),
		ExperienceMatch:      ExperienceMatch(profile.ExperienceYears, job.MinExperienceYears),
	}

	referenceContext := ""
	if f.retriever != nil {
		retrieved, err := f.retriever.RetrieveContext(ctx, job.Description, []string{"job_description", "hiring_rubric"})
		if err != nil {
			log.Printf("⚠️  Warning: failed to retrieve reference context: %v\n", err)
		} else {
			referenceContext = retrieved
		}
	}

	prompt := f.prompts.BuildFitAnalysisPrompt(profile, job, analysis, referenceContext)

	var payload fitAnalysisPayload
	if err := f.reasoner.GenerateJSON(ctx, prompt, 0.3, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFit, err)
	}
	analysis.Analysis = payload.Analysis

	return analysis, nil
}

// MatchSkills splits required skills into those present in the candidate's
// skill list and those absent. Comparison is case-insensitive and tolerates
// substring matches in either direction ("React" covers "React.js").
func MatchSkills(candidateSkills, requiredSkills []string) (matches, gaps []string) {
	matches = []string{}
	gaps = []string{}

	for _, required := range requiredSkills {
		if skillPresent(candidateSkills, required) {
			matches = append(matches, required)
		} else {
			gaps = append(gaps, required)
		}
	}

	return matches, gaps
}

func skillPresent(candidateSkills []string, required string) bool {
	req := strings.ToLower(strings.TrimSpace(required))
	if req == "" {
		return false
	}

	for _, skill := range candidateSkills {
		s := strings.ToLower(strings.TrimSpace(skill))
		if s == "" {
			continue
		}
		if s == req || strings.Contains(s, req) || strings.Contains(req, s) {
			return true
		}
	}
	return false
}

// Compatibility is the weighted fit score: coverage of required skills at
// 0.6 plus experience adequacy at 0.4, always in [0,1] and monotone in the
// number of matched skills.
func Compatibility(matchCount, requiredCount, experienceYears, minYears int) float64 {
	coverage := 1.0
	if requiredCount > 0 {
		coverage = float64(matchCount) / float64(requiredCount)
	}

	score := skillCoverageWeight*coverage + experienceTermWeight*experienceTerm(experienceYears, minYears)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func experienceTerm(years, minYears int) float64 {
	if minYears <= 0 || years >= minYears {
		return 1.0
	}
	return float64(years) / float64(minYears)
}

// ExperienceMatch grades the candidate's years against the posting's
// implied minimum.
func ExperienceMatch(years, minYears int) string {
	switch {
	case float64(years) >= 1.5*float64(minYears):
		return models.ExperienceExceeds
	case years >= minYears:
		return models.ExperienceGood
	default:
		return models.ExperienceUnder
	}
}
