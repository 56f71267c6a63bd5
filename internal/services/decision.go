package services

import (
	"context"
	"fmt"
	"strings"

	"hiresense/evaluation-engine/internal/models"
)

// Confidence at or above this threshold promotes a candidate into the
// top-candidates read model, so the synthesizer never emits it for a weak
// fit or a debate that leaned against the hire.
const (
	HighConfidenceThreshold = 0.85
	strongFitThreshold      = 0.7
	maxKeyFactors           = 6
)

// DecisionSynthesizer aggregates the profile, the fit analysis and the
// debate transcript into the final calibrated Decision.
type DecisionSynthesizer interface {
	Synthesize(ctx context.Context, profile *models.CandidateProfile, analysis *models.IntersectionAnalysis, turns []models.DebateTurn) (*models.Decision, error)
}

type decisionSynthesizer struct {
	reasoner ReasoningService
	prompts  *PromptBuilder
}

func NewDecisionSynthesizer(reasoner ReasoningService) DecisionSynthesizer {
	return &decisionSynthesizer{
		reasoner: reasoner,
		prompts:  NewPromptBuilder(),
	}
}

type decisionPayload struct {
	Decision   string `json:"decision"`
	Confidence float64 `json:"confidence"`
	Reasoning  struct {
		Summary string   `json:"summary"`
		Pros    []string `json:"pros"`
		Cons    []string `json:"cons"`
	} `json:"reasoning"`
	KeyFactors []string `json:"key_factors"`
}

// Synthesize implements DecisionSynthesizer.
func (s *decisionSynthesizer) Synthesize(ctx context.Context, profile *models.CandidateProfile, analysis *models.IntersectionAnalysis, turns []models.DebateTurn) (*models.Decision, error) {
	prompt := s.prompts.BuildDecisionPrompt(analysis, turns)

	var payload decisionPayload
	if err := s.reasoner.GenerateJSON(ctx, prompt, 0.3, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecision, err)
	}

	decision := &models.Decision{
		Decision:   normalizeVerdict(payload.Decision),
		Confidence: payload.Confidence,
		Reasoning: models.Reasoning{
			Summary: payload.Reasoning.Summary,
			Pros:    payload.Reasoning.Pros,
			Cons:    payload.Reasoning.Cons,
		},
		KeyFactors: payload.KeyFactors,
	}

	Calibrate(decision, analysis, turns)

	return decision, nil
}

func normalizeVerdict(verdict string) string {
	v := strings.ToUpper(strings.TrimSpace(verdict))
	v = strings.ReplaceAll(v, " ", "_")
	if v == models.DecisionHire {
		return models.DecisionHire
	}
	return models.DecisionNoHire
}

// Calibrate enforces the decision invariants regardless of what the
// reasoning provider produced: confidence stays in [0,1] and only reaches
// the promotion threshold for a strong fit with a debate that did not lean
// anti; pros and cons trace back to the skill matches and gaps; key
// factors stay short and deduplicated.
func Calibrate(decision *models.Decision, analysis *models.IntersectionAnalysis, turns []models.DebateTurn) {
	if decision.Confidence < 0 {
		decision.Confidence = 0
	}
	if decision.Confidence > 1 {
		decision.Confidence = 1
	}

	if decision.Confidence >= HighConfidenceThreshold {
		if analysis.OverallCompatibility < strongFitThreshold || DebateSkewedAnti(turns) {
			decision.Confidence = HighConfidenceThreshold - 0.01
		}
	}

	decision.Reasoning.Pros = coverSignals(decision.Reasoning.Pros, analysis.SkillMatches, "Matches required skill: %s")
	decision.Reasoning.Cons = coverSignals(decision.Reasoning.Cons, analysis.SkillGaps, "Missing required skill: %s")

	decision.KeyFactors = dedupeFactors(decision.KeyFactors)
	if len(decision.KeyFactors) == 0 {
		decision.KeyFactors = defaultKeyFactors(decision, analysis)
	}
	if len(decision.KeyFactors) > maxKeyFactors {
		decision.KeyFactors = decision.KeyFactors[:maxKeyFactors]
	}
}

// DebateSkewedAnti reports whether the surviving transcript leans toward
// the anti side.
func DebateSkewedAnti(turns []models.DebateTurn) bool {
	pro, anti := 0, 0
	for _, turn := range turns {
		if turn.Position == models.PositionPro {
			pro++
		} else if turn.Position == models.PositionAnti {
			anti++
		}
	}
	return anti > pro
}

// coverSignals tops up a reasoning list so every signal is reflected by at
// least one entry mentioning it.
func coverSignals(entries, signals []string, format string) []string {
	for _, signal := range signals {
		if !mentioned(entries, signal) {
			entries = append(entries, fmt.Sprintf(format, signal))
		}
	}
	return entries
}

func mentioned(entries []string, signal string) bool {
	needle := strings.ToLower(signal)
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry), needle) {
			return true
		}
	}
	return false
}

func dedupeFactors(factors []string) []string {
	seen := make(map[string]bool, len(factors))
	var result []string
	for _, factor := range factors {
		factor = strings.TrimSpace(factor)
		if factor == "" {
			continue
		}
		key := strings.ToLower(factor)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, factor)
	}
	return result
}

func defaultKeyFactors(decision *models.Decision, analysis *models.IntersectionAnalysis) []string {
	factors := []string{
		fmt.Sprintf("Overall compatibility %.2f", analysis.OverallCompatibility),
		fmt.Sprintf("Experience match: %s", analysis.ExperienceMatch),
	}
	if len(analysis.SkillGaps) > 0 {
		factors = append(factors, fmt.Sprintf("%d required skill(s) missing", len(analysis.SkillGaps)))
	}
	return factors
}
