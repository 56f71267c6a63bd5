package services

import (
	"fmt"
	"strings"

	"hiresense/evaluation-engine/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildResumeExtractionPrompt creates the prompt for resume parsing
func (pb *PromptBuilder) BuildResumeExtractionPrompt(resumeText, candidateName string) string {
	return fmt.Sprintf(`Analyze the following resume and extract key information.

Candidate Name: %s
Resume Content:
%s

Extract and analyze:
1. Technical skills (programming languages, frameworks, tools)
2. Years of experience
3. Experience level (Entry, Mid, Senior, Lead)
4. Key achievements and accomplishments

Respond with ONLY a JSON object in this exact format:
{
    "skills": ["skill1", "skill2", "skill3"],
    "experience_years": <number>,
    "experience_level": "<Entry/Mid/Senior/Lead>",
    "key_achievements": ["achievement1", "achievement2"],
    "analysis": "<brief analysis of the candidate's profile>"
}`,
		candidateName, resumeText)
}

// BuildFitAnalysisPrompt creates the prompt for the fit narrative. The
// matches, gaps and compatibility are computed before the call; the model
// only writes the analysis text around them.
func (pb *PromptBuilder) BuildFitAnalysisPrompt(
	profile *models.CandidateProfile,
	job *models.JobPosting,
	analysis *models.IntersectionAnalysis,
	referenceContext string,
) string {
	contextBlock := ""
	if referenceContext != "" {
		contextBlock = fmt.Sprintf("\nReference Material:\n%s\n", referenceContext)
	}

	return fmt.Sprintf(`Analyze the intersection between the job requirements and candidate profile.

Job: %s
Description: %s
Required Skills: %s
Minimum Experience: %d years
%s
Candidate: %s
Skills: %s
Experience: %d years (%s)
Achievements: %s

Computed fit:
Skill Matches: %s
Skill Gaps: %s
Experience Match: %s
Overall Compatibility: %.2f

Write a comprehensive analysis of this match covering skill coverage,
experience fit, and key strengths and weaknesses.

Respond with ONLY a JSON object in this exact format:
{
    "analysis": "<detailed analysis of the intersection>"
}`,
		job.Title, job.Description, strings.Join(job.RequiredSkillList(), ", "),
		job.MinExperienceYears, contextBlock,
		profile.CandidateName, strings.Join(profile.Skills, ", "),
		profile.ExperienceYears, profile.ExperienceLevel,
		strings.Join(profile.KeyAchievements, ", "),
		strings.Join(analysis.SkillMatches, ", "), strings.Join(analysis.SkillGaps, ", "),
		analysis.ExperienceMatch, analysis.OverallCompatibility)
}

// BuildAdvocatePrompt creates a debate-turn prompt for one advocate role.
func (pb *PromptBuilder) BuildAdvocatePrompt(
	position string,
	round int,
	analysis *models.IntersectionAnalysis,
	transcript []models.DebateTurn,
) string {
	direction := "for hiring this candidate"
	focus := "Focus on the candidate's strengths and how they outweigh any concerns."
	if position == models.PositionAnti {
		direction = "against hiring this candidate"
		focus = "Focus on the candidate's gaps and the risks of this hire."
	}

	previous := ""
	if len(transcript) > 0 {
		var lines []string
		for _, turn := range transcript {
			lines = append(lines, fmt.Sprintf("[%s round %d] %s", turn.Position, turn.Round, turn.Content))
		}
		previous = fmt.Sprintf("\nDebate so far:\n%s\n", strings.Join(lines, "\n"))
	}

	return fmt.Sprintf(`You are a %s-hire advocate. Build a compelling argument %s.
Argue strictly in your assigned direction.

Intersection Analysis:
%s
Overall Compatibility: %.2f
Skill Matches: %s
Skill Gaps: %s
%s
Build a strong argument for round %d. %s

Respond with ONLY a JSON object in this exact format:
{
    "argument": "<your argument>",
    "confidence": <0.0 to 1.0>,
    "key_points": ["point1", "point2", "point3"]
}`,
		position, direction,
		analysis.Analysis, analysis.OverallCompatibility,
		strings.Join(analysis.SkillMatches, ", "), strings.Join(analysis.SkillGaps, ", "),
		previous, round, focus)
}

// BuildDecisionPrompt creates the final-verdict prompt.
func (pb *PromptBuilder) BuildDecisionPrompt(
	analysis *models.IntersectionAnalysis,
	turns []models.DebateTurn,
) string {
	var proArgs, antiArgs []string
	for _, turn := range turns {
		line := fmt.Sprintf("Round %d: %s", turn.Round, turn.Content)
		if turn.Position == models.PositionPro {
			proArgs = append(proArgs, line)
		} else {
			antiArgs = append(antiArgs, line)
		}
	}

	return fmt.Sprintf(`You are the final decision maker for a hiring decision. Evaluate all the arguments and make a final, well-reasoned decision. Your reasoning should be comprehensive.

Intersection Analysis:
%s
Overall Compatibility: %.2f

Pro-Hire Arguments:
%s

Anti-Hire Arguments:
%s

Evaluate the strength of each side's arguments and make a final, well-reasoned decision.

Respond with ONLY a JSON object in this exact format. The reasoning MUST be broken down into a detailed summary, and comprehensive lists of pros and cons.
{
    "decision": "<hire/no_hire>",
    "confidence": <0.0 to 1.0>,
    "reasoning": {
        "summary": "<A detailed, 2-3 sentence summary explaining the final verdict and its context.>",
        "pros": ["<A comprehensive list of all key strengths and pro-hire arguments.>", "<...more pros>"],
        "cons": ["<A comprehensive list of all key weaknesses and anti-hire arguments.>", "<...more cons>"]
    },
    "key_factors": ["<The most important factors that drove the decision.>", "<...more factors>"]
}`,
		analysis.Analysis, analysis.OverallCompatibility,
		strings.Join(proArgs, "\n"), strings.Join(antiArgs, "\n"))
}
