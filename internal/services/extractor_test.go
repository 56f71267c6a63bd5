package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"hiresense/evaluation-engine/internal/models"
)

func TestDedupeSkills(t *testing.T) {
	got := DedupeSkills([]string{"Go", "  React ", "go", "", "TypeScript", "react"})
	want := []string{"Go", "React", "TypeScript"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("DedupeSkills() = %v, want %v", got, want)
	}
}

func TestNormalizeExperienceLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Entry", models.LevelEntry},
		{"junior developer", models.LevelEntry},
		{"Internship", models.LevelEntry},
		{"Mid-level", models.LevelMid},
		{"Senior", models.LevelSenior},
		{"  SENIOR  ", models.LevelSenior},
		{"Lead", models.LevelLead},
		{"Senior Staff Engineer", models.LevelLead},
		{"Principal", models.LevelLead},
		{"wizard", models.LevelUnknown},
		{"", models.LevelUnknown},
	}

	for _, tt := range tests {
		if got := NormalizeExperienceLevel(tt.input); got != tt.want {
			t.Errorf("NormalizeExperienceLevel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestResumeExtractorExtract(t *testing.T) {
	reasoner := &fakeReasoner{
		generate: func(prompt string, call int) (string, error) {
			return "```json\n" + `{
				"skills": ["React", "react", "TypeScript"],
				"experience_years": 5.7,
				"experience_level": "Senior",
				"key_achievements": ["Led frontend migration"],
				"analysis": "Strong frontend engineer"
			}` + "\n```", nil
		},
	}
	extractor := NewResumeExtractor(reasoner)

	profile, err := extractor.Extract(context.Background(), "Five years building React apps...", "Jordan Diaz")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if profile.CandidateName != "Jordan Diaz" {
		t.Errorf("CandidateName = %q", profile.CandidateName)
	}
	if want := []string{"React", "TypeScript"}; !reflect.DeepEqual(profile.Skills, want) {
		t.Errorf("Skills = %v, want %v", profile.Skills, want)
	}
	if profile.ExperienceYears != 5 {
		t.Errorf("ExperienceYears = %d, want 5", profile.ExperienceYears)
	}
	if profile.ExperienceLevel != models.LevelSenior {
		t.Errorf("ExperienceLevel = %q, want %q", profile.ExperienceLevel, models.LevelSenior)
	}
}

func TestResumeExtractorClampsNegativeYears(t *testing.T) {
	reasoner := &fakeReasoner{
		generate: func(prompt string, call int) (string, error) {
			return `{"skills": [], "experience_years": -2, "experience_level": "Entry", "key_achievements": [], "analysis": "sparse"}`, nil
		},
	}
	extractor := NewResumeExtractor(reasoner)

	profile, err := extractor.Extract(context.Background(), "A very short resume", "Sam Lee")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if profile.ExperienceYears != 0 {
		t.Errorf("ExperienceYears = %d, want 0", profile.ExperienceYears)
	}
}

func TestResumeExtractorWrapsReasonerFailure(t *testing.T) {
	reasoner := &fakeReasoner{
		generate: func(prompt string, call int) (string, error) {
			return "", fmt.Errorf("model overloaded")
		},
	}
	extractor := NewResumeExtractor(reasoner)

	_, err := extractor.Extract(context.Background(), "Five years building React apps...", "Jordan Diaz")
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("Extract() error = %v, want ErrExtraction", err)
	}
}
