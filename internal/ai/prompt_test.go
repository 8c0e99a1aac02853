package ai

import (
	"strings"
	"testing"

	"github.com/spigell/jobmatch/internal/jobboard"
)

func sampleProfile() *jobboard.Profile {
	return &jobboard.Profile{
		Name: "Ada Lovelace",
		Bio:  "Analytical engine enthusiast",
		Experience: []jobboard.Experience{
			{Company: "Acme", Position: "Backend Engineer", Duration: "3 years", Description: "Go services"},
			{Company: "Initech", Position: "Intern", Duration: "6 months", Description: "Testing"},
		},
		Education: []jobboard.Education{
			{Institution: "MIT", Degree: "BSc", Field: "Computer Science", Year: "2019"},
		},
		Skills: []string{"Go", "PostgreSQL", "Kubernetes"},
	}
}

func TestBuildPromptIncludesProfile(t *testing.T) {
	prompt := BuildPrompt(sampleProfile())

	expected := []string{
		"Name: Ada Lovelace",
		"Bio: Analytical engine enthusiast",
		"- Backend Engineer at Acme (3 years): Go services\n- Intern at Initech (6 months): Testing",
		"- BSc in Computer Science from MIT (2019)",
		"Skills: Go, PostgreSQL, Kubernetes",
		"Return only the JSON object.",
	}
	for _, want := range expected {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to contain %q, got:\n%s", want, prompt)
		}
	}

	for _, c := range jobboard.Categories {
		if !strings.Contains(prompt, `"`+string(c)+`": score`) {
			t.Fatalf("expected prompt to request key %q", c)
		}
	}

	if strings.Contains(prompt, "{{") {
		t.Fatalf("unreplaced placeholder in prompt:\n%s", prompt)
	}
}

func TestBuildPromptMissingBio(t *testing.T) {
	profile := sampleProfile()
	profile.Bio = "   "

	prompt := BuildPrompt(profile)
	if !strings.Contains(prompt, "Bio: Not provided") {
		t.Fatalf("expected placeholder bio, got:\n%s", prompt)
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	first := BuildPrompt(sampleProfile())
	second := BuildPrompt(sampleProfile())
	if first != second {
		t.Fatalf("expected identical prompts for identical profiles")
	}
}
