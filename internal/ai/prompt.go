package ai

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/spigell/jobmatch/internal/jobboard"
)

//go:embed prompt.md
var promptTemplate string

const notProvided = "Not provided"

// BuildPrompt renders the profile into the scoring prompt. The output depends only on the
// profile; nothing is escaped or truncated.
func BuildPrompt(profile *jobboard.Profile) string {
	bio := strings.TrimSpace(profile.Bio)
	if bio == "" {
		bio = notProvided
	}

	prompt := promptTemplate
	prompt = strings.ReplaceAll(prompt, "{{NAME}}", profile.Name)
	prompt = strings.ReplaceAll(prompt, "{{BIO}}", bio)
	prompt = strings.ReplaceAll(prompt, "{{EXPERIENCE}}", experienceLines(profile.Experience))
	prompt = strings.ReplaceAll(prompt, "{{EDUCATION}}", educationLines(profile.Education))
	prompt = strings.ReplaceAll(prompt, "{{SKILLS}}", strings.Join(profile.Skills, ", "))
	prompt = strings.ReplaceAll(prompt, "{{SCORE_KEYS}}", scoreKeysBlock())
	return prompt
}

func experienceLines(entries []jobboard.Experience) string {
	lines := make([]string, 0, len(entries))
	for _, exp := range entries {
		lines = append(lines, fmt.Sprintf("- %s at %s (%s): %s", exp.Position, exp.Company, exp.Duration, exp.Description))
	}
	return strings.Join(lines, "\n")
}

func educationLines(entries []jobboard.Education) string {
	lines := make([]string, 0, len(entries))
	for _, edu := range entries {
		lines = append(lines, fmt.Sprintf("- %s in %s from %s (%s)", edu.Degree, edu.Field, edu.Institution, edu.Year))
	}
	return strings.Join(lines, "\n")
}

func scoreKeysBlock() string {
	var b strings.Builder
	b.WriteString("{\n")
	for i, c := range jobboard.Categories {
		fmt.Fprintf(&b, "  %q: score", c)
		if i < len(jobboard.Categories)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}
