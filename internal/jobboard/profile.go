package jobboard

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScoringStatus records the outcome of the latest scoring run for a profile.
type ScoringStatus string

const (
	ScoringPending         ScoringStatus = "pending"
	ScoringScored          ScoringStatus = "scored"
	ScoringEmptyResponse   ScoringStatus = "empty_response"
	ScoringMalformedScores ScoringStatus = "malformed_scores"
	ScoringGeneratorFailed ScoringStatus = "generator_failed"
)

// Failed reports whether the status marks an unsuccessful run.
func (s ScoringStatus) Failed() bool {
	switch s {
	case ScoringEmptyResponse, ScoringMalformedScores, ScoringGeneratorFailed:
		return true
	default:
		return false
	}
}

// FailedScoringStatuses lists the statuses the retry sweep picks up.
var FailedScoringStatuses = []ScoringStatus{
	ScoringEmptyResponse,
	ScoringMalformedScores,
	ScoringGeneratorFailed,
}

type Experience struct {
	Company     string `json:"company" mapstructure:"company"`
	Position    string `json:"position" mapstructure:"position"`
	Duration    string `json:"duration" mapstructure:"duration"`
	Description string `json:"description" mapstructure:"description"`
}

type Education struct {
	Institution string `json:"institution" mapstructure:"institution"`
	Degree      string `json:"degree" mapstructure:"degree"`
	Field       string `json:"field" mapstructure:"field"`
	Year        string `json:"year" mapstructure:"year"`
}

// AutoApplyPreferences decides which new postings a profile applies to without confirmation.
type AutoApplyPreferences struct {
	JobTypes  []Category `json:"job_types"`
	MinScore  int        `json:"min_score"`
	Locations []string   `json:"locations"`
}

// Accepts reports whether the category is one of the preferred job types.
func (p AutoApplyPreferences) Accepts(c Category) bool {
	for _, jt := range p.JobTypes {
		if jt == c {
			return true
		}
	}
	return false
}

// MatchesLocation reports whether the job location contains any preferred location,
// case-insensitively. No preferred locations means any location matches.
func (p AutoApplyPreferences) MatchesLocation(jobLocation string) bool {
	if len(p.Locations) == 0 {
		return true
	}
	location := strings.ToLower(jobLocation)
	for _, preferred := range p.Locations {
		if strings.Contains(location, strings.ToLower(preferred)) {
			return true
		}
	}
	return false
}

// Profile is a job seeker's record. Scores and the scoring fields are written only by the
// scoring pipeline; everything else belongs to the owning user.
type Profile struct {
	ID         uuid.UUID    `json:"id"`
	UserID     uuid.UUID    `json:"user_id"`
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Phone      string       `json:"phone,omitempty"`
	Location   string       `json:"location,omitempty"`
	Bio        string       `json:"bio,omitempty"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	Skills     []string     `json:"skills"`
	ResumeURL  string       `json:"resume_url,omitempty"`

	Scores        ScoreVector   `json:"ai_scores"`
	ScoringStatus ScoringStatus `json:"scoring_status"`
	ScoringError  string        `json:"scoring_error,omitempty"`
	LastScoredAt  *time.Time    `json:"last_scored_at,omitempty"`

	AutoApplyEnabled bool                 `json:"auto_apply_enabled"`
	AutoApply        AutoApplyPreferences `json:"auto_apply_preferences"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate slices freely.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.Experience = append([]Experience(nil), p.Experience...)
	c.Education = append([]Education(nil), p.Education...)
	c.Skills = append([]string(nil), p.Skills...)
	c.AutoApply.JobTypes = append([]Category(nil), p.AutoApply.JobTypes...)
	c.AutoApply.Locations = append([]string(nil), p.AutoApply.Locations...)
	if p.LastScoredAt != nil {
		t := *p.LastScoredAt
		c.LastScoredAt = &t
	}
	return &c
}
