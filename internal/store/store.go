// Package store defines the persistence contract used by the matching core and the job-board service.
//
// Lookups return jobboard.ErrNotFound when nothing matches. Inserts keyed on a (profile, job) pair
// are atomic insert-if-absent operations so concurrent writers never produce duplicates.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/jobmatch/internal/jobboard"
)

type Profiles interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*jobboard.Profile, error)
	GetProfileByUser(ctx context.Context, userID uuid.UUID) (*jobboard.Profile, error)
	// UpsertProfile creates the user's profile or replaces its user-owned fields. Scores and
	// auto-apply settings of an existing profile are kept; the scoring status is reset to pending.
	UpsertProfile(ctx context.Context, profile *jobboard.Profile) (*jobboard.Profile, error)
	SetAutoApply(ctx context.Context, id uuid.UUID, enabled bool, prefs jobboard.AutoApplyPreferences) (*jobboard.Profile, error)
	// UpdateProfileScores overwrites the whole score vector and marks the profile as scored.
	UpdateProfileScores(ctx context.Context, id uuid.UUID, scores jobboard.ScoreVector, scoredAt time.Time) error
	// UpdateScoringStatus records the outcome of a scoring attempt without touching the scores.
	UpdateScoringStatus(ctx context.Context, id uuid.UUID, status jobboard.ScoringStatus, message string) error
	ListAutoApplyProfiles(ctx context.Context) ([]*jobboard.Profile, error)
	ListProfilesByScoringStatus(ctx context.Context, statuses ...jobboard.ScoringStatus) ([]*jobboard.Profile, error)
}

type Companies interface {
	GetCompany(ctx context.Context, id uuid.UUID) (*jobboard.Company, error)
	GetCompanyByUser(ctx context.Context, userID uuid.UUID) (*jobboard.Company, error)
	UpsertCompany(ctx context.Context, company *jobboard.Company) (*jobboard.Company, error)
	ListCompanies(ctx context.Context) ([]*jobboard.Company, error)
}

type Jobs interface {
	CreateJob(ctx context.Context, job *jobboard.Job) (*jobboard.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*jobboard.Job, error)
	// UpdateJob replaces the editable fields of a job. The application counter is never written.
	UpdateJob(ctx context.Context, job *jobboard.Job) (*jobboard.Job, error)
	ListActiveJobs(ctx context.Context) ([]*jobboard.Job, error)
	ListJobsByCompany(ctx context.Context, companyID uuid.UUID) ([]*jobboard.Job, error)
}

type Applications interface {
	// CreateApplication inserts the application and increments the job's application count in a
	// single atomic step. A second application for the same (profile, job) pair fails with
	// jobboard.ErrAlreadyExists and leaves the count untouched.
	CreateApplication(ctx context.Context, app *jobboard.Application) (*jobboard.Application, error)
	GetApplication(ctx context.Context, id uuid.UUID) (*jobboard.Application, error)
	ListApplicationsByProfile(ctx context.Context, profileID uuid.UUID) ([]*jobboard.Application, error)
	ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]*jobboard.Application, error)
	// UpdateApplicationStatus moves the application from one status to another. It fails with
	// jobboard.ErrInvalidTransition when the stored status is no longer from.
	UpdateApplicationStatus(ctx context.Context, id uuid.UUID, from, to jobboard.ApplicationStatus) (*jobboard.Application, error)
}

type Recommendations interface {
	// CreateRecommendation inserts rec unless one already exists for the same (profile, job)
	// pair. The boolean reports whether a row was created.
	CreateRecommendation(ctx context.Context, rec *jobboard.Recommendation) (bool, error)
	GetRecommendation(ctx context.Context, id uuid.UUID) (*jobboard.Recommendation, error)
	// ListRecommendationsByProfile returns the newest recommendations first, at most limit of them
	// when limit is positive.
	ListRecommendationsByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]*jobboard.Recommendation, error)
	MarkRecommendationViewed(ctx context.Context, id uuid.UUID) error
}

// Store is the full persistence contract.
type Store interface {
	Profiles
	Companies
	Jobs
	Applications
	Recommendations
	Close()
}
