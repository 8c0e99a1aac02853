// Package storetest holds behaviour checks shared by every store.Store implementation.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/jobmatch/internal/jobboard"
	"github.com/spigell/jobmatch/internal/store"
)

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) store.Store

// Run executes the contract suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("ProfileUpsertKeepsScores", func(t *testing.T) { testProfileUpsertKeepsScores(t, newStore(t)) })
	t.Run("ScoringStatus", func(t *testing.T) { testScoringStatus(t, newStore(t)) })
	t.Run("AutoApplyProfiles", func(t *testing.T) { testAutoApplyProfiles(t, newStore(t)) })
	t.Run("CompanyUpsert", func(t *testing.T) { testCompanyUpsert(t, newStore(t)) })
	t.Run("Jobs", func(t *testing.T) { testJobs(t, newStore(t)) })
	t.Run("ApplicationOncePerPair", func(t *testing.T) { testApplicationOncePerPair(t, newStore(t)) })
	t.Run("ConcurrentApplications", func(t *testing.T) { testConcurrentApplications(t, newStore(t)) })
	t.Run("ApplicationStatus", func(t *testing.T) { testApplicationStatus(t, newStore(t)) })
	t.Run("Recommendations", func(t *testing.T) { testRecommendations(t, newStore(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newStore(t)) })
}

// Seed creates a company with one active job and a candidate profile.
func Seed(t *testing.T, s store.Store) (*jobboard.Company, *jobboard.Job, *jobboard.Profile) {
	t.Helper()
	ctx := context.Background()

	company, err := s.UpsertCompany(ctx, &jobboard.Company{
		UserID:   uuid.New(),
		Name:     "Acme",
		Industry: "Software",
		Location: "Berlin, Germany",
	})
	require.NoError(t, err)

	job, err := s.CreateJob(ctx, &jobboard.Job{
		CompanyID:      company.ID,
		Title:          "Backend Engineer",
		Description:    "Build services",
		Requirements:   []string{"Go", "PostgreSQL"},
		Category:       jobboard.CategoryBackend,
		Location:       "Berlin, Germany",
		EmploymentType: jobboard.EmploymentFullTime,
		IsActive:       true,
	})
	require.NoError(t, err)

	profile, err := s.UpsertProfile(ctx, &jobboard.Profile{
		UserID:   uuid.New(),
		Name:     "Ada",
		Email:    "ada@example.com",
		Location: "Berlin",
		Skills:   []string{"Go"},
	})
	require.NoError(t, err)

	return company, job, profile
}

func testProfileUpsertKeepsScores(t *testing.T, s store.Store) {
	ctx := context.Background()
	userID := uuid.New()

	created, err := s.UpsertProfile(ctx, &jobboard.Profile{
		UserID: userID,
		Name:   "Ada",
		Email:  "ada@example.com",
		Scores: jobboard.ScoreVector{Backend: 99},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, jobboard.ScoreVector{}, created.Scores, "new profiles start with a zero vector")
	assert.Equal(t, jobboard.ScoringPending, created.ScoringStatus)

	scoredAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateProfileScores(ctx, created.ID, jobboard.ScoreVector{Backend: 80, DevOps: 70}, scoredAt))

	updated, err := s.UpsertProfile(ctx, &jobboard.Profile{
		UserID: userID,
		Name:   "Ada Lovelace",
		Email:  "ada@example.com",
		Skills: []string{"Go", "SQL"},
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Ada Lovelace", updated.Name)
	assert.Equal(t, []string{"Go", "SQL"}, updated.Skills)
	assert.Equal(t, 80, updated.Scores.Backend)
	assert.Equal(t, 70, updated.Scores.DevOps)
	assert.Equal(t, jobboard.ScoringPending, updated.ScoringStatus)

	byUser, err := s.GetProfileByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUser.ID)
}

func testScoringStatus(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, _, profile := Seed(t, s)

	require.NoError(t, s.UpdateProfileScores(ctx, profile.ID, jobboard.ScoreVector{Frontend: 55}, time.Now()))
	require.NoError(t, s.UpdateScoringStatus(ctx, profile.ID, jobboard.ScoringEmptyResponse, "ai returned empty response"))

	got, err := s.GetProfile(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, jobboard.ScoringEmptyResponse, got.ScoringStatus)
	assert.Equal(t, "ai returned empty response", got.ScoringError)
	assert.Equal(t, 55, got.Scores.Frontend, "a failed attempt keeps the previous scores")
	require.NotNil(t, got.LastScoredAt)

	failed, err := s.ListProfilesByScoringStatus(ctx, jobboard.FailedScoringStatuses...)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, profile.ID, failed[0].ID)

	require.NoError(t, s.UpdateProfileScores(ctx, profile.ID, jobboard.ScoreVector{Frontend: 60}, time.Now()))
	got, err = s.GetProfile(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, jobboard.ScoringScored, got.ScoringStatus)
	assert.Empty(t, got.ScoringError)
}

func testAutoApplyProfiles(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, _, profile := Seed(t, s)

	list, err := s.ListAutoApplyProfiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	prefs := jobboard.AutoApplyPreferences{
		JobTypes:  []jobboard.Category{jobboard.CategoryBackend},
		MinScore:  70,
		Locations: []string{"Berlin"},
	}
	updated, err := s.SetAutoApply(ctx, profile.ID, true, prefs)
	require.NoError(t, err)
	assert.True(t, updated.AutoApplyEnabled)
	assert.Equal(t, prefs, updated.AutoApply)

	list, err = s.ListAutoApplyProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 70, list[0].AutoApply.MinScore)
}

func testCompanyUpsert(t *testing.T, s store.Store) {
	ctx := context.Background()
	userID := uuid.New()

	first, err := s.UpsertCompany(ctx, &jobboard.Company{UserID: userID, Name: "Initech"})
	require.NoError(t, err)

	second, err := s.UpsertCompany(ctx, &jobboard.Company{UserID: userID, Name: "Initrode", Industry: "Printers"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Initrode", second.Name)

	byUser, err := s.GetCompanyByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Printers", byUser.Industry)

	all, err := s.ListCompanies(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testJobs(t *testing.T, s store.Store) {
	ctx := context.Background()
	company, job, _ := Seed(t, s)

	assert.True(t, job.IsActive)
	assert.Zero(t, job.ApplicationCount)

	job.IsActive = false
	job.Title = "Senior Backend Engineer"
	job.ApplicationCount = 42
	updated, err := s.UpdateJob(ctx, job)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Senior Backend Engineer", updated.Title)
	assert.Zero(t, updated.ApplicationCount, "counter is not writable through UpdateJob")

	active, err := s.ListActiveJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	byCompany, err := s.ListJobsByCompany(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, byCompany, 1)
	assert.Equal(t, job.ID, byCompany[0].ID)

	_, err = s.CreateJob(ctx, &jobboard.Job{CompanyID: uuid.New(), Title: "Orphan", Category: jobboard.CategoryDesign})
	assert.ErrorIs(t, err, jobboard.ErrNotFound)
}

func testApplicationOncePerPair(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, job, profile := Seed(t, s)

	app, err := s.CreateApplication(ctx, &jobboard.Application{
		JobID:         job.ID,
		ProfileID:     profile.ID,
		IsAutoApplied: true,
		AIMatchScore:  77,
	})
	require.NoError(t, err)
	assert.Equal(t, jobboard.StatusPending, app.Status)
	assert.False(t, app.AppliedAt.IsZero())

	_, err = s.CreateApplication(ctx, &jobboard.Application{JobID: job.ID, ProfileID: profile.ID})
	assert.ErrorIs(t, err, jobboard.ErrAlreadyExists)

	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ApplicationCount)

	byProfile, err := s.ListApplicationsByProfile(ctx, profile.ID)
	require.NoError(t, err)
	require.Len(t, byProfile, 1)
	assert.Equal(t, 77, byProfile[0].AIMatchScore)
	assert.True(t, byProfile[0].IsAutoApplied)

	byJob, err := s.ListApplicationsByJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Len(t, byJob, 1)
}

func testConcurrentApplications(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, job, profile := Seed(t, s)

	const writers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateApplication(ctx, &jobboard.Application{JobID: job.ID, ProfileID: profile.ID})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ApplicationCount)
}

func testApplicationStatus(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, job, profile := Seed(t, s)

	app, err := s.CreateApplication(ctx, &jobboard.Application{JobID: job.ID, ProfileID: profile.ID})
	require.NoError(t, err)

	reviewed, err := s.UpdateApplicationStatus(ctx, app.ID, jobboard.StatusPending, jobboard.StatusReviewed)
	require.NoError(t, err)
	assert.Equal(t, jobboard.StatusReviewed, reviewed.Status)

	_, err = s.UpdateApplicationStatus(ctx, app.ID, jobboard.StatusPending, jobboard.StatusAccepted)
	assert.ErrorIs(t, err, jobboard.ErrInvalidTransition, "stale from-status must fail")

	_, err = s.UpdateApplicationStatus(ctx, app.ID, jobboard.StatusReviewed, jobboard.StatusPending)
	assert.ErrorIs(t, err, jobboard.ErrInvalidTransition)

	accepted, err := s.UpdateApplicationStatus(ctx, app.ID, jobboard.StatusReviewed, jobboard.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, jobboard.StatusAccepted, accepted.Status)

	_, err = s.UpdateApplicationStatus(ctx, app.ID, jobboard.StatusAccepted, jobboard.StatusRejected)
	assert.ErrorIs(t, err, jobboard.ErrInvalidTransition)
}

func testRecommendations(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, job, profile := Seed(t, s)

	rec := &jobboard.Recommendation{
		ProfileID: profile.ID,
		JobID:     job.ID,
		Score:     85,
		Reasons:   []string{"Excellent skill match"},
	}
	created, err := s.CreateRecommendation(ctx, rec)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.CreateRecommendation(ctx, &jobboard.Recommendation{ProfileID: profile.ID, JobID: job.ID, Score: 10})
	require.NoError(t, err)
	assert.False(t, created)

	list, err := s.ListRecommendationsByProfile(ctx, profile.ID, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 85, list[0].Score)
	assert.Equal(t, []string{"Excellent skill match"}, list[0].Reasons)
	assert.False(t, list[0].IsViewed)

	require.NoError(t, s.MarkRecommendationViewed(ctx, list[0].ID))
	got, err := s.GetRecommendation(ctx, list[0].ID)
	require.NoError(t, err)
	assert.True(t, got.IsViewed)
}

func testNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	missing := uuid.New()

	_, err := s.GetProfile(ctx, missing)
	assert.ErrorIs(t, err, jobboard.ErrNotFound)
	_, err = s.GetProfileByUser(ctx, missing)
	assert.ErrorIs(t, err, jobboard.ErrNotFound)
	_, err = s.GetCompany(ctx, missing)
	assert.ErrorIs(t, err, jobboard.ErrNotFound)
	_, err = s.GetJob(ctx, missing)
	assert.ErrorIs(t, err, jobboard.ErrNotFound)
	_, err = s.GetApplication(ctx, missing)
	assert.ErrorIs(t, err, jobboard.ErrNotFound)
	_, err = s.GetRecommendation(ctx, missing)
	assert.ErrorIs(t, err, jobboard.ErrNotFound)
	assert.ErrorIs(t, s.MarkRecommendationViewed(ctx, missing), jobboard.ErrNotFound)
	assert.ErrorIs(t, s.UpdateScoringStatus(ctx, missing, jobboard.ScoringScored, ""), jobboard.ErrNotFound)
}
