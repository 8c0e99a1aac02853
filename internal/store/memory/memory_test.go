package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/jobmatch/internal/jobboard"
	"github.com/spigell/jobmatch/internal/store"
	"github.com/spigell/jobmatch/internal/store/storetest"
)

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return New()
	})
}

func TestClockAndListOrder(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s := New(WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}))

	_, job, profile := storetest.Seed(t, s)
	assert.Equal(t, base.Add(2*time.Minute), job.CreatedAt)

	second, err := s.CreateJob(ctx, &jobboard.Job{
		CompanyID: job.CompanyID,
		Title:     "Designer",
		Category:  jobboard.CategoryDesign,
		IsActive:  true,
	})
	require.NoError(t, err)

	active, err := s.ListActiveJobs(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, second.ID, active[0].ID, "newest job comes first")

	for i := 0; i < 3; i++ {
		other, err := s.CreateJob(ctx, &jobboard.Job{CompanyID: job.CompanyID, Title: "Extra", Category: jobboard.CategoryMarketing, IsActive: true})
		require.NoError(t, err)
		_, err = s.CreateRecommendation(ctx, &jobboard.Recommendation{ProfileID: profile.ID, JobID: other.ID, Score: 60 + i})
		require.NoError(t, err)
	}

	recs, err := s.ListRecommendationsByProfile(ctx, profile.ID, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 62, recs[0].Score)
	assert.Equal(t, 61, recs[1].Score)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, job, profile := storetest.Seed(t, s)

	profile.Skills[0] = "mutated"
	job.Requirements[0] = "mutated"

	gotProfile, err := s.GetProfile(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", gotProfile.Skills[0])

	gotJob, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", gotJob.Requirements[0])

	_, err = s.CreateApplication(ctx, &jobboard.Application{JobID: job.ID, ProfileID: uuid.New()})
	assert.ErrorIs(t, err, jobboard.ErrNotFound)
}
