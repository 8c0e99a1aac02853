package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/spigell/jobmatch/internal/jobboard"
)

const recommendationsPageSize = 20

type RecommendationView struct {
	*jobboard.Recommendation
	Job     *jobboard.Job     `json:"job"`
	Company *jobboard.Company `json:"company"`
}

// MyRecommendations returns the latest recommendations of the user's profile, best score first.
func (b *Board) MyRecommendations(ctx context.Context, userID uuid.UUID) ([]RecommendationView, error) {
	profile, err := b.store.GetProfileByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, jobboard.ErrNotFound) {
			return nil, jobboard.ErrProfileRequired
		}
		return nil, err
	}

	recs, err := b.store.ListRecommendationsByProfile(ctx, profile.ID, recommendationsPageSize)
	if err != nil {
		return nil, err
	}

	companies := newCompanyCache(b.store)
	out := make([]RecommendationView, 0, len(recs))
	for _, rec := range recs {
		job, err := b.store.GetJob(ctx, rec.JobID)
		if err != nil {
			if errors.Is(err, jobboard.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("load job %s: %w", rec.JobID, err)
		}
		company, err := companies.get(ctx, job.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("load company %s: %w", job.CompanyID, err)
		}
		out = append(out, RecommendationView{Recommendation: rec, Job: job, Company: company})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (b *Board) MarkRecommendationViewed(ctx context.Context, userID, recommendationID uuid.UUID) error {
	rec, err := b.store.GetRecommendation(ctx, recommendationID)
	if err != nil {
		return err
	}
	profile, err := b.store.GetProfile(ctx, rec.ProfileID)
	if err != nil {
		return err
	}
	if profile.UserID != userID {
		return jobboard.ErrNotAuthorized
	}
	return b.store.MarkRecommendationViewed(ctx, rec.ID)
}
