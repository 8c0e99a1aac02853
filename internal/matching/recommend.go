// Package matching turns stored score vectors into recommendations and automatic applications.
package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/jobboard"
	"github.com/spigell/jobmatch/internal/logger"
)

const (
	// RecommendationThreshold is the minimum category score that produces a recommendation.
	RecommendationThreshold = 60

	excellentScore  = 80
	goodScore       = 70
	maxSkillReasons = 3
)

type RecommendationStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*jobboard.Profile, error)
	ListActiveJobs(ctx context.Context) ([]*jobboard.Job, error)
	CreateRecommendation(ctx context.Context, rec *jobboard.Recommendation) (bool, error)
}

// RecommendationSummary counts what one Generate call did.
type RecommendationSummary struct {
	Considered int
	Qualified  int
	Created    int
	Existing   int
}

type Recommender struct {
	store  RecommendationStore
	logger *zap.Logger
}

func NewRecommender(store RecommendationStore, log *zap.Logger) *Recommender {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recommender{store: store, logger: log}
}

// Generate records a recommendation for every active job whose category score reaches
// RecommendationThreshold. Jobs that already have a recommendation for the profile are left
// untouched, so repeated calls never create duplicates.
func (r *Recommender) Generate(ctx context.Context, profileID uuid.UUID) (RecommendationSummary, error) {
	var summary RecommendationSummary

	profile, err := r.store.GetProfile(ctx, profileID)
	if err != nil {
		return summary, fmt.Errorf("load profile: %w", err)
	}

	jobs, err := r.store.ListActiveJobs(ctx)
	if err != nil {
		return summary, fmt.Errorf("list active jobs: %w", err)
	}

	log := r.logger.With(logger.ProfileField(profile.ID))

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Considered++

		score := profile.Scores.For(job.Category)
		if score < RecommendationThreshold {
			continue
		}
		summary.Qualified++

		created, err := r.store.CreateRecommendation(ctx, &jobboard.Recommendation{
			ProfileID: profile.ID,
			JobID:     job.ID,
			Score:     score,
			Reasons:   Reasons(profile, job, score),
		})
		if err != nil {
			if errors.Is(err, jobboard.ErrNotFound) {
				log.Debug("job vanished before recommendation", logger.JobField(job.ID))
				continue
			}
			return summary, fmt.Errorf("create recommendation for job %s: %w", job.ID, err)
		}
		if !created {
			summary.Existing++
			continue
		}
		summary.Created++
		log.Debug("recommendation created", logger.JobField(job.ID), zap.Int("score", score))
	}

	log.Info("recommendations generated",
		zap.Int("considered", summary.Considered),
		zap.Int("qualified", summary.Qualified),
		zap.Int("created", summary.Created),
		zap.Int("existing", summary.Existing),
	)

	return summary, nil
}

// Reasons explains a recommendation: a score tier, then an optional location match, then up to
// three of the profile's skills found in the job requirements.
func Reasons(profile *jobboard.Profile, job *jobboard.Job, score int) []string {
	reasons := []string{TierReason(score)}

	if loc := strings.ToLower(strings.TrimSpace(profile.Location)); loc != "" &&
		strings.Contains(strings.ToLower(job.Location), loc) {
		reasons = append(reasons, "Location match")
	}

	requirements := job.RequirementsText()
	var matched []string
	for _, skill := range profile.Skills {
		if len(matched) == maxSkillReasons {
			break
		}
		s := strings.ToLower(strings.TrimSpace(skill))
		if s == "" {
			continue
		}
		if strings.Contains(requirements, s) {
			matched = append(matched, skill)
		}
	}
	if len(matched) > 0 {
		reasons = append(reasons, "Skills match: "+strings.Join(matched, ", "))
	}

	return reasons
}

func TierReason(score int) string {
	switch {
	case score >= excellentScore:
		return "Excellent skill match"
	case score >= goodScore:
		return "Good skill match"
	default:
		return "Decent skill match"
	}
}
