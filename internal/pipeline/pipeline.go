// Package pipeline runs profile scoring end to end and schedules it in the background.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/ai"
	"github.com/spigell/jobmatch/internal/jobboard"
	"github.com/spigell/jobmatch/internal/logger"
	"github.com/spigell/jobmatch/internal/matching"
	"github.com/spigell/jobmatch/internal/store"
)

// Outcome classifies a scoring run.
type Outcome string

const (
	OutcomeScored          Outcome = "scored"
	OutcomeEmptyResponse   Outcome = "empty_response"
	OutcomeMalformedScores Outcome = "malformed_scores"
	OutcomeGeneratorFailed Outcome = "generator_failed"
	OutcomeProfileMissing  Outcome = "profile_missing"
	OutcomeStoreFailed     Outcome = "store_failed"
)

// Retryable reports whether running the same profile again may succeed.
func (o Outcome) Retryable() bool {
	return o == OutcomeGeneratorFailed
}

// ScoringStatus maps an outcome onto the status persisted on the profile. The second value is
// false for outcomes that cannot be recorded on the profile.
func (o Outcome) ScoringStatus() (jobboard.ScoringStatus, bool) {
	switch o {
	case OutcomeScored:
		return jobboard.ScoringScored, true
	case OutcomeEmptyResponse:
		return jobboard.ScoringEmptyResponse, true
	case OutcomeMalformedScores:
		return jobboard.ScoringMalformedScores, true
	case OutcomeGeneratorFailed:
		return jobboard.ScoringGeneratorFailed, true
	default:
		return "", false
	}
}

// Result is what one ScoreProfile call produced. Err is nil only for OutcomeScored.
type Result struct {
	ProfileID       uuid.UUID
	Outcome         Outcome
	Scores          jobboard.ScoreVector
	Recommendations matching.RecommendationSummary
	Err             error
}

type Option func(*Pipeline)

// WithClock overrides the time recorded as last_scored_at.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// Pipeline wires prompt building, the model call, score storage and recommendation generation.
type Pipeline struct {
	store       store.Store
	scorer      ai.ProfileScorer
	recommender *matching.Recommender
	applier     *matching.AutoApplier
	logger      *zap.Logger
	now         func() time.Time
}

func New(st store.Store, scorer ai.ProfileScorer, log *zap.Logger, opts ...Option) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pipeline{
		store:       st,
		scorer:      scorer,
		recommender: matching.NewRecommender(st, log),
		applier:     matching.NewAutoApplier(st, log),
		logger:      log,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ScoreProfile scores one profile, stores the vector and refreshes its recommendations. It never
// panics and never returns a bare error: every failure is folded into the Result.
func (p *Pipeline) ScoreProfile(ctx context.Context, profileID uuid.UUID) Result {
	res := Result{ProfileID: profileID}
	log := p.logger.With(logger.ProfileField(profileID))

	profile, err := p.store.GetProfile(ctx, profileID)
	if err != nil {
		return p.fail(log, res, storeOutcome(err), fmt.Errorf("load profile: %w", err))
	}

	assessment, err := p.scorer.Score(ctx, profile)
	if err != nil {
		return p.fail(log, res, classifyScoringError(err), err)
	}
	res.Scores = assessment.Scores

	if err := p.store.UpdateProfileScores(ctx, profileID, assessment.Scores, p.now()); err != nil {
		return p.fail(log, res, storeOutcome(err), fmt.Errorf("store scores: %w", err))
	}

	summary, err := p.recommender.Generate(ctx, profileID)
	res.Recommendations = summary
	if err != nil {
		return p.fail(log, res, OutcomeStoreFailed, fmt.Errorf("generate recommendations: %w", err))
	}

	res.Outcome = OutcomeScored
	best, score := assessment.Scores.Best()
	log.Info("profile scored",
		zap.String(logger.FieldScoringOutcome, string(res.Outcome)),
		zap.String("best_category", best.String()),
		zap.Int("best_score", score),
		zap.Int("recommendations_created", summary.Created),
	)
	return res
}

// AutoApply evaluates a published job against every auto-apply profile.
func (p *Pipeline) AutoApply(ctx context.Context, jobID uuid.UUID) (matching.AutoApplySummary, error) {
	return p.applier.Evaluate(ctx, jobID)
}

func (p *Pipeline) fail(log *zap.Logger, res Result, outcome Outcome, err error) Result {
	res.Outcome = outcome
	res.Err = err
	log.Warn("profile scoring failed",
		zap.String(logger.FieldScoringOutcome, string(outcome)),
		zap.Error(err),
	)
	return res
}

func classifyScoringError(err error) Outcome {
	switch {
	case errors.Is(err, ai.ErrEmptyResponse):
		return OutcomeEmptyResponse
	case errors.Is(err, ai.ErrMalformedScoreJSON):
		return OutcomeMalformedScores
	default:
		return OutcomeGeneratorFailed
	}
}

func storeOutcome(err error) Outcome {
	if errors.Is(err, jobboard.ErrNotFound) {
		return OutcomeProfileMissing
	}
	return OutcomeStoreFailed
}
