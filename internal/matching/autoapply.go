package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/filtering"
	"github.com/spigell/jobmatch/internal/jobboard"
	"github.com/spigell/jobmatch/internal/logger"
)

// ErrConsentStepDisabled is returned when applications would be created with a consent step off.
var ErrConsentStepDisabled = errors.New("consent steps can only be disabled in a dry run")

type AutoApplyStore interface {
	GetJob(ctx context.Context, id uuid.UUID) (*jobboard.Job, error)
	ListAutoApplyProfiles(ctx context.Context) ([]*jobboard.Profile, error)
	ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]*jobboard.Application, error)
	CreateApplication(ctx context.Context, app *jobboard.Application) (*jobboard.Application, error)
}

// AutoApplySummary reports one evaluation of a job posting.
type AutoApplySummary struct {
	JobID      uuid.UUID
	Skipped    string
	Candidates int
	Eligible   int
	Applied    int
	Duplicates int
	Steps      []filtering.StepResult
}

type AutoApplyOption func(*AutoApplier)

// WithDryRun makes Evaluate report eligible profiles without creating applications.
func WithDryRun() AutoApplyOption {
	return func(a *AutoApplier) { a.dryRun = true }
}

// WithSteps replaces the default eligibility chain.
func WithSteps(steps func() []filtering.Filter) AutoApplyOption {
	return func(a *AutoApplier) {
		if steps != nil {
			a.steps = steps
		}
	}
}

type AutoApplier struct {
	store  AutoApplyStore
	logger *zap.Logger
	steps  func() []filtering.Filter
	dryRun bool
}

func NewAutoApplier(store AutoApplyStore, log *zap.Logger, opts ...AutoApplyOption) *AutoApplier {
	if log == nil {
		log = zap.NewNop()
	}
	a := &AutoApplier{store: store, logger: log, steps: filtering.DefaultSteps}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Evaluate applies every eligible auto-apply profile to the job. Unknown or inactive jobs are
// skipped without error. Each application is created atomically together with the job's
// application counter; a profile that already applied is counted as a duplicate.
func (a *AutoApplier) Evaluate(ctx context.Context, jobID uuid.UUID) (AutoApplySummary, error) {
	summary := AutoApplySummary{JobID: jobID}
	log := a.logger.With(logger.JobField(jobID))

	chain := a.steps()
	if disabled := filtering.DisabledConsentSteps(chain); len(disabled) > 0 && !a.dryRun {
		return summary, fmt.Errorf("%w: %s", ErrConsentStepDisabled, strings.Join(disabled, ", "))
	}

	job, err := a.store.GetJob(ctx, jobID)
	if errors.Is(err, jobboard.ErrNotFound) {
		summary.Skipped = "job not found"
		log.Info("auto-apply skipped", zap.String("reason", summary.Skipped))
		return summary, nil
	}
	if err != nil {
		return summary, fmt.Errorf("load job: %w", err)
	}
	if !job.IsActive {
		summary.Skipped = "job is not active"
		log.Info("auto-apply skipped", zap.String("reason", summary.Skipped))
		return summary, nil
	}

	profiles, err := a.store.ListAutoApplyProfiles(ctx)
	if err != nil {
		return summary, fmt.Errorf("list auto-apply profiles: %w", err)
	}
	summary.Candidates = len(profiles)

	eligible, steps, err := filtering.Run(ctx,
		filtering.Deps{Logger: log, Applications: a.store},
		chain,
		filtering.NewCandidates(job, profiles),
	)
	if err != nil {
		return summary, fmt.Errorf("filter candidates: %w", err)
	}
	summary.Steps = steps
	summary.Eligible = eligible.Len()

	for _, cand := range eligible.Items {
		if a.dryRun {
			log.Info("auto-apply candidate (dry run)", logger.ProfileField(cand.Profile.ID), zap.Int("score", cand.Score))
			continue
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		app, err := a.store.CreateApplication(ctx, &jobboard.Application{
			JobID:         job.ID,
			ProfileID:     cand.Profile.ID,
			Status:        jobboard.StatusPending,
			IsAutoApplied: true,
			AIMatchScore:  cand.Score,
		})
		if errors.Is(err, jobboard.ErrAlreadyExists) {
			summary.Duplicates++
			continue
		}
		if err != nil {
			return summary, fmt.Errorf("auto-apply profile %s: %w", cand.Profile.ID, err)
		}

		summary.Applied++
		log.Info("auto-applied",
			logger.ProfileField(cand.Profile.ID),
			logger.ApplicationField(app.ID),
			zap.Int("score", cand.Score),
		)
	}

	log.Info("auto-apply evaluated",
		zap.Int("candidates", summary.Candidates),
		zap.Int("eligible", summary.Eligible),
		zap.Int("applied", summary.Applied),
		zap.Int("duplicates", summary.Duplicates),
		zap.Bool("dry_run", a.dryRun),
	)

	return summary, nil
}
