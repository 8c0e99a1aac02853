package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/jobboard"
	"github.com/spigell/jobmatch/internal/logger"
)

// ApplicationView is one of the user's applications with the posting it targets.
type ApplicationView struct {
	*jobboard.Application
	Job     *jobboard.Job     `json:"job"`
	Company *jobboard.Company `json:"company"`
}

// Applicant is an application as the hiring company sees it.
type Applicant struct {
	*jobboard.Application
	Profile *jobboard.Profile `json:"profile"`
}

// ApplyForJob applies the user's profile to an active job. The application keeps the profile's
// current score for the job's category.
func (b *Board) ApplyForJob(ctx context.Context, userID, jobID uuid.UUID, req ApplyRequest) (*jobboard.Application, error) {
	if err := b.check(req); err != nil {
		return nil, err
	}

	profile, err := b.store.GetProfileByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, jobboard.ErrNotFound) {
			return nil, jobboard.ErrProfileRequired
		}
		return nil, err
	}

	job, err := b.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsActive {
		return nil, jobboard.ErrJobNotAvailable
	}

	app, err := b.store.CreateApplication(ctx, &jobboard.Application{
		JobID:        job.ID,
		ProfileID:    profile.ID,
		Status:       jobboard.StatusPending,
		CoverLetter:  req.CoverLetter,
		AIMatchScore: profile.Scores.For(job.Category),
	})
	if err != nil {
		return nil, err
	}

	b.logger.Info("application submitted",
		logger.ApplicationField(app.ID),
		logger.ProfileField(profile.ID),
		logger.JobField(job.ID),
		zap.Int("ai_match_score", app.AIMatchScore),
	)
	return app, nil
}

func (b *Board) MyApplications(ctx context.Context, userID uuid.UUID) ([]ApplicationView, error) {
	profile, err := b.store.GetProfileByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, jobboard.ErrNotFound) {
			return nil, jobboard.ErrProfileRequired
		}
		return nil, err
	}

	apps, err := b.store.ListApplicationsByProfile(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	companies := newCompanyCache(b.store)
	out := make([]ApplicationView, 0, len(apps))
	for _, app := range apps {
		job, err := b.store.GetJob(ctx, app.JobID)
		if err != nil {
			return nil, fmt.Errorf("load job %s: %w", app.JobID, err)
		}
		company, err := companies.get(ctx, job.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("load company %s: %w", job.CompanyID, err)
		}
		out = append(out, ApplicationView{Application: app, Job: job, Company: company})
	}
	return out, nil
}

// JobApplications lists applicants of the user's job, best AI match first.
func (b *Board) JobApplications(ctx context.Context, userID, jobID uuid.UUID) ([]Applicant, error) {
	if _, _, err := b.ownJob(ctx, userID, jobID); err != nil {
		return nil, err
	}

	apps, err := b.store.ListApplicationsByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	out := make([]Applicant, 0, len(apps))
	for _, app := range apps {
		profile, err := b.store.GetProfile(ctx, app.ProfileID)
		if err != nil {
			return nil, fmt.Errorf("load profile %s: %w", app.ProfileID, err)
		}
		out = append(out, Applicant{Application: app, Profile: profile})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AIMatchScore > out[j].AIMatchScore
	})
	return out, nil
}

// UpdateApplicationStatus moves an application of the user's job along the status machine.
func (b *Board) UpdateApplicationStatus(ctx context.Context, userID, applicationID uuid.UUID, req StatusRequest) (*jobboard.Application, error) {
	if err := b.check(req); err != nil {
		return nil, err
	}
	next, err := jobboard.ParseApplicationStatus(req.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	app, err := b.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if _, _, err := b.ownJob(ctx, userID, app.JobID); err != nil {
		return nil, err
	}
	if !app.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", jobboard.ErrInvalidTransition, app.Status, next)
	}

	updated, err := b.store.UpdateApplicationStatus(ctx, app.ID, app.Status, next)
	if err != nil {
		return nil, err
	}
	b.logger.Info("application status changed",
		logger.ApplicationField(app.ID),
		zap.String("from", string(app.Status)),
		zap.String("to", string(next)),
	)
	return updated, nil
}
