package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/spigell/jobmatch/internal/jobboard"
	"github.com/spigell/jobmatch/internal/logger"
)

// JobView is a posting together with the company that published it.
type JobView struct {
	*jobboard.Job
	Company *jobboard.Company `json:"company"`
}

func (b *Board) ListActiveJobs(ctx context.Context) ([]JobView, error) {
	jobs, err := b.store.ListActiveJobs(ctx)
	if err != nil {
		return nil, err
	}
	return b.withCompanies(ctx, jobs)
}

// ListJobsByCompany lists the active postings of a company.
func (b *Board) ListJobsByCompany(ctx context.Context, companyID uuid.UUID) ([]*jobboard.Job, error) {
	if _, err := b.store.GetCompany(ctx, companyID); err != nil {
		return nil, err
	}
	jobs, err := b.store.ListJobsByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	active := make([]*jobboard.Job, 0, len(jobs))
	for _, j := range jobs {
		if j.IsActive {
			active = append(active, j)
		}
	}
	return active, nil
}

// MyJobs lists every posting of the user's company, inactive ones included.
func (b *Board) MyJobs(ctx context.Context, userID uuid.UUID) ([]*jobboard.Job, error) {
	company, err := b.ownCompany(ctx, userID)
	if err != nil {
		return nil, err
	}
	return b.store.ListJobsByCompany(ctx, company.ID)
}

func (b *Board) GetJob(ctx context.Context, id uuid.UUID) (JobView, error) {
	job, err := b.store.GetJob(ctx, id)
	if err != nil {
		return JobView{}, err
	}
	company, err := b.store.GetCompany(ctx, job.CompanyID)
	if err != nil {
		return JobView{}, err
	}
	return JobView{Job: job, Company: company}, nil
}

// CreateJob publishes a posting for the user's company and schedules auto-apply evaluation.
func (b *Board) CreateJob(ctx context.Context, userID uuid.UUID, req CreateJobRequest) (*jobboard.Job, error) {
	if err := b.check(req); err != nil {
		return nil, err
	}
	category, err := jobboard.ParseCategory(req.JobType)
	if err != nil {
		return nil, err
	}
	company, err := b.ownCompany(ctx, userID)
	if err != nil {
		return nil, err
	}

	employment := req.EmploymentType
	if employment == "" {
		employment = jobboard.EmploymentFullTime
	}

	job, err := b.store.CreateJob(ctx, &jobboard.Job{
		CompanyID:      company.ID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Requirements:   compact(req.Requirements),
		Category:       category,
		Location:       strings.TrimSpace(req.Location),
		Salary:         req.Salary,
		EmploymentType: employment,
		IsActive:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	b.scheduler.JobPublished(job.ID)
	b.logger.Info("job published", logger.JobField(job.ID), logger.CompanyField(company.ID))
	return job, nil
}

// UpdateJob applies a partial update decoded from a JSON object. Reactivating a posting schedules
// auto-apply evaluation again.
func (b *Board) UpdateJob(ctx context.Context, userID, jobID uuid.UUID, fields map[string]any) (*jobboard.Job, error) {
	patch, err := decodeJobPatch(fields)
	if err != nil {
		return nil, err
	}
	if err := b.check(patch); err != nil {
		return nil, err
	}

	job, _, err := b.ownJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	wasActive := job.IsActive

	if err := patch.apply(job); err != nil {
		return nil, err
	}

	updated, err := b.store.UpdateJob(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}

	if !wasActive && updated.IsActive {
		b.scheduler.JobPublished(updated.ID)
	}
	b.logger.Info("job updated", logger.JobField(updated.ID))
	return updated, nil
}

func decodeJobPatch(fields map[string]any) (JobPatch, error) {
	var patch JobPatch
	if len(fields) == 0 {
		return patch, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &patch,
		ErrorUnused: true,
	})
	if err != nil {
		return patch, err
	}
	if err := dec.Decode(fields); err != nil {
		return patch, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return patch, nil
}

func (p JobPatch) apply(job *jobboard.Job) error {
	if p.JobType != nil {
		category, err := jobboard.ParseCategory(*p.JobType)
		if err != nil {
			return err
		}
		job.Category = category
	}
	if p.Title != nil {
		job.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		job.Description = *p.Description
	}
	if p.Requirements != nil {
		job.Requirements = compact(*p.Requirements)
	}
	if p.Location != nil {
		job.Location = strings.TrimSpace(*p.Location)
	}
	if p.Salary != nil {
		job.Salary = p.Salary
	}
	if p.EmploymentType != nil {
		job.EmploymentType = *p.EmploymentType
	}
	if p.IsActive != nil {
		job.IsActive = *p.IsActive
	}
	return nil
}

func (b *Board) withCompanies(ctx context.Context, jobs []*jobboard.Job) ([]JobView, error) {
	companies := newCompanyCache(b.store)
	out := make([]JobView, 0, len(jobs))
	for _, job := range jobs {
		company, err := companies.get(ctx, job.CompanyID)
		if err != nil {
			if errors.Is(err, jobboard.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, JobView{Job: job, Company: company})
	}
	return out, nil
}
