// Package service implements the job-board operations a signed-in user performs. Every method takes
// the acting user's id and enforces ownership before touching the store.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/jobboard"
	"github.com/spigell/jobmatch/internal/store"
)

// ErrInvalidInput wraps every request validation failure.
var ErrInvalidInput = errors.New("invalid input")

// Scheduler receives the background triggers. Both calls must return immediately.
type Scheduler interface {
	ProfileUpserted(profileID uuid.UUID)
	JobPublished(jobID uuid.UUID)
}

type noopScheduler struct{}

func (noopScheduler) ProfileUpserted(uuid.UUID) {}
func (noopScheduler) JobPublished(uuid.UUID)    {}

// Board is the job-board facade used by the HTTP server and the CLI.
type Board struct {
	store     store.Store
	scheduler Scheduler
	validate  *validator.Validate
	logger    *zap.Logger
}

func New(st store.Store, scheduler Scheduler, log *zap.Logger) *Board {
	if scheduler == nil {
		scheduler = noopScheduler{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Board{
		store:     st,
		scheduler: scheduler,
		validate:  validator.New(),
		logger:    log,
	}
}

func (b *Board) check(req any) error {
	if err := b.validate.Struct(req); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError reports the first failed field.
func validationError(err error) error {
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		fe := fields[0]
		return fmt.Errorf("%w: %s failed on %s", ErrInvalidInput, fe.Field(), fe.Tag())
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}

// ownCompany loads the acting user's company or fails with ErrCompanyRequired.
func (b *Board) ownCompany(ctx context.Context, userID uuid.UUID) (*jobboard.Company, error) {
	company, err := b.store.GetCompanyByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, jobboard.ErrNotFound) {
			return nil, jobboard.ErrCompanyRequired
		}
		return nil, err
	}
	return company, nil
}

// ownJob loads a job and checks that the acting user's company posted it.
func (b *Board) ownJob(ctx context.Context, userID, jobID uuid.UUID) (*jobboard.Job, *jobboard.Company, error) {
	job, err := b.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	company, err := b.store.GetCompany(ctx, job.CompanyID)
	if err != nil {
		return nil, nil, err
	}
	if !company.OwnedBy(userID) {
		return nil, nil, jobboard.ErrNotAuthorized
	}
	return job, company, nil
}

// companyCache avoids loading the same company once per listed job.
type companyCache struct {
	store store.Companies
	byID  map[uuid.UUID]*jobboard.Company
}

func newCompanyCache(st store.Companies) *companyCache {
	return &companyCache{store: st, byID: map[uuid.UUID]*jobboard.Company{}}
}

func (c *companyCache) get(ctx context.Context, id uuid.UUID) (*jobboard.Company, error) {
	if company, ok := c.byID[id]; ok {
		return company, nil
	}
	company, err := c.store.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	c.byID[id] = company
	return company, nil
}
