// Package memory keeps the whole job board in process memory. It backs tests and the
// `--storage memory` mode and follows the same atomicity rules as the PostgreSQL store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/jobmatch/internal/jobboard"
	"github.com/spigell/jobmatch/internal/store"
)

var _ store.Store = (*Store)(nil)

type pairKey struct {
	profile uuid.UUID
	job     uuid.UUID
}

type Option func(*Store)

// WithClock overrides the time source used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	profiles      map[uuid.UUID]*jobboard.Profile
	profileByUser map[uuid.UUID]uuid.UUID
	profileOrder  []uuid.UUID

	companies     map[uuid.UUID]*jobboard.Company
	companyByUser map[uuid.UUID]uuid.UUID
	companyOrder  []uuid.UUID

	jobs     map[uuid.UUID]*jobboard.Job
	jobOrder []uuid.UUID

	applications      map[uuid.UUID]*jobboard.Application
	applicationByPair map[pairKey]uuid.UUID
	applicationOrder  []uuid.UUID

	recommendations      map[uuid.UUID]*jobboard.Recommendation
	recommendationByPair map[pairKey]uuid.UUID
	recommendationOrder  []uuid.UUID
}

func New(opts ...Option) *Store {
	s := &Store{
		now:                  time.Now,
		profiles:             make(map[uuid.UUID]*jobboard.Profile),
		profileByUser:        make(map[uuid.UUID]uuid.UUID),
		companies:            make(map[uuid.UUID]*jobboard.Company),
		companyByUser:        make(map[uuid.UUID]uuid.UUID),
		jobs:                 make(map[uuid.UUID]*jobboard.Job),
		applications:         make(map[uuid.UUID]*jobboard.Application),
		applicationByPair:    make(map[pairKey]uuid.UUID),
		recommendations:      make(map[uuid.UUID]*jobboard.Recommendation),
		recommendationByPair: make(map[pairKey]uuid.UUID),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Close() {}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

func notFound(kind string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", kind, id, jobboard.ErrNotFound)
}

// -----------------------------------------------------------------------------
// Profiles
// -----------------------------------------------------------------------------

func (s *Store) GetProfile(_ context.Context, id uuid.UUID) (*jobboard.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, notFound("profile", id)
	}
	return p.Clone(), nil
}

func (s *Store) GetProfileByUser(_ context.Context, userID uuid.UUID) (*jobboard.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.profileByUser[userID]
	if !ok {
		return nil, fmt.Errorf("profile for user %s: %w", userID, jobboard.ErrNotFound)
	}
	return s.profiles[id].Clone(), nil
}

func (s *Store) UpsertProfile(_ context.Context, profile *jobboard.Profile) (*jobboard.Profile, error) {
	if profile == nil {
		return nil, fmt.Errorf("profile is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timestamp()
	in := profile.Clone()

	if id, ok := s.profileByUser[in.UserID]; ok {
		existing := s.profiles[id]
		existing.Name = in.Name
		existing.Email = in.Email
		existing.Phone = in.Phone
		existing.Location = in.Location
		existing.Bio = in.Bio
		existing.Experience = in.Experience
		existing.Education = in.Education
		existing.Skills = in.Skills
		existing.ResumeURL = in.ResumeURL
		existing.ScoringStatus = jobboard.ScoringPending
		existing.ScoringError = ""
		existing.UpdatedAt = now
		return existing.Clone(), nil
	}

	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	in.Scores = jobboard.ScoreVector{}
	in.ScoringStatus = jobboard.ScoringPending
	in.ScoringError = ""
	in.LastScoredAt = nil
	in.CreatedAt = now
	in.UpdatedAt = now

	s.profiles[in.ID] = in
	s.profileByUser[in.UserID] = in.ID
	s.profileOrder = append(s.profileOrder, in.ID)
	return in.Clone(), nil
}

func (s *Store) SetAutoApply(_ context.Context, id uuid.UUID, enabled bool, prefs jobboard.AutoApplyPreferences) (*jobboard.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, notFound("profile", id)
	}
	p.AutoApplyEnabled = enabled
	p.AutoApply = jobboard.AutoApplyPreferences{
		JobTypes:  append([]jobboard.Category(nil), prefs.JobTypes...),
		MinScore:  prefs.MinScore,
		Locations: append([]string(nil), prefs.Locations...),
	}
	p.UpdatedAt = s.timestamp()
	return p.Clone(), nil
}

func (s *Store) UpdateProfileScores(_ context.Context, id uuid.UUID, scores jobboard.ScoreVector, scoredAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return notFound("profile", id)
	}
	at := scoredAt.UTC()
	p.Scores = scores
	p.ScoringStatus = jobboard.ScoringScored
	p.ScoringError = ""
	p.LastScoredAt = &at
	p.UpdatedAt = s.timestamp()
	return nil
}

func (s *Store) UpdateScoringStatus(_ context.Context, id uuid.UUID, status jobboard.ScoringStatus, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return notFound("profile", id)
	}
	p.ScoringStatus = status
	p.ScoringError = message
	return nil
}

func (s *Store) ListAutoApplyProfiles(_ context.Context) ([]*jobboard.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*jobboard.Profile
	for _, id := range s.profileOrder {
		if p := s.profiles[id]; p.AutoApplyEnabled {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (s *Store) ListProfilesByScoringStatus(_ context.Context, statuses ...jobboard.ScoringStatus) ([]*jobboard.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[jobboard.ScoringStatus]struct{}, len(statuses))
	for _, st := range statuses {
		wanted[st] = struct{}{}
	}

	var out []*jobboard.Profile
	for _, id := range s.profileOrder {
		p := s.profiles[id]
		if _, ok := wanted[p.ScoringStatus]; ok {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Companies
// -----------------------------------------------------------------------------

func (s *Store) GetCompany(_ context.Context, id uuid.UUID) (*jobboard.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.companies[id]
	if !ok {
		return nil, notFound("company", id)
	}
	cp := *c
	return &cp, nil
}

func (s *Store) GetCompanyByUser(_ context.Context, userID uuid.UUID) (*jobboard.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.companyByUser[userID]
	if !ok {
		return nil, fmt.Errorf("company for user %s: %w", userID, jobboard.ErrNotFound)
	}
	cp := *s.companies[id]
	return &cp, nil
}

func (s *Store) UpsertCompany(_ context.Context, company *jobboard.Company) (*jobboard.Company, error) {
	if company == nil {
		return nil, fmt.Errorf("company is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timestamp()

	if id, ok := s.companyByUser[company.UserID]; ok {
		existing := s.companies[id]
		existing.Name = company.Name
		existing.Description = company.Description
		existing.Industry = company.Industry
		existing.Size = company.Size
		existing.Location = company.Location
		existing.Website = company.Website
		existing.LogoURL = company.LogoURL
		existing.UpdatedAt = now
		cp := *existing
		return &cp, nil
	}

	in := *company
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	in.CreatedAt = now
	in.UpdatedAt = now

	s.companies[in.ID] = &in
	s.companyByUser[in.UserID] = in.ID
	s.companyOrder = append(s.companyOrder, in.ID)
	cp := in
	return &cp, nil
}

func (s *Store) ListCompanies(_ context.Context) ([]*jobboard.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*jobboard.Company, 0, len(s.companyOrder))
	for _, id := range s.companyOrder {
		cp := *s.companies[id]
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// -----------------------------------------------------------------------------
// Jobs
// -----------------------------------------------------------------------------

func (s *Store) CreateJob(_ context.Context, job *jobboard.Job) (*jobboard.Job, error) {
	if job == nil {
		return nil, fmt.Errorf("job is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.companies[job.CompanyID]; !ok {
		return nil, notFound("company", job.CompanyID)
	}

	now := s.timestamp()
	in := job.Clone()
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	in.ApplicationCount = 0
	in.CreatedAt = now
	in.UpdatedAt = now

	s.jobs[in.ID] = in
	s.jobOrder = append(s.jobOrder, in.ID)
	return in.Clone(), nil
}

func (s *Store) GetJob(_ context.Context, id uuid.UUID) (*jobboard.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, notFound("job", id)
	}
	return j.Clone(), nil
}

func (s *Store) UpdateJob(_ context.Context, job *jobboard.Job) (*jobboard.Job, error) {
	if job == nil {
		return nil, fmt.Errorf("job is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.jobs[job.ID]
	if !ok {
		return nil, notFound("job", job.ID)
	}

	in := job.Clone()
	existing.Title = in.Title
	existing.Description = in.Description
	existing.Requirements = in.Requirements
	existing.Category = in.Category
	existing.Location = in.Location
	existing.Salary = in.Salary
	existing.EmploymentType = in.EmploymentType
	existing.IsActive = in.IsActive
	existing.UpdatedAt = s.timestamp()
	return existing.Clone(), nil
}

// ListActiveJobs returns active postings, newest first.
func (s *Store) ListActiveJobs(_ context.Context) ([]*jobboard.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*jobboard.Job
	for i := len(s.jobOrder) - 1; i >= 0; i-- {
		if j := s.jobs[s.jobOrder[i]]; j.IsActive {
			out = append(out, j.Clone())
		}
	}
	return out, nil
}

func (s *Store) ListJobsByCompany(_ context.Context, companyID uuid.UUID) ([]*jobboard.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*jobboard.Job
	for i := len(s.jobOrder) - 1; i >= 0; i-- {
		if j := s.jobs[s.jobOrder[i]]; j.CompanyID == companyID {
			out = append(out, j.Clone())
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Applications
// -----------------------------------------------------------------------------

func (s *Store) CreateApplication(_ context.Context, app *jobboard.Application) (*jobboard.Application, error) {
	if app == nil {
		return nil, fmt.Errorf("application is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[app.JobID]
	if !ok {
		return nil, notFound("job", app.JobID)
	}
	if _, ok := s.profiles[app.ProfileID]; !ok {
		return nil, notFound("profile", app.ProfileID)
	}

	key := pairKey{profile: app.ProfileID, job: app.JobID}
	if _, exists := s.applicationByPair[key]; exists {
		return nil, fmt.Errorf("application for job %s: %w", app.JobID, jobboard.ErrAlreadyExists)
	}

	now := s.timestamp()
	in := *app
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	if in.Status == "" {
		in.Status = jobboard.StatusPending
	}
	if in.AppliedAt.IsZero() {
		in.AppliedAt = now
	}
	in.UpdatedAt = now

	s.applications[in.ID] = &in
	s.applicationByPair[key] = in.ID
	s.applicationOrder = append(s.applicationOrder, in.ID)
	job.ApplicationCount++

	cp := in
	return &cp, nil
}

func (s *Store) GetApplication(_ context.Context, id uuid.UUID) (*jobboard.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.applications[id]
	if !ok {
		return nil, notFound("application", id)
	}
	cp := *a
	return &cp, nil
}

func (s *Store) ListApplicationsByProfile(_ context.Context, profileID uuid.UUID) ([]*jobboard.Application, error) {
	return s.listApplications(func(a *jobboard.Application) bool { return a.ProfileID == profileID }), nil
}

func (s *Store) ListApplicationsByJob(_ context.Context, jobID uuid.UUID) ([]*jobboard.Application, error) {
	return s.listApplications(func(a *jobboard.Application) bool { return a.JobID == jobID }), nil
}

func (s *Store) listApplications(match func(*jobboard.Application) bool) []*jobboard.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*jobboard.Application
	for i := len(s.applicationOrder) - 1; i >= 0; i-- {
		a := s.applications[s.applicationOrder[i]]
		if match(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out
}

func (s *Store) UpdateApplicationStatus(_ context.Context, id uuid.UUID, from, to jobboard.ApplicationStatus) (*jobboard.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.applications[id]
	if !ok {
		return nil, notFound("application", id)
	}
	if a.Status != from || !from.CanTransition(to) {
		return nil, fmt.Errorf("application %s is %s, cannot move from %s to %s: %w", id, a.Status, from, to, jobboard.ErrInvalidTransition)
	}

	a.Status = to
	a.UpdatedAt = s.timestamp()
	cp := *a
	return &cp, nil
}

// -----------------------------------------------------------------------------
// Recommendations
// -----------------------------------------------------------------------------

func (s *Store) CreateRecommendation(_ context.Context, rec *jobboard.Recommendation) (bool, error) {
	if rec == nil {
		return false, fmt.Errorf("recommendation is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{profile: rec.ProfileID, job: rec.JobID}
	if _, exists := s.recommendationByPair[key]; exists {
		return false, nil
	}

	in := *rec
	in.Reasons = append([]string(nil), rec.Reasons...)
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	in.CreatedAt = s.timestamp()

	s.recommendations[in.ID] = &in
	s.recommendationByPair[key] = in.ID
	s.recommendationOrder = append(s.recommendationOrder, in.ID)
	return true, nil
}

func (s *Store) GetRecommendation(_ context.Context, id uuid.UUID) (*jobboard.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recommendations[id]
	if !ok {
		return nil, notFound("recommendation", id)
	}
	return cloneRecommendation(r), nil
}

func (s *Store) ListRecommendationsByProfile(_ context.Context, profileID uuid.UUID, limit int) ([]*jobboard.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*jobboard.Recommendation
	for i := len(s.recommendationOrder) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		r := s.recommendations[s.recommendationOrder[i]]
		if r.ProfileID == profileID {
			out = append(out, cloneRecommendation(r))
		}
	}
	return out, nil
}

func (s *Store) MarkRecommendationViewed(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.recommendations[id]
	if !ok {
		return notFound("recommendation", id)
	}
	r.IsViewed = true
	return nil
}

func cloneRecommendation(r *jobboard.Recommendation) *jobboard.Recommendation {
	cp := *r
	cp.Reasons = append([]string(nil), r.Reasons...)
	return &cp
}
