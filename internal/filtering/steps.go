package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/jobboard"
)

// toggle carries the enable/disable state shared by every step.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

func (t *toggle) status(name string, details map[string]string) Status {
	return Status{Name: name, Enabled: !t.disabled, Reason: t.reason, Details: details}
}

func logExcluded(deps Deps, msg string, excluded []string, left int, fields ...zap.Field) {
	if deps.Logger == nil || len(excluded) == 0 {
		return
	}
	fields = append(fields,
		zap.Strings("excluded_profiles", excluded),
		zap.Int("candidates_left", left),
	)
	deps.Logger.Debug(msg, fields...)
}

type autoApplyEnabledFilter struct{ toggle }

// NewAutoApplyEnabled drops profiles that have not switched auto-apply on.
func NewAutoApplyEnabled() Filter {
	return &autoApplyEnabledFilter{}
}

func (f *autoApplyEnabledFilter) Name() string { return "auto_apply_enabled" }

func (f *autoApplyEnabledFilter) Validate(*jobboard.Job) error { return nil }

func (f *autoApplyEnabledFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	excluded := c.Keep(func(cand *Candidate) bool { return cand.Profile.AutoApplyEnabled })
	logExcluded(deps, "excluding profiles with auto-apply disabled", excluded, c.Len())
	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *autoApplyEnabledFilter) Status() Status { return f.status(f.Name(), nil) }

type jobTypesFilter struct{ toggle }

// NewJobTypes keeps profiles whose preferred job types include the job's category.
func NewJobTypes() Filter {
	return &jobTypesFilter{}
}

func (f *jobTypesFilter) Name() string { return "job_types" }

func (f *jobTypesFilter) Validate(job *jobboard.Job) error {
	if !job.Category.Valid() {
		return fmt.Errorf("job %s: %w: %q", job.ID, jobboard.ErrInvalidCategory, job.Category)
	}
	return nil
}

func (f *jobTypesFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	category := c.Job.Category
	excluded := c.Keep(func(cand *Candidate) bool { return cand.Profile.AutoApply.Accepts(category) })
	logExcluded(deps, "excluding profiles by preferred job types", excluded, c.Len(),
		zap.String("job_type", category.String()))
	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *jobTypesFilter) Status() Status { return f.status(f.Name(), nil) }

type locationsFilter struct{ toggle }

// NewLocations keeps profiles with no preferred locations or with at least one contained in the
// job location.
func NewLocations() Filter {
	return &locationsFilter{}
}

func (f *locationsFilter) Name() string { return "locations" }

func (f *locationsFilter) Validate(*jobboard.Job) error { return nil }

func (f *locationsFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	location := c.Job.Location
	excluded := c.Keep(func(cand *Candidate) bool { return cand.Profile.AutoApply.MatchesLocation(location) })
	logExcluded(deps, "excluding profiles by preferred locations", excluded, c.Len(),
		zap.String("job_location", location))
	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *locationsFilter) Status() Status {
	return f.status(f.Name(), map[string]string{"match": "job location contains preferred location"})
}

type minScoreFilter struct{ toggle }

// NewMinScore keeps profiles whose category score reaches their own configured minimum.
func NewMinScore() Filter {
	return &minScoreFilter{}
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) Validate(*jobboard.Job) error { return nil }

func (f *minScoreFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	excluded := c.Keep(func(cand *Candidate) bool { return cand.Score >= cand.Profile.AutoApply.MinScore })
	logExcluded(deps, "excluding profiles below their minimum score", excluded, c.Len())
	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *minScoreFilter) Status() Status { return f.status(f.Name(), nil) }
