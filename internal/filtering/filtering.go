package filtering

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/jobboard"
	"github.com/spigell/jobmatch/internal/logger"
)

// Filter represents a single filtering step applied to auto-apply candidates.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(job *jobboard.Job) error
	Apply(ctx context.Context, deps Deps, c *Candidates) (*Candidates, Step, error)
}

// ApplicationLister lists existing applications for a job.
type ApplicationLister interface {
	ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]*jobboard.Application, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger       *zap.Logger
	Applications ApplicationLister
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// StepResult pairs a step with the filter that produced it.
type StepResult struct {
	Name string
	Step Step
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// DefaultSteps returns the auto-apply eligibility chain in evaluation order.
func DefaultSteps() []Filter {
	return []Filter{
		NewAutoApplyEnabled(),
		NewJobTypes(),
		NewLocations(),
		NewMinScore(),
		NewAppliedHistory(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the surviving candidates.
func Run(ctx context.Context, deps Deps, steps []Filter, c *Candidates) (*Candidates, []StepResult, error) {
	if c == nil || c.Job == nil {
		return nil, nil, fmt.Errorf("candidates for a job are required")
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(c.Job); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(logger.JobField(c.Job.ID))

	results := make([]StepResult, 0, len(steps))
	for _, step := range steps {
		if !step.IsEnabled() {
			log.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, Deps{Logger: log, Applications: deps.Applications}, c)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		log.Debug("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		results = append(results, StepResult{Name: step.Name(), Step: info})
		c = next
	}

	return c, results, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// consentSteps guard the preferences a profile opted into. Applying with one of them disabled
// would apply the profile to jobs it never agreed to.
var consentSteps = map[string]bool{
	"auto_apply_enabled": true,
	"job_types":          true,
	"locations":          true,
	"min_score":          true,
}

// IsConsentStep reports whether the named step enforces a profile's auto-apply preferences.
func IsConsentStep(name string) bool {
	return consentSteps[name]
}

// DisabledConsentSteps returns the names of disabled consent steps in steps.
func DisabledConsentSteps(steps []Filter) []string {
	var names []string
	for _, step := range steps {
		if !step.IsEnabled() && IsConsentStep(step.Name()) {
			names = append(names, step.Name())
		}
	}
	return names
}
