package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/jobboard"
)

type appliedHistoryFilter struct{ toggle }

// NewAppliedHistory drops profiles that already have an application for the job. The storage
// layer still rejects duplicates on insert; this step only avoids pointless attempts.
func NewAppliedHistory() Filter {
	return &appliedHistoryFilter{}
}

func (f *appliedHistoryFilter) Name() string { return "applied_history" }

func (f *appliedHistoryFilter) Validate(*jobboard.Job) error { return nil }

func (f *appliedHistoryFilter) Apply(ctx context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	if deps.Applications == nil {
		if deps.Logger != nil {
			deps.Logger.Debug("application lister is not configured; skipping applied_history filter")
		}
		return c, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}
	if initial == 0 {
		return c, Step{}, nil
	}

	existing, err := deps.Applications.ListApplicationsByJob(ctx, c.Job.ID)
	if err != nil {
		return c, Step{}, fmt.Errorf("list applications for job: %w", err)
	}

	applied := make(map[string]struct{}, len(existing))
	for _, app := range existing {
		applied[app.ProfileID.String()] = struct{}{}
	}

	excluded := c.Keep(func(cand *Candidate) bool {
		_, ok := applied[cand.Profile.ID.String()]
		return !ok
	})
	logExcluded(deps, "excluding profiles that already applied", excluded, c.Len(),
		zap.Int("existing_applications", len(existing)))

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *appliedHistoryFilter) Status() Status {
	return f.status(f.Name(), map[string]string{
		"exclude_applied": strconv.FormatBool(f.IsEnabled()),
	})
}
