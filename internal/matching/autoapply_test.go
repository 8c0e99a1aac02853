package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/filtering"
	"github.com/spigell/jobmatch/internal/jobboard"
)

func (b *board) enableAutoApply(t *testing.T, p *jobboard.Profile, minScore int, types []jobboard.Category, locations ...string) {
	t.Helper()
	_, err := b.store.SetAutoApply(context.Background(), p.ID, true, jobboard.AutoApplyPreferences{
		JobTypes:  types,
		MinScore:  minScore,
		Locations: locations,
	})
	if err != nil {
		t.Fatalf("enable auto-apply: %v", err)
	}
}

func TestEvaluateAppliesEligibleProfiles(t *testing.T) {
	ctx := context.Background()
	b := newBoard(t)
	job := b.job(t, jobboard.CategoryBackend, "Berlin, Germany", true)
	backend := []jobboard.Category{jobboard.CategoryBackend}

	eligible := b.profile(t, jobboard.ScoreVector{Backend: 75})
	b.enableAutoApply(t, eligible, 70, backend, "Berlin")

	low := b.profile(t, jobboard.ScoreVector{Backend: 65})
	b.enableAutoApply(t, low, 70, backend)

	elsewhere := b.profile(t, jobboard.ScoreVector{Backend: 95})
	b.enableAutoApply(t, elsewhere, 10, backend, "Lisbon")

	b.profile(t, jobboard.ScoreVector{Backend: 99})

	applier := NewAutoApplier(b.store, zap.NewNop())
	summary, err := applier.Evaluate(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Candidates != 3 || summary.Eligible != 1 || summary.Applied != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	apps, err := b.store.ListApplicationsByJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("list applications: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("expected 1 application, got %d", len(apps))
	}
	app := apps[0]
	if app.ProfileID != eligible.ID || !app.IsAutoApplied || app.Status != jobboard.StatusPending || app.AIMatchScore != 75 {
		t.Fatalf("unexpected application: %+v", app)
	}

	stored, err := b.store.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if stored.ApplicationCount != 1 {
		t.Fatalf("expected application count 1, got %d", stored.ApplicationCount)
	}

	again, err := applier.Evaluate(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error on rerun: %v", err)
	}
	if again.Applied != 0 {
		t.Fatalf("expected no new applications on rerun, got %+v", again)
	}
	stored, _ = b.store.GetJob(ctx, job.ID)
	if stored.ApplicationCount != 1 {
		t.Fatalf("expected application count to stay 1, got %d", stored.ApplicationCount)
	}
}

func TestEvaluateSkipsInactiveAndUnknownJobs(t *testing.T) {
	ctx := context.Background()
	b := newBoard(t)
	inactive := b.job(t, jobboard.CategoryBackend, "Remote", false)

	p := b.profile(t, jobboard.ScoreVector{Backend: 99})
	b.enableAutoApply(t, p, 0, []jobboard.Category{jobboard.CategoryBackend})

	applier := NewAutoApplier(b.store, nil)

	summary, err := applier.Evaluate(ctx, inactive.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Skipped == "" || summary.Applied != 0 {
		t.Fatalf("expected inactive job to be skipped, got %+v", summary)
	}

	summary, err = applier.Evaluate(ctx, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Skipped != "job not found" {
		t.Fatalf("expected unknown job to be skipped, got %+v", summary)
	}
}

func TestEvaluateDryRun(t *testing.T) {
	ctx := context.Background()
	b := newBoard(t)
	job := b.job(t, jobboard.CategoryDevOps, "Remote", true)

	p := b.profile(t, jobboard.ScoreVector{DevOps: 88})
	b.enableAutoApply(t, p, 80, []jobboard.Category{jobboard.CategoryDevOps})

	summary, err := NewAutoApplier(b.store, zap.NewNop(), WithDryRun()).Evaluate(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Eligible != 1 || summary.Applied != 0 {
		t.Fatalf("unexpected dry run summary: %+v", summary)
	}

	apps, _ := b.store.ListApplicationsByJob(ctx, job.ID)
	if len(apps) != 0 {
		t.Fatalf("dry run must not create applications")
	}
}

func withDisabled(names ...string) AutoApplyOption {
	return WithSteps(func() []filtering.Filter {
		steps := filtering.DefaultSteps()
		for _, name := range names {
			filtering.DisableByName(steps, name, "test")
		}
		return steps
	})
}

func TestEvaluateRefusesDisabledConsentSteps(t *testing.T) {
	ctx := context.Background()
	b := newBoard(t)
	job := b.job(t, jobboard.CategoryBackend, "Berlin", true)

	p := b.profile(t, jobboard.ScoreVector{Backend: 10})
	b.enableAutoApply(t, p, 90, []jobboard.Category{jobboard.CategoryDesign}, "Lisbon")

	_, err := NewAutoApplier(b.store, zap.NewNop(), withDisabled("job_types", "locations", "min_score")).Evaluate(ctx, job.ID)
	if !errors.Is(err, ErrConsentStepDisabled) {
		t.Fatalf("expected ErrConsentStepDisabled, got %v", err)
	}
	apps, _ := b.store.ListApplicationsByJob(ctx, job.ID)
	if len(apps) != 0 {
		t.Fatalf("expected no applications, got %d", len(apps))
	}

	summary, err := NewAutoApplier(b.store, zap.NewNop(), WithDryRun(), withDisabled("job_types", "locations", "min_score")).Evaluate(ctx, job.ID)
	if err != nil {
		t.Fatalf("dry run with disabled steps: %v", err)
	}
	if summary.Eligible != 1 || summary.Applied != 0 {
		t.Fatalf("unexpected dry run summary: %+v", summary)
	}
}

func TestEvaluateWithoutAppliedHistory(t *testing.T) {
	ctx := context.Background()
	b := newBoard(t)
	job := b.job(t, jobboard.CategoryBackend, "Berlin", true)

	p := b.profile(t, jobboard.ScoreVector{Backend: 80})
	b.enableAutoApply(t, p, 70, []jobboard.Category{jobboard.CategoryBackend})

	applier := NewAutoApplier(b.store, zap.NewNop(), withDisabled("applied_history"))
	first, err := applier.Evaluate(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := applier.Evaluate(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error on rerun: %v", err)
	}
	if first.Applied != 1 || second.Applied != 0 || second.Duplicates != 1 {
		t.Fatalf("unexpected summaries: %+v %+v", first, second)
	}
}
