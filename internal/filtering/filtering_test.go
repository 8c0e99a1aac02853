package filtering

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/jobmatch/internal/jobboard"
)

type stubApplications struct {
	apps []*jobboard.Application
	err  error
}

func (s *stubApplications) ListApplicationsByJob(context.Context, uuid.UUID) ([]*jobboard.Application, error) {
	return s.apps, s.err
}

func backendJob() *jobboard.Job {
	return &jobboard.Job{
		ID:       uuid.New(),
		Title:    "Backend Engineer",
		Category: jobboard.CategoryBackend,
		Location: "Berlin, Germany",
		IsActive: true,
	}
}

func candidate(name string, enabled bool, backend, minScore int, types []jobboard.Category, locations ...string) *jobboard.Profile {
	return &jobboard.Profile{
		ID:               uuid.New(),
		Name:             name,
		Scores:           jobboard.ScoreVector{Backend: backend},
		AutoApplyEnabled: enabled,
		AutoApply: jobboard.AutoApplyPreferences{
			JobTypes:  types,
			MinScore:  minScore,
			Locations: locations,
		},
	}
}

func names(c *Candidates) []string {
	out := make([]string, 0, c.Len())
	for _, item := range c.Items {
		out = append(out, item.Profile.Name)
	}
	return out
}

func TestRunDefaultSteps(t *testing.T) {
	backend := []jobboard.Category{jobboard.CategoryBackend}
	profiles := []*jobboard.Profile{
		candidate("eligible", true, 75, 70, backend, "berlin"),
		candidate("disabled", false, 90, 10, backend),
		candidate("wrong-type", true, 90, 10, []jobboard.Category{jobboard.CategoryDesign}),
		candidate("wrong-location", true, 90, 10, backend, "Paris"),
		candidate("below-min", true, 65, 70, backend),
		candidate("no-location-pref", true, 70, 70, backend),
		candidate("already-applied", true, 99, 10, backend),
	}
	job := backendJob()
	apps := &stubApplications{apps: []*jobboard.Application{{JobID: job.ID, ProfileID: profiles[6].ID}}}

	result, steps, err := Run(context.Background(), Deps{Logger: zap.NewNop(), Applications: apps}, DefaultSteps(), NewCandidates(job, profiles))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := names(result)
	if len(got) != 2 || got[0] != "eligible" || got[1] != "no-location-pref" {
		t.Fatalf("unexpected survivors: %v", got)
	}

	expected := []StepResult{
		{Name: "auto_apply_enabled", Step: Step{Initial: 7, Dropped: 1, Left: 6}},
		{Name: "job_types", Step: Step{Initial: 6, Dropped: 1, Left: 5}},
		{Name: "locations", Step: Step{Initial: 5, Dropped: 1, Left: 4}},
		{Name: "min_score", Step: Step{Initial: 4, Dropped: 1, Left: 3}},
		{Name: "applied_history", Step: Step{Initial: 3, Dropped: 1, Left: 2}},
	}
	if len(steps) != len(expected) {
		t.Fatalf("expected %d steps, got %d", len(expected), len(steps))
	}
	for i := range expected {
		if steps[i] != expected[i] {
			t.Fatalf("step %d: expected %+v, got %+v", i, expected[i], steps[i])
		}
	}

	if result.Items[0].Score != 75 {
		t.Fatalf("expected candidate score to be the backend score, got %d", result.Items[0].Score)
	}
}

func TestLocationMatchIsOneDirectional(t *testing.T) {
	backend := []jobboard.Category{jobboard.CategoryBackend}
	job := backendJob()
	job.Location = "Berlin"

	profiles := []*jobboard.Profile{
		candidate("broader-preference", true, 90, 10, backend, "Berlin, Germany"),
		candidate("case-insensitive", true, 90, 10, backend, "BERLIN"),
	}

	result, _, err := Run(context.Background(), Deps{}, []Filter{NewLocations()}, NewCandidates(job, profiles))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := names(result)
	if len(got) != 1 || got[0] != "case-insensitive" {
		t.Fatalf("unexpected survivors: %v", got)
	}
}

func TestRunDisabledStep(t *testing.T) {
	profiles := []*jobboard.Profile{candidate("off", false, 90, 0, nil)}
	steps := []Filter{NewAutoApplyEnabled()}
	DisableByName(steps, "auto_apply_enabled", "dry run")

	core, observed := observer.New(zapcore.DebugLevel)
	result, results, err := Run(context.Background(), Deps{Logger: zap.New(core)}, steps, NewCandidates(backendJob(), profiles))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Len() != 1 {
		t.Fatalf("expected disabled step to keep candidates, got %d", result.Len())
	}
	if len(results) != 0 {
		t.Fatalf("expected no step results, got %v", results)
	}
	if observed.FilterMessage("filter disabled").Len() != 1 {
		t.Fatalf("expected disabled filter to be logged")
	}

	statuses := Describe(steps)
	if len(statuses) != 1 || statuses[0].Enabled || statuses[0].Reason != "dry run" {
		t.Fatalf("unexpected status: %+v", statuses)
	}
}

func TestRunValidatesCategory(t *testing.T) {
	job := backendJob()
	job.Category = "astronaut"

	_, _, err := Run(context.Background(), Deps{}, DefaultSteps(), NewCandidates(job, nil))
	if !errors.Is(err, jobboard.ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestAppliedHistoryError(t *testing.T) {
	boom := errors.New("db down")
	profiles := []*jobboard.Profile{candidate("p", true, 90, 0, nil)}

	_, _, err := Run(context.Background(), Deps{Applications: &stubApplications{err: boom}}, []Filter{NewAppliedHistory()}, NewCandidates(backendJob(), profiles))
	if !errors.Is(err, boom) {
		t.Fatalf("expected lister error, got %v", err)
	}
}

func TestRunRequiresJob(t *testing.T) {
	if _, _, err := Run(context.Background(), Deps{}, DefaultSteps(), &Candidates{}); err == nil {
		t.Fatalf("expected error without job")
	}
}

func TestDisabledConsentSteps(t *testing.T) {
	steps := DefaultSteps()
	if got := DisabledConsentSteps(steps); len(got) != 0 {
		t.Fatalf("expected no disabled consent steps, got %v", got)
	}

	DisableByName(steps, "applied_history", "rerun")
	if got := DisabledConsentSteps(steps); len(got) != 0 {
		t.Fatalf("applied_history is not a consent step, got %v", got)
	}

	DisableByName(steps, "locations", "test")
	DisableByName(steps, "min_score", "test")
	got := DisabledConsentSteps(steps)
	if len(got) != 2 || got[0] != "locations" || got[1] != "min_score" {
		t.Fatalf("unexpected disabled consent steps: %v", got)
	}

	if IsConsentStep("applied_history") || !IsConsentStep("job_types") {
		t.Fatalf("unexpected consent classification")
	}
}
