package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/jobmatch/internal/jobboard"
	"github.com/spigell/jobmatch/internal/matching"
)

type stubRunner struct {
	mu       sync.Mutex
	outcomes []Outcome
	calls    int
	applied  []uuid.UUID
	applyErr error
}

func (r *stubRunner) ScoreProfile(_ context.Context, profileID uuid.UUID) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	outcome := OutcomeScored
	if r.calls < len(r.outcomes) {
		outcome = r.outcomes[r.calls]
	}
	r.calls++

	res := Result{ProfileID: profileID, Outcome: outcome}
	if outcome != OutcomeScored {
		res.Err = errors.New(string(outcome))
	}
	return res
}

func (r *stubRunner) AutoApply(_ context.Context, jobID uuid.UUID) (matching.AutoApplySummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, jobID)
	return matching.AutoApplySummary{JobID: jobID, Applied: 2}, r.applyErr
}

type statusCall struct {
	id      uuid.UUID
	status  jobboard.ScoringStatus
	message string
}

type stubStatuses struct {
	mu    sync.Mutex
	calls []statusCall
}

func (s *stubStatuses) UpdateScoringStatus(_ context.Context, id uuid.UUID, status jobboard.ScoringStatus, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, statusCall{id: id, status: status, message: message})
	return nil
}

func (s *stubStatuses) recorded() []statusCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]statusCall(nil), s.calls...)
}

// startDispatcher runs d until the test ends and returns the channel its reports arrive on.
func startDispatcher(t *testing.T, runner Runner, statuses StatusRecorder, cfg Config) (*Dispatcher, <-chan Report) {
	t.Helper()
	reports := make(chan Report, 16)
	d := NewDispatcher(runner, statuses, cfg, zap.NewNop(), WithReporter(func(r Report) { reports <- r }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return d, reports
}

func waitReport(t *testing.T, reports <-chan Report) Report {
	t.Helper()
	select {
	case r := <-reports:
		return r
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for report")
		return Report{}
	}
}

func TestDispatcherRetriesGeneratorFailures(t *testing.T) {
	runner := &stubRunner{outcomes: []Outcome{OutcomeGeneratorFailed, OutcomeGeneratorFailed, OutcomeScored}}
	statuses := &stubStatuses{}
	d, reports := startDispatcher(t, runner, statuses, Config{Workers: 1, MaxRetries: 2})

	id := uuid.New()
	d.ProfileUpserted(id)
	rep := waitReport(t, reports)

	if rep.Kind != TaskScoreProfile || rep.ID != id {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if rep.Attempts != 3 || rep.Outcome != OutcomeScored || rep.Err != nil {
		t.Fatalf("expected success on third attempt, got %+v", rep)
	}
	if got := statuses.recorded(); len(got) != 0 {
		t.Fatalf("scored runs must not record a status, got %+v", got)
	}
}

func TestDispatcherGivesUpAfterMaxRetries(t *testing.T) {
	runner := &stubRunner{outcomes: []Outcome{OutcomeGeneratorFailed, OutcomeGeneratorFailed, OutcomeGeneratorFailed}}
	statuses := &stubStatuses{}
	d, reports := startDispatcher(t, runner, statuses, Config{Workers: 1, MaxRetries: 1})

	id := uuid.New()
	d.ProfileUpserted(id)
	rep := waitReport(t, reports)

	if rep.Attempts != 2 || rep.Outcome != OutcomeGeneratorFailed {
		t.Fatalf("expected two attempts, got %+v", rep)
	}
	got := statuses.recorded()
	if len(got) != 1 || got[0].id != id || got[0].status != jobboard.ScoringGeneratorFailed {
		t.Fatalf("unexpected status calls: %+v", got)
	}
	if got[0].message != string(OutcomeGeneratorFailed) {
		t.Fatalf("unexpected status message %q", got[0].message)
	}
}

func TestDispatcherDoesNotRetryMalformedScores(t *testing.T) {
	runner := &stubRunner{outcomes: []Outcome{OutcomeMalformedScores}}
	statuses := &stubStatuses{}
	d, reports := startDispatcher(t, runner, statuses, Config{Workers: 2, MaxRetries: 3})

	d.ProfileUpserted(uuid.New())
	rep := waitReport(t, reports)

	if rep.Attempts != 1 || rep.Outcome != OutcomeMalformedScores {
		t.Fatalf("unexpected report: %+v", rep)
	}
	got := statuses.recorded()
	if len(got) != 1 || got[0].status != jobboard.ScoringMalformedScores {
		t.Fatalf("unexpected status calls: %+v", got)
	}
}

func TestDispatcherSkipsStatusForMissingProfile(t *testing.T) {
	runner := &stubRunner{outcomes: []Outcome{OutcomeProfileMissing}}
	statuses := &stubStatuses{}
	d, reports := startDispatcher(t, runner, statuses, Config{Workers: 1})

	d.ProfileUpserted(uuid.New())
	if rep := waitReport(t, reports); rep.Outcome != OutcomeProfileMissing {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if got := statuses.recorded(); len(got) != 0 {
		t.Fatalf("expected no status calls, got %+v", got)
	}
}

func TestDispatcherRunsAutoApply(t *testing.T) {
	runner := &stubRunner{}
	d, reports := startDispatcher(t, runner, nil, Config{Workers: 1})

	jobID := uuid.New()
	d.JobPublished(jobID)
	rep := waitReport(t, reports)

	if rep.Kind != TaskAutoApply || rep.ID != jobID || rep.AutoApply.Applied != 2 || rep.Err != nil {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestDispatcherDropsWhenQueueIsFull(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewDispatcher(&stubRunner{}, nil, Config{Workers: 1, QueueSize: 1}, zap.New(core))

	d.ProfileUpserted(uuid.New())
	d.ProfileUpserted(uuid.New())
	d.JobPublished(uuid.New())

	if len(d.queue) != 1 {
		t.Fatalf("expected one queued task, got %d", len(d.queue))
	}
	if n := logs.FilterMessage("task dropped: queue is full").Len(); n != 2 {
		t.Fatalf("expected 2 drop warnings, got %d", n)
	}
}

func TestNewDispatcherDefaults(t *testing.T) {
	d := NewDispatcher(&stubRunner{}, nil, Config{MaxRetries: -1}, nil)
	if d.cfg.Workers != defaultWorkers || d.cfg.QueueSize != defaultQueueSize || d.cfg.MaxRetries != 0 {
		t.Fatalf("unexpected defaults: %+v", d.cfg)
	}
}
