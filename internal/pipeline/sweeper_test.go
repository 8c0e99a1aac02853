package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/jobboard"
	"github.com/spigell/jobmatch/internal/store/memory"
)

type recordingEnqueuer struct {
	ids []uuid.UUID
}

func (r *recordingEnqueuer) ProfileUpserted(id uuid.UUID) {
	r.ids = append(r.ids, id)
}

type failingLister struct{}

func (failingLister) ListProfilesByScoringStatus(context.Context, ...jobboard.ScoringStatus) ([]*jobboard.Profile, error) {
	return nil, errors.New("database is down")
}

func TestSweepEnqueuesFailedProfiles(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	var failed []uuid.UUID
	for _, status := range []jobboard.ScoringStatus{
		jobboard.ScoringPending,
		jobboard.ScoringEmptyResponse,
		jobboard.ScoringGeneratorFailed,
	} {
		p, err := s.UpsertProfile(ctx, &jobboard.Profile{UserID: uuid.New(), Name: string(status)})
		if err != nil {
			t.Fatalf("create profile: %v", err)
		}
		if status == jobboard.ScoringPending {
			continue
		}
		if err := s.UpdateScoringStatus(ctx, p.ID, status, "boom"); err != nil {
			t.Fatalf("set status: %v", err)
		}
		failed = append(failed, p.ID)
	}

	enqueuer := &recordingEnqueuer{}
	sweeper, err := NewSweeper(s, enqueuer, "@every 30m", zap.NewNop())
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}

	n, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 2 || len(enqueuer.ids) != 2 {
		t.Fatalf("expected 2 profiles enqueued, got %d (%v)", n, enqueuer.ids)
	}
	seen := map[uuid.UUID]bool{}
	for _, id := range enqueuer.ids {
		seen[id] = true
	}
	for _, id := range failed {
		if !seen[id] {
			t.Fatalf("failed profile %s was not enqueued", id)
		}
	}
}

func TestSweepListError(t *testing.T) {
	sweeper, err := NewSweeper(failingLister{}, &recordingEnqueuer{}, "@hourly", nil)
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}
	if _, err := sweeper.Sweep(context.Background()); err == nil {
		t.Fatalf("expected list error")
	}
}

func TestNewSweeperRejectsBadSchedule(t *testing.T) {
	for _, schedule := range []string{"", "   ", "every now and then"} {
		if _, err := NewSweeper(failingLister{}, &recordingEnqueuer{}, schedule, nil); err == nil {
			t.Fatalf("expected error for schedule %q", schedule)
		}
	}
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	sweeper, err := NewSweeper(failingLister{}, &recordingEnqueuer{}, "@every 1h", nil)
	if err != nil {
		t.Fatalf("new sweeper: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sweeper.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
