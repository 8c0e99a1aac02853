package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/jobboard"
)

const sweepTimeout = time.Minute

// FailedProfileLister finds profiles whose last scoring attempt failed.
type FailedProfileLister interface {
	ListProfilesByScoringStatus(ctx context.Context, statuses ...jobboard.ScoringStatus) ([]*jobboard.Profile, error)
}

// ProfileEnqueuer schedules scoring for a profile.
type ProfileEnqueuer interface {
	ProfileUpserted(profileID uuid.UUID)
}

// Sweeper periodically re-dispatches profiles left in a failed scoring state.
type Sweeper struct {
	cron     *cron.Cron
	profiles FailedProfileLister
	enqueuer ProfileEnqueuer
	logger   *zap.Logger
	schedule string
}

// NewSweeper registers the sweep on schedule, a cron expression or descriptor such as "@every 30m".
func NewSweeper(profiles FailedProfileLister, enqueuer ProfileEnqueuer, schedule string, log *zap.Logger) (*Sweeper, error) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		return nil, fmt.Errorf("sweep schedule is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Sweeper{
		cron:     cron.New(),
		profiles: profiles,
		enqueuer: enqueuer,
		logger:   log,
		schedule: schedule,
	}

	if _, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("scoring sweep failed", zap.Error(err))
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	return s, nil
}

// Sweep enqueues every failed profile once and returns how many were enqueued.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	failed, err := s.profiles.ListProfilesByScoringStatus(ctx, jobboard.FailedScoringStatuses...)
	if err != nil {
		return 0, fmt.Errorf("list failed profiles: %w", err)
	}

	for _, p := range failed {
		s.enqueuer.ProfileUpserted(p.ID)
	}

	if len(failed) > 0 {
		s.logger.Info("re-dispatched failed profiles", zap.Int("profiles", len(failed)))
	}
	return len(failed), nil
}

// Run starts the schedule and blocks until ctx is cancelled and any running sweep has finished.
func (s *Sweeper) Run(ctx context.Context) error {
	s.cron.Start()
	s.logger.Info("scoring sweeper started", zap.String("schedule", s.schedule))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scoring sweeper stopped")
	return nil
}
