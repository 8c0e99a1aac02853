package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/jobmatch/internal/jobboard"
	"github.com/spigell/jobmatch/internal/logger"
	"github.com/spigell/jobmatch/internal/matching"
	"github.com/spigell/jobmatch/internal/utils"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 128
)

// Runner is the work the dispatcher schedules. *Pipeline implements it.
type Runner interface {
	ScoreProfile(ctx context.Context, profileID uuid.UUID) Result
	AutoApply(ctx context.Context, jobID uuid.UUID) (matching.AutoApplySummary, error)
}

// StatusRecorder persists the outcome of a failed scoring run on the profile.
type StatusRecorder interface {
	UpdateScoringStatus(ctx context.Context, id uuid.UUID, status jobboard.ScoringStatus, message string) error
}

type TaskKind string

const (
	TaskScoreProfile TaskKind = "score_profile"
	TaskAutoApply    TaskKind = "auto_apply"
)

// Report describes a finished task.
type Report struct {
	Kind      TaskKind
	ID        uuid.UUID
	Attempts  int
	Outcome   Outcome
	AutoApply matching.AutoApplySummary
	Err       error
}

type Config struct {
	Workers    int           `mapstructure:"workers"`
	QueueSize  int           `mapstructure:"queue-size"`
	MaxRetries int           `mapstructure:"max-retries"`
	RetryDelay time.Duration `mapstructure:"retry-delay"`
}

type task struct {
	kind TaskKind
	id   uuid.UUID
}

type DispatcherOption func(*Dispatcher)

// WithReporter registers a callback invoked after every finished task.
func WithReporter(fn func(Report)) DispatcherOption {
	return func(d *Dispatcher) { d.report = fn }
}

// Dispatcher runs scoring and auto-apply tasks on a fixed pool of workers. Enqueueing never blocks
// the caller: when the queue is full the task is dropped and logged. Tasks still queued when Run
// returns are lost.
type Dispatcher struct {
	runner   Runner
	statuses StatusRecorder
	cfg      Config
	logger   *zap.Logger
	queue    chan task
	report   func(Report)
}

func NewDispatcher(runner Runner, statuses StatusRecorder, cfg Config, log *zap.Logger, opts ...DispatcherOption) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if log == nil {
		log = zap.NewNop()
	}

	d := &Dispatcher{
		runner:   runner,
		statuses: statuses,
		cfg:      cfg,
		logger:   log,
		queue:    make(chan task, cfg.QueueSize),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ProfileUpserted schedules scoring for a created or edited profile.
func (d *Dispatcher) ProfileUpserted(profileID uuid.UUID) {
	d.enqueue(task{kind: TaskScoreProfile, id: profileID})
}

// JobPublished schedules auto-apply evaluation for a job that became active.
func (d *Dispatcher) JobPublished(jobID uuid.UUID) {
	d.enqueue(task{kind: TaskAutoApply, id: jobID})
}

func (d *Dispatcher) enqueue(t task) {
	select {
	case d.queue <- t:
		d.logger.Debug("task queued", zap.String("kind", string(t.kind)), zap.String("id", t.id.String()))
	default:
		d.logger.Warn("task dropped: queue is full",
			zap.String("kind", string(t.kind)),
			zap.String("id", t.id.String()),
			zap.Int("queue_size", d.cfg.QueueSize),
		)
	}
}

// Run processes tasks until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < d.cfg.Workers; i++ {
		worker := i
		g.Go(func() error {
			d.work(gctx, worker)
			return nil
		})
	}
	d.logger.Info("dispatcher started", zap.Int("workers", d.cfg.Workers), zap.Int("queue_size", d.cfg.QueueSize))
	err := g.Wait()
	d.logger.Info("dispatcher stopped", zap.Int("pending_tasks", len(d.queue)))
	return err
}

func (d *Dispatcher) work(ctx context.Context, worker int) {
	log := d.logger.With(zap.Int("worker", worker))
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-d.queue:
			var rep Report
			switch t.kind {
			case TaskScoreProfile:
				rep = d.score(ctx, log, t.id)
			case TaskAutoApply:
				rep = d.autoApply(ctx, log, t.id)
			}
			if d.report != nil {
				d.report(rep)
			}
		}
	}
}

func (d *Dispatcher) score(ctx context.Context, log *zap.Logger, profileID uuid.UUID) Report {
	rep := Report{Kind: TaskScoreProfile, ID: profileID}
	log = log.With(logger.ProfileField(profileID))

	var res Result
	for {
		rep.Attempts++
		res = d.runner.ScoreProfile(ctx, profileID)
		if !res.Outcome.Retryable() || rep.Attempts > d.cfg.MaxRetries {
			break
		}
		log.Info("retrying profile scoring",
			zap.Int("attempt", rep.Attempts),
			zap.Duration("delay", d.cfg.RetryDelay),
			zap.Error(res.Err),
		)
		if err := utils.WaitFor(ctx, d.cfg.RetryDelay); err != nil {
			break
		}
	}

	rep.Outcome = res.Outcome
	rep.Err = res.Err
	d.recordStatus(ctx, log, profileID, res)
	return rep
}

// recordStatus stores failed outcomes; successful runs already wrote their status with the scores.
func (d *Dispatcher) recordStatus(ctx context.Context, log *zap.Logger, profileID uuid.UUID, res Result) {
	if d.statuses == nil || res.Outcome == OutcomeScored {
		return
	}
	status, ok := res.Outcome.ScoringStatus()
	if !ok {
		return
	}

	message := ""
	if res.Err != nil {
		message = utils.TruncateForLog(res.Err.Error(), 500)
	}
	if err := d.statuses.UpdateScoringStatus(context.WithoutCancel(ctx), profileID, status, message); err != nil {
		log.Error("failed to record scoring status", zap.String("status", string(status)), zap.Error(err))
	}
}

func (d *Dispatcher) autoApply(ctx context.Context, log *zap.Logger, jobID uuid.UUID) Report {
	rep := Report{Kind: TaskAutoApply, ID: jobID, Attempts: 1}
	summary, err := d.runner.AutoApply(ctx, jobID)
	rep.AutoApply = summary
	rep.Err = err
	if err != nil {
		log.Error("auto-apply failed", logger.JobField(jobID), zap.Error(err))
	}
	return rep
}
