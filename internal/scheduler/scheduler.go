package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	DailyRetentionSpec    = "30 3 * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	pruneUsageTimeout     = 5 * time.Minute
)

// Pruner removes ledger rows older than a cutoff.
type Pruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler runs the usage ledger retention job.
type Scheduler struct {
	ctx       context.Context
	cron      *cron.Cron
	pruner    Pruner
	retention time.Duration
	now       func() time.Time
	log       *slog.Logger
}

func New(ctx context.Context, pruner Pruner, retention time.Duration, log *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:       ctx,
		cron:      c,
		pruner:    pruner,
		retention: retention,
		now:       time.Now,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(DailyRetentionSpec, s.pruneUsage); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

// Stop stops the cron and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) pruneUsage() {
	ctx, cancel := context.WithTimeout(s.ctx, pruneUsageTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	cutoff := s.now().Add(-s.retention)

	pruned, err := s.pruner.PruneBefore(ctx, cutoff)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to prune usage",
			"error", err,
			"cutoff", cutoff,
			"retention", s.retention)

		return
	}

	s.log.InfoContext(ctx, "Usage is pruned",
		"pruned", pruned,
		"cutoff", cutoff,
		"retention", s.retention)
}
