// Package scheduler drives incremental billing collection. Each run derives
// its window from the previously persisted one, persists the new window before
// collecting, and relies on sink idempotency for the shared boundary day.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	billingdomain "github.com/smallbiznis/billcollect/internal/billing/domain"
	"github.com/smallbiznis/billcollect/internal/clock"
	jobstatedomain "github.com/smallbiznis/billcollect/internal/jobstate/domain"
	"github.com/smallbiznis/billcollect/internal/leaderlock"
	obsmetrics "github.com/smallbiznis/billcollect/internal/observability/metrics"
	sbdomain "github.com/smallbiznis/billcollect/internal/scheduledbilling/domain"
	"go.uber.org/zap"
)

// Scheduler owns the collection cadence. A run is exclusive across the fleet
// (leader lock) and within the process (running flag).
type Scheduler struct {
	log       *zap.Logger
	clock     clock.Clock
	store     jobstatedomain.Store
	collector billingdomain.Service
	recurring sbdomain.Service
	locker    *leaderlock.Locker
	opts      Options

	cron   *cron.Cron
	ticker *time.Ticker
	done   chan struct{}
}

func New(
	log *zap.Logger,
	clk clock.Clock,
	store jobstatedomain.Store,
	collector billingdomain.Service,
	recurring sbdomain.Service,
	locker *leaderlock.Locker,
	opts Options,
) *Scheduler {
	return &Scheduler{
		log:       log.Named("scheduler"),
		clock:     clk,
		store:     store,
		collector: collector,
		recurring: recurring,
		locker:    locker,
		opts:      opts.withDefaults(),
		done:      make(chan struct{}),
	}
}

// RunOnce executes one collection run under the leader lock. When another
// instance holds the lock the tick is skipped silently.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	err := s.locker.TryRun(ctx, s.opts.LockKey, s.opts.MaxRunDuration, s.run)
	if errors.Is(err, leaderlock.ErrNotAcquired) {
		obsmetrics.Collector().IncLockSkip()
		obsmetrics.Collector().IncRun(obsmetrics.RunResultSkipped)
		s.log.Info("collection tick skipped, lock held elsewhere")
		return nil
	}
	return err
}

// run is the five-step collection cycle: derive window, persist it, collect,
// audit outcomes, then bill due recurring configurations.
func (s *Scheduler) run(ctx context.Context) error {
	started := s.clock.Now()
	today := truncateToDay(started)
	yesterday := today.AddDate(0, 0, -1)

	latest, err := s.store.Latest(ctx)
	if err != nil {
		obsmetrics.Collector().IncRun(obsmetrics.RunResultAborted)
		s.log.Error("aborting run, cannot read latest window", zap.Error(err))
		return err
	}

	// The window always ends at yesterday: upstream sources may not have
	// finalized same-day data, so today is never included. Bootstrap covers
	// that single day; afterwards each window starts at the previous
	// window's end so the boundary day is fetched twice rather than never.
	from, to := yesterday, yesterday
	if latest != nil {
		from = truncateToDay(latest.ToDate)
	}
	if from.After(to) {
		obsmetrics.Collector().IncRun(obsmetrics.RunResultSkipped)
		s.log.Info("collection already up to date, skipping",
			zap.Time("covered_through", from),
		)
		return nil
	}

	job, err := s.store.Save(ctx, from, to)
	if err != nil {
		obsmetrics.Collector().IncRun(obsmetrics.RunResultAborted)
		s.log.Error("aborting run, cannot persist window", zap.Error(err))
		return err
	}
	s.log.Info("collection window persisted",
		zap.Stringer("job_id", job.ID),
		zap.Time("from", from),
		zap.Time("to", to),
	)

	processed, collectErr := s.collector.CollectBetween(ctx, from, to, s.opts.FamilyIDs)
	s.audit(ctx, processed)

	recurringErr := s.recurring.RunDue(ctx, today)
	if recurringErr != nil {
		s.log.Warn("recurring billing run had failures", zap.Error(recurringErr))
	}

	result := obsmetrics.RunResultCompleted
	runErr := errors.Join(collectErr, recurringErr)
	if runErr != nil {
		result = obsmetrics.RunResultPartiallyFailed
	}
	obsmetrics.Collector().IncRun(result)
	obsmetrics.Collector().ObserveRunDuration(s.clock.Now().Sub(started))

	s.log.Info("collection run finished",
		zap.String("result", result),
		zap.Int("processed", len(processed)),
	)
	return runErr
}

// audit cross-checks the run's outcomes against the persisted trail. With
// nothing processed there is nothing to verify and no queries are issued.
func (s *Scheduler) audit(ctx context.Context, processed []string) {
	if len(processed) == 0 {
		return
	}
	histories, err := s.store.HistoryFor(ctx, processed)
	if err != nil {
		s.log.Warn("history lookup failed", zap.Error(err))
		return
	}
	if len(histories) < len(processed) {
		s.log.Warn("processed events missing history entries",
			zap.Int("processed", len(processed)),
			zap.Int("recorded", len(histories)),
		)
	}
	fallouts, err := s.store.FalloutsFor(ctx, processed)
	if err != nil {
		s.log.Warn("fallout lookup failed", zap.Error(err))
		return
	}
	if len(fallouts) > 0 {
		s.log.Warn("processed events also present in fallouts",
			zap.Int("count", len(fallouts)),
		)
	}
}

// Start begins the cadence. Cron spec wins when configured; otherwise a plain
// interval ticker drives the runs.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.opts.CronSpec != "" {
		c := cron.New()
		_, err := c.AddFunc(s.opts.CronSpec, func() {
			if err := s.RunOnce(context.Background()); err != nil {
				s.log.Error("scheduled run failed", zap.Error(err))
			}
		})
		if err != nil {
			return err
		}
		s.cron = c
		c.Start()
		s.log.Info("collector started", zap.String("cron", s.opts.CronSpec))
		return nil
	}

	s.ticker = time.NewTicker(s.opts.Interval)
	go func() {
		for {
			select {
			case <-s.done:
				return
			case <-s.ticker.C:
				if err := s.RunOnce(context.Background()); err != nil {
					s.log.Error("scheduled run failed", zap.Error(err))
				}
			}
		}
	}()
	s.log.Info("collector started", zap.Duration("interval", s.opts.Interval))
	return nil
}

// Stop halts the cadence. In-flight runs finish under their own deadline.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.done)
	return nil
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
