package scheduler

import (
	"context"

	billingdomain "github.com/smallbiznis/billcollect/internal/billing/domain"
	"github.com/smallbiznis/billcollect/internal/clock"
	"github.com/smallbiznis/billcollect/internal/config"
	jobstatedomain "github.com/smallbiznis/billcollect/internal/jobstate/domain"
	"github.com/smallbiznis/billcollect/internal/leaderlock"
	sbdomain "github.com/smallbiznis/billcollect/internal/scheduledbilling/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("scheduler",
	fx.Provide(newScheduler),
	fx.Invoke(registerHooks),
)

type params struct {
	fx.In

	Log       *zap.Logger
	Clock     clock.Clock
	Config    config.Config
	Store     jobstatedomain.Store
	Collector billingdomain.Service
	Recurring sbdomain.Service
	Locker    *leaderlock.Locker
}

func newScheduler(p params) *Scheduler {
	return New(p.Log, p.Clock, p.Store, p.Collector, p.Recurring, p.Locker, Options{
		CronSpec:       p.Config.Collector.CronSpec,
		Interval:       p.Config.Collector.RunInterval,
		MaxRunDuration: p.Config.Collector.MaxRunDuration,
		FamilyIDs:      p.Config.Collector.FamilyIDs,
	})
}

func registerHooks(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return s.Start(ctx) },
		OnStop:  func(ctx context.Context) error { return s.Stop(ctx) },
	})
}
