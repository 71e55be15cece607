// Package scheduler runs the background jobs: the nightly occupancy
// snapshot roll-over that turns yesterday's live state into immutable
// history.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/casalunahms/casaluna/internal/clock"
	"github.com/casalunahms/casaluna/internal/config"
	"github.com/casalunahms/casaluna/internal/lock"
	occupancyservice "github.com/casalunahms/casaluna/internal/occupancy/service"
	"github.com/casalunahms/casaluna/pkg/dates"
)

const snapshotInterval = 15 * time.Minute

type Scheduler struct {
	log *zap.Logger

	loc    *time.Location
	clock  clock.Clock
	locker *lock.Locker
	engine *occupancyservice.Engine
}

type SchedulerParam struct {
	fx.In

	Log    *zap.Logger
	Cfg    config.Config
	Clock  clock.Clock
	Locker *lock.Locker
	Engine *occupancyservice.Engine
}

func NewScheduler(p SchedulerParam) (*Scheduler, error) {
	loc, err := time.LoadLocation(p.Cfg.Hotel.Timezone)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		log: p.Log.Named("scheduler"),

		loc:    loc,
		clock:  p.Clock,
		locker: p.Locker,
		engine: p.Engine,
	}, nil
}

// RunForever ticks until the context is cancelled. Each pass snapshots
// yesterday; the per-room existence checks make repeated passes cheap.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if err := s.SnapshotYesterdayJob(ctx); err != nil {
		s.log.Error("snapshot job failed", zap.Error(err))
	}
}

// SnapshotYesterdayJob writes the daily occupancy snapshot for the most
// recent completed hotel-local day. Serialized across instances so two
// schedulers never race on the same date.
func (s *Scheduler) SnapshotYesterdayJob(ctx context.Context) error {
	today := dates.Date(s.clock.Now(ctx), s.loc)
	yesterday := today.AddDate(0, 0, -1)

	return s.locker.WithLock(ctx, "snapshot:"+dates.Format(yesterday), func(ctx context.Context) error {
		written, err := s.engine.SnapshotDay(ctx, yesterday)
		if err != nil {
			return err
		}
		if written > 0 {
			s.log.Info("daily occupancy snapshot written",
				zap.String("date", dates.Format(yesterday)),
				zap.Int("rooms", written))
		}
		return nil
	})
}

var Module = fx.Module("scheduler",
	fx.Provide(NewScheduler),
)
