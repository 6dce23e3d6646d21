package reservation

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Sweeper periodically releases holds whose expiry has passed, so an
// abandoned checkout cannot keep a seat unavailable for longer than
// its TTL.  It runs concurrently with confirms without double-booking:
// the ledger's ReleaseExpired is an atomic check-and-transition, so a
// confirm that observes a still-valid hold wins and the sweep skips it.
type Sweeper struct {
	ledger    Ledger
	interval  time.Duration
	now       func() time.Time
	scheduler gocron.Scheduler
}

// NewSweeper builds a sweeper that reclaims expired holds every
// interval.  Intervals at or below zero fall back to 10 seconds.
func NewSweeper(ledger Ledger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Sweeper{ledger: ledger, interval: interval, now: time.Now}
}

// Start schedules the sweep job and begins running it in the
// background.  Call Stop to shut the scheduler down.
func (s *Sweeper) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.interval)
			defer cancel()
			released, err := s.SweepOnce(ctx)
			if err != nil {
				log.Printf("sweeper: release expired holds: %v", err)
				return
			}
			if released > 0 {
				log.Printf("sweeper: released %d expired hold(s)", released)
			}
		}),
	)
	if err != nil {
		return err
	}
	s.scheduler = sched
	sched.Start()
	log.Printf("sweeper: reclaiming expired holds every %s", s.interval)
	return nil
}

// Stop shuts the scheduler down, waiting for a running sweep to finish.
func (s *Sweeper) Stop() error {
	if s.scheduler == nil {
		return nil
	}
	return s.scheduler.Shutdown()
}

// SweepOnce performs a single sweep and reports how many holds it
// released.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	return s.ledger.ReleaseExpired(ctx, s.now().UTC())
}
