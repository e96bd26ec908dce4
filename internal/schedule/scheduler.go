package schedule

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"

	"go-linkedin-extractor/pkg/logging"
)

// Starter is the automation the scheduler triggers.
type Starter interface {
	Start() bool
}

// Scheduler starts automation on a cron schedule. A trigger that fires
// while automation is running is a no-op.
type Scheduler struct {
	auto Starter
	cron *cron.Cron
	log  *logging.Logger
}

func NewScheduler(auto Starter, log *logging.Logger) *Scheduler {
	return &Scheduler{
		auto: auto,
		cron: cron.New(),
		log:  log,
	}
}

// Start registers expr ("0 9 * * 1-5", "@every 6h", ...) and starts the
// cron runner. An empty expr leaves the scheduler idle.
func (s *Scheduler) Start(expr string) error {
	if expr == "" {
		s.log.Debug("automation schedule disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(expr, s.trigger); err != nil {
		return errors.Wrapf(err, "invalid schedule %q", expr)
	}
	s.cron.Start()
	s.log.Info("⏰ automation scheduler started", "schedule", expr)
	return nil
}

// Shutdown stops the cron runner and waits for a running trigger.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "scheduler did not stop")
	}
}

func (s *Scheduler) trigger() {
	if s.auto.Start() {
		s.log.Info("⏰ scheduled automation started")
		return
	}
	s.log.Info("⏰ scheduled run skipped, automation already running")
}
