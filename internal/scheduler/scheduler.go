package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/livestock/internal/config"
)

const jobTimeout = 2 * time.Minute

// Roller creates the next occurrences of recurring reminders.
type Roller interface {
	Roll(ctx context.Context) (int, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	roller Roller
	cfg    config.SchedulerConfig
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured
// timezone.
func NewScheduler(cfg config.SchedulerConfig, roller Roller, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	// Standard five field cron expressions (min, hour, dom, month, dow).
	c := cron.New(cron.WithLocation(loc))

	s := &Scheduler{
		cron:   c,
		roller: roller,
		cfg:    cfg,
		logger: logger,
	}

	if _, err := c.AddFunc(cfg.RecurringSchedule, s.rollRecurring); err != nil {
		return nil, fmt.Errorf("schedule recurring reminders %q: %w", cfg.RecurringSchedule, err)
	}
	return s, nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("recurring", s.cfg.RecurringSchedule), zap.String("timezone", s.cfg.Timezone))
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) rollRecurring() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.roller.Roll(ctx)
	if err != nil {
		s.logger.Error("failed to roll recurring reminders", zap.Int("created", n), zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("recurring reminders rolled", zap.Int("created", n))
	}
}
