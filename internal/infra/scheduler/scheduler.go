package scheduler

import (
	"context"
	"time"

	"reminder_notification_bot/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderScheduler wires the two periodic jobs: the one-minute tick
// evaluation and the midnight rollover. Both run in the configured
// fixed UTC offset, never the host's local time. Jobs are wrapped with
// SkipIfStillRunning: a tick that overruns its minute causes the next
// tick to be skipped, not queued, so no entry is ever evaluated by two
// overlapping ticks.
type ReminderScheduler struct {
	cronEngine       *cron.Cron
	tickService      *app.TickService
	logger           *logrus.Entry
	cronSpecTick     string
	cronSpecRollover string
}

func NewReminderScheduler(
	tickService *app.TickService,
	logger *logrus.Logger,
	loc *time.Location,
	cronSpecTick string, // e.g., "* * * * *" (every minute)
	cronSpecRollover string, // e.g., "0 0 * * *" (midnight)
) *ReminderScheduler {
	return &ReminderScheduler{
		cronEngine: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger))),
		),
		tickService:      tickService,
		logger:           logger.WithField("component", "scheduler"),
		cronSpecTick:     cronSpecTick,
		cronSpecRollover: cronSpecRollover,
	}
}

func (s *ReminderScheduler) Start() {
	s.logger.Info("Starting reminder scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpecTick, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := s.tickService.EvaluateTick(ctx); err != nil {
			s.logger.WithError(err).Error("Tick evaluation failed")
		}
	})
	if err != nil {
		s.logger.WithError(err).Fatal("Could not add tick evaluation cron job")
	}

	_, err = s.cronEngine.AddFunc(s.cronSpecRollover, func() {
		s.logger.Info("Midnight rollover triggered")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.tickService.MidnightRollover(ctx); err != nil {
			s.logger.WithError(err).Error("Midnight rollover failed")
		}
	})
	if err != nil {
		s.logger.WithError(err).Fatal("Could not add midnight rollover cron job")
	}

	s.cronEngine.Start()
	s.logger.Info("Reminder scheduler started with jobs")
}

func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop() // Stops scheduling new runs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Reminder scheduler gracefully stopped")
}
