// internal/app/tick_service.go
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"reminder_notification_bot/internal/domain/reminder"
	domainTelegram "reminder_notification_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
)

// TickService evaluates which reminders are due on each one-minute
// tick and applies post-fire bookkeeping. It also runs the midnight
// rollover. Both jobs receive their collaborators explicitly so they
// can be exercised without a live datastore or chat transport.
type TickService struct {
	remRepo    reminder.Repository
	tgClient   domainTelegram.Client
	logger     *logrus.Entry
	loc        *time.Location
	batchSize  int
	batchPause time.Duration
	now        func() time.Time
}

func NewTickService(
	remRepo reminder.Repository,
	tgClient domainTelegram.Client,
	logger *logrus.Entry,
	loc *time.Location,
	batchSize int,
	batchPause time.Duration,
) *TickService {
	return &TickService{
		remRepo:    remRepo,
		tgClient:   tgClient,
		logger:     logger,
		loc:        loc,
		batchSize:  batchSize,
		batchPause: batchPause,
		now:        time.Now,
	}
}

// EvaluateTick runs one pass of the scheduling loop: load active
// reminders, fire the due ones, then retire and decrement. "Now" is
// always taken in the configured fixed offset. A failed delivery is
// logged per reminder and never aborts the rest of the tick;
// bookkeeping proceeds regardless of individual delivery outcomes.
func (s *TickService) EvaluateTick(ctx context.Context) error {
	now := s.now().In(s.loc)

	active, err := s.remRepo.ListActive(ctx)
	if err != nil {
		// Read failure aborts the tick before any bookkeeping is committed.
		return fmt.Errorf("failed to load active reminders: %w", err)
	}

	var due []*reminder.Reminder
	for _, rem := range active {
		if rem.IsDue(now) {
			due = append(due, rem)
		}
	}
	if len(due) == 0 {
		return nil
	}
	s.logger.WithFields(logrus.Fields{
		"due_count":    len(due),
		"current_time": now.Format("15:04"),
	}).Info("Tick evaluation found due reminders")

	s.dispatch(ctx, due)

	// Bookkeeping runs only after every dispatch attempt has settled,
	// so the processed-this-tick accounting cannot race deliveries.
	var retired []*reminder.Reminder
	var monthlyProcessed []string
	for _, rem := range due {
		switch rem.Kind {
		case reminder.KindWeekdayOnce:
			retired = append(retired, rem)
		case reminder.KindCountdownDaily:
			// The daily counter itself is decremented by the midnight
			// rollover; the tick only retires the final fire.
			if rem.RemainingCycles == 1 {
				retired = append(retired, rem)
			}
		case reminder.KindCountdownMonthly:
			if rem.RemainingCycles == 1 {
				retired = append(retired, rem)
			} else {
				monthlyProcessed = append(monthlyProcessed, rem.ID)
			}
		}
	}

	for _, rem := range retired {
		logCtx := s.logger.WithField("reminder_id", rem.ID)
		deleted, err := s.remRepo.DeleteByID(ctx, rem.ID)
		if err != nil {
			logCtx.WithError(err).Error("Failed to delete retired reminder")
			continue
		}
		if !deleted {
			logCtx.Warn("Retired reminder was already gone")
			continue
		}
		if err := s.tgClient.Deliver(rem.OwnerID, reminder.SeriesEndedMessage(rem)); err != nil {
			logCtx.WithError(err).Error("Failed to deliver series-ended notice")
		}
	}

	if len(monthlyProcessed) > 0 {
		count, err := s.remRepo.DecrementMonthlyCounters(ctx, monthlyProcessed)
		if err != nil {
			return fmt.Errorf("failed to decrement monthly counters: %w", err)
		}
		s.logger.WithField("count", count).Debug("Monthly counters decremented")
	}
	return nil
}

// dispatch delivers due reminders in fixed-size batches with a pause
// between batches, to stay inside the transport's rate limits. All
// deliveries of a batch run concurrently and are awaited before the
// next batch starts.
func (s *TickService) dispatch(ctx context.Context, due []*reminder.Reminder) {
	for i := 0; i < len(due); i += s.batchSize {
		batch := due[i:min(i+s.batchSize, len(due))]

		var wg sync.WaitGroup
		for _, rem := range batch {
			wg.Add(1)
			go func(rem *reminder.Reminder) {
				defer wg.Done()
				if err := s.tgClient.Deliver(rem.OwnerID, rem.Message); err != nil {
					s.logger.WithError(err).WithFields(logrus.Fields{
						"reminder_id": rem.ID,
						"owner_id":    rem.OwnerID,
					}).Error("Failed to deliver reminder")
					return
				}
				s.logger.WithField("reminder_id", rem.ID).Debug("Reminder delivered")
			}(rem)
		}
		wg.Wait()

		if i+s.batchSize < len(due) {
			select {
			case <-ctx.Done():
				// Finish remaining batches without pacing; a tick is
				// never cancelled mid-flight.
			case <-time.After(s.batchPause):
			}
		}
	}
}

// MidnightRollover decrements the day countdowns and purges every
// reminder whose counter has run out. Weekday-recurring and one-off
// entries are exempt from the decrement: they are governed by
// weekday/date match, not by a counter.
func (s *TickService) MidnightRollover(ctx context.Context) error {
	updated, err := s.remRepo.DecrementDailyCounters(ctx)
	if err != nil {
		return fmt.Errorf("failed to decrement daily counters: %w", err)
	}
	purged, err := s.remRepo.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge expired reminders: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"decremented": updated,
		"purged":      purged,
	}).Info("Midnight rollover completed")
	return nil
}
