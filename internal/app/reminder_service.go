// internal/app/reminder_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reminder_notification_bot/internal/domain/oracle"
	"reminder_notification_bot/internal/domain/reminder"
	domainTelegram "reminder_notification_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
)

// oraclePromptTemplate instructs the oracle to rewrite a free-form
// utterance into the canonical grammar. The current time is embedded so
// relative expressions ("через 30 минут") resolve to absolute HH:MM.
const oraclePromptTemplate = `Ты — помощник, который превращает просьбы о напоминаниях в строгий формат.
Текущее время: %s.
Ответь ровно одной строкой вида: "Название события" "ЧЧ:ММ" Дни
Где Дни — это количество дней (число), слово infinity для бессрочных ежедневных напоминаний, или дни недели через запятую: пн,вт,ср,чт,пт,сб,вс.
Если время указано относительно ("через 30 минут", "через 2 часа"), вычисли абсолютное время от текущего.
Никакого другого текста в ответе быть не должно.`

// amplifiedPromptSuffix is appended for the single retry after a
// malformed first answer.
const amplifiedPromptSuffix = `

ВНИМАНИЕ: ВАЖНО строго соблюдать формат ответа: "[Название события]" "[Время]" [Дни]. Не забудь указать все три части!`

// oracleRetryDelay separates the two oracle attempts.
const oracleRetryDelay = time.Second

// ReminderService owns the create-from-text flow and the owner-facing
// list/delete/broadcast operations.
type ReminderService struct {
	remRepo      reminder.Repository
	oracleClient oracle.Client
	tgClient     domainTelegram.Client
	logger       *logrus.Entry
	loc          *time.Location
	batchSize    int
	batchPause   time.Duration
	now          func() time.Time
}

func NewReminderService(
	remRepo reminder.Repository,
	oracleClient oracle.Client,
	tgClient domainTelegram.Client,
	logger *logrus.Entry,
	loc *time.Location,
	batchSize int,
	batchPause time.Duration,
) *ReminderService {
	return &ReminderService{
		remRepo:      remRepo,
		oracleClient: oracleClient,
		tgClient:     tgClient,
		logger:       logger,
		loc:          loc,
		batchSize:    batchSize,
		batchPause:   batchPause,
		now:          time.Now,
	}
}

// CreateFromText turns user text into a persisted reminder. Canonical
// grammar is parsed directly; anything else goes through the oracle and
// the normalizer's fallback chain, with one amplified oracle retry and
// a final oracle-less extraction pass. Returns the stored reminder.
func (s *ReminderService) CreateFromText(ctx context.Context, ownerID int64, text string) (*reminder.Reminder, error) {
	now := s.now().In(s.loc)
	logCtx := s.logger.WithField("owner_id", ownerID)

	// Fast path: canonical grammar needs no oracle round-trip.
	if rem, err := reminder.Parse(text); err == nil {
		logCtx.Debug("Input matched canonical grammar directly")
		return s.store(ctx, ownerID, rem)
	}

	prompt := fmt.Sprintf(oraclePromptTemplate, now.Format("15:04"))
	aiText, err := s.oracleClient.Complete(ctx, prompt, text)
	if err != nil {
		if errors.Is(err, oracle.ErrUnavailable) {
			logCtx.WithError(err).Warn("Oracle unavailable, extracting from utterance directly")
			return s.extractDirect(ctx, ownerID, text, now)
		}
		return nil, fmt.Errorf("oracle request failed: %w", err)
	}
	logCtx.WithField("oracle_text", aiText).Debug("Oracle answered")

	rem, err := reminder.Normalize(aiText, text, now)
	if err == nil {
		return s.store(ctx, ownerID, rem)
	}
	logCtx.Info("First oracle answer unusable, retrying with amplified prompt")

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(oracleRetryDelay):
	}

	secondText, err := s.oracleClient.Complete(ctx, prompt+amplifiedPromptSuffix, text)
	if err == nil {
		if rem, err := reminder.Normalize(secondText, text, now); err == nil {
			return s.store(ctx, ownerID, rem)
		}
	} else {
		logCtx.WithError(err).Warn("Second oracle attempt failed")
	}

	return s.extractDirect(ctx, ownerID, text, now)
}

// CreateFromCommand parses canonical grammar only, with no oracle
// involvement. Used by explicit commands like /monthly where a
// malformed argument list is a user error, not an utterance to repair.
func (s *ReminderService) CreateFromCommand(ctx context.Context, ownerID int64, text string) (*reminder.Reminder, error) {
	rem, err := reminder.Parse(text)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, ownerID, rem)
}

func (s *ReminderService) extractDirect(ctx context.Context, ownerID int64, text string, now time.Time) (*reminder.Reminder, error) {
	rem, ok := reminder.ExtractFromUtterance(text, now)
	if !ok {
		return nil, reminder.ErrUnrecoverableParse
	}
	return s.store(ctx, ownerID, rem)
}

func (s *ReminderService) store(ctx context.Context, ownerID int64, rem *reminder.Reminder) (*reminder.Reminder, error) {
	rem.OwnerID = ownerID
	var err error
	if rem.IsMonthly() {
		err = s.remRepo.CreateMonthly(ctx, rem)
	} else {
		err = s.remRepo.CreateDaily(ctx, rem)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store reminder: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"reminder_id": rem.ID,
		"owner_id":    ownerID,
		"kind":        rem.Kind,
	}).Info("Reminder created")
	return rem, nil
}

// ListForOwner returns the owner's active reminders.
func (s *ReminderService) ListForOwner(ctx context.Context, ownerID int64) ([]*reminder.Reminder, error) {
	return s.remRepo.ListForOwner(ctx, ownerID)
}

// Delete removes a reminder by ID and reports whether it existed.
func (s *ReminderService) Delete(ctx context.Context, id string) (bool, error) {
	return s.remRepo.DeleteByID(ctx, id)
}

// CountOwners returns the number of distinct chats with reminders.
func (s *ReminderService) CountOwners(ctx context.Context) (int, error) {
	owners, err := s.remRepo.ListOwners(ctx)
	if err != nil {
		return 0, err
	}
	return len(owners), nil
}

// Broadcast delivers text to every known owner in fixed-size batches
// with a pause in between, and returns per-owner success/failure
// counts. Individual failures are logged and do not stop the batch.
func (s *ReminderService) Broadcast(ctx context.Context, text string) (succeeded, failed int, err error) {
	owners, err := s.remRepo.ListOwners(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list owners for broadcast: %w", err)
	}
	for i := 0; i < len(owners); i += s.batchSize {
		batch := owners[i:min(i+s.batchSize, len(owners))]
		for _, ownerID := range batch {
			if err := s.tgClient.Deliver(ownerID, text); err != nil {
				s.logger.WithError(err).WithField("owner_id", ownerID).Error("Broadcast delivery failed")
				failed++
				continue
			}
			succeeded++
		}
		if i+s.batchSize < len(owners) {
			select {
			case <-ctx.Done():
				return succeeded, failed, ctx.Err()
			case <-time.After(s.batchPause):
			}
		}
	}
	return succeeded, failed, nil
}
