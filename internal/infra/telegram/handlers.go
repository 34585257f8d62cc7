// internal/infra/telegram/handlers.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reminder_notification_bot/internal/app"
	"reminder_notification_bot/internal/domain/reminder"
	"reminder_notification_bot/internal/infra/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const welcomeMessage = `Привет! Я бот-напоминалка.
Напишите мне, о чём и когда напомнить, — например: «напомни выпить воды в 16:00 каждый день».
Можно и в строгом формате: "Текст сообщения" "ЧЧ:ММ" КОЛ-ВО_ДНЕЙ.
Команда /help покажет все возможности.`

const helpMessage = `Я создаю напоминания из обычного текста или из строгого формата.

` + reminder.UsageHint + `

Команды:
/list — показать ваши активные напоминания
/delete <ID> — удалить напоминание
/monthly "Текст" "ЧЧ:ММ" КОЛ-ВО_МЕСЯЦЕВ ЧИСЛО_МЕСЯЦА — ежемесячное напоминание
/help — это сообщение

Ваш ID: {userId}`

const (
	emptyListMessage       = "📭 У вас пока нет активных напоминаний."
	listErrorMessage       = "❌ Произошла ошибка при получении списка напоминаний."
	deletionErrorMessage   = "❌ Произошла ошибка при удалении напоминания."
	insufficientPermsMsg   = "⛔ У вас нет прав для выполнения этой команды."
	unrecoverableParseMsg  = "❌ Не удалось обработать ваш запрос.\n"
	genericProcessingError = "❌ Произошла ошибка при обработке сообщения."
)

// Telegram rejects messages above 4096 chars; lists are split well
// below that.
const maxListChunkLength = 3500

// RegisterHandlers registers all bot command and message handlers.
func RegisterHandlers(
	ctx context.Context,
	b *telebot.Bot,
	cfg *config.AppConfig,
	reminderService *app.ReminderService,
	baseLogger *logrus.Entry,
) {
	b.Handle("/start", func(c telebot.Context) error {
		baseLogger.WithFields(logrus.Fields{
			"command":   "/start",
			"sender_id": c.Sender().ID,
		}).Info("Command received")
		return c.Send(welcomeMessage)
	})

	b.Handle("/help", func(c telebot.Context) error {
		baseLogger.WithFields(logrus.Fields{
			"command":   "/help",
			"sender_id": c.Sender().ID,
		}).Info("Command received")
		return c.Send(strings.ReplaceAll(helpMessage, "{userId}", fmt.Sprintf("%d", c.Sender().ID)))
	})

	b.Handle("/list", func(c telebot.Context) error {
		chatID := c.Chat().ID
		logCtx := baseLogger.WithFields(logrus.Fields{
			"command":   "/list",
			"sender_id": chatID,
		})
		logCtx.Info("Command received")

		reminders, err := reminderService.ListForOwner(ctx, chatID)
		if err != nil {
			logCtx.WithError(err).Error("Failed to list reminders")
			return c.Send(listErrorMessage)
		}
		if len(reminders) == 0 {
			return c.Send(emptyListMessage)
		}

		chunks := chunkEntries(reminders)
		for i, chunk := range chunks {
			var header string
			if i == 0 {
				header = fmt.Sprintf("📋 Ваши активные напоминания (часть %d/%d):\n\n", i+1, len(chunks))
			} else {
				header = fmt.Sprintf("📋 Часть %d/%d:\n\n", i+1, len(chunks))
			}
			if err := c.Send(header + strings.Join(chunk, "")); err != nil {
				return err
			}
		}
		return nil
	})

	b.Handle("/delete", func(c telebot.Context) error {
		chatID := c.Chat().ID
		logCtx := baseLogger.WithFields(logrus.Fields{
			"command":   "/delete",
			"sender_id": chatID,
		})
		logCtx.Info("Command received")

		id, ok := reminder.ParseDelete(c.Text())
		if !ok {
			return c.Send("❌ Неверный формат команды удаления. Используйте: /delete ID")
		}
		deleted, err := reminderService.Delete(ctx, id)
		if err != nil {
			logCtx.WithError(err).WithField("reminder_id", id).Error("Failed to delete reminder")
			return c.Send(deletionErrorMessage)
		}
		if !deleted {
			return c.Send(fmt.Sprintf("❓ Напоминание с ID %s не найдено", id))
		}
		logCtx.WithField("reminder_id", id).Info("Reminder deleted")
		return c.Send(fmt.Sprintf("✅ Напоминание с ID %s удалено", id))
	})

	b.Handle("/monthly", func(c telebot.Context) error {
		chatID := c.Chat().ID
		logCtx := baseLogger.WithFields(logrus.Fields{
			"command":   "/monthly",
			"sender_id": chatID,
		})
		logCtx.Info("Command received")

		rem, err := reminderService.CreateFromCommand(ctx, chatID, c.Text())
		if err != nil {
			var vErr *reminder.ValidationError
			if errors.As(err, &vErr) {
				return c.Send("❌ " + vErr.Error())
			}
			logCtx.WithError(err).Error("Failed to create monthly reminder")
			return c.Send(genericProcessingError)
		}
		return c.Send(reminder.ConfirmationMessage(rem))
	})

	b.Handle("/users", func(c telebot.Context) error {
		chatID := c.Chat().ID
		logCtx := baseLogger.WithFields(logrus.Fields{
			"command":   "/users",
			"sender_id": chatID,
		})
		logCtx.Info("Command received")

		if chatID != cfg.AdminTelegramID {
			logCtx.Warn("Unauthorized access attempt")
			return c.Send(insufficientPermsMsg)
		}
		count, err := reminderService.CountOwners(ctx)
		if err != nil {
			logCtx.WithError(err).Error("Failed to count owners")
			return c.Send("❌ Произошла ошибка при получении списка пользователей.")
		}
		return c.Send(fmt.Sprintf("📊 Всего зарегистрировано пользователей: %d", count))
	})

	b.Handle("/notification", func(c telebot.Context) error {
		chatID := c.Chat().ID
		logCtx := baseLogger.WithFields(logrus.Fields{
			"command":   "/notification",
			"sender_id": chatID,
		})
		logCtx.Info("Command received")

		if chatID != cfg.AdminTelegramID {
			logCtx.Warn("Unauthorized access attempt")
			return c.Send(insufficientPermsMsg)
		}
		text := strings.TrimSpace(c.Message().Payload)
		if text == "" {
			return c.Send("❌ Укажите текст рассылки: /notification <текст>")
		}
		succeeded, failed, err := reminderService.Broadcast(ctx, text)
		if err != nil {
			logCtx.WithError(err).Error("Broadcast failed")
			return c.Send("❌ Произошла ошибка при отправке уведомления.")
		}
		logCtx.WithFields(logrus.Fields{
			"succeeded": succeeded,
			"failed":    failed,
		}).Info("Broadcast completed")
		return c.Send(fmt.Sprintf("📨 Рассылка завершена: %d успешно, %d с ошибками", succeeded, failed))
	})

	// Any non-command text is treated as a reminder request.
	b.Handle(telebot.OnText, func(c telebot.Context) error {
		text := c.Text()
		if strings.HasPrefix(text, "/") {
			return nil
		}
		chatID := c.Chat().ID
		logCtx := baseLogger.WithFields(logrus.Fields{
			"handler":   "free_text",
			"sender_id": chatID,
		})
		logCtx.Info("Reminder request received")

		rem, err := reminderService.CreateFromText(ctx, chatID, text)
		if err != nil {
			if errors.Is(err, reminder.ErrUnrecoverableParse) {
				return c.Send(unrecoverableParseMsg + reminder.UsageHint)
			}
			var vErr *reminder.ValidationError
			if errors.As(err, &vErr) {
				return c.Send("❌ " + vErr.Error())
			}
			logCtx.WithError(err).Error("Failed to create reminder")
			return c.Send(genericProcessingError)
		}
		return c.Send(reminder.ConfirmationMessage(rem))
	})
}

// chunkEntries splits rendered list entries into message-sized groups.
func chunkEntries(reminders []*reminder.Reminder) [][]string {
	var chunks [][]string
	var current []string
	currentLength := 0
	for _, rem := range reminders {
		entry := reminder.ListEntry(rem)
		if currentLength+len(entry) > maxListChunkLength && len(current) > 0 {
			chunks = append(chunks, current)
			current = []string{entry}
			currentLength = len(entry)
			continue
		}
		current = append(current, entry)
		currentLength += len(entry)
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}
