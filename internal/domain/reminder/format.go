// internal/domain/reminder/format.go
package reminder

import (
	"fmt"
	"strings"
	"time"
)

// PeriodPhrase renders the human-readable recurrence description used
// in confirmation and listing messages.
func PeriodPhrase(r *Reminder) string {
	switch r.Kind {
	case KindInfiniteDaily:
		return "каждый день"
	case KindCountdownDaily:
		if r.RemainingCycles == 1 {
			return "только один раз"
		}
		return fmt.Sprintf("%d дней", r.RemainingCycles)
	case KindWeekdayRecurring:
		return weekdaySetPhrase(r.Weekdays)
	case KindWeekdayOnce:
		return oneTimePhrase(r.TargetDate)
	case KindCountdownMonthly:
		return fmt.Sprintf("ежемесячно %d числа, осталось месяцев: %d", r.DayOfMonth, r.RemainingCycles)
	case KindInfiniteMonthly:
		return fmt.Sprintf("ежемесячно %d числа ♾️", r.DayOfMonth)
	}
	return ""
}

func weekdaySetPhrase(weekdays []time.Weekday) string {
	names := make([]string, 0, len(weekdays))
	for _, wd := range weekdays {
		names = append(names, weekdayNames[wd])
	}
	switch len(names) {
	case 1:
		return "каждый " + names[0]
	case 2:
		return fmt.Sprintf("каждый %s и %s", names[0], names[1])
	default:
		last := names[len(names)-1]
		return fmt.Sprintf("каждый %s и %s", strings.Join(names[:len(names)-1], ", "), last)
	}
}

func oneTimePhrase(targetDate string) string {
	date, err := time.Parse(TargetDateLayout, targetDate)
	if err != nil {
		return "в " + targetDate
	}
	return fmt.Sprintf("в %s (%s)", weekdayNamesAccusative[date.Weekday()], date.Format("02.01.2006"))
}

// ConfirmationMessage is the reply sent after a reminder is created.
func ConfirmationMessage(r *Reminder) string {
	return fmt.Sprintf("✅ Создано напоминание:\n📝 %s\n🕒 %s\n📆 %s",
		r.Message, strings.Join(r.Times, ", "), PeriodPhrase(r))
}

// SeriesEndedMessage is the notice sent when the last fire of a finite
// reminder retires it.
func SeriesEndedMessage(r *Reminder) string {
	return fmt.Sprintf("🔔 Серия напоминаний завершена: %q", r.Message)
}

// ListEntry renders one reminder for the /list command.
func ListEntry(r *Reminder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 Сообщение: %s\n", r.Message)
	fmt.Fprintf(&b, "🕒 Время: %s\n", strings.Join(r.Times, ", "))
	fmt.Fprintf(&b, "🆔 ID: %s\n", r.ID)
	switch r.Kind {
	case KindCountdownDaily:
		fmt.Fprintf(&b, "📅 Тип: Ежедневное\n⏳ Осталось дней: %d\n", r.RemainingCycles)
	case KindInfiniteDaily:
		b.WriteString("📅 Тип: Ежедневное\n⏳ Осталось дней: ♾️ (бесконечно)\n")
	case KindWeekdayRecurring:
		names := make([]string, 0, len(r.Weekdays))
		for _, wd := range r.Weekdays {
			names = append(names, weekdayNames[wd])
		}
		fmt.Fprintf(&b, "📅 Тип: По дням недели\n📆 Дни недели: %s\n", strings.Join(names, ", "))
	case KindWeekdayOnce:
		fmt.Fprintf(&b, "📅 Тип: Однократное\n📆 Дата: %s\n", oneTimePhrase(r.TargetDate))
	case KindCountdownMonthly:
		fmt.Fprintf(&b, "🗓️ Тип: Ежемесячное (%d число)\n⏳ Осталось месяцев: %d\n", r.DayOfMonth, r.RemainingCycles)
	case KindInfiniteMonthly:
		fmt.Fprintf(&b, "🗓️ Тип: Ежемесячное (%d число)\n⏳ Осталось месяцев: ♾️ (бесконечно)\n", r.DayOfMonth)
	}
	b.WriteString("\n")
	return b.String()
}
