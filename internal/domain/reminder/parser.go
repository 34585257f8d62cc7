// internal/domain/reminder/parser.go
package reminder

import (
	"regexp"
	"strconv"
	"strings"
)

// UsageHint enumerates the accepted input forms. It is attached to
// every grammar-level parse failure and shown to the user verbatim.
const UsageHint = `Используйте формат: "Текст сообщения" "ЧЧ:ММ,ЧЧ:ММ" КОЛ-ВО_ДНЕЙ.
Вместо количества дней можно указать infinity (бессрочно) или дни недели: пн, вт, ср, чт, пт, сб, вс.
Для ежемесячных напоминаний: /monthly "Текст сообщения" "ЧЧ:ММ" КОЛ-ВО_МЕСЯЦЕВ ЧИСЛО_МЕСЯЦА (от 1 до 28).`

// ErrBadGrammar is returned when no canonical grammar matches the input.
var ErrBadGrammar = &ValidationError{Field: "format", Reason: UsageHint}

var (
	timeTokenPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

	// `"<message>" "<HH:MM>[,<HH:MM>...]" <repeat>`
	quotedFormPattern = regexp.MustCompile(`^"([^"]+)"\s+"([^"]+)"\s+(\S+)$`)
	// `"<message>" <HH:MM> <repeat>`
	bareFormPattern = regexp.MustCompile(`^"([^"]+)"\s+([0-9]{1,2}:[0-9]{2})\s+(\S+)$`)
	// `/monthly "<message>" "<HH:MM>[,...]" <repeat> <day_of_month>`
	monthlyFormPattern = regexp.MustCompile(`^/monthly\s+"([^"]+)"\s+"([^"]+)"\s+(\S+)\s+(\d{1,2})$`)

	repeatCountPattern   = regexp.MustCompile(`^\d+$`)
	repeatWeekdayPattern = regexp.MustCompile(`^(?:пн|вт|ср|чт|пт|сб|вс)(?:,(?:пн|вт|ср|чт|пт|сб|вс))*$`)

	deleteCommandPattern = regexp.MustCompile(`^/delete\s+([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})$`)
)

const repeatInfinity = "infinity"

// repeatClass is the classification of the repeat token, decided by
// pattern rather than by trial parsing.
type repeatClass int

const (
	repeatFinite repeatClass = iota
	repeatInfinite
	repeatWeekdays
)

func classifyRepeat(token string) (repeatClass, bool) {
	lower := strings.ToLower(strings.TrimSpace(token))
	switch {
	case lower == repeatInfinity:
		return repeatInfinite, true
	case repeatCountPattern.MatchString(lower):
		return repeatFinite, true
	case repeatWeekdayPattern.MatchString(lower):
		return repeatWeekdays, true
	}
	return 0, false
}

// Parse translates canonical-grammar text into a validated Reminder.
// It is deterministic apart from the freshly minted ID: parsing the
// same text twice yields records equal in every other field. OwnerID
// is left for the caller to assign.
func Parse(text string) (*Reminder, error) {
	trimmed := strings.TrimSpace(text)

	if m := monthlyFormPattern.FindStringSubmatch(trimmed); m != nil {
		return parseMonthly(m[1], m[2], m[3], m[4])
	}

	var message, timeList, repeat string
	if m := quotedFormPattern.FindStringSubmatch(trimmed); m != nil {
		message, timeList, repeat = m[1], m[2], m[3]
	} else if m := bareFormPattern.FindStringSubmatch(trimmed); m != nil {
		message, timeList, repeat = m[1], m[2], m[3]
	} else {
		return nil, ErrBadGrammar
	}

	times := splitTimes(timeList)
	class, ok := classifyRepeat(repeat)
	if !ok {
		return nil, ErrBadGrammar
	}
	switch class {
	case repeatFinite:
		days, err := strconv.Atoi(repeat)
		if err != nil || days <= 0 {
			return nil, ErrBadCycles
		}
		return NewCountdownDaily(message, times, days)
	case repeatInfinite:
		return NewInfiniteDaily(message, times)
	default:
		return NewWeekdayRecurring(message, times, ParseWeekdayCodes(repeat))
	}
}

func parseMonthly(message, timeList, repeat, dayStr string) (*Reminder, error) {
	dayOfMonth, err := strconv.Atoi(dayStr)
	if err != nil || dayOfMonth < 1 || dayOfMonth > 28 {
		return nil, ErrBadDayOfMonth
	}
	times := splitTimes(timeList)
	class, ok := classifyRepeat(repeat)
	if !ok || class == repeatWeekdays {
		// A weekday list makes no sense for a day-of-month rule.
		return nil, ErrBadGrammar
	}
	if class == repeatInfinite {
		return NewInfiniteMonthly(message, times, dayOfMonth)
	}
	months, err := strconv.Atoi(repeat)
	if err != nil || months <= 0 {
		return nil, ErrBadCycles
	}
	return NewCountdownMonthly(message, times, months, dayOfMonth)
}

func splitTimes(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// ParseDelete extracts the reminder ID from a "/delete <uuid>" command.
func ParseDelete(text string) (string, bool) {
	m := deleteCommandPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(text)))
	if m == nil {
		return "", false
	}
	return m[1], true
}
