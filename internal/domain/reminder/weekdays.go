// internal/domain/reminder/weekdays.go
package reminder

import (
	"regexp"
	"strings"
	"time"
)

// Russian two-letter weekday codes used by the canonical grammar.
var codeToWeekday = map[string]time.Weekday{
	"пн": time.Monday,
	"вт": time.Tuesday,
	"ср": time.Wednesday,
	"чт": time.Thursday,
	"пт": time.Friday,
	"сб": time.Saturday,
	"вс": time.Sunday,
}

var weekdayToCode = map[time.Weekday]string{
	time.Monday:    "пн",
	time.Tuesday:   "вт",
	time.Wednesday: "ср",
	time.Thursday:  "чт",
	time.Friday:    "пт",
	time.Saturday:  "сб",
	time.Sunday:    "вс",
}

var weekdayNames = map[time.Weekday]string{
	time.Sunday:    "воскресенье",
	time.Monday:    "понедельник",
	time.Tuesday:   "вторник",
	time.Wednesday: "среда",
	time.Thursday:  "четверг",
	time.Friday:    "пятница",
	time.Saturday:  "суббота",
}

// Accusative forms, for phrases like "в пятницу".
var weekdayNamesAccusative = map[time.Weekday]string{
	time.Sunday:    "воскресенье",
	time.Monday:    "понедельник",
	time.Tuesday:   "вторник",
	time.Wednesday: "среду",
	time.Thursday:  "четверг",
	time.Friday:    "пятницу",
	time.Saturday:  "субботу",
}

// Spelled-out weekday mentions recognized in free-form text. Both the
// nominative and accusative spellings map to the same code.
var utteranceWeekdayPatterns = []struct {
	Name string
	Code string
}{
	{"понедельник", "пн"},
	{"вторник", "вт"},
	{"среду", "ср"},
	{"среда", "ср"},
	{"четверг", "чт"},
	{"пятницу", "пт"},
	{"пятница", "пт"},
	{"субботу", "сб"},
	{"суббота", "сб"},
	{"воскресенье", "вс"},
}

// WeekdayMatch is one weekday mention found in user text.
type WeekdayMatch struct {
	Name    string
	Code    string
	Weekday time.Weekday
}

// ExtractWeekdays scans text for spelled-out weekday names. Matches are
// returned in pattern order with duplicates (nominative vs accusative)
// collapsed.
func ExtractWeekdays(text string) []WeekdayMatch {
	lower := strings.ToLower(text)
	seen := make(map[string]bool)
	var matches []WeekdayMatch
	for _, p := range utteranceWeekdayPatterns {
		if !strings.Contains(lower, p.Name) || seen[p.Code] {
			continue
		}
		seen[p.Code] = true
		matches = append(matches, WeekdayMatch{Name: p.Name, Code: p.Code, Weekday: codeToWeekday[p.Code]})
	}
	return matches
}

var (
	dailyCuePhrases = []string{
		"каждый день",
		"ежедневно",
		"каждые сутки",
		"ежесуточно",
		"день в день",
		"день за днем",
		"изо дня в день",
		"постоянно",
		"всегда",
	}
	recurringCuePrefixes = []string{"кажд", "еженедельн", "регулярн", "повтор", "по "}

	everyWeekdayPattern  = regexp.MustCompile(`(?i)(^|\s)(по|каждую|каждый|каждое)\s+(пн|вт|ср|чт|пт|сб|вс|понедельник|вторник|сред|четверг|пятниц|суббот|воскресень)`)
	onWeekdayPattern     = regexp.MustCompile(`(?i)(^|\s)(в|во)\s+(пн|вт|ср|чт|пт|сб|вс|понедельник|вторник|сред|четверг|пятниц|суббот|воскресень)`)
	weekdayListSeparator = regexp.MustCompile(`[,\s]+`)
)

// IsDailyCue reports whether text explicitly asks for an every-day reminder.
func IsDailyCue(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range dailyCuePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// IsRecurringCue reports whether text carries any recurrence cue
// ("каждый", "регулярно", "по пятницам" and the like).
func IsRecurringCue(text string) bool {
	if IsDailyCue(text) {
		return true
	}
	lower := strings.ToLower(text)
	for _, prefix := range recurringCuePrefixes {
		if strings.Contains(lower, prefix) {
			return true
		}
	}
	return everyWeekdayPattern.MatchString(lower)
}

// IsOneTimeWeekdayCue reports whether text names a single occurrence on
// a specific weekday ("в пятницу") without any recurrence cue.
func IsOneTimeWeekdayCue(text string) bool {
	return onWeekdayPattern.MatchString(strings.ToLower(text)) && !IsRecurringCue(text)
}

// ParseWeekdayCodes splits a comma-list of weekday codes ("пн,ср,пт")
// into weekdays, dropping duplicates and invalid tokens.
func ParseWeekdayCodes(list string) []time.Weekday {
	tokens := weekdayListSeparator.Split(strings.ToLower(strings.TrimSpace(list)), -1)
	seen := make(map[time.Weekday]bool)
	var out []time.Weekday
	for _, tok := range tokens {
		wd, ok := codeToWeekday[strings.TrimSpace(tok)]
		if !ok || seen[wd] {
			continue
		}
		seen[wd] = true
		out = append(out, wd)
	}
	return out
}

// NextWeekdayDate computes the fire date for a one-off reminder: the
// next calendar date falling on target. When target is today and the
// wanted time has already elapsed, the date moves a full week ahead.
func NextWeekdayDate(now time.Time, target time.Weekday, timeStr string) time.Time {
	daysToAdd := (int(target) - int(now.Weekday()) + 7) % 7
	if daysToAdd == 0 {
		if t, err := time.Parse("15:04", timeStr); err == nil {
			if now.Hour() > t.Hour() || (now.Hour() == t.Hour() && now.Minute() >= t.Minute()) {
				daysToAdd = 7
			}
		}
	}
	return now.AddDate(0, 0, daysToAdd)
}
