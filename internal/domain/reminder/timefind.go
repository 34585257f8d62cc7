// internal/domain/reminder/timefind.go
package reminder

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// \b is avoided next to Cyrillic letters: Go's word boundary is
	// ASCII-only, so (^|\s) anchors the Russian tokens instead.
	exactTimePattern    = regexp.MustCompile(`\b([01]?[0-9]|2[0-3]):([0-5][0-9])\b`)
	bareHourPattern     = regexp.MustCompile(`(?i)(?:^|\s)(?:в|к|около)\s+([01]?[0-9]|2[0-3])\b`)
	hourSuffixPattern   = regexp.MustCompile(`(?i)\b([01]?[0-9]|2[0-3])\s+час(?:а|ов)?`)
	relativeTimePattern = regexp.MustCompile(`(?i)(?:^|\s)через\s+(\d{1,3})\s+(минут(?:ы|у)?|час(?:а|ов)?)`)
)

// FindTime locates a time expression in free-form text and returns it
// as zero-padded "HH:MM". An exact HH:MM token always wins over a bare
// hour ("в 13" -> "13:00"). Relative expressions ("через 30 минут")
// are resolved against now.
func FindTime(text string, now time.Time) (string, bool) {
	if m := exactTimePattern.FindStringSubmatch(text); m != nil {
		hour := m[1]
		if len(hour) == 1 {
			hour = "0" + hour
		}
		return hour + ":" + m[2], true
	}
	if m := bareHourPattern.FindStringSubmatch(text); m != nil {
		return padHour(m[1]) + ":00", true
	}
	if m := hourSuffixPattern.FindStringSubmatch(text); m != nil {
		return padHour(m[1]) + ":00", true
	}
	if m := relativeTimePattern.FindStringSubmatch(text); m != nil {
		value, err := strconv.Atoi(m[1])
		if err != nil {
			return "", false
		}
		unit := time.Minute
		if strings.HasPrefix(strings.ToLower(m[2]), "час") {
			unit = time.Hour
		}
		return now.Add(time.Duration(value) * unit).Format("15:04"), true
	}
	return "", false
}

func padHour(hour string) string {
	if len(hour) == 1 {
		return "0" + hour
	}
	return hour
}
