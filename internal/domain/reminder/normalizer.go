// internal/domain/reminder/normalizer.go
package reminder

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrUnrecoverableParse is returned when every normalization strategy
// has been exhausted. The user-facing guidance is UsageHint.
var ErrUnrecoverableParse = fmt.Errorf("unrecoverable parse: %s", UsageHint)

// Verbs that usually open the action part of a reminder request
// ("выпить воды", "позвонить маме"). The first match anchors the
// extracted message.
var actionVerbs = []string{
	"посещать",
	"выпить",
	"попей",
	"попить",
	"принять",
	"сделать",
	"позвонить",
	"проверить",
	"помыть",
}

// Words that terminate the action phrase.
var actionStopWords = map[string]bool{
	"в":       true,
	"во":      true,
	"через":   true,
	"завтра":  true,
	"сегодня": true,
	"каждый":  true,
	"каждую":  true,
	"каждое":  true,
}

// Words never included in an extracted event name.
var eventNameFilter = map[string]bool{
	"напомни":   true,
	"напомнить": true,
	"напоминай": true,
	"каждый":    true,
	"каждую":    true,
	"каждое":    true,
	"через":     true,
	"завтра":    true,
	"послезавтра": true,
	"мне":       true,
	"меня":      true,
	"ежедневно": true,
}

const defaultEventName = "Напоминание"

var (
	repeatTokenAlt = `\d+|infinity|(?:пн|вт|ср|чт|пт|сб|вс)(?:,(?:пн|вт|ср|чт|пт|сб|вс))*`
	timeListAlt    = `[0-9]{1,2}:[0-9]{2}(?:,[0-9]{1,2}:[0-9]{2})*`

	// Looser shapes of "message, times, repeat" the oracle tends to
	// produce: stray quote styles, guillemets, brackets, or nothing.
	looseQuotedPattern  = regexp.MustCompile(`(?i)["«]?([^"«»\[\]()]+?)["»]?\s+["«]?(` + timeListAlt + `)["»]?\s+(` + repeatTokenAlt + `)\s*$`)
	looseBracketPattern = regexp.MustCompile(`(?i)[\[(]([^\])]+)[\])]\s+[\[(](` + timeListAlt + `)[\])]\s+(` + repeatTokenAlt + `)\s*$`)
	anyTimePattern      = regexp.MustCompile(`\b([01]?[0-9]|2[0-3]):([0-5][0-9])\b`)
	anyWeekdayCodeList  = regexp.MustCompile(`(?i)(пн|вт|ср|чт|пт|сб|вс)(?:[,\s]+(?:и\s+)?(?:пн|вт|ср|чт|пт|сб|вс))*`)
)

// Normalize recovers a Reminder from a (possibly malformed) oracle
// response, falling back to heuristic extraction from the user's
// original utterance. Strategies run in order and short-circuit on the
// first success; the result is reconciled against the original text so
// that "в пятницу" without a recurrence cue stays a one-off.
func Normalize(oracleText, original string, now time.Time) (*Reminder, error) {
	strategies := []func(string, string, time.Time) (*Reminder, bool){
		normalizeDirect,
		normalizePlainText,
		normalizeLoosePattern,
		normalizeSalvage,
	}
	for _, strategy := range strategies {
		if rem, ok := strategy(oracleText, original, now); ok {
			return reconcileWeekdays(rem, original, now)
		}
	}
	if rem, ok := ExtractFromUtterance(original, now); ok {
		return rem, nil
	}
	return nil, ErrUnrecoverableParse
}

// normalizeDirect feeds the oracle text straight into the Parser.
func normalizeDirect(oracleText, _ string, _ time.Time) (*Reminder, bool) {
	rem, err := Parse(oracleText)
	if err != nil {
		return nil, false
	}
	return rem, true
}

// normalizePlainText handles an oracle response that is only the event
// name: no quotes, no time. The time is recovered from the original
// utterance.
func normalizePlainText(oracleText, original string, now time.Time) (*Reminder, bool) {
	trimmed := strings.TrimSpace(oracleText)
	if trimmed == "" || strings.Contains(trimmed, `"`) || strings.Contains(trimmed, ":") {
		return nil, false
	}
	extractedTime, ok := FindTime(original, now)
	if !ok {
		return nil, false
	}
	repeat := "1"
	if IsDailyCue(original) {
		repeat = repeatInfinity
	}
	rem, err := Parse(fmt.Sprintf("%q %q %s", trimmed, extractedTime, repeat))
	if err != nil {
		return nil, false
	}
	return rem, true
}

// normalizeLoosePattern re-synthesizes a canonical string from a
// message segment, time token and repeat token found in the oracle
// text in quote, guillemet, bracket or bare form. An action phrase
// from the original utterance, when present, overrides the oracle's
// wording of the message.
func normalizeLoosePattern(oracleText, original string, _ time.Time) (*Reminder, bool) {
	for _, pattern := range []*regexp.Regexp{looseBracketPattern, looseQuotedPattern} {
		m := pattern.FindStringSubmatch(oracleText)
		if m == nil {
			continue
		}
		message := strings.TrimSpace(m[1])
		if action := extractActionPhrase(original); action != "" {
			message = action
		}
		rem, err := Parse(fmt.Sprintf("%q %q %s", message, strings.TrimSpace(m[2]), strings.TrimSpace(m[3])))
		if err != nil {
			continue
		}
		return rem, true
	}
	return nil, false
}

// normalizeSalvage is the last look at the oracle text: any time token
// plus any weekday-code list, with the message taken from the original
// utterance's action phrase.
func normalizeSalvage(oracleText, original string, _ time.Time) (*Reminder, bool) {
	action := extractActionPhrase(original)
	if action == "" {
		return nil, false
	}
	timeMatch := anyTimePattern.FindString(oracleText)
	dayMatch := anyWeekdayCodeList.FindString(oracleText)
	if timeMatch == "" || dayMatch == "" {
		return nil, false
	}
	codes := normalizeWeekdayList(dayMatch)
	if codes == "" {
		return nil, false
	}
	rem, err := Parse(fmt.Sprintf("%q %q %s", action, timeMatch, codes))
	if err != nil {
		return nil, false
	}
	return rem, true
}

// ExtractFromUtterance builds a Reminder directly from free-form user
// text, with no oracle involved. Used both as the terminal repair step
// and as the degraded mode when the oracle is unreachable.
func ExtractFromUtterance(text string, now time.Time) (*Reminder, bool) {
	extractedTime, ok := FindTime(text, now)
	if !ok {
		return nil, false
	}
	eventName := extractEventName(text)
	dayMatches := ExtractWeekdays(text)

	if len(dayMatches) > 0 {
		if IsRecurringCue(text) || len(dayMatches) > 1 {
			weekdays := make([]time.Weekday, 0, len(dayMatches))
			for _, dm := range dayMatches {
				weekdays = append(weekdays, dm.Weekday)
			}
			rem, err := NewWeekdayRecurring(eventName, []string{extractedTime}, weekdays)
			return rem, err == nil
		}
		fireDate := NextWeekdayDate(now, dayMatches[0].Weekday, extractedTime)
		rem, err := NewWeekdayOnce(eventName, []string{extractedTime}, fireDate.Format(TargetDateLayout))
		return rem, err == nil
	}
	if IsDailyCue(text) {
		rem, err := NewInfiniteDaily(eventName, []string{extractedTime})
		return rem, err == nil
	}
	rem, err := NewCountdownDaily(eventName, []string{extractedTime}, 1)
	return rem, err == nil
}

// reconcileWeekdays downgrades a parsed weekday-recurring reminder to a
// one-off when the original utterance names a weekday without any
// recurrence cue ("в пятницу в 10").
func reconcileWeekdays(rem *Reminder, original string, now time.Time) (*Reminder, error) {
	if rem.Kind != KindWeekdayRecurring || IsRecurringCue(original) {
		return rem, nil
	}
	fireDate := NextWeekdayDate(now, rem.Weekdays[0], rem.Times[0])
	return NewWeekdayOnce(rem.Message, rem.Times, fireDate.Format(TargetDateLayout))
}

// extractActionPhrase returns up to three words starting at the first
// action verb, stopping at a stop word. Empty when no verb is present.
func extractActionPhrase(text string) string {
	lower := strings.ToLower(text)
	for _, verb := range actionVerbs {
		idx := strings.Index(lower, verb)
		if idx < 0 {
			continue
		}
		rest := strings.Fields(text[idx:])
		var words []string
		for i := 0; i < len(rest) && i < 3; i++ {
			if actionStopWords[strings.ToLower(rest[i])] {
				break
			}
			words = append(words, rest[i])
		}
		if len(words) == 0 {
			return verb
		}
		return strings.Join(words, " ")
	}
	return ""
}

// extractEventName derives a short message from free-form text: the
// action phrase when a known verb is present, otherwise the first few
// significant words with times, weekday names and filler filtered out.
func extractEventName(text string) string {
	if action := extractActionPhrase(text); action != "" {
		return action
	}
	var significant []string
	for _, word := range strings.Fields(text) {
		lower := strings.ToLower(word)
		if len([]rune(word)) <= 2 || eventNameFilter[lower] || strings.ContainsAny(word, "0123456789:") {
			continue
		}
		if isWeekdayWord(lower) {
			continue
		}
		significant = append(significant, word)
		if len(significant) == 3 {
			break
		}
	}
	if len(significant) == 0 {
		return defaultEventName
	}
	return strings.Join(significant, " ")
}

func isWeekdayWord(lower string) bool {
	for _, p := range utteranceWeekdayPatterns {
		if strings.Contains(lower, p.Name) {
			return true
		}
	}
	return false
}

// normalizeWeekdayList collapses "пн, ср и пт" into "пн,ср,пт".
func normalizeWeekdayList(list string) string {
	tokens := weekdayListSeparator.Split(strings.ToLower(list), -1)
	var codes []string
	seen := make(map[string]bool)
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if _, ok := codeToWeekday[tok]; !ok || seen[tok] {
			continue
		}
		seen[tok] = true
		codes = append(codes, tok)
	}
	return strings.Join(codes, ",")
}
