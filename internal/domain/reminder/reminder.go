// internal/domain/reminder/reminder.go
package reminder

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the recurrence behavior of a reminder.
// Exactly one kind is active per record; the constructors below are the
// only way the rest of the application builds a Reminder, so a record
// never carries payload fields belonging to another kind.
type Kind string

const (
	KindCountdownDaily   Kind = "COUNTDOWN_DAILY"   // fires daily, N days left
	KindInfiniteDaily    Kind = "INFINITE_DAILY"    // fires daily, never expires
	KindWeekdayRecurring Kind = "WEEKDAY_RECURRING" // fires on a fixed weekday set
	KindWeekdayOnce      Kind = "WEEKDAY_ONCE"      // fires once on a target date
	KindCountdownMonthly Kind = "COUNTDOWN_MONTHLY" // fires monthly, N months left
	KindInfiniteMonthly  Kind = "INFINITE_MONTHLY"  // fires monthly, never expires
)

// TargetDateLayout is the wire format of Reminder.TargetDate.
const TargetDateLayout = "2006-01-02"

// Reminder represents one scheduled notification rule.
// Corresponds to the 'reminders' table.
type Reminder struct {
	ID              string // uuid v4, assigned at creation, immutable
	OwnerID         int64  // Telegram chat ID of the recipient
	Message         string
	Times           []string // "HH:MM", zero-padded, unique, ordered
	Kind            Kind
	RemainingCycles int            // > 0; countdown kinds only
	Weekdays        []time.Weekday // KindWeekdayRecurring only
	TargetDate      string         // "YYYY-MM-DD"; KindWeekdayOnce only
	DayOfMonth      int            // [1,28]; monthly kinds only
	CreatedAt       time.Time
}

// ValidationError reports a constraint violation in constructor arguments.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Sentinel validation failures. Errors returned by the constructors and
// Validate wrap one of these via ValidationError values declared here.
var (
	ErrNoTimes       = &ValidationError{Field: "times", Reason: "at least one notification time is required"}
	ErrBadTime       = &ValidationError{Field: "times", Reason: "time must be HH:MM in 24-hour format"}
	ErrBadCycles     = &ValidationError{Field: "remaining_cycles", Reason: "counter must be a positive number"}
	ErrNoWeekdays    = &ValidationError{Field: "weekdays", Reason: "at least one weekday is required"}
	ErrBadDayOfMonth = &ValidationError{Field: "day_of_month", Reason: "day of month must be between 1 and 28"}
	ErrBadTargetDate = &ValidationError{Field: "target_date", Reason: "target date must be YYYY-MM-DD"}
	ErrKindConflict  = &ValidationError{Field: "kind", Reason: "fields from different recurrence kinds are mixed"}
)

// NewCountdownDaily builds a daily reminder that expires after days fires.
func NewCountdownDaily(message string, times []string, days int) (*Reminder, error) {
	if days <= 0 {
		return nil, ErrBadCycles
	}
	normalized, err := normalizeTimes(times)
	if err != nil {
		return nil, err
	}
	return &Reminder{
		ID:              uuid.NewString(),
		Message:         message,
		Times:           normalized,
		Kind:            KindCountdownDaily,
		RemainingCycles: days,
		CreatedAt:       time.Now(),
	}, nil
}

// NewInfiniteDaily builds a daily reminder that never expires.
func NewInfiniteDaily(message string, times []string) (*Reminder, error) {
	normalized, err := normalizeTimes(times)
	if err != nil {
		return nil, err
	}
	return &Reminder{
		ID:        uuid.NewString(),
		Message:   message,
		Times:     normalized,
		Kind:      KindInfiniteDaily,
		CreatedAt: time.Now(),
	}, nil
}

// NewWeekdayRecurring builds a reminder firing on the given weekdays, indefinitely.
func NewWeekdayRecurring(message string, times []string, weekdays []time.Weekday) (*Reminder, error) {
	if len(weekdays) == 0 {
		return nil, ErrNoWeekdays
	}
	normalized, err := normalizeTimes(times)
	if err != nil {
		return nil, err
	}
	return &Reminder{
		ID:        uuid.NewString(),
		Message:   message,
		Times:     normalized,
		Kind:      KindWeekdayRecurring,
		Weekdays:  dedupeWeekdays(weekdays),
		CreatedAt: time.Now(),
	}, nil
}

// NewWeekdayOnce builds a one-off reminder for a single calendar date.
func NewWeekdayOnce(message string, times []string, targetDate string) (*Reminder, error) {
	if _, err := time.Parse(TargetDateLayout, targetDate); err != nil {
		return nil, ErrBadTargetDate
	}
	normalized, err := normalizeTimes(times)
	if err != nil {
		return nil, err
	}
	return &Reminder{
		ID:         uuid.NewString(),
		Message:    message,
		Times:      normalized,
		Kind:       KindWeekdayOnce,
		TargetDate: targetDate,
		CreatedAt:  time.Now(),
	}, nil
}

// NewCountdownMonthly builds a monthly reminder that expires after months fires.
func NewCountdownMonthly(message string, times []string, months, dayOfMonth int) (*Reminder, error) {
	if months <= 0 {
		return nil, ErrBadCycles
	}
	if dayOfMonth < 1 || dayOfMonth > 28 {
		return nil, ErrBadDayOfMonth
	}
	normalized, err := normalizeTimes(times)
	if err != nil {
		return nil, err
	}
	return &Reminder{
		ID:              uuid.NewString(),
		Message:         message,
		Times:           normalized,
		Kind:            KindCountdownMonthly,
		RemainingCycles: months,
		DayOfMonth:      dayOfMonth,
		CreatedAt:       time.Now(),
	}, nil
}

// NewInfiniteMonthly builds a monthly reminder that never expires.
func NewInfiniteMonthly(message string, times []string, dayOfMonth int) (*Reminder, error) {
	if dayOfMonth < 1 || dayOfMonth > 28 {
		return nil, ErrBadDayOfMonth
	}
	normalized, err := normalizeTimes(times)
	if err != nil {
		return nil, err
	}
	return &Reminder{
		ID:         uuid.NewString(),
		Message:    message,
		Times:      normalized,
		Kind:       KindInfiniteMonthly,
		DayOfMonth: dayOfMonth,
		CreatedAt:  time.Now(),
	}, nil
}

// IsCountdown reports whether the reminder carries a decrementing counter.
func (r *Reminder) IsCountdown() bool {
	return r.Kind == KindCountdownDaily || r.Kind == KindCountdownMonthly
}

// IsMonthly reports whether the reminder is governed by a day of month.
func (r *Reminder) IsMonthly() bool {
	return r.Kind == KindCountdownMonthly || r.Kind == KindInfiniteMonthly
}

// IsDue reports whether the reminder should fire at the given instant.
// A reminder fires at most once per evaluation: the time match is a set
// membership test, so a duplicated time string cannot trigger twice.
func (r *Reminder) IsDue(now time.Time) bool {
	current := now.Format("15:04")
	matched := false
	for _, t := range r.Times {
		if t == current {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	switch r.Kind {
	case KindCountdownDaily, KindInfiniteDaily:
		return true
	case KindWeekdayRecurring:
		for _, wd := range r.Weekdays {
			if wd == now.Weekday() {
				return true
			}
		}
		return false
	case KindWeekdayOnce:
		return now.Format(TargetDateLayout) == r.TargetDate
	case KindCountdownMonthly, KindInfiniteMonthly:
		return now.Day() == r.DayOfMonth
	}
	return false
}

// Validate re-checks the full invariant set on a record loaded from
// storage or built outside the constructors.
func (r *Reminder) Validate() error {
	if _, err := normalizeTimes(r.Times); err != nil {
		return err
	}
	switch r.Kind {
	case KindCountdownDaily:
		if r.RemainingCycles <= 0 {
			return ErrBadCycles
		}
		if len(r.Weekdays) > 0 || r.TargetDate != "" || r.DayOfMonth != 0 {
			return ErrKindConflict
		}
	case KindInfiniteDaily:
		if r.RemainingCycles != 0 || len(r.Weekdays) > 0 || r.TargetDate != "" || r.DayOfMonth != 0 {
			return ErrKindConflict
		}
	case KindWeekdayRecurring:
		if len(r.Weekdays) == 0 {
			return ErrNoWeekdays
		}
		if r.RemainingCycles != 0 || r.TargetDate != "" || r.DayOfMonth != 0 {
			return ErrKindConflict
		}
	case KindWeekdayOnce:
		if _, err := time.Parse(TargetDateLayout, r.TargetDate); err != nil {
			return ErrBadTargetDate
		}
		if r.RemainingCycles != 0 || len(r.Weekdays) > 0 || r.DayOfMonth != 0 {
			return ErrKindConflict
		}
	case KindCountdownMonthly:
		if r.RemainingCycles <= 0 {
			return ErrBadCycles
		}
		if r.DayOfMonth < 1 || r.DayOfMonth > 28 {
			return ErrBadDayOfMonth
		}
		if len(r.Weekdays) > 0 || r.TargetDate != "" {
			return ErrKindConflict
		}
	case KindInfiniteMonthly:
		if r.DayOfMonth < 1 || r.DayOfMonth > 28 {
			return ErrBadDayOfMonth
		}
		if r.RemainingCycles != 0 || len(r.Weekdays) > 0 || r.TargetDate != "" {
			return ErrKindConflict
		}
	default:
		return &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", r.Kind)}
	}
	return nil
}

// normalizeTimes validates each HH:MM token, zero-pads the hour and
// drops duplicates while preserving order.
func normalizeTimes(times []string) ([]string, error) {
	if len(times) == 0 {
		return nil, ErrNoTimes
	}
	seen := make(map[string]bool, len(times))
	out := make([]string, 0, len(times))
	for _, raw := range times {
		m := timeTokenPattern.FindStringSubmatch(raw)
		if m == nil {
			return nil, ErrBadTime
		}
		hour := m[1]
		if len(hour) == 1 {
			hour = "0" + hour
		}
		normalized := hour + ":" + m[2]
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, normalized)
	}
	if len(out) == 0 {
		return nil, ErrNoTimes
	}
	return out, nil
}

func dedupeWeekdays(weekdays []time.Weekday) []time.Weekday {
	seen := make(map[time.Weekday]bool, len(weekdays))
	out := make([]time.Weekday, 0, len(weekdays))
	for _, wd := range weekdays {
		if seen[wd] {
			continue
		}
		seen[wd] = true
		out = append(out, wd)
	}
	return out
}
