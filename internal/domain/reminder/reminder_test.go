package reminder

import (
	"errors"
	"testing"
	"time"
)

func TestNewCountdownDaily_Valid(t *testing.T) {
	rem, err := NewCountdownDaily("Выпить воды", []string{"9:05", "21:00"}, 7)
	if err != nil {
		t.Fatalf("NewCountdownDaily returned error: %v", err)
	}
	if rem.Kind != KindCountdownDaily {
		t.Errorf("expected kind %s, got %s", KindCountdownDaily, rem.Kind)
	}
	if rem.RemainingCycles != 7 {
		t.Errorf("expected 7 remaining cycles, got %d", rem.RemainingCycles)
	}
	if len(rem.Times) != 2 || rem.Times[0] != "09:05" || rem.Times[1] != "21:00" {
		t.Errorf("expected zero-padded times [09:05 21:00], got %v", rem.Times)
	}
	if rem.ID == "" {
		t.Error("expected a generated ID")
	}
	if err := rem.Validate(); err != nil {
		t.Errorf("fresh reminder failed Validate: %v", err)
	}
}

func TestNewCountdownDaily_RejectsNonPositiveDays(t *testing.T) {
	for _, days := range []int{0, -1} {
		if _, err := NewCountdownDaily("msg", []string{"10:00"}, days); !errors.Is(err, ErrBadCycles) {
			t.Errorf("days=%d: expected ErrBadCycles, got %v", days, err)
		}
	}
}

func TestNormalizeTimes_Dedupe(t *testing.T) {
	rem, err := NewInfiniteDaily("msg", []string{"10:00", "10:00", "9:30"})
	if err != nil {
		t.Fatalf("NewInfiniteDaily returned error: %v", err)
	}
	if len(rem.Times) != 2 {
		t.Fatalf("expected duplicates collapsed to 2 entries, got %v", rem.Times)
	}
	if rem.Times[0] != "10:00" || rem.Times[1] != "09:30" {
		t.Errorf("expected [10:00 09:30], got %v", rem.Times)
	}
}

func TestNormalizeTimes_RejectsBadTokens(t *testing.T) {
	bad := [][]string{
		{"24:00"},
		{"10:60"},
		{"1000"},
		{"ten"},
		{""},
	}
	for _, times := range bad {
		if _, err := NewInfiniteDaily("msg", times); !errors.Is(err, ErrBadTime) {
			t.Errorf("times=%v: expected ErrBadTime, got %v", times, err)
		}
	}
	if _, err := NewInfiniteDaily("msg", nil); !errors.Is(err, ErrNoTimes) {
		t.Errorf("expected ErrNoTimes for empty list, got %v", err)
	}
}

func TestNewWeekdayRecurring_DedupesWeekdays(t *testing.T) {
	rem, err := NewWeekdayRecurring("msg", []string{"10:00"}, []time.Weekday{time.Monday, time.Friday, time.Monday})
	if err != nil {
		t.Fatalf("NewWeekdayRecurring returned error: %v", err)
	}
	if len(rem.Weekdays) != 2 {
		t.Errorf("expected 2 distinct weekdays, got %v", rem.Weekdays)
	}
	if _, err := NewWeekdayRecurring("msg", []string{"10:00"}, nil); !errors.Is(err, ErrNoWeekdays) {
		t.Errorf("expected ErrNoWeekdays, got %v", err)
	}
}

func TestNewWeekdayOnce_ValidatesDate(t *testing.T) {
	if _, err := NewWeekdayOnce("msg", []string{"10:00"}, "2026-13-01"); !errors.Is(err, ErrBadTargetDate) {
		t.Errorf("expected ErrBadTargetDate, got %v", err)
	}
	rem, err := NewWeekdayOnce("msg", []string{"10:00"}, "2026-09-04")
	if err != nil {
		t.Fatalf("NewWeekdayOnce returned error: %v", err)
	}
	if rem.TargetDate != "2026-09-04" {
		t.Errorf("expected target date preserved, got %s", rem.TargetDate)
	}
}

func TestNewMonthly_DayOfMonthBounds(t *testing.T) {
	for _, day := range []int{0, 29, 30, 31} {
		if _, err := NewCountdownMonthly("msg", []string{"10:00"}, 3, day); !errors.Is(err, ErrBadDayOfMonth) {
			t.Errorf("day=%d: expected ErrBadDayOfMonth, got %v", day, err)
		}
		if _, err := NewInfiniteMonthly("msg", []string{"10:00"}, day); !errors.Is(err, ErrBadDayOfMonth) {
			t.Errorf("day=%d: expected ErrBadDayOfMonth, got %v", day, err)
		}
	}
	rem, err := NewCountdownMonthly("msg", []string{"10:00"}, 3, 28)
	if err != nil {
		t.Fatalf("day 28 should be accepted: %v", err)
	}
	if rem.DayOfMonth != 28 {
		t.Errorf("expected day 28, got %d", rem.DayOfMonth)
	}
}

func TestValidate_KindConflicts(t *testing.T) {
	cases := []struct {
		name string
		rem  Reminder
	}{
		{
			name: "infinite daily with counter",
			rem:  Reminder{Times: []string{"10:00"}, Kind: KindInfiniteDaily, RemainingCycles: 3},
		},
		{
			name: "countdown daily with weekdays",
			rem:  Reminder{Times: []string{"10:00"}, Kind: KindCountdownDaily, RemainingCycles: 3, Weekdays: []time.Weekday{time.Monday}},
		},
		{
			name: "weekday recurring with target date",
			rem:  Reminder{Times: []string{"10:00"}, Kind: KindWeekdayRecurring, Weekdays: []time.Weekday{time.Monday}, TargetDate: "2026-09-04"},
		},
		{
			name: "weekday once with day of month",
			rem:  Reminder{Times: []string{"10:00"}, Kind: KindWeekdayOnce, TargetDate: "2026-09-04", DayOfMonth: 5},
		},
		{
			name: "countdown monthly with weekdays",
			rem:  Reminder{Times: []string{"10:00"}, Kind: KindCountdownMonthly, RemainingCycles: 2, DayOfMonth: 5, Weekdays: []time.Weekday{time.Friday}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.rem.Validate(); !errors.Is(err, ErrKindConflict) {
				t.Errorf("expected ErrKindConflict, got %v", err)
			}
		})
	}
}

func TestValidate_UnknownKind(t *testing.T) {
	rem := Reminder{Times: []string{"10:00"}, Kind: Kind("WEEKLY")}
	if err := rem.Validate(); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestIsDue(t *testing.T) {
	// Wednesday 2026-09-02 10:00 UTC+3.
	loc := time.FixedZone("UTC+3", 3*3600)
	now := time.Date(2026, 9, 2, 10, 0, 0, 0, loc)

	cases := []struct {
		name string
		rem  Reminder
		want bool
	}{
		{
			name: "daily at matching time",
			rem:  Reminder{Times: []string{"10:00"}, Kind: KindInfiniteDaily},
			want: true,
		},
		{
			name: "daily at other time",
			rem:  Reminder{Times: []string{"10:01"}, Kind: KindInfiniteDaily},
			want: false,
		},
		{
			name: "weekday recurring on matching weekday",
			rem:  Reminder{Times: []string{"10:00"}, Kind: KindWeekdayRecurring, Weekdays: []time.Weekday{time.Wednesday}},
			want: true,
		},
		{
			name: "weekday recurring on other weekday",
			rem:  Reminder{Times: []string{"10:00"}, Kind: KindWeekdayRecurring, Weekdays: []time.Weekday{time.Friday}},
			want: false,
		},
		{
			name: "one-off on its date",
			rem:  Reminder{Times: []string{"10:00"}, Kind: KindWeekdayOnce, TargetDate: "2026-09-02"},
			want: true,
		},
		{
			name: "one-off on another date",
			rem:  Reminder{Times: []string{"10:00"}, Kind: KindWeekdayOnce, TargetDate: "2026-09-09"},
			want: false,
		},
		{
			name: "monthly on matching day",
			rem:  Reminder{Times: []string{"10:00"}, Kind: KindInfiniteMonthly, DayOfMonth: 2},
			want: true,
		},
		{
			name: "monthly on other day",
			rem:  Reminder{Times: []string{"10:00"}, Kind: KindCountdownMonthly, RemainingCycles: 2, DayOfMonth: 15},
			want: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rem.IsDue(now); got != tc.want {
				t.Errorf("IsDue = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsDue_DuplicateTimeMatchesOnce(t *testing.T) {
	// A record hand-built with a duplicated time still reports due
	// exactly once per evaluation since the check is set membership.
	loc := time.FixedZone("UTC+3", 3*3600)
	now := time.Date(2026, 9, 2, 10, 0, 0, 0, loc)
	rem := Reminder{Times: []string{"10:00", "10:00"}, Kind: KindInfiniteDaily}
	if !rem.IsDue(now) {
		t.Fatal("expected reminder to be due")
	}
}
