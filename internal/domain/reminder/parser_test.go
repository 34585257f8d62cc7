package reminder

import (
	"errors"
	"testing"
	"time"
)

func TestParse_QuotedCountdown(t *testing.T) {
	rem, err := Parse(`"Выпить воды" "16:00,21:30" 5`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if rem.Kind != KindCountdownDaily {
		t.Errorf("expected kind %s, got %s", KindCountdownDaily, rem.Kind)
	}
	if rem.Message != "Выпить воды" {
		t.Errorf("unexpected message: %q", rem.Message)
	}
	if len(rem.Times) != 2 || rem.Times[0] != "16:00" || rem.Times[1] != "21:30" {
		t.Errorf("unexpected times: %v", rem.Times)
	}
	if rem.RemainingCycles != 5 {
		t.Errorf("expected 5 cycles, got %d", rem.RemainingCycles)
	}
}

func TestParse_BareTimeForm(t *testing.T) {
	rem, err := Parse(`"Позвонить маме" 18:00 1`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if rem.Kind != KindCountdownDaily || rem.RemainingCycles != 1 {
		t.Errorf("expected one-day countdown, got kind=%s cycles=%d", rem.Kind, rem.RemainingCycles)
	}
	if len(rem.Times) != 1 || rem.Times[0] != "18:00" {
		t.Errorf("unexpected times: %v", rem.Times)
	}
}

func TestParse_Infinity(t *testing.T) {
	rem, err := Parse(`"Зарядка" "07:30" infinity`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if rem.Kind != KindInfiniteDaily {
		t.Errorf("expected kind %s, got %s", KindInfiniteDaily, rem.Kind)
	}
	if rem.RemainingCycles != 0 {
		t.Errorf("infinite reminder must not carry a counter, got %d", rem.RemainingCycles)
	}
}

func TestParse_WeekdayList(t *testing.T) {
	rem, err := Parse(`"Бассейн" "19:00" пн,ср,пт`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if rem.Kind != KindWeekdayRecurring {
		t.Errorf("expected kind %s, got %s", KindWeekdayRecurring, rem.Kind)
	}
	want := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	if len(rem.Weekdays) != len(want) {
		t.Fatalf("unexpected weekdays: %v", rem.Weekdays)
	}
	for i, wd := range want {
		if rem.Weekdays[i] != wd {
			t.Errorf("weekday[%d] = %v, want %v", i, rem.Weekdays[i], wd)
		}
	}
}

func TestParse_Monthly(t *testing.T) {
	rem, err := Parse(`/monthly "Оплатить аренду" "12:00" 6 25`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if rem.Kind != KindCountdownMonthly {
		t.Errorf("expected kind %s, got %s", KindCountdownMonthly, rem.Kind)
	}
	if rem.DayOfMonth != 25 || rem.RemainingCycles != 6 {
		t.Errorf("unexpected payload: day=%d cycles=%d", rem.DayOfMonth, rem.RemainingCycles)
	}

	rem, err = Parse(`/monthly "Показания счётчиков" "10:00" infinity 1`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if rem.Kind != KindInfiniteMonthly {
		t.Errorf("expected kind %s, got %s", KindInfiniteMonthly, rem.Kind)
	}
}

func TestParse_MonthlyRejections(t *testing.T) {
	if _, err := Parse(`/monthly "msg" "10:00" 3 29`); !errors.Is(err, ErrBadDayOfMonth) {
		t.Errorf("day 29: expected ErrBadDayOfMonth, got %v", err)
	}
	if _, err := Parse(`/monthly "msg" "10:00" пн,вт 5`); !errors.Is(err, ErrBadGrammar) {
		t.Errorf("weekday repeat: expected ErrBadGrammar, got %v", err)
	}
}

func TestParse_Failures(t *testing.T) {
	inputs := []string{
		``,
		`напомни мне завтра`,
		`"только сообщение"`,
		`"msg" "25:00" 3`,
		`"msg" "10:00" какой-то`,
		`"msg" "10:00" 0`,
		`"msg" "10:00" -2`,
	}
	for _, input := range inputs {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) should fail", input)
		}
	}
}

func TestParse_DeterministicExceptID(t *testing.T) {
	input := `"Выпить воды" "16:00" 3`
	first, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	second, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if first.ID == second.ID {
		t.Error("each parse must mint a fresh ID")
	}
	if first.Message != second.Message || first.Kind != second.Kind ||
		first.RemainingCycles != second.RemainingCycles ||
		len(first.Times) != len(second.Times) || first.Times[0] != second.Times[0] {
		t.Error("parses of identical input must agree on every field except ID")
	}
}

func TestParseDelete(t *testing.T) {
	id, ok := ParseDelete("/delete 123e4567-e89b-42d3-a456-426614174000")
	if !ok || id != "123e4567-e89b-42d3-a456-426614174000" {
		t.Errorf("expected uuid extracted, got %q ok=%v", id, ok)
	}
	if _, ok := ParseDelete("/delete not-a-uuid"); ok {
		t.Error("expected malformed id to be rejected")
	}
	if _, ok := ParseDelete("/delete"); ok {
		t.Error("expected bare command to be rejected")
	}
}
