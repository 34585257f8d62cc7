package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"reminder_notification_bot/internal/domain/oracle"
	"reminder_notification_bot/internal/domain/reminder"

	"github.com/sirupsen/logrus"
)

// fakeOracle returns canned answers in order, one per Complete call.
type fakeOracle struct {
	answers []string
	errs    []error
	calls   int
	prompts []string
}

func (f *fakeOracle) Complete(_ context.Context, systemPrompt, _ string) (string, error) {
	idx := f.calls
	f.calls++
	f.prompts = append(f.prompts, systemPrompt)
	var err error
	if idx < len(f.errs) {
		err = f.errs[idx]
	}
	var answer string
	if idx < len(f.answers) {
		answer = f.answers[idx]
	}
	return answer, err
}

func newReminderServiceForTest(repo *fakeReminderRepo, oracleClient oracle.Client, transport *fakeTransport) *ReminderService {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	svc := NewReminderService(repo, oracleClient, transport, log.WithField("test", true), testLoc, 10, time.Millisecond)
	svc.now = func() time.Time { return tickNow }
	return svc
}

func TestCreateFromText_CanonicalFastPath(t *testing.T) {
	repo := &fakeReminderRepo{}
	oracleClient := &fakeOracle{}
	svc := newReminderServiceForTest(repo, oracleClient, &fakeTransport{})

	rem, err := svc.CreateFromText(context.Background(), 42, `"Выпить воды" "16:00" 3`)
	if err != nil {
		t.Fatalf("CreateFromText returned error: %v", err)
	}
	if oracleClient.calls != 0 {
		t.Errorf("canonical input must not reach the oracle, got %d calls", oracleClient.calls)
	}
	if rem.OwnerID != 42 {
		t.Errorf("owner must be assigned on store, got %d", rem.OwnerID)
	}
	if len(repo.active) != 1 {
		t.Errorf("expected one stored reminder, got %d", len(repo.active))
	}
}

func TestCreateFromText_OracleAnswerNormalized(t *testing.T) {
	repo := &fakeReminderRepo{}
	oracleClient := &fakeOracle{answers: []string{`"Встреча с врачом" "15:30" 1`}}
	svc := newReminderServiceForTest(repo, oracleClient, &fakeTransport{})

	rem, err := svc.CreateFromText(context.Background(), 42, "напомни про встречу с врачом в 15:30")
	if err != nil {
		t.Fatalf("CreateFromText returned error: %v", err)
	}
	if oracleClient.calls != 1 {
		t.Errorf("expected a single oracle call, got %d", oracleClient.calls)
	}
	if rem.Kind != reminder.KindCountdownDaily || rem.Message != "Встреча с врачом" {
		t.Errorf("unexpected result: kind=%s message=%q", rem.Kind, rem.Message)
	}
}

func TestCreateFromText_AmplifiedRetry(t *testing.T) {
	repo := &fakeReminderRepo{}
	// First answer is useless and defeats every repair strategy; the
	// second, amplified attempt is canonical.
	oracleClient := &fakeOracle{answers: []string{
		"не смог: уточните",
		`"Выпить воды" "16:00" 3`,
	}}
	svc := newReminderServiceForTest(repo, oracleClient, &fakeTransport{})

	// No recognizable time in the utterance, so the heuristic fallback
	// cannot rescue the first malformed answer.
	rem, err := svc.CreateFromText(context.Background(), 42, "напомни насчёт воды вечером на три дня")
	if err != nil {
		t.Fatalf("CreateFromText returned error: %v", err)
	}
	if oracleClient.calls != 2 {
		t.Fatalf("expected two oracle calls, got %d", oracleClient.calls)
	}
	if oracleClient.prompts[0] == oracleClient.prompts[1] {
		t.Error("second attempt must carry the amplified prompt")
	}
	if rem.RemainingCycles != 3 {
		t.Errorf("expected the retried answer stored, got cycles=%d", rem.RemainingCycles)
	}
}

func TestCreateFromText_OracleUnavailableDegradesToHeuristics(t *testing.T) {
	repo := &fakeReminderRepo{}
	oracleClient := &fakeOracle{errs: []error{oracle.ErrUnavailable}}
	svc := newReminderServiceForTest(repo, oracleClient, &fakeTransport{})

	rem, err := svc.CreateFromText(context.Background(), 42, "напомни выпить воды в 16:00")
	if err != nil {
		t.Fatalf("CreateFromText returned error: %v", err)
	}
	if rem.Message != "выпить воды" || rem.Times[0] != "16:00" {
		t.Errorf("heuristic extraction failed: message=%q times=%v", rem.Message, rem.Times)
	}
}

func TestCreateFromText_Unrecoverable(t *testing.T) {
	repo := &fakeReminderRepo{}
	oracleClient := &fakeOracle{answers: []string{"не смог: уточните", "всё ещё: не смог"}}
	svc := newReminderServiceForTest(repo, oracleClient, &fakeTransport{})

	_, err := svc.CreateFromText(context.Background(), 42, "привет, как дела?")
	if !errors.Is(err, reminder.ErrUnrecoverableParse) {
		t.Fatalf("expected ErrUnrecoverableParse, got %v", err)
	}
	if len(repo.active) != 0 {
		t.Errorf("nothing may be stored on failure, got %d records", len(repo.active))
	}
}

func TestCreateFromCommand_MonthlyOnly(t *testing.T) {
	repo := &fakeReminderRepo{}
	svc := newReminderServiceForTest(repo, &fakeOracle{}, &fakeTransport{})

	rem, err := svc.CreateFromCommand(context.Background(), 42, `/monthly "Аренда" "12:00" 6 25`)
	if err != nil {
		t.Fatalf("CreateFromCommand returned error: %v", err)
	}
	if rem.Kind != reminder.KindCountdownMonthly {
		t.Errorf("expected monthly kind, got %s", rem.Kind)
	}

	if _, err := svc.CreateFromCommand(context.Background(), 42, "/monthly что-то не то"); err == nil {
		t.Error("malformed command must fail without oracle involvement")
	}
}

func TestBroadcast(t *testing.T) {
	repo := &fakeReminderRepo{owners: []int64{1, 2, 3}}
	transport := &fakeTransport{failFor: map[int64]bool{2: true}}
	svc := newReminderServiceForTest(repo, &fakeOracle{}, transport)

	succeeded, failed, err := svc.Broadcast(context.Background(), "Техработы в 23:00")
	if err != nil {
		t.Fatalf("Broadcast returned error: %v", err)
	}
	if succeeded != 2 || failed != 1 {
		t.Errorf("expected 2 succeeded / 1 failed, got %d/%d", succeeded, failed)
	}
}
