package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"subscriber_notification_service/internal/domain/billing"

	"github.com/sirupsen/logrus"
)

type fakePayments struct {
	records []*billing.PaymentRecord
	err     error
}

func (f *fakePayments) ListApproved(_ context.Context) ([]*billing.PaymentRecord, error) {
	return f.records, f.err
}

type fakeSettings struct {
	penalty float64
	err     error
}

func (f *fakeSettings) PenaltyAmount(_ context.Context) (float64, error) {
	return f.penalty, f.err
}

type dispatch struct {
	recipient string
	text      string
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []dispatch
	failFor map[string]error
}

func (f *fakeSender) Send(_ context.Context, recipient, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[recipient]; ok {
		return err
	}
	f.sent = append(f.sent, dispatch{recipient: recipient, text: text})
	return nil
}

// testToday is the fixed "current date" all runner tests classify against.
var testToday = time.Date(2025, time.January, 10, 8, 0, 0, 0, time.UTC)

func newTestService(payments billing.PaymentRepository, settings billing.SettingsRepository, sender *fakeSender) (*ReminderService, *int) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	s := NewReminderService(payments, settings, sender, log, 0)
	s.now = func() time.Time { return testToday }
	pauses := new(int)
	s.sleep = func(time.Duration) { *pauses++ }
	return s, pauses
}

func record(id, contact string, due time.Time, amount float64) *billing.PaymentRecord {
	d := due
	return &billing.PaymentRecord{
		ID:            id,
		Status:        billing.StatusApproved,
		DueDate:       &d,
		ContactNumber: contact,
		FirstName:     "Juan",
		LastName:      "Dela Cruz",
		Amount:        amount,
	}
}

func TestRun_MixedBatch(t *testing.T) {
	payments := &fakePayments{records: []*billing.PaymentRecord{
		record("a", "+63917000001", time.Date(2025, time.January, 13, 0, 0, 0, 0, time.UTC), 1500), // +3 days
		record("b", "+63917000002", time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), 1200), // today
		record("c", "+63917000003", time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC), 999),   // 5 days overdue
		record("d", "+63917000004", time.Date(2025, time.February, 20, 0, 0, 0, 0, time.UTC), 800), // no action
	}}
	sender := &fakeSender{}
	svc, pauses := newTestService(payments, &fakeSettings{penalty: 75}, sender)

	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.ThreeDayReminders != 1 || summary.DueTodayReminders != 1 || summary.OverdueNotices != 1 || summary.Errors != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(sender.sent) != 3 {
		t.Fatalf("expected 3 dispatches, got %d", len(sender.sent))
	}
	// Only actual dispatch attempts consume the throttle pause.
	if *pauses != 3 {
		t.Fatalf("expected 3 pauses, got %d", *pauses)
	}
	overdueText := sender.sent[2].text
	if !strings.Contains(overdueText, "P75 penalty") {
		t.Fatalf("overdue notice should carry the global penalty, got %q", overdueText)
	}
	if !strings.Contains(overdueText, "January 5, 2025") {
		t.Fatalf("overdue notice should carry the formatted due date, got %q", overdueText)
	}
}

func TestRun_DispatchFailureDoesNotAbortBatch(t *testing.T) {
	payments := &fakePayments{records: []*billing.PaymentRecord{
		record("a", "+63917000001", time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), 1500),
		record("b", "+63917000002", time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), 1200),
	}}
	sender := &fakeSender{failFor: map[string]error{"+63917000001": errors.New("gateway timeout")}}
	svc, pauses := newTestService(payments, &fakeSettings{}, sender)

	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.Errors != 1 {
		t.Fatalf("expected 1 error, got %d", summary.Errors)
	}
	if summary.DueTodayReminders != 1 {
		t.Fatalf("expected 1 due-today reminder, got %d", summary.DueTodayReminders)
	}
	// Failed attempts pause too.
	if *pauses != 2 {
		t.Fatalf("expected 2 pauses, got %d", *pauses)
	}
}

func TestRun_EmptyScan(t *testing.T) {
	sender := &fakeSender{}
	svc, pauses := newTestService(&fakePayments{}, &fakeSettings{penalty: 50}, sender)

	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.ThreeDayReminders+summary.DueTodayReminders+summary.OverdueNotices+summary.Errors != 0 {
		t.Fatalf("expected all-zero summary, got %+v", summary)
	}
	if summary.CompletedAt.IsZero() {
		t.Fatal("summary must carry a completion timestamp")
	}
	if len(sender.sent) != 0 || *pauses != 0 {
		t.Fatalf("expected no dispatches and no pauses, got %d/%d", len(sender.sent), *pauses)
	}
}

func TestRun_MalformedRecordsSkippedSilently(t *testing.T) {
	due := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	payments := &fakePayments{records: []*billing.PaymentRecord{
		{ID: "no-contact", Status: billing.StatusApproved, DueDate: &due},
		{ID: "no-due-date", Status: billing.StatusApproved, ContactNumber: "+63917000001"},
	}}
	sender := &fakeSender{}
	svc, pauses := newTestService(payments, &fakeSettings{}, sender)

	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.Errors != 0 {
		t.Fatalf("malformed records must not count as errors, got %d", summary.Errors)
	}
	if len(sender.sent) != 0 || *pauses != 0 {
		t.Fatalf("malformed records must not dispatch or pause, got %d/%d", len(sender.sent), *pauses)
	}
}

func TestRun_ScanFailureAbortsRun(t *testing.T) {
	payments := &fakePayments{err: billing.ErrStoreUnavailable}
	sender := &fakeSender{}
	svc, _ := newTestService(payments, &fakeSettings{}, sender)

	_, err := svc.Run(context.Background())
	if !errors.Is(err, billing.ErrStoreUnavailable) {
		t.Fatalf("expected store-unavailable error, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("no dispatches may happen after a failed scan, got %d", len(sender.sent))
	}
}

func TestRun_PenaltyReadFailureFallsBackToZero(t *testing.T) {
	payments := &fakePayments{records: []*billing.PaymentRecord{
		record("c", "+63917000003", time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC), 999),
	}}
	sender := &fakeSender{}
	svc, _ := newTestService(payments, &fakeSettings{err: errors.New("settings read timed out")}, sender)

	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("penalty read failure must not abort the run: %v", err)
	}
	if summary.OverdueNotices != 1 {
		t.Fatalf("expected 1 overdue notice, got %d", summary.OverdueNotices)
	}
	if !strings.Contains(sender.sent[0].text, "P0 penalty") {
		t.Fatalf("expected zero penalty in message, got %q", sender.sent[0].text)
	}
}

type blockingSender struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *blockingSender) Send(_ context.Context, _, _ string) error {
	s.once.Do(func() { close(s.started) })
	<-s.release
	return nil
}

func TestRun_OverlappingRunIsSkipped(t *testing.T) {
	payments := &fakePayments{records: []*billing.PaymentRecord{
		record("a", "+63917000001", time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), 1500),
	}}
	sender := &blockingSender{started: make(chan struct{}), release: make(chan struct{})}

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	svc := NewReminderService(payments, &fakeSettings{}, sender, log, 0)
	svc.now = func() time.Time { return testToday }
	svc.sleep = func(time.Duration) {}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Run(context.Background())
	}()

	<-sender.started
	if _, err := svc.Run(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}

	close(sender.release)
	<-done
}
