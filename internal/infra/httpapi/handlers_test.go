package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"subscriber_notification_service/internal/app"

	"github.com/sirupsen/logrus"
)

type fakeRunner struct {
	called chan struct{}
}

func (f *fakeRunner) Run(_ context.Context) (app.RunSummary, error) {
	close(f.called)
	return app.RunSummary{CompletedAt: time.Now()}, nil
}

type recordingSender struct {
	recipient string
	text      string
	err       error
}

func (s *recordingSender) Send(_ context.Context, recipient, text string) error {
	if s.err != nil {
		return s.err
	}
	s.recipient = recipient
	s.text = text
	return nil
}

type fakeOTP struct {
	verifyErr error
}

func (f *fakeOTP) SendSMS(_ context.Context, _, _ string) (string, error)   { return "session-1", nil }
func (f *fakeOTP) SendEmail(_ context.Context, _, _ string) (string, error) { return "session-1", nil }
func (f *fakeOTP) Verify(_ context.Context, _, _, _ string) error           { return f.verifyErr }

func newTestHandler(runner ReminderRunner, sender *recordingSender, otp OTPManager) *Handler {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewHandler(runner, app.NewLifecycleService(sender, log), otp, sender, log)
}

func doJSON(t *testing.T, h *Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.InitRouter().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	h := newTestHandler(&fakeRunner{called: make(chan struct{})}, &recordingSender{}, &fakeOTP{})
	w := doJSON(t, h, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCheckDueDateReminders_TriggersRun(t *testing.T) {
	runner := &fakeRunner{called: make(chan struct{})}
	h := newTestHandler(runner, &recordingSender{}, &fakeOTP{})

	w := doJSON(t, h, http.MethodPost, "/api/check-due-date-reminders", nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	select {
	case <-runner.called:
	case <-time.After(time.Second):
		t.Fatal("manual trigger never reached the runner")
	}
}

func TestSendSMS_Validation(t *testing.T) {
	h := newTestHandler(&fakeRunner{called: make(chan struct{})}, &recordingSender{}, &fakeOTP{})
	w := doJSON(t, h, http.MethodPost, "/api/send-sms", map[string]string{"phoneNumber": "+63917000001"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing message, got %d", w.Code)
	}
}

func TestSendSMS_OK(t *testing.T) {
	sender := &recordingSender{}
	h := newTestHandler(&fakeRunner{called: make(chan struct{})}, sender, &fakeOTP{})
	w := doJSON(t, h, http.MethodPost, "/api/send-sms", map[string]string{
		"phoneNumber": "+63917000001",
		"message":     "test message",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if sender.recipient != "+63917000001" || sender.text != "test message" {
		t.Fatalf("unexpected dispatch %q / %q", sender.recipient, sender.text)
	}
}

func TestNotifyApplicationApproved(t *testing.T) {
	sender := &recordingSender{}
	h := newTestHandler(&fakeRunner{called: make(chan struct{})}, sender, &fakeOTP{})
	w := doJSON(t, h, http.MethodPost, "/api/notify-application-approved", map[string]string{
		"phoneNumber":   "+63917000001",
		"applicantName": "Juan",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	want := "Hi Juan! Your application has been approved. Please submit the required documents."
	if sender.text != want {
		t.Fatalf("expected %q, got %q", want, sender.text)
	}
}

func TestNotifyApplicationApproved_MissingPhone(t *testing.T) {
	h := newTestHandler(&fakeRunner{called: make(chan struct{})}, &recordingSender{}, &fakeOTP{})
	w := doJSON(t, h, http.MethodPost, "/api/notify-application-approved", map[string]string{
		"applicantName": "Juan",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestNotifyReceiptApproved_MissingAmount(t *testing.T) {
	h := newTestHandler(&fakeRunner{called: make(chan struct{})}, &recordingSender{}, &fakeOTP{})
	w := doJSON(t, h, http.MethodPost, "/api/notify-receipt-approved", map[string]any{
		"phoneNumber":   "+63917000001",
		"applicantName": "Juan",
		"monthYear":     "January 2025",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestNotifyDueDateReminder_ZeroAmountsAllowed(t *testing.T) {
	sender := &recordingSender{}
	h := newTestHandler(&fakeRunner{called: make(chan struct{})}, sender, &fakeOTP{})
	w := doJSON(t, h, http.MethodPost, "/api/notify-due-date-reminder", map[string]any{
		"phoneNumber":   "+63917000001",
		"applicantName": "Juan",
		"dueDate":       "January 5, 2025",
		"amount":        0,
		"penalty":       0,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("zero amount and penalty are valid values, got %d: %s", w.Code, w.Body.String())
	}
}

func TestNotifyPlanStopDeclined_RequiresReason(t *testing.T) {
	h := newTestHandler(&fakeRunner{called: make(chan struct{})}, &recordingSender{}, &fakeOTP{})
	w := doJSON(t, h, http.MethodPost, "/api/notify-plan-stop-declined", map[string]string{
		"phoneNumber":   "+63917000001",
		"applicantName": "Juan",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing reason, got %d", w.Code)
	}
}

func TestNotifyPlanActivated(t *testing.T) {
	sender := &recordingSender{}
	h := newTestHandler(&fakeRunner{called: make(chan struct{})}, sender, &fakeOTP{})
	w := doJSON(t, h, http.MethodPost, "/api/notify-plan-activated", map[string]string{
		"phoneNumber":   "+63917000001",
		"applicantName": "Juan",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	want := "Hi Juan! Your plan has been successfully activated. Welcome back!"
	if sender.text != want {
		t.Fatalf("expected %q, got %q", want, sender.text)
	}
}

func TestNotifyPlanActivationDeclined(t *testing.T) {
	sender := &recordingSender{}
	h := newTestHandler(&fakeRunner{called: make(chan struct{})}, sender, &fakeOTP{})
	w := doJSON(t, h, http.MethodPost, "/api/notify-plan-activation-declined", map[string]string{
		"phoneNumber":   "+63917000001",
		"applicantName": "Juan",
		"reason":        "Unpaid bills",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	want := "Hi Juan! Your plan activation request has been declined. Reason: Unpaid bills."
	if sender.text != want {
		t.Fatalf("expected %q, got %q", want, sender.text)
	}
}

func TestSetDueDate(t *testing.T) {
	sender := &recordingSender{}
	h := newTestHandler(&fakeRunner{called: make(chan struct{})}, sender, &fakeOTP{})
	w := doJSON(t, h, http.MethodPost, "/api/set-due-date", map[string]string{
		"phoneNumber":     "+63917000001",
		"applicantName":   "Juan",
		"applicationType": "subscriber",
		"applicationId":   "app-42",
		"newDueDate":      "January 5, 2025",
		"reason":          "Billing cycle change",
		"changedBy":       "admin",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	want := "Hi Juan! Your subscription due date has been set to January 5, 2025."
	if sender.text != want {
		t.Fatalf("expected %q, got %q", want, sender.text)
	}
}

func TestSetDueDate_MissingAuditFields(t *testing.T) {
	h := newTestHandler(&fakeRunner{called: make(chan struct{})}, &recordingSender{}, &fakeOTP{})
	w := doJSON(t, h, http.MethodPost, "/api/set-due-date", map[string]string{
		"phoneNumber": "+63917000001",
		"newDueDate":  "January 5, 2025",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestResetDueDate(t *testing.T) {
	sender := &recordingSender{}
	h := newTestHandler(&fakeRunner{called: make(chan struct{})}, sender, &fakeOTP{})
	w := doJSON(t, h, http.MethodPost, "/api/reset-due-date", map[string]string{
		"phoneNumber":     "+63917000001",
		"applicantName":   "Juan",
		"applicationType": "subscriber",
		"applicationId":   "app-42",
		"reason":          "Plan stopped",
		"changedBy":       "admin",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	want := "Hi Juan! Your subscription due date has been reset. Please check your account for details."
	if sender.text != want {
		t.Fatalf("expected %q, got %q", want, sender.text)
	}
}

func TestVerifyOTP_InvalidSession(t *testing.T) {
	h := newTestHandler(&fakeRunner{called: make(chan struct{})}, &recordingSender{}, &fakeOTP{verifyErr: app.ErrOTPSessionNotFound})
	w := doJSON(t, h, http.MethodPost, "/api/verify-otp", map[string]string{
		"sessionId": "session-1",
		"otp":       "123456",
		"email":     "juan@example.com",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "Invalid or expired session" {
		t.Fatalf("unexpected error message %q", resp.Error)
	}
}
