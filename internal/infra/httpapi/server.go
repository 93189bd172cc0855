package httpapi

import (
	"context"
	"net/http"
	"time"

	"subscriber_notification_service/internal/app"
	"subscriber_notification_service/internal/domain/message"
	"subscriber_notification_service/internal/domain/notify"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// ReminderRunner triggers one full reminder pass.
type ReminderRunner interface {
	Run(ctx context.Context) (app.RunSummary, error)
}

// LifecycleNotifier dispatches one-off lifecycle notifications.
type LifecycleNotifier interface {
	Notify(ctx context.Context, contactNumber string, msg message.Message) error
}

// OTPManager issues and verifies time-boxed verification codes.
type OTPManager interface {
	SendSMS(ctx context.Context, phoneNumber, name string) (string, error)
	SendEmail(ctx context.Context, email, name string) (string, error)
	Verify(ctx context.Context, sessionID, code, recipient string) error
}

// Handler owns the HTTP surface of the service.
type Handler struct {
	reminders ReminderRunner
	lifecycle LifecycleNotifier
	otp       OTPManager
	sender    notify.Sender // raw /api/send-sms passthrough
	log       *logrus.Logger
}

func NewHandler(
	reminders ReminderRunner,
	lifecycle LifecycleNotifier,
	otp OTPManager,
	sender notify.Sender,
	log *logrus.Logger,
) *Handler {
	return &Handler{
		reminders: reminders,
		lifecycle: lifecycle,
		otp:       otp,
		sender:    sender,
		log:       log,
	}
}

func (h *Handler) InitRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)

	r.Get("/", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/check-due-date-reminders", h.checkDueDateReminders)
		r.Post("/send-sms", h.sendSMS)

		r.Post("/send-sms-otp", h.sendSMSOTP)
		r.Post("/send-otp", h.sendEmailOTP)
		r.Post("/verify-otp", h.verifyOTP)

		r.Post("/notify-application-approved", h.notifyApplicationApproved)
		r.Post("/notify-application-declined", h.notifyApplicationDeclined)
		r.Post("/notify-documents-approved", h.notifyDocumentsApproved)
		r.Post("/notify-documents-rejected", h.notifyDocumentsRejected)
		r.Post("/notify-receipt-approved", h.notifyReceiptApproved)
		r.Post("/notify-receipt-rejected", h.notifyReceiptRejected)
		r.Post("/notify-plan-change-approved", h.notifyPlanChangeApproved)
		r.Post("/notify-plan-change-declined", h.notifyPlanChangeDeclined)
		r.Post("/notify-plan-stop-approved", h.notifyPlanStopApproved)
		r.Post("/notify-plan-stop-declined", h.notifyPlanStopDeclined)
		r.Post("/notify-plan-activation-requested", h.notifyPlanActivationRequested)
		r.Post("/notify-plan-activated", h.notifyPlanActivated)
		r.Post("/notify-plan-activation-declined", h.notifyPlanActivationDeclined)
		r.Post("/set-due-date", h.setDueDate)
		r.Post("/reset-due-date", h.resetDueDate)
		r.Post("/notify-due-date-reminder-3-days", h.notifyThreeDayReminder)
		r.Post("/notify-due-date-reminder", h.notifyDueTodayReminder)
		r.Post("/notify-disconnection-notice", h.notifyDisconnectionNotice)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: "Notification service is running",
		Data: map[string]any{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}
