package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"subscriber_notification_service/internal/app"
	"subscriber_notification_service/internal/domain/message"
	"subscriber_notification_service/internal/domain/notify"

	"github.com/sirupsen/logrus"
)

// checkDueDateReminders is the manual trigger for the reminder pass. The
// run executes in the background; the caller only learns that it was
// accepted. An overlapping run is skipped by the service's guard and
// logged, same as a scheduled trigger.
func (h *Handler) checkDueDateReminders(w http.ResponseWriter, _ *http.Request) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				h.log.WithField("panic", r).Error("Manually triggered reminder run panicked")
			}
		}()
		if _, err := h.reminders.Run(context.Background()); err != nil && !errors.Is(err, app.ErrRunInProgress) {
			h.log.WithError(err).Error("Manually triggered reminder run failed")
		}
	}()
	writeJSON(w, http.StatusAccepted, apiResponse{Success: true, Message: "Due date reminder check started"})
}

func (h *Handler) sendSMS(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
		Message     string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PhoneNumber == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Phone number and message are required")
		return
	}
	if err := h.sender.Send(r.Context(), req.PhoneNumber, req.Message); err != nil {
		h.writeSendError(w, err)
		return
	}
	writeSuccess(w, "SMS sent successfully", nil)
}

func (h *Handler) notifyApplicationApproved(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber   string `json:"phoneNumber"`
		ApplicantName string `json:"applicantName"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	h.notify(w, r, req.PhoneNumber, message.ApplicationApproved{ApplicantName: req.ApplicantName})
}

func (h *Handler) notifyApplicationDeclined(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber   string `json:"phoneNumber"`
		ApplicantName string `json:"applicantName"`
		CustomMessage string `json:"customMessage"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	h.notify(w, r, req.PhoneNumber, message.ApplicationDeclined{ApplicantName: req.ApplicantName, Custom: req.CustomMessage})
}

func (h *Handler) notifyDocumentsApproved(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber   string `json:"phoneNumber"`
		ApplicantName string `json:"applicantName"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	h.notify(w, r, req.PhoneNumber, message.DocumentsApproved{ApplicantName: req.ApplicantName})
}

func (h *Handler) notifyDocumentsRejected(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber   string `json:"phoneNumber"`
		ApplicantName string `json:"applicantName"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	h.notify(w, r, req.PhoneNumber, message.DocumentsRejected{ApplicantName: req.ApplicantName})
}

func (h *Handler) notifyReceiptApproved(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber   string   `json:"phoneNumber"`
		ApplicantName string   `json:"applicantName"`
		MonthYear     string   `json:"monthYear"`
		Amount        *float64 `json:"amount"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.MonthYear == "" || req.Amount == nil {
		writeError(w, http.StatusBadRequest, "Phone number, month/year, and amount are required")
		return
	}
	h.notify(w, r, req.PhoneNumber, message.ReceiptApproved{ApplicantName: req.ApplicantName, MonthYear: req.MonthYear, Amount: *req.Amount})
}

func (h *Handler) notifyReceiptRejected(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber   string `json:"phoneNumber"`
		ApplicantName string `json:"applicantName"`
		MonthYear     string `json:"monthYear"`
		Reason        string `json:"reason"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.MonthYear == "" {
		writeError(w, http.StatusBadRequest, "Phone number and month/year are required")
		return
	}
	h.notify(w, r, req.PhoneNumber, message.ReceiptRejected{ApplicantName: req.ApplicantName, MonthYear: req.MonthYear, Reason: req.Reason})
}

func (h *Handler) notifyPlanChangeApproved(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber   string `json:"phoneNumber"`
		ApplicantName string `json:"applicantName"`
		NewPlanName   string `json:"newPlanName"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.NewPlanName == "" {
		writeError(w, http.StatusBadRequest, "Phone number and new plan name are required")
		return
	}
	h.notify(w, r, req.PhoneNumber, message.PlanChangeApproved{ApplicantName: req.ApplicantName, PlanName: req.NewPlanName})
}

func (h *Handler) notifyPlanChangeDeclined(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber   string `json:"phoneNumber"`
		ApplicantName string `json:"applicantName"`
		Reason        string `json:"reason"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "Phone number and reason are required")
		return
	}
	h.notify(w, r, req.PhoneNumber, message.PlanChangeDeclined{ApplicantName: req.ApplicantName, Reason: req.Reason})
}

func (h *Handler) notifyPlanStopApproved(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber   string `json:"phoneNumber"`
		ApplicantName string `json:"applicantName"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	h.notify(w, r, req.PhoneNumber, message.PlanStopApproved{ApplicantName: req.ApplicantName})
}

func (h *Handler) notifyPlanStopDeclined(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber   string `json:"phoneNumber"`
		ApplicantName string `json:"applicantName"`
		Reason        string `json:"reason"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "Phone number and reason are required")
		return
	}
	h.notify(w, r, req.PhoneNumber, message.PlanStopDeclined{ApplicantName: req.ApplicantName, Reason: req.Reason})
}

func (h *Handler) notifyPlanActivationRequested(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber   string `json:"phoneNumber"`
		ApplicantName string `json:"applicantName"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	h.notify(w, r, req.PhoneNumber, message.PlanActivationRequested{ApplicantName: req.ApplicantName})
}

func (h *Handler) notifyPlanActivated(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber   string `json:"phoneNumber"`
		ApplicantName string `json:"applicantName"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	h.notify(w, r, req.PhoneNumber, message.PlanActivated{ApplicantName: req.ApplicantName})
}

func (h *Handler) notifyPlanActivationDeclined(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber   string `json:"phoneNumber"`
		ApplicantName string `json:"applicantName"`
		Reason        string `json:"reason"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "Phone number and reason are required")
		return
	}
	h.notify(w, r, req.PhoneNumber, message.PlanActivationDeclined{ApplicantName: req.ApplicantName, Reason: req.Reason})
}

// setDueDate and resetDueDate notify the subscriber of a due date change
// made by an operator. The payment record itself is owned and updated by
// the application workflow; this service only delivers the message and
// logs the audit fields it was handed.
func (h *Handler) setDueDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber     string `json:"phoneNumber"`
		ApplicantName   string `json:"applicantName"`
		ApplicationType string `json:"applicationType"`
		ApplicationID   string `json:"applicationId"`
		NewDueDate      string `json:"newDueDate"`
		Reason          string `json:"reason"`
		ChangedBy       string `json:"changedBy"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.ApplicationType == "" || req.ApplicationID == "" || req.NewDueDate == "" || req.Reason == "" || req.ChangedBy == "" {
		writeError(w, http.StatusBadRequest, "Phone number, application type, application ID, new due date, reason, and changedBy are required.")
		return
	}
	h.log.WithFields(logrus.Fields{
		"application_id": req.ApplicationID,
		"new_due_date":   req.NewDueDate,
		"changed_by":     req.ChangedBy,
		"reason":         req.Reason,
	}).Info("Due date set, notifying subscriber")
	h.notify(w, r, req.PhoneNumber, message.DueDateSet{ApplicantName: req.ApplicantName, DueDate: req.NewDueDate})
}

func (h *Handler) resetDueDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber     string `json:"phoneNumber"`
		ApplicantName   string `json:"applicantName"`
		ApplicationType string `json:"applicationType"`
		ApplicationID   string `json:"applicationId"`
		Reason          string `json:"reason"`
		ChangedBy       string `json:"changedBy"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.ApplicationType == "" || req.ApplicationID == "" || req.Reason == "" || req.ChangedBy == "" {
		writeError(w, http.StatusBadRequest, "Phone number, application type, application ID, reason, and changedBy are required.")
		return
	}
	h.log.WithFields(logrus.Fields{
		"application_id": req.ApplicationID,
		"changed_by":     req.ChangedBy,
		"reason":         req.Reason,
	}).Info("Due date reset, notifying subscriber")
	h.notify(w, r, req.PhoneNumber, message.DueDateReset{ApplicantName: req.ApplicantName})
}

type dueDateReminderRequest struct {
	PhoneNumber   string   `json:"phoneNumber"`
	ApplicantName string   `json:"applicantName"`
	DueDate       string   `json:"dueDate"`
	Amount        *float64 `json:"amount"`
	Penalty       *float64 `json:"penalty"`
}

func (h *Handler) decodeDueDateReminder(w http.ResponseWriter, r *http.Request) (dueDateReminderRequest, bool) {
	var req dueDateReminderRequest
	if !h.decode(w, r, &req) {
		return req, false
	}
	if req.DueDate == "" || req.Amount == nil || req.Penalty == nil {
		writeError(w, http.StatusBadRequest, "Phone number, due date, amount, and penalty are required.")
		return req, false
	}
	return req, true
}

func (h *Handler) notifyThreeDayReminder(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDueDateReminder(w, r)
	if !ok {
		return
	}
	h.notify(w, r, req.PhoneNumber, message.ThreeDayReminder{
		SubscriberName: req.ApplicantName, DueDate: req.DueDate, Amount: *req.Amount, Penalty: *req.Penalty,
	})
}

func (h *Handler) notifyDueTodayReminder(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDueDateReminder(w, r)
	if !ok {
		return
	}
	h.notify(w, r, req.PhoneNumber, message.DueTodayReminder{
		SubscriberName: req.ApplicantName, DueDate: req.DueDate, Amount: *req.Amount, Penalty: *req.Penalty,
	})
}

func (h *Handler) notifyDisconnectionNotice(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDueDateReminder(w, r)
	if !ok {
		return
	}
	h.notify(w, r, req.PhoneNumber, message.DisconnectionNotice{
		SubscriberName: req.ApplicantName, DueDate: req.DueDate, Amount: *req.Amount, Penalty: *req.Penalty,
	})
}

func (h *Handler) sendSMSOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
		Name        string `json:"name"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.PhoneNumber == "" {
		writeError(w, http.StatusBadRequest, "Phone number is required")
		return
	}
	sessionID, err := h.otp.SendSMS(r.Context(), req.PhoneNumber, req.Name)
	if err != nil {
		h.writeSendError(w, err)
		return
	}
	writeSuccess(w, "OTP sent successfully", map[string]string{"sessionId": sessionID})
}

func (h *Handler) sendEmailOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}
	sessionID, err := h.otp.SendEmail(r.Context(), req.Email, req.Name)
	if err != nil {
		if errors.Is(err, notify.ErrMisconfigured) {
			writeError(w, http.StatusServiceUnavailable, "Email service not configured")
			return
		}
		h.writeSendError(w, err)
		return
	}
	writeSuccess(w, "OTP sent successfully", map[string]string{"sessionId": sessionID})
}

func (h *Handler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID   string `json:"sessionId"`
		OTP         string `json:"otp"`
		Email       string `json:"email"`
		PhoneNumber string `json:"phoneNumber"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	recipient := req.Email
	if recipient == "" {
		recipient = req.PhoneNumber
	}
	if req.SessionID == "" || req.OTP == "" || recipient == "" {
		writeError(w, http.StatusBadRequest, "Session ID, OTP and recipient are required")
		return
	}
	if err := h.otp.Verify(r.Context(), req.SessionID, req.OTP, recipient); err != nil {
		switch {
		case errors.Is(err, app.ErrOTPSessionNotFound):
			writeError(w, http.StatusBadRequest, "Invalid or expired session")
		case errors.Is(err, app.ErrOTPMismatch):
			writeError(w, http.StatusBadRequest, "Invalid OTP")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeSuccess(w, "OTP verified successfully", nil)
}

// decode reads the JSON body, answering 400 on malformed input.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// notify dispatches one lifecycle message, translating service errors into
// the response shapes the frontend expects.
func (h *Handler) notify(w http.ResponseWriter, r *http.Request, contactNumber string, msg message.Message) {
	if err := h.lifecycle.Notify(r.Context(), contactNumber, msg); err != nil {
		if errors.Is(err, app.ErrMissingRecipient) {
			writeError(w, http.StatusBadRequest, "Phone number is required")
			return
		}
		h.writeSendError(w, err)
		return
	}
	writeSuccess(w, "Notification sent successfully", nil)
}

// writeSendError maps transport failures onto HTTP statuses: a rejection
// is the caller's problem, everything else is ours.
func (h *Handler) writeSendError(w http.ResponseWriter, err error) {
	var rejected *notify.RejectedError
	switch {
	case errors.Is(err, notify.ErrMisconfigured):
		writeError(w, http.StatusInternalServerError, "SMS service not configured")
	case errors.As(err, &rejected):
		writeError(w, http.StatusBadRequest, rejected.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
