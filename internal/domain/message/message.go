// Package message is the closed catalog of subscriber-facing notification
// texts. Each notification kind is a small value type carrying exactly the
// parameters its text needs; Text renders the final message body. Adding a
// kind means adding a type here, not registering a string key somewhere.
package message

import (
	"fmt"
	"strconv"
	"time"
)

// Message is one notification in the catalog.
type Message interface {
	Text() string
}

// FormatDueDate renders a due date the way subscribers see it in messages,
// e.g. "January 5, 2025".
func FormatDueDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

// greet prefixes the standard salutation, falling back to "there" when the
// recipient's name is unknown.
func greet(name, body string) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("Hi %s! %s", name, body)
}

// amount renders a peso amount without trailing zeros, matching how the
// values appear on the subscriber's bill.
func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type ApplicationApproved struct{ ApplicantName string }

func (m ApplicationApproved) Text() string {
	return greet(m.ApplicantName, "Your application has been approved. Please submit the required documents.")
}

type ApplicationDeclined struct {
	ApplicantName string
	// Custom, when set, replaces the default text entirely. Operators use
	// this to explain the specific decline reason.
	Custom string
}

func (m ApplicationDeclined) Text() string {
	if m.Custom != "" {
		return m.Custom
	}
	return greet(m.ApplicantName, "We regret to inform you that your application has been declined.")
}

type DocumentsApproved struct{ ApplicantName string }

func (m DocumentsApproved) Text() string {
	return greet(m.ApplicantName, "Congratulations! Your submitted document has been approved. You are now a subscriber of TVNET. Please proceed to your payment.")
}

type DocumentsRejected struct{ ApplicantName string }

func (m DocumentsRejected) Text() string {
	return greet(m.ApplicantName, "Sorry, we regret to inform you that your submitted document was rejected.")
}

type ReceiptApproved struct {
	ApplicantName string
	MonthYear     string
	Amount        float64
}

func (m ReceiptApproved) Text() string {
	return greet(m.ApplicantName, fmt.Sprintf("Your payment receipt for %s amounting to ₱%s has been approved. Thank you for your payment!", m.MonthYear, amount(m.Amount)))
}

type ReceiptRejected struct {
	ApplicantName string
	MonthYear     string
	Reason        string
}

func (m ReceiptRejected) Text() string {
	reason := m.Reason
	if reason == "" {
		reason = "Receipt verification failed"
	}
	return greet(m.ApplicantName, fmt.Sprintf("Your payment receipt for %s has been rejected. Reason: %s. Please resubmit a valid receipt.", m.MonthYear, reason))
}

type PlanChangeApproved struct {
	ApplicantName string
	PlanName      string
}

func (m PlanChangeApproved) Text() string {
	return greet(m.ApplicantName, fmt.Sprintf("Your plan change request to %s has been approved.", m.PlanName))
}

type PlanChangeDeclined struct {
	ApplicantName string
	Reason        string
}

func (m PlanChangeDeclined) Text() string {
	return greet(m.ApplicantName, fmt.Sprintf("Your plan change request has been declined. Reason: %s.", m.Reason))
}

type PlanStopApproved struct{ ApplicantName string }

func (m PlanStopApproved) Text() string {
	return greet(m.ApplicantName, "Your plan stop request has been approved. Your service will be stopped.")
}

type PlanStopDeclined struct {
	ApplicantName string
	Reason        string
}

func (m PlanStopDeclined) Text() string {
	return greet(m.ApplicantName, fmt.Sprintf("Your plan stop request has been declined. Reason: %s.", m.Reason))
}

type PlanActivationRequested struct{ ApplicantName string }

func (m PlanActivationRequested) Text() string {
	return greet(m.ApplicantName, "Your plan activation request has been submitted and is awaiting review.")
}

type PlanActivated struct{ ApplicantName string }

func (m PlanActivated) Text() string {
	return greet(m.ApplicantName, "Your plan has been successfully activated. Welcome back!")
}

type PlanActivationDeclined struct {
	ApplicantName string
	Reason        string
}

func (m PlanActivationDeclined) Text() string {
	return greet(m.ApplicantName, fmt.Sprintf("Your plan activation request has been declined. Reason: %s.", m.Reason))
}

type DueDateSet struct {
	ApplicantName string
	DueDate       string
}

func (m DueDateSet) Text() string {
	return greet(m.ApplicantName, fmt.Sprintf("Your subscription due date has been set to %s.", m.DueDate))
}

type DueDateReset struct{ ApplicantName string }

func (m DueDateReset) Text() string {
	return greet(m.ApplicantName, "Your subscription due date has been reset. Please check your account for details.")
}

type ThreeDayReminder struct {
	SubscriberName string
	DueDate        string
	Amount         float64
	Penalty        float64
}

func (m ThreeDayReminder) Text() string {
	return greet(m.SubscriberName, fmt.Sprintf("Reminder: Your TVNET bill of P%s (plus P%s penalty if applicable) is due in 3 days on %s. Please settle promptly.", amount(m.Amount), amount(m.Penalty), m.DueDate))
}

type DueTodayReminder struct {
	SubscriberName string
	DueDate        string
	Amount         float64
	Penalty        float64
}

func (m DueTodayReminder) Text() string {
	return greet(m.SubscriberName, fmt.Sprintf("Reminder: Your TVNET bill of P%s (plus P%s penalty if applicable) is due today, %s. Please settle promptly to avoid service interruption.", amount(m.Amount), amount(m.Penalty), m.DueDate))
}

type DisconnectionNotice struct {
	SubscriberName string
	DueDate        string
	Amount         float64
	Penalty        float64
}

func (m DisconnectionNotice) Text() string {
	return greet(m.SubscriberName, fmt.Sprintf("Final Notice: Your TVNET bill of P%s (plus P%s penalty) due on %s is still unpaid. Your service is subject to disconnection. Please pay immediately.", amount(m.Amount), amount(m.Penalty), m.DueDate))
}

type OTPCode struct {
	Name string
	Code string
}

func (m OTPCode) Text() string {
	name := m.Name
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("Hello %s! Your TVNET verification code is: %s. This code will expire in 5 minutes. Do not share this code with anyone.", name, m.Code)
}
