package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"subscriber_notification_service/internal/domain/billing"
	"subscriber_notification_service/internal/domain/message"
	"subscriber_notification_service/internal/domain/notify"
	"subscriber_notification_service/internal/domain/reminder"

	"github.com/sirupsen/logrus"
)

// ErrRunInProgress is returned when a reminder run is requested while
// another one is still executing. The overlapping trigger is skipped
// rather than queued; the next scheduled trigger will pick the work up.
var ErrRunInProgress = errors.New("reminder run already in progress")

// RunSummary tallies one reminder run. It is logged at run end, never
// persisted.
type RunSummary struct {
	ThreeDayReminders int
	DueTodayReminders int
	OverdueNotices    int
	Errors            int
	CompletedAt       time.Time
}

// ReminderService scans approved payment records, classifies each against
// the current date and dispatches at most one SMS per record per run. A
// single record's delivery failure is counted and skipped; only a failed
// scan aborts the run.
type ReminderService struct {
	payments billing.PaymentRepository
	settings billing.SettingsRepository
	sender   notify.Sender
	log      *logrus.Logger
	pause    time.Duration

	// seams for tests
	now   func() time.Time
	sleep func(time.Duration)

	runMu sync.Mutex
}

// NewReminderService builds the run orchestrator. pause is the fixed
// interval inserted between successive dispatch attempts to respect the
// SMS gateway's rate limit.
func NewReminderService(
	payments billing.PaymentRepository,
	settings billing.SettingsRepository,
	sender notify.Sender,
	log *logrus.Logger,
	pause time.Duration,
) *ReminderService {
	return &ReminderService{
		payments: payments,
		settings: settings,
		sender:   sender,
		log:      log,
		pause:    pause,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Run executes one reminder pass: snapshot the penalty setting, scan
// approved records, classify each and dispatch the matching reminder,
// pacing outbound messages and isolating per-record failures. Overlapping
// invocations are rejected with ErrRunInProgress instead of running
// concurrently, which would risk duplicate notifications.
func (s *ReminderService) Run(ctx context.Context) (RunSummary, error) {
	if !s.runMu.TryLock() {
		s.log.Warn("Reminder run requested while another is in progress. Skipping.")
		return RunSummary{}, ErrRunInProgress
	}
	defer s.runMu.Unlock()

	today := s.now()
	s.log.WithField("started_at", today.Format(time.RFC3339)).Info("Starting due date reminder check")

	// The penalty is read once here and used for the whole run, even if
	// the stored setting changes mid-run. A read failure degrades to 0.
	penalty, err := s.settings.PenaltyAmount(ctx)
	if err != nil {
		s.log.WithError(err).Warn("Could not fetch penalty setting, using 0")
		penalty = 0
	}

	records, err := s.payments.ListApproved(ctx)
	if err != nil {
		s.log.WithError(err).Error("Could not scan payment records. Aborting run.")
		return RunSummary{}, fmt.Errorf("scan payment records: %w", err)
	}

	var summary RunSummary
	for _, rec := range records {
		// Missing due date or contact number means "not applicable", not
		// a defect: no counter, no dispatch, no pause.
		if !rec.Notifiable() {
			continue
		}
		outcome := reminder.Classify(*rec.DueDate, today, penalty)
		if outcome.Category == reminder.NoAction {
			continue
		}

		entry := s.log.WithFields(logrus.Fields{
			"record_id":  rec.ID,
			"subscriber": rec.SubscriberName(),
			"contact":    rec.ContactNumber,
			"category":   outcome.Category.String(),
		})
		entry.Info("Dispatching reminder")

		msg := buildReminderMessage(rec, outcome)
		if err := s.sender.Send(ctx, rec.ContactNumber, msg.Text()); err != nil {
			entry.WithError(err).Error("Failed to send reminder")
			summary.Errors++
		} else {
			switch outcome.Category {
			case reminder.ThreeDayReminder:
				summary.ThreeDayReminders++
			case reminder.DueTodayReminder:
				summary.DueTodayReminders++
			case reminder.OverdueNotice:
				summary.OverdueNotices++
			}
		}

		// Throttle after every dispatch attempt, success or failure.
		s.sleep(s.pause)
	}

	summary.CompletedAt = s.now()
	s.log.WithFields(logrus.Fields{
		"three_day_reminders": summary.ThreeDayReminders,
		"due_today_reminders": summary.DueTodayReminders,
		"overdue_notices":     summary.OverdueNotices,
		"errors":              summary.Errors,
		"completed_at":        summary.CompletedAt.Format(time.RFC3339),
	}).Info("Due date reminder check completed")
	return summary, nil
}

// buildReminderMessage renders the notification payload for a classified
// record. The penalty in the outcome is zero for anything but an overdue
// notice.
func buildReminderMessage(rec *billing.PaymentRecord, outcome reminder.Outcome) message.Message {
	name := rec.SubscriberName()
	due := message.FormatDueDate(*rec.DueDate)
	owed := rec.OwedAmount()

	switch outcome.Category {
	case reminder.ThreeDayReminder:
		return message.ThreeDayReminder{SubscriberName: name, DueDate: due, Amount: owed, Penalty: outcome.Penalty}
	case reminder.DueTodayReminder:
		return message.DueTodayReminder{SubscriberName: name, DueDate: due, Amount: owed, Penalty: outcome.Penalty}
	default:
		return message.DisconnectionNotice{SubscriberName: name, DueDate: due, Amount: owed, Penalty: outcome.Penalty}
	}
}
