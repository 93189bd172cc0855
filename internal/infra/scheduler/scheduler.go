package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"subscriber_notification_service/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderScheduler fires the reminder run on two fixed wall-clock
// triggers per day. Triggers are fire-and-forget: the cron engine does not
// await a run, and an overlapping trigger is skipped by the service's run
// guard rather than queued.
type ReminderScheduler struct {
	cronEngine      *cron.Cron
	reminders       *app.ReminderService
	log             *logrus.Logger
	cronSpecMorning string
	cronSpecEvening string
}

func NewReminderScheduler(
	reminders *app.ReminderService,
	log *logrus.Logger,
	cronSpecMorning string, // e.g. "0 9 * * *"
	cronSpecEvening string, // e.g. "0 18 * * *"
) *ReminderScheduler {
	return &ReminderScheduler{
		cronEngine:      cron.New(cron.WithLocation(time.Local)), // server's local wall clock
		reminders:       reminders,
		log:             log,
		cronSpecMorning: cronSpecMorning,
		cronSpecEvening: cronSpecEvening,
	}
}

// Start registers both daily jobs and starts the cron engine.
func (s *ReminderScheduler) Start() error {
	if _, err := s.cronEngine.AddFunc(s.cronSpecMorning, func() {
		s.log.Info("Morning cron trigger fired for due date reminder check")
		s.runGuarded()
	}); err != nil {
		return fmt.Errorf("add morning cron job: %w", err)
	}

	if _, err := s.cronEngine.AddFunc(s.cronSpecEvening, func() {
		s.log.Info("Evening cron trigger fired for due date reminder check")
		s.runGuarded()
	}); err != nil {
		return fmt.Errorf("add evening cron job: %w", err)
	}

	s.cronEngine.Start()
	s.log.WithFields(logrus.Fields{
		"morning": s.cronSpecMorning,
		"evening": s.cronSpecEvening,
	}).Info("Reminder scheduler started")
	return nil
}

// runGuarded executes one run and contains every failure mode: a run that
// errors is logged, a run that panics must not take down the scheduler,
// and a skipped overlapping run is already logged by the service.
func (s *ReminderScheduler) runGuarded() {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("panic", r).Error("Reminder run panicked")
		}
	}()
	if _, err := s.reminders.Run(context.Background()); err != nil && !errors.Is(err, app.ErrRunInProgress) {
		s.log.WithError(err).Error("Scheduled reminder run failed")
	}
}

// Stop halts the cron engine and waits for any running job to finish.
func (s *ReminderScheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.log.Info("Reminder scheduler stopped")
}
