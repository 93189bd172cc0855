package app

import (
	"context"
	"errors"

	"subscriber_notification_service/internal/domain/message"
	"subscriber_notification_service/internal/domain/notify"

	"github.com/sirupsen/logrus"
)

// ErrMissingRecipient is returned when a lifecycle notification has no
// contact number to go to.
var ErrMissingRecipient = errors.New("recipient contact number is required")

// LifecycleService sends one-off lifecycle notifications over SMS:
// application and document decisions, receipt decisions, plan changes.
// Each call is a single delivery attempt for a single subscriber.
type LifecycleService struct {
	sender notify.Sender
	log    *logrus.Logger
}

func NewLifecycleService(sender notify.Sender, log *logrus.Logger) *LifecycleService {
	return &LifecycleService{sender: sender, log: log}
}

// Notify renders the message and dispatches it to the contact number.
func (s *LifecycleService) Notify(ctx context.Context, contactNumber string, msg message.Message) error {
	if contactNumber == "" {
		return ErrMissingRecipient
	}
	entry := s.log.WithField("contact", contactNumber)
	if err := s.sender.Send(ctx, contactNumber, msg.Text()); err != nil {
		entry.WithError(err).Error("Failed to send lifecycle notification")
		return err
	}
	entry.Info("Lifecycle notification sent")
	return nil
}
