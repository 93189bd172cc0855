package sms

import (
	"context"
	"errors"
	"fmt"

	"subscriber_notification_service/internal/domain/notify"

	twilio "github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

// Config represents the configuration for the Twilio SMS transport: the
// account SID, the auth token and the number the messages are sent from.
type Config struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// TwilioSender implements notify.Sender over the Twilio REST API.
type TwilioSender struct {
	config Config
	client *twilio.RestClient
}

// NewTwilioSender initializes the Twilio REST client. It fails with
// notify.ErrMisconfigured when credentials are missing so the caller can
// refuse to start rather than fail on the first dispatch.
func NewTwilioSender(config Config) (*TwilioSender, error) {
	if config.AccountSID == "" || config.AuthToken == "" || config.FromNumber == "" {
		return nil, notify.ErrMisconfigured
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: config.AccountSID,
		Password: config.AuthToken,
	})
	return &TwilioSender{config: config, client: client}, nil
}

// Send delivers one SMS to the recipient. A single attempt; a rejection by
// the gateway surfaces as notify.RejectedError, anything else as
// notify.ErrUnreachable.
func (s *TwilioSender) Send(ctx context.Context, recipient, text string) error {
	params := &api.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(s.config.FromNumber)
	params.SetBody(text)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.client.Api.CreateMessage(params)
		errCh <- err
		close(errCh)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return classify(err)
	}
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var restErr *twilioclient.TwilioRestError
	if errors.As(err, &restErr) {
		return &notify.RejectedError{Code: restErr.Code, Detail: restErr.Message}
	}
	return fmt.Errorf("%w: %v", notify.ErrUnreachable, err)
}
