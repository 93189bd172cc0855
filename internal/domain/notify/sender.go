// Package notify defines the outbound delivery capabilities the service
// depends on. Concrete transports live under internal/infra and implement
// these interfaces; application code never imports a transport directly.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// Sender delivers one rendered message to one recipient. A single attempt,
// no internal retry; retry policy, if any, belongs to the caller.
type Sender interface {
	Send(ctx context.Context, recipient, text string) error
}

// EmailSender delivers one plain-text email with a subject line.
type EmailSender interface {
	SendEmail(ctx context.Context, toAddress, subject, body string) error
}

// ErrMisconfigured means the transport cannot operate at all, e.g. missing
// credentials.
var ErrMisconfigured = errors.New("notification transport misconfigured")

// ErrUnreachable means the transport could not be contacted.
var ErrUnreachable = errors.New("notification transport unreachable")

// RejectedError is a transport-level rejection of a single message.
type RejectedError struct {
	Code   int
	Detail string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("message rejected by transport (code %d): %s", e.Code, e.Detail)
}
