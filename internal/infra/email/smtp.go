// Package email provides an SMTP-based implementation of the EmailSender
// interface for sending plain-text email notifications.
package email

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"net/smtp"

	"subscriber_notification_service/internal/domain/notify"
)

// Config represents the configuration for the SMTP email transport.
type Config struct {
	FromName    string
	FromAddress string
	Username    string
	Password    string
	Host        string
	Port        int
}

// Sender implements notify.EmailSender using the net/smtp package.
type Sender struct {
	config Config
	auth   smtp.Auth
}

// NewSender initializes the SMTP email transport. It sets the SMTP auth if
// the username and password are provided.
func NewSender(config Config) (*Sender, error) {
	if config.Host == "" || config.FromAddress == "" {
		return nil, notify.ErrMisconfigured
	}
	if _, err := mail.ParseAddress(config.FromAddress); err != nil {
		return nil, fmt.Errorf("could not parse from email: %v", err)
	}
	s := &Sender{config: config}
	if config.Username != "" && config.Password != "" {
		s.auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}
	return s, nil
}

// SendEmail sends one plain-text email to the recipient.
func (s *Sender) SendEmail(ctx context.Context, toAddress, subject, body string) error {
	to, err := mail.ParseAddress(toAddress)
	if err != nil {
		return fmt.Errorf("could not parse to email: %v", err)
	}

	msg, err := s.composeMessage(to, subject, body)
	if err != nil {
		return err
	}

	server := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	errCh := make(chan error, 1)
	go func() {
		errCh <- smtp.SendMail(server, s.auth, s.config.FromAddress, []string{to.Address}, msg)
		close(errCh)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%w: %v", notify.ErrUnreachable, err)
		}
		return nil
	}
}

func (s *Sender) composeMessage(to *mail.Address, subject, body string) ([]byte, error) {
	var buf bytes.Buffer
	fromAddr := mail.Address{Name: s.config.FromName, Address: s.config.FromAddress}
	buf.WriteString(fmt.Sprintf("From: %s\r\n", fromAddr.String()))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to.String()))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}
