package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math/big"
	"strconv"
	"time"

	"subscriber_notification_service/internal/domain/message"
	"subscriber_notification_service/internal/domain/notify"

	"github.com/sirupsen/logrus"
)

// ErrOTPSessionNotFound means the session does not exist or has expired.
var ErrOTPSessionNotFound = errors.New("otp session not found or expired")

// ErrOTPMismatch means the supplied code or recipient does not match the
// session. The session is left in place for a retry within its TTL.
var ErrOTPMismatch = errors.New("otp code does not match")

// otpTTL is how long a verification code stays valid.
const otpTTL = 5 * time.Minute

// OTPSession is one pending verification code, keyed by session ID.
type OTPSession struct {
	Code      string `json:"code"`
	Recipient string `json:"recipient"`
}

// OTPStore persists pending sessions with a TTL.
type OTPStore interface {
	Put(ctx context.Context, sessionID string, session OTPSession, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (OTPSession, error)
	Delete(ctx context.Context, sessionID string) error
}

// OTPService issues time-boxed verification codes over SMS or email and
// verifies them. A successful verification consumes the session.
type OTPService struct {
	store OTPStore
	sms   notify.Sender
	email notify.EmailSender
	log   *logrus.Logger

	// seams for tests
	newCode      func() (string, error)
	newSessionID func() (string, error)
}

// NewOTPService builds the OTP workflow. email may be nil when no email
// transport is configured; SendEmail then fails with ErrMisconfigured.
func NewOTPService(store OTPStore, sms notify.Sender, email notify.EmailSender, log *logrus.Logger) *OTPService {
	return &OTPService{
		store:        store,
		sms:          sms,
		email:        email,
		log:          log,
		newCode:      generateCode,
		newSessionID: generateSessionID,
	}
}

// SendSMS issues a code, stores the session and texts the code to the
// phone number. It returns the session ID the client must echo back on
// verification.
func (s *OTPService) SendSMS(ctx context.Context, phoneNumber, name string) (string, error) {
	return s.send(ctx, phoneNumber, name, func(ctx context.Context, code string) error {
		return s.sms.Send(ctx, phoneNumber, message.OTPCode{Name: name, Code: code}.Text())
	})
}

// SendEmail issues a code, stores the session and emails the code.
func (s *OTPService) SendEmail(ctx context.Context, emailAddress, name string) (string, error) {
	if s.email == nil {
		return "", notify.ErrMisconfigured
	}
	return s.send(ctx, emailAddress, name, func(ctx context.Context, code string) error {
		return s.email.SendEmail(ctx, emailAddress, "Email Verification Code", message.OTPCode{Name: name, Code: code}.Text())
	})
}

func (s *OTPService) send(ctx context.Context, recipient, name string, deliver func(context.Context, string) error) (string, error) {
	code, err := s.newCode()
	if err != nil {
		return "", err
	}
	sessionID, err := s.newSessionID()
	if err != nil {
		return "", err
	}
	if err := s.store.Put(ctx, sessionID, OTPSession{Code: code, Recipient: recipient}, otpTTL); err != nil {
		return "", err
	}
	if err := deliver(ctx, code); err != nil {
		s.log.WithError(err).WithField("recipient", recipient).Error("Failed to deliver OTP")
		return "", err
	}
	s.log.WithField("recipient", recipient).Info("OTP sent")
	return sessionID, nil
}

// Verify checks the code for a session. The recipient must match the one
// the code was issued to; a successful verification deletes the session so
// a code cannot be replayed.
func (s *OTPService) Verify(ctx context.Context, sessionID, code, recipient string) error {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Code != code || session.Recipient != recipient {
		return ErrOTPMismatch
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.log.WithError(err).Warn("Could not delete verified OTP session")
	}
	return nil
}

// generateCode returns a random 6-digit code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// generateSessionID returns a 64-character hex session identifier.
func generateSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
