package billing

import (
	"context"
	"errors"
)

// ErrStoreUnavailable is returned when the payment store cannot be
// reached. The reminder run treats this as fatal: log and abort, no
// partial scan retry.
var ErrStoreUnavailable = errors.New("payment store unavailable")

// PaymentRepository reads payment records from the document store.
type PaymentRepository interface {
	// ListApproved returns every record with approved status, in store order.
	// An empty result is not an error.
	ListApproved(ctx context.Context) ([]*PaymentRecord, error)
}

// SettingsRepository reads process-wide billing settings.
type SettingsRepository interface {
	// PenaltyAmount returns the global overdue penalty. A missing setting
	// is a 0 penalty, not an error.
	PenaltyAmount(ctx context.Context) (float64, error)
}
