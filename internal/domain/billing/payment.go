package billing

import (
	"strings"
	"time"
)

// Status of a payment record in the application/billing workflow.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Plan is the subscription plan attached to a payment record.
type Plan struct {
	Name  string  `bson:"name,omitempty"`
	Price float64 `bson:"price,omitempty"`
}

// PaymentRecord represents one subscriber's billing cycle as stored by the
// application workflow. This service only ever reads these records; it
// never creates, mutates or deletes them.
type PaymentRecord struct {
	ID            string     `bson:"_id,omitempty"`
	Status        Status     `bson:"status"`
	DueDate       *time.Time `bson:"dueDate,omitempty"`
	ContactNumber string     `bson:"contactNumber,omitempty"`
	CompanyName   string     `bson:"companyName,omitempty"`
	FirstName     string     `bson:"firstName,omitempty"`
	MiddleName    string     `bson:"middleName,omitempty"`
	LastName      string     `bson:"lastName,omitempty"`
	SelectedPlan  *Plan      `bson:"selectedPlan,omitempty"`
	Amount        float64    `bson:"amount,omitempty"`
}

// SubscriberName resolves the display name for notifications. A company
// name wins outright; otherwise the non-empty name parts are joined as
// "Last First Middle", falling back to "Unknown" when everything is empty.
func (p *PaymentRecord) SubscriberName() string {
	if p.CompanyName != "" {
		return p.CompanyName
	}
	parts := make([]string, 0, 3)
	for _, part := range []string{p.LastName, p.FirstName, p.MiddleName} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "Unknown"
	}
	return strings.Join(parts, " ")
}

// OwedAmount resolves the billed amount: the selected plan price first,
// then the flat amount field, defaulting to 0.
func (p *PaymentRecord) OwedAmount() float64 {
	if p.SelectedPlan != nil && p.SelectedPlan.Price > 0 {
		return p.SelectedPlan.Price
	}
	return p.Amount
}

// Notifiable reports whether the record carries both a due date and a
// contact number. Records failing this are skipped silently, not errored.
func (p *PaymentRecord) Notifiable() bool {
	return p.DueDate != nil && p.ContactNumber != ""
}
