package entity

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	MethodMpesa PaymentMethod = "mpesa"
	MethodCard  PaymentMethod = "card"
	MethodBank  PaymentMethod = "bank"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodMpesa, MethodCard, MethodBank:
		return true
	}
	return false
}

// Payment records a charge attempt against one of the gateways. UserID is
// empty for guest donations.
type Payment struct {
	ID                  string
	UserID              string
	Amount              float64
	Currency            string
	Method              PaymentMethod
	Status              PaymentStatus
	TransactionID       string
	MpesaReceipt        string
	StripePaymentIntent string
	Description         string
	Metadata            map[string]any
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// MetadataString returns a metadata value as a string, or "" when absent.
func (p *Payment) MetadataString(key string) string {
	if p.Metadata == nil {
		return ""
	}
	if s, ok := p.Metadata[key].(string); ok {
		return s
	}
	return ""
}
