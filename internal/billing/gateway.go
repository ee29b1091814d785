package billing

import "context"

// Gateway-side session and payment states we act on. These follow the
// Stripe Checkout vocabulary; other values are passed through untouched.
const (
	SessionStatusOpen     = "open"
	SessionStatusComplete = "complete"
	SessionStatusExpired  = "expired"

	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

type CreateSessionParams struct {
	Amount      int64 // minor units
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}

type SessionStatus struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
}

// CheckoutGateway abstracts the hosted-checkout provider so the service
// layer can be exercised against a fake. Implementations report transient
// provider failures as ErrPaymentUnavailable.
type CheckoutGateway interface {
	CreateSession(ctx context.Context, params CreateSessionParams) (*CheckoutSession, error)
	GetStatus(ctx context.Context, sessionID string) (*SessionStatus, error)
}
