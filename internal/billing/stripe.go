package billing

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
)

// StripeGateway drives Stripe hosted Checkout sessions. A gateway built
// without a secret key reports ErrPaymentUnavailable on every call instead
// of hitting the API.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	if secretKey == "" {
		return &StripeGateway{}
	}

	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) CreateSession(ctx context.Context, params CreateSessionParams) (*CheckoutSession, error) {
	if g.api == nil {
		return nil, fmt.Errorf("%w: stripe secret key not configured", ErrPaymentUnavailable)
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(params.Currency),
					UnitAmount: stripe.Int64(params.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(params.ProductName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	sessionParams.Context = ctx
	for k, v := range params.Metadata {
		sessionParams.AddMetadata(k, v)
	}

	sess, err := g.api.CheckoutSessions.New(sessionParams)
	if err != nil {
		return nil, wrapStripeErr(err)
	}

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (g *StripeGateway) GetStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	if g.api == nil {
		return nil, fmt.Errorf("%w: stripe secret key not configured", ErrPaymentUnavailable)
	}

	getParams := &stripe.CheckoutSessionParams{}
	getParams.Context = ctx

	sess, err := g.api.CheckoutSessions.Get(sessionID, getParams)
	if err != nil {
		return nil, wrapStripeErr(err)
	}

	return &SessionStatus{
		Status:        string(sess.Status),
		PaymentStatus: string(sess.PaymentStatus),
		AmountTotal:   sess.AmountTotal,
		Currency:      string(sess.Currency),
	}, nil
}

// wrapStripeErr folds every gateway failure into the retryable
// ErrPaymentUnavailable channel. Local state is never mutated on a failed
// gateway call, so retrying the whole operation is always safe.
func wrapStripeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
}
