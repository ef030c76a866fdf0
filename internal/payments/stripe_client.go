package payments

import (
	"context"

	pkgstripe "github.com/bidhouse-app/bidhouse-backend/pkg/stripe"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"
)

type stripeReceiptFetcher struct{}

// NewStripeReceiptFetcher wraps the provided Stripe client so the reconciler
// can be tested without the gateway.
func NewStripeReceiptFetcher(api *pkgstripe.Client) ReceiptFetcher {
	if api == nil {
		return nil
	}
	return &stripeReceiptFetcher{}
}

func (f *stripeReceiptFetcher) LatestChargeReceiptURL(ctx context.Context, paymentIntentID string) (string, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge")

	pi, err := paymentintent.Get(paymentIntentID, params)
	if err != nil {
		return "", err
	}
	if pi.LatestCharge == nil {
		return "", nil
	}
	return pi.LatestCharge.ReceiptURL, nil
}
