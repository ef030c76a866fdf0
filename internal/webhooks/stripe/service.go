package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/bidhouse-app/bidhouse-backend/internal/payments"
	pkgerrors "github.com/bidhouse-app/bidhouse-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
)

type reconciler interface {
	ApplyCheckoutCompleted(ctx context.Context, input payments.CheckoutCompletedInput) error
	ApplyChargeSucceeded(ctx context.Context, input payments.ChargeSucceededInput) error
	ApplyInvoicePaymentSucceeded(ctx context.Context, input payments.InvoicePaymentSucceededInput) error
}

// Service translates verified Stripe events into reconciler inputs.
type Service struct {
	payments reconciler
}

func NewService(paymentsService reconciler) (*Service, error) {
	if paymentsService == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments service required")
	}
	return &Service{payments: paymentsService}, nil
}

// HandleEvent dispatches one signature-verified event. Unknown event types
// are acknowledged without side effects.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session event")
		}
		return s.payments.ApplyCheckoutCompleted(ctx, checkoutInputFromSession(&session))

	case stripe.EventTypeChargeSucceeded:
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode charge event")
		}
		input := payments.ChargeSucceededInput{
			AmountCents: int(charge.Amount),
			Currency:    string(charge.Currency),
			ReceiptURL:  charge.ReceiptURL,
		}
		if charge.PaymentIntent != nil {
			input.PaymentIntentID = charge.PaymentIntent.ID
		}
		return s.payments.ApplyChargeSucceeded(ctx, input)

	case stripe.EventTypeInvoicePaymentSucceeded:
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode invoice event")
		}
		return s.payments.ApplyInvoicePaymentSucceeded(ctx, payments.InvoicePaymentSucceededInput{
			InvoiceID:        invoice.ID,
			AmountCents:      int(invoice.AmountPaid),
			Currency:         string(invoice.Currency),
			HostedInvoiceURL: invoice.HostedInvoiceURL,
		})

	default:
		return nil
	}
}

func checkoutInputFromSession(session *stripe.CheckoutSession) payments.CheckoutCompletedInput {
	input := payments.CheckoutCompletedInput{
		SessionID:     session.ID,
		AmountCents:   int(session.AmountTotal),
		Currency:      string(session.Currency),
		CustomerEmail: session.CustomerEmail,
	}
	if session.PaymentIntent != nil {
		input.PaymentIntentID = session.PaymentIntent.ID
	}
	if session.Invoice != nil {
		input.InvoiceID = session.Invoice.ID
	}
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		input.CustomerEmail = session.CustomerDetails.Email
	}
	if raw := session.Metadata["userId"]; raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			input.UserID = &id
		}
	}
	if raw := session.Metadata["auctionId"]; raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			input.AuctionID = &id
		}
	}
	return input
}
