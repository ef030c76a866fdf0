package payments

import (
	"github.com/google/uuid"
)

// CheckoutCompletedInput is the projection of a checkout.session.completed
// event. UserID/AuctionID come from the session metadata when present.
type CheckoutCompletedInput struct {
	SessionID       string
	PaymentIntentID string
	InvoiceID       string
	AmountCents     int
	Currency        string
	CustomerEmail   string
	UserID          *uuid.UUID
	AuctionID       *uuid.UUID
}

// ChargeSucceededInput is the projection of a charge.succeeded event.
type ChargeSucceededInput struct {
	PaymentIntentID string
	AmountCents     int
	Currency        string
	ReceiptURL      string
}

// InvoicePaymentSucceededInput is the projection of an
// invoice.payment_succeeded event.
type InvoicePaymentSucceededInput struct {
	InvoiceID        string
	AmountCents      int
	Currency         string
	HostedInvoiceURL string
}
