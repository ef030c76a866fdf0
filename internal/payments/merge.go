package payments

import (
	"strings"

	"github.com/bidhouse-app/bidhouse-backend/pkg/db/models"
	"github.com/bidhouse-app/bidhouse-backend/pkg/enums"
	"github.com/google/uuid"
)

// PaymentFields is the projection of one gateway event onto a payment row.
// Zero values mean "not carried by this event" and never erase stored data.
type PaymentFields struct {
	UserID           *uuid.UUID
	AuctionID        *uuid.UUID
	StripeSessionID  *string
	PaymentIntentID  *string
	InvoiceID        *string
	AmountCents      int
	Currency         string
	Status           enums.PaymentStatus
	ReceiptURL       *string
	HostedInvoiceURL *string
}

// mergePaymentFields folds one event into an existing row. The first event to
// carry an identity field wins it; later events only enrich. The merge is
// idempotent and commutative for events of the same transaction, so arrival
// order never changes the converged row.
func mergePaymentFields(existing models.Payment, incoming PaymentFields) models.Payment {
	merged := existing

	if merged.UserID == nil && incoming.UserID != nil {
		merged.UserID = incoming.UserID
	}
	if merged.AuctionID == nil && incoming.AuctionID != nil {
		merged.AuctionID = incoming.AuctionID
	}
	if merged.StripeSessionID == nil && hasValue(incoming.StripeSessionID) {
		merged.StripeSessionID = incoming.StripeSessionID
	}
	if merged.PaymentIntentID == nil && hasValue(incoming.PaymentIntentID) {
		merged.PaymentIntentID = incoming.PaymentIntentID
	}
	if merged.InvoiceID == nil && hasValue(incoming.InvoiceID) {
		merged.InvoiceID = incoming.InvoiceID
	}

	if incoming.AmountCents > 0 {
		merged.AmountCents = incoming.AmountCents
	}
	if incoming.Currency != "" {
		merged.Currency = strings.ToLower(incoming.Currency)
	}

	// paid is sticky: no later event demotes a settled payment
	if incoming.Status == enums.PaymentStatusPaid || merged.Status == enums.PaymentStatusPaid {
		merged.Status = enums.PaymentStatusPaid
	} else if incoming.Status != "" {
		merged.Status = incoming.Status
	}

	if url := sanitizeURL(incoming.ReceiptURL); url != nil {
		merged.ReceiptURL = url
	}
	if url := sanitizeURL(incoming.HostedInvoiceURL); url != nil {
		merged.HostedInvoiceURL = url
	}

	return merged
}

func hasValue(s *string) bool {
	return s != nil && *s != ""
}

// sanitizeURL trims whitespace and strips backticks; empty results are
// treated as absent so a stored URL is never overwritten with nothing.
func sanitizeURL(raw *string) *string {
	if raw == nil {
		return nil
	}
	cleaned := strings.TrimSpace(strings.ReplaceAll(*raw, "`", ""))
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
