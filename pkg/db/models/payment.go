package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bidhouse-app/bidhouse-backend/pkg/enums"
)

// Payment converges gateway events for one transaction into a single row.
// The three correlation keys are each optional and filled by whichever event
// arrives first; the partial unique indexes keep one row per key.
type Payment struct {
	ID               uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           *uuid.UUID          `gorm:"column:user_id;type:uuid"`
	AuctionID        *uuid.UUID          `gorm:"column:auction_id;type:uuid;index"`
	StripeSessionID  *string             `gorm:"column:stripe_session_id"`
	PaymentIntentID  *string             `gorm:"column:payment_intent_id;uniqueIndex:idx_payments_payment_intent_id,where:payment_intent_id IS NOT NULL"`
	InvoiceID        *string             `gorm:"column:invoice_id;uniqueIndex:idx_payments_invoice_id,where:invoice_id IS NOT NULL"`
	AmountCents      int                 `gorm:"column:amount_cents;not null;default:0"`
	Currency         string              `gorm:"column:currency;not null;default:'usd'"`
	Status           enums.PaymentStatus `gorm:"column:status;not null;default:'pending'"`
	ReceiptURL       *string             `gorm:"column:receipt_url"`
	HostedInvoiceURL *string             `gorm:"column:hosted_invoice_url"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
