package payments

import (
	"context"

	"github.com/bidhouse-app/bidhouse-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for payment reconciliation.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	SavePayment(ctx context.Context, payment *models.Payment) error
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Payment, error)
	FindByInvoiceID(ctx context.Context, invoiceID string) (*models.Payment, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindAuctionByID(ctx context.Context, id uuid.UUID) (*models.Auction, error)
}

// ReceiptFetcher resolves the receipt URL for a settled payment intent.
type ReceiptFetcher interface {
	LatestChargeReceiptURL(ctx context.Context, paymentIntentID string) (string, error)
}
