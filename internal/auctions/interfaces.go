package auctions

import (
	"context"

	"github.com/bidhouse-app/bidhouse-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for auctions and bids.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateAuction(ctx context.Context, auction *models.Auction) (*models.Auction, error)
	FindAuctionByID(ctx context.Context, id uuid.UUID) (*models.Auction, error)
	CommitCurrentBid(ctx context.Context, auctionID uuid.UUID, fromCents, toCents int) (bool, error)
	CreateBid(ctx context.Context, bid *models.Bid) (*models.Bid, error)
	FindBidsByAuction(ctx context.Context, auctionID uuid.UUID) ([]models.Bid, error)
}
