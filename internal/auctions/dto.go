package auctions

import (
	"time"

	"github.com/bidhouse-app/bidhouse-backend/pkg/enums"
	"github.com/google/uuid"
)

// CreateAuctionInput carries the seller-provided listing fields.
type CreateAuctionInput struct {
	SellerID           uuid.UUID
	Name               string
	Author             string
	Description        *string
	FileKey            *string
	StartingPriceCents int
	BidIncrementCents  int
	EndAt              time.Time
}

// PlaceBidInput identifies the bid attempt. AmountCents is the proposed new
// current price, not a delta.
type PlaceBidInput struct {
	AuctionID   uuid.UUID
	BidderID    uuid.UUID
	BidderName  string
	AmountCents int
}

// PlaceBidResult reports the accepted bid.
type PlaceBidResult struct {
	BidID           uuid.UUID `json:"bid_id"`
	AuctionID       uuid.UUID `json:"auction_id"`
	CurrentBidCents int       `json:"current_bid_cents"`
	PlacedAt        time.Time `json:"placed_at"`
}

// BidSummary is one row of an auction's bid history.
type BidSummary struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	AmountCents int       `json:"amount_cents"`
	CreatedAt   time.Time `json:"created_at"`
}

// AuctionDetail is the public read model for one listing.
type AuctionDetail struct {
	ID                 uuid.UUID          `json:"id"`
	Name               string             `json:"name"`
	Author             string             `json:"author"`
	Description        *string            `json:"description,omitempty"`
	FileKey            *string            `json:"file_key,omitempty"`
	CurrentBidCents    int                `json:"current_bid_cents"`
	StartingPriceCents int                `json:"starting_price_cents"`
	BidIncrementCents  int                `json:"bid_increment_cents"`
	EndAt              time.Time          `json:"end_at"`
	State              enums.AuctionState `json:"state"`
	Bids               []BidSummary       `json:"bids"`
}
