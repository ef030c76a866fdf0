package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bidhouse-app/bidhouse-backend/pkg/enums"
)

// Auction is a timed listing. Closing is derived from EndAt at read time;
// there is no background job flipping a status column.
type Auction struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID             uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	Name               string    `gorm:"column:name;not null"`
	Author             string    `gorm:"column:author;not null"`
	Description        *string   `gorm:"column:description"`
	FileKey            *string   `gorm:"column:file_key"`
	CurrentBidCents    int       `gorm:"column:current_bid_cents;not null;default:0"`
	StartingPriceCents int       `gorm:"column:starting_price_cents;not null;default:0"`
	BidIncrementCents  int       `gorm:"column:bid_increment_cents;not null;default:100"`
	EndAt              time.Time `gorm:"column:end_at;not null"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Bids []Bid `gorm:"foreignKey:AuctionID"`
}

// State reports the derived lifecycle state relative to now.
func (a *Auction) State(now time.Time) enums.AuctionState {
	if now.Before(a.EndAt) {
		return enums.AuctionStateOpen
	}
	return enums.AuctionStateClosed
}
