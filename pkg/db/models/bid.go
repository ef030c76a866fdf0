package models

import (
	"time"

	"github.com/google/uuid"
)

// Bid records an accepted bid. AmountCents is the auction's current bid at
// commit time, not a delta. Rows are immutable once created.
type Bid struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AuctionID   uuid.UUID `gorm:"column:auction_id;type:uuid;not null;index"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	AmountCents int       `gorm:"column:amount_cents;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
