package auctions

import (
	"context"
	"fmt"
	"time"

	"github.com/bidhouse-app/bidhouse-backend/internal/realtime"
	"github.com/bidhouse-app/bidhouse-backend/pkg/db/models"
	"github.com/bidhouse-app/bidhouse-backend/pkg/enums"
	pkgerrors "github.com/bidhouse-app/bidhouse-backend/pkg/errors"
	"github.com/bidhouse-app/bidhouse-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Publisher pushes accepted bids to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, event realtime.BidEvent)
}

// Service defines auction-level operations.
type Service interface {
	Create(ctx context.Context, input CreateAuctionInput) (*AuctionDetail, error)
	Get(ctx context.Context, auctionID uuid.UUID) (*AuctionDetail, error)
	PlaceBid(ctx context.Context, input PlaceBidInput) (*PlaceBidResult, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	publisher Publisher
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds an auction service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher Publisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auctions repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("bid publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		publisher: publisher,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateAuctionInput) (*AuctionDetail, error) {
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Name == "" || input.Author == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and author are required")
	}
	if input.StartingPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "starting price cannot be negative")
	}
	if input.BidIncrementCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bid increment must be positive")
	}
	if !input.EndAt.After(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end time must be in the future")
	}

	auction := &models.Auction{
		ID:                 uuid.New(),
		UserID:             input.SellerID,
		Name:               input.Name,
		Author:             input.Author,
		Description:        input.Description,
		FileKey:            input.FileKey,
		CurrentBidCents:    input.StartingPriceCents,
		StartingPriceCents: input.StartingPriceCents,
		BidIncrementCents:  input.BidIncrementCents,
		EndAt:              input.EndAt,
	}

	created, err := s.repo.CreateAuction(ctx, auction)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create auction")
	}
	return s.toDetail(created), nil
}

func (s *service) Get(ctx context.Context, auctionID uuid.UUID) (*AuctionDetail, error) {
	if auctionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "auction id required")
	}

	auction, err := s.repo.FindAuctionByID(ctx, auctionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "auction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load auction")
	}
	return s.toDetail(auction), nil
}

// PlaceBid commits a new current price with an optimistic compare-and-swap.
// The bid row and the price update land in one transaction; the event is
// published only after commit so subscribers never see an uncommitted price.
func (s *service) PlaceBid(ctx context.Context, input PlaceBidInput) (*PlaceBidResult, error) {
	if input.AuctionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "auction id required")
	}
	if input.BidderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bid amount must be positive")
	}

	auction, err := s.repo.FindAuctionByID(ctx, input.AuctionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "auction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load auction")
	}

	now := s.now()
	if auction.State(now) == enums.AuctionStateClosed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "auction is closed")
	}
	if input.AmountCents <= auction.CurrentBidCents {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "bid is not above the current price")
	}
	if input.AmountCents < auction.CurrentBidCents+auction.BidIncrementCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bid does not meet the minimum increment")
	}

	bid := &models.Bid{
		ID:          uuid.New(),
		AuctionID:   auction.ID,
		UserID:      input.BidderID,
		AmountCents: input.AmountCents,
		CreatedAt:   now,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		committed, err := repo.CommitCurrentBid(ctx, auction.ID, auction.CurrentBidCents, input.AmountCents)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "commit current bid")
		}
		if !committed {
			return pkgerrors.New(pkgerrors.CodeConflict, "a concurrent bid was accepted first")
		}

		if _, err := repo.CreateBid(ctx, bid); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record bid")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, realtime.BidEvent{
		AuctionID:   auction.ID.String(),
		AuctionName: auction.Name,
		Bidder:      input.BidderName,
		AmountCents: input.AmountCents,
		Timestamp:   now,
	})

	return &PlaceBidResult{
		BidID:           bid.ID,
		AuctionID:       auction.ID,
		CurrentBidCents: input.AmountCents,
		PlacedAt:        now,
	}, nil
}

func (s *service) toDetail(auction *models.Auction) *AuctionDetail {
	bids := make([]BidSummary, 0, len(auction.Bids))
	for _, bid := range auction.Bids {
		bids = append(bids, BidSummary{
			ID:          bid.ID,
			UserID:      bid.UserID,
			AmountCents: bid.AmountCents,
			CreatedAt:   bid.CreatedAt,
		})
	}
	return &AuctionDetail{
		ID:                 auction.ID,
		Name:               auction.Name,
		Author:             auction.Author,
		Description:        auction.Description,
		FileKey:            auction.FileKey,
		CurrentBidCents:    auction.CurrentBidCents,
		StartingPriceCents: auction.StartingPriceCents,
		BidIncrementCents:  auction.BidIncrementCents,
		EndAt:              auction.EndAt,
		State:              auction.State(s.now()),
		Bids:               bids,
	}
}
