package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/bidhouse-app/bidhouse-backend/pkg/config"
	"github.com/bidhouse-app/bidhouse-backend/pkg/db/models"
	"github.com/bidhouse-app/bidhouse-backend/pkg/enums"
	pkgerrors "github.com/bidhouse-app/bidhouse-backend/pkg/errors"
	"github.com/bidhouse-app/bidhouse-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"
)

// AuctionFinder loads the listing being paid for.
type AuctionFinder interface {
	FindAuctionByID(ctx context.Context, id uuid.UUID) (*models.Auction, error)
}

// StripeCheckoutClient exposes the subset of Stripe operations required by the
// checkout service.
type StripeCheckoutClient interface {
	CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StartInput identifies who is paying for which auction.
type StartInput struct {
	AuctionID uuid.UUID
	UserID    uuid.UUID
	UserEmail string
}

// StartResult carries the hosted payment page.
type StartResult struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// Service starts gateway checkout sessions for auction winners.
type Service interface {
	Start(ctx context.Context, input StartInput) (*StartResult, error)
}

type service struct {
	auctions AuctionFinder
	gateway  StripeCheckoutClient
	cfg      config.CheckoutConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the checkout service.
func NewService(auctions AuctionFinder, gateway StripeCheckoutClient, cfg config.CheckoutConfig, logg *logger.Logger) (Service, error) {
	if auctions == nil {
		return nil, fmt.Errorf("auction finder required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("stripe checkout client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		auctions: auctions,
		gateway:  gateway,
		cfg:      cfg,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Start creates a Checkout session for the winning bidder. Invoice creation is
// enabled so the invoice webhook can later enrich the payment row.
func (s *service) Start(ctx context.Context, input StartInput) (*StartResult, error) {
	if input.AuctionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "auction id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	auction, err := s.auctions.FindAuctionByID(ctx, input.AuctionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "auction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load auction")
	}

	if auction.State(s.now()) != enums.AuctionStateClosed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "auction has not closed yet")
	}
	winner, ok := winningBidder(auction)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "auction closed without bids")
	}
	if winner != input.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the winning bidder can pay")
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(int64(auction.CurrentBidCents)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(auction.Name),
					},
				},
			},
		},
		InvoiceCreation: &stripe.CheckoutSessionInvoiceCreationParams{
			Enabled: stripe.Bool(true),
		},
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
	}
	if input.UserEmail != "" {
		params.CustomerEmail = stripe.String(input.UserEmail)
	}
	params.AddMetadata("auctionId", auction.ID.String())
	params.AddMetadata("userId", input.UserID.String())

	session, err := s.gateway.CreateSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}

	return &StartResult{SessionID: session.ID, URL: session.URL}, nil
}

// winningBidder returns the user behind the highest accepted bid. Bids are
// preloaded in creation order and amounts are non-decreasing, so the last row
// is the winner.
func winningBidder(auction *models.Auction) (uuid.UUID, bool) {
	if len(auction.Bids) == 0 || auction.CurrentBidCents <= auction.StartingPriceCents {
		return uuid.Nil, false
	}
	return auction.Bids[len(auction.Bids)-1].UserID, true
}
