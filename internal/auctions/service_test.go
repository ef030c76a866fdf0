package auctions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bidhouse-app/bidhouse-backend/internal/realtime"
	"github.com/bidhouse-app/bidhouse-backend/pkg/db/models"
	pkgerrors "github.com/bidhouse-app/bidhouse-backend/pkg/errors"
	"github.com/bidhouse-app/bidhouse-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type stubRepo struct {
	mu      sync.Mutex
	auction *models.Auction
	bids    []models.Bid

	findErr   error
	commitErr error
	createErr error

	// onFind lets tests force an interleaving where concurrent bidders all
	// read the same stale price before any commit lands.
	onFind func()
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) CreateAuction(ctx context.Context, auction *models.Auction) (*models.Auction, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.mu.Lock()
	s.auction = auction
	s.mu.Unlock()
	return auction, nil
}

func (s *stubRepo) FindAuctionByID(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	s.mu.Lock()
	if s.auction == nil || s.auction.ID != id {
		s.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	snapshot := *s.auction
	snapshot.Bids = append([]models.Bid(nil), s.bids...)
	s.mu.Unlock()

	if s.onFind != nil {
		s.onFind()
	}
	return &snapshot, nil
}

func (s *stubRepo) CommitCurrentBid(ctx context.Context, auctionID uuid.UUID, fromCents, toCents int) (bool, error) {
	if s.commitErr != nil {
		return false, s.commitErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.auction == nil || s.auction.ID != auctionID || s.auction.CurrentBidCents != fromCents {
		return false, nil
	}
	s.auction.CurrentBidCents = toCents
	return true, nil
}

func (s *stubRepo) CreateBid(ctx context.Context, bid *models.Bid) (*models.Bid, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.mu.Lock()
	s.bids = append(s.bids, *bid)
	s.mu.Unlock()
	return bid, nil
}

func (s *stubRepo) FindBidsByAuction(ctx context.Context, auctionID uuid.UUID) ([]models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Bid(nil), s.bids...), nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubPublisher struct {
	mu     sync.Mutex
	events []realtime.BidEvent
}

func (s *stubPublisher) Publish(ctx context.Context, event realtime.BidEvent) {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
}

func (s *stubPublisher) published() []realtime.BidEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]realtime.BidEvent(nil), s.events...)
}

func serviceLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
}

func openAuction(current int) *models.Auction {
	return &models.Auction{
		ID:                 uuid.New(),
		UserID:             uuid.New(),
		Name:               "First Editions",
		Author:             "M. Shelley",
		CurrentBidCents:    current,
		StartingPriceCents: current,
		BidIncrementCents:  100,
		EndAt:              time.Now().Add(time.Hour),
	}
}

func newTestService(t *testing.T, repo *stubRepo, pub *stubPublisher) Service {
	t.Helper()
	svc, err := NewService(repo, stubTx{}, pub, serviceLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error with code %s, got %v", code, err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}

func TestPlaceBidHappyPath(t *testing.T) {
	repo := &stubRepo{auction: openAuction(1000)}
	pub := &stubPublisher{}
	svc := newTestService(t, repo, pub)

	result, err := svc.PlaceBid(context.Background(), PlaceBidInput{
		AuctionID:   repo.auction.ID,
		BidderID:    uuid.New(),
		BidderName:  "Ana",
		AmountCents: 1100,
	})
	if err != nil {
		t.Fatalf("place bid: %v", err)
	}
	if result.CurrentBidCents != 1100 {
		t.Fatalf("expected current bid 1100, got %d", result.CurrentBidCents)
	}
	if repo.auction.CurrentBidCents != 1100 {
		t.Fatalf("expected stored current bid 1100, got %d", repo.auction.CurrentBidCents)
	}
	if len(repo.bids) != 1 || repo.bids[0].AmountCents != 1100 {
		t.Fatalf("expected one recorded bid of 1100, got %+v", repo.bids)
	}

	events := pub.published()
	if len(events) != 1 {
		t.Fatalf("expected one published event, got %d", len(events))
	}
	if events[0].AmountCents != 1100 || events[0].Bidder != "Ana" {
		t.Fatalf("unexpected event %+v", events[0])
	}
}

func TestPlaceBidUnknownAuction(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo, &stubPublisher{})

	_, err := svc.PlaceBid(context.Background(), PlaceBidInput{
		AuctionID:   uuid.New(),
		BidderID:    uuid.New(),
		AmountCents: 1100,
	})
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestPlaceBidClosedAuction(t *testing.T) {
	auction := openAuction(1000)
	auction.EndAt = time.Now().Add(-time.Minute)
	repo := &stubRepo{auction: auction}
	pub := &stubPublisher{}
	svc := newTestService(t, repo, pub)

	_, err := svc.PlaceBid(context.Background(), PlaceBidInput{
		AuctionID:   auction.ID,
		BidderID:    uuid.New(),
		AmountCents: 5000,
	})
	expectCode(t, err, pkgerrors.CodeStateConflict)

	if len(repo.bids) != 0 || auction.CurrentBidCents != 1000 {
		t.Fatal("closed auction must not be mutated")
	}
	if len(pub.published()) != 0 {
		t.Fatal("no event should be published for a rejected bid")
	}
}

func TestPlaceBidAtOrBelowCurrentPriceConflicts(t *testing.T) {
	repo := &stubRepo{auction: openAuction(1000)}
	svc := newTestService(t, repo, &stubPublisher{})

	for _, amount := range []int{1000, 900} {
		_, err := svc.PlaceBid(context.Background(), PlaceBidInput{
			AuctionID:   repo.auction.ID,
			BidderID:    uuid.New(),
			AmountCents: amount,
		})
		expectCode(t, err, pkgerrors.CodeConflict)
	}
	if repo.auction.CurrentBidCents != 1000 || len(repo.bids) != 0 {
		t.Fatal("stale bids must not mutate state")
	}
}

func TestPlaceBidBelowIncrementIsValidationError(t *testing.T) {
	repo := &stubRepo{auction: openAuction(1000)}
	svc := newTestService(t, repo, &stubPublisher{})

	_, err := svc.PlaceBid(context.Background(), PlaceBidInput{
		AuctionID:   repo.auction.ID,
		BidderID:    uuid.New(),
		AmountCents: 1050,
	})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestPlaceBidInvalidInput(t *testing.T) {
	repo := &stubRepo{auction: openAuction(1000)}
	svc := newTestService(t, repo, &stubPublisher{})

	_, err := svc.PlaceBid(context.Background(), PlaceBidInput{
		AuctionID:   repo.auction.ID,
		BidderID:    uuid.New(),
		AmountCents: 0,
	})
	expectCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.PlaceBid(context.Background(), PlaceBidInput{
		AuctionID:   repo.auction.ID,
		AmountCents: 1100,
	})
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}

// Two bids race from the same observed price: exactly one CAS wins, the loser
// gets a conflict, and a single retry by the higher bidder always converges on
// the higher price.
func TestPlaceBidConcurrentRaceConvergesOnHighestBid(t *testing.T) {
	auction := openAuction(1000)

	var gate sync.WaitGroup
	gate.Add(2)
	repo := &stubRepo{
		auction: auction,
		onFind:  func() { gate.Done(); gate.Wait() },
	}
	pub := &stubPublisher{}
	svc := newTestService(t, repo, pub)

	type outcome struct {
		amount int
		err    error
	}
	results := make(chan outcome, 2)

	for _, amount := range []int{1100, 1200} {
		go func(amount int) {
			_, err := svc.PlaceBid(context.Background(), PlaceBidInput{
				AuctionID:   auction.ID,
				BidderID:    uuid.New(),
				BidderName:  "racer",
				AmountCents: amount,
			})
			results <- outcome{amount: amount, err: err}
		}(amount)
	}

	var conflicts int
	var loserAmount int
	for i := 0; i < 2; i++ {
		res := <-results
		if res.err != nil {
			expectCode(t, res.err, pkgerrors.CodeConflict)
			conflicts++
			loserAmount = res.amount
		}
	}
	if conflicts != 1 {
		t.Fatalf("expected exactly one conflict, got %d", conflicts)
	}

	// the gate is spent; later finds pass straight through
	repo.onFind = nil

	if loserAmount == 1200 {
		if _, err := svc.PlaceBid(context.Background(), PlaceBidInput{
			AuctionID:   auction.ID,
			BidderID:    uuid.New(),
			BidderName:  "racer",
			AmountCents: 1200,
		}); err != nil {
			t.Fatalf("retry of the higher bid should succeed: %v", err)
		}
	}

	repo.mu.Lock()
	final := repo.auction.CurrentBidCents
	bids := append([]models.Bid(nil), repo.bids...)
	repo.mu.Unlock()

	if final != 1200 {
		t.Fatalf("expected final current bid 1200, got %d", final)
	}
	for i := 1; i < len(bids); i++ {
		if bids[i].AmountCents < bids[i-1].AmountCents {
			t.Fatalf("bid sequence must be non-decreasing: %+v", bids)
		}
	}
}

func TestCreateValidatesInput(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo, &stubPublisher{})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateAuctionInput{})
	expectCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = svc.Create(ctx, CreateAuctionInput{SellerID: uuid.New(), Name: "Atlas"})
	expectCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Create(ctx, CreateAuctionInput{
		SellerID:           uuid.New(),
		Name:               "Atlas",
		Author:             "Ortelius",
		StartingPriceCents: 5000,
		BidIncrementCents:  100,
		EndAt:              time.Now().Add(-time.Hour),
	})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateSeedsCurrentBidFromStartingPrice(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo, &stubPublisher{})

	detail, err := svc.Create(context.Background(), CreateAuctionInput{
		SellerID:           uuid.New(),
		Name:               "Atlas",
		Author:             "Ortelius",
		StartingPriceCents: 5000,
		BidIncrementCents:  250,
		EndAt:              time.Now().Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create auction: %v", err)
	}
	if detail.CurrentBidCents != 5000 {
		t.Fatalf("expected current bid seeded to 5000, got %d", detail.CurrentBidCents)
	}
}

func TestGetReturnsDerivedState(t *testing.T) {
	auction := openAuction(1000)
	repo := &stubRepo{auction: auction}
	svc := newTestService(t, repo, &stubPublisher{})

	detail, err := svc.Get(context.Background(), auction.ID)
	if err != nil {
		t.Fatalf("get auction: %v", err)
	}
	if detail.State != "open" {
		t.Fatalf("expected open state, got %s", detail.State)
	}

	repo.auction.EndAt = time.Now().Add(-time.Minute)
	detail, err = svc.Get(context.Background(), auction.ID)
	if err != nil {
		t.Fatalf("get auction: %v", err)
	}
	if detail.State != "closed" {
		t.Fatalf("expected closed state, got %s", detail.State)
	}
}
