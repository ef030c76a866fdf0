package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/bidhouse-app/bidhouse-backend/pkg/logger"
	"github.com/bidhouse-app/bidhouse-backend/pkg/metrics"
)

const defaultSubscriberBuffer = 16

// BidEvent is the frame pushed to live subscribers after a bid commits.
type BidEvent struct {
	AuctionID   string    `json:"auctionId"`
	AuctionName string    `json:"auctionName"`
	Bidder      string    `json:"bidder"`
	AmountCents int       `json:"amount"`
	Timestamp   time.Time `json:"timestamp"`
}

// Subscriber is one live connection's handle. The broadcaster owns closing the
// channel; consumers only range over Events.
type Subscriber struct {
	ch     chan []byte
	closed bool // guarded by the broadcaster mutex
}

// Events returns the outbound frame channel. It is closed on Unsubscribe.
func (s *Subscriber) Events() <-chan []byte {
	return s.ch
}

// Broadcaster fans bid events out to every connected subscriber. Delivery is
// best-effort: a subscriber that cannot keep up loses frames rather than
// stalling the publisher or its peers.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[*Subscriber]struct{}
	buffer int

	logg    *logger.Logger
	metrics *metrics.RealtimeMetrics
}

func NewBroadcaster(buffer int, logg *logger.Logger, realtimeMetrics *metrics.RealtimeMetrics) *Broadcaster {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Broadcaster{
		subs:    make(map[*Subscriber]struct{}),
		buffer:  buffer,
		logg:    logg,
		metrics: realtimeMetrics,
	}
}

// Subscribe registers a new subscriber and returns its handle.
func (b *Broadcaster) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan []byte, b.buffer)}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	b.metrics.SubscriberConnected()
	return sub
}

// Unsubscribe removes the subscriber and closes its channel. Calling it again
// for the same handle is a no-op.
func (b *Broadcaster) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if sub.closed {
		return
	}
	sub.closed = true
	delete(b.subs, sub)
	close(sub.ch)

	b.metrics.SubscriberDisconnected()
}

// Publish serializes the event once and offers it to every subscriber. A full
// subscriber buffer drops the frame for that subscriber only.
func (b *Broadcaster) Publish(ctx context.Context, event BidEvent) {
	frame, err := json.Marshal(event)
	if err != nil {
		b.logg.Error(ctx, "marshaling bid event", err)
		return
	}
	b.metrics.IncPublished()

	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs {
		select {
		case sub.ch <- frame:
		default:
			b.metrics.IncDropped()
			b.logg.Warn(ctx, "dropping bid event for slow subscriber")
		}
	}
}

// Len reports the current subscriber count.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
