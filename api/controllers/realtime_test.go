package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bidhouse-app/bidhouse-backend/internal/realtime"
	"github.com/bidhouse-app/bidhouse-backend/pkg/logger"
)

func streamLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
}

// syncRecorder makes the recorder safe to inspect while the handler goroutine
// is still streaming into it.
type syncRecorder struct {
	*httptest.ResponseRecorder
	mu sync.Mutex
}

func (r *syncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(p)
}

func (r *syncRecorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ResponseRecorder.Flush()
}

func (r *syncRecorder) snapshot() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Body.String()
}

func TestBidStreamDeliversFramesAndUnsubscribesOnDisconnect(t *testing.T) {
	logg := streamLogger()
	b := realtime.NewBroadcaster(4, logg, nil)
	handler := BidStream(b, logg)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/realtime/bids", nil).WithContext(ctx)
	rec := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.ServeHTTP(rec, req)
	}()

	waitFor(t, func() bool { return b.Len() == 1 })

	b.Publish(context.Background(), realtime.BidEvent{
		AuctionID:   "a1",
		AuctionName: "Rare Atlas",
		Bidder:      "Ana",
		AmountCents: 1200,
		Timestamp:   time.Now(),
	})
	waitFor(t, func() bool { return strings.Contains(rec.snapshot(), "auctionId") })

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after client disconnect")
	}

	if got := b.Len(); got != 0 {
		t.Fatalf("expected subscriber unregistered after disconnect, Len() = %d", got)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := rec.snapshot()
	if !strings.Contains(body, "data: {") || !strings.Contains(body, "\n\n") {
		t.Fatalf("expected sse-framed payload, got %q", body)
	}
	if !strings.Contains(body, `"auctionId":"a1"`) || !strings.Contains(body, `"amount":1200`) {
		t.Fatalf("frame missing event fields: %q", body)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
