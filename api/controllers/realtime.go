package controllers

import (
	"fmt"
	"net/http"

	"github.com/bidhouse-app/bidhouse-backend/api/responses"
	"github.com/bidhouse-app/bidhouse-backend/internal/realtime"
	pkgerrors "github.com/bidhouse-app/bidhouse-backend/pkg/errors"
	"github.com/bidhouse-app/bidhouse-backend/pkg/logger"
)

// BidStream serves the live bid feed over server-sent events. The stream
// carries every bid across all auctions; clients filter on auctionId.
func BidStream(broadcaster *realtime.Broadcaster, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if broadcaster == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "broadcaster unavailable"))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		sub := broadcaster.Subscribe()
		defer broadcaster.Unsubscribe(sub)

		if logg != nil {
			logg.Info(r.Context(), "realtime.subscriber.connected")
		}

		for {
			select {
			case <-r.Context().Done():
				return
			case frame, open := <-sub.Events():
				if !open {
					return
				}
				if _, err := fmt.Fprintf(w, "data: %s\n\n", frame); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
