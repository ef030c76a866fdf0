package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bidhouse-app/bidhouse-backend/api/middleware"
	"github.com/bidhouse-app/bidhouse-backend/api/responses"
	"github.com/bidhouse-app/bidhouse-backend/api/validators"
	auctionsvc "github.com/bidhouse-app/bidhouse-backend/internal/auctions"
	pkgerrors "github.com/bidhouse-app/bidhouse-backend/pkg/errors"
	"github.com/bidhouse-app/bidhouse-backend/pkg/logger"
)

type placeBidRequest struct {
	AmountCents int `json:"amount_cents" validate:"required,gt=0"`
}

// PlaceBid submits a bid against an open auction. A stale-price rejection
// comes back as a retryable conflict so the client can re-read and retry.
func PlaceBid(svc auctionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auction service unavailable"))
			return
		}

		bidderID, err := actorIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		auctionID, err := uuid.Parse(chi.URLParam(r, "auctionId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid auction id"))
			return
		}

		var payload placeBidRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PlaceBid(r.Context(), auctionsvc.PlaceBidInput{
			AuctionID:   auctionID,
			BidderID:    bidderID,
			BidderName:  middleware.NameFromContext(r.Context()),
			AmountCents: payload.AmountCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
