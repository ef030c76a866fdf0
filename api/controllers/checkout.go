package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/bidhouse-app/bidhouse-backend/api/middleware"
	"github.com/bidhouse-app/bidhouse-backend/api/responses"
	"github.com/bidhouse-app/bidhouse-backend/api/validators"
	checkoutsvc "github.com/bidhouse-app/bidhouse-backend/internal/checkout"
	pkgerrors "github.com/bidhouse-app/bidhouse-backend/pkg/errors"
	"github.com/bidhouse-app/bidhouse-backend/pkg/logger"
)

type checkoutRequest struct {
	AuctionID uuid.UUID `json:"auction_id" validate:"required"`
}

// StartCheckout opens a hosted payment session for the winning bidder of a
// closed auction.
func StartCheckout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := actorIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Start(r.Context(), checkoutsvc.StartInput{
			AuctionID: payload.AuctionID,
			UserID:    userID,
			UserEmail: middleware.EmailFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
