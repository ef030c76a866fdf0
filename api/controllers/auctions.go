package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bidhouse-app/bidhouse-backend/api/middleware"
	"github.com/bidhouse-app/bidhouse-backend/api/responses"
	"github.com/bidhouse-app/bidhouse-backend/api/validators"
	auctionsvc "github.com/bidhouse-app/bidhouse-backend/internal/auctions"
	pkgerrors "github.com/bidhouse-app/bidhouse-backend/pkg/errors"
	"github.com/bidhouse-app/bidhouse-backend/pkg/logger"
)

type createAuctionRequest struct {
	Name               string    `json:"name" validate:"required"`
	Author             string    `json:"author" validate:"required"`
	Description        *string   `json:"description,omitempty"`
	FileKey            *string   `json:"file_key,omitempty"`
	StartingPriceCents int       `json:"starting_price_cents" validate:"required,gt=0"`
	BidIncrementCents  int       `json:"bid_increment_cents" validate:"required,gt=0"`
	EndAt              time.Time `json:"end_at" validate:"required"`
}

// CreateAuction handles new listing submissions from authenticated sellers.
func CreateAuction(svc auctionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auction service unavailable"))
			return
		}

		sellerID, err := actorIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createAuctionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Create(r.Context(), auctionsvc.CreateAuctionInput{
			SellerID:           sellerID,
			Name:               payload.Name,
			Author:             payload.Author,
			Description:        payload.Description,
			FileKey:            payload.FileKey,
			StartingPriceCents: payload.StartingPriceCents,
			BidIncrementCents:  payload.BidIncrementCents,
			EndAt:              payload.EndAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

// GetAuction returns the public read model for one listing, bids included.
func GetAuction(svc auctionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auction service unavailable"))
			return
		}

		auctionID, err := uuid.Parse(chi.URLParam(r, "auctionId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid auction id"))
			return
		}

		detail, err := svc.Get(r.Context(), auctionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

func actorIDFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}
