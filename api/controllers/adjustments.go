package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/outstocked/outstocked-backend/api/responses"
	"github.com/outstocked/outstocked-backend/api/validators"
	ledgersvc "github.com/outstocked/outstocked-backend/internal/ledger"
	"github.com/outstocked/outstocked-backend/pkg/enums"
	pkgerrors "github.com/outstocked/outstocked-backend/pkg/errors"
	"github.com/outstocked/outstocked-backend/pkg/logger"
	"github.com/outstocked/outstocked-backend/pkg/pagination"
)

// ApplyAdjustment records one stock movement against an item. The response
// carries the committed item state and the ledger entry that proves it.
func ApplyAdjustment(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(act, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ApplyAdjustment(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ListHistory pages an item's ledger, newest first.
func ListHistory(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListHistory(r.Context(), ledgersvc.ListHistoryInput{
			OrganizationID: act.OrganizationID,
			ItemID:         itemID,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

type adjustmentRequest struct {
	Action       string   `json:"action" validate:"required"`
	Quantity     int      `json:"quantity" validate:"required,min=1"`
	Direction    int      `json:"direction,omitempty"`
	LocationID   *string  `json:"location_id,omitempty" validate:"omitempty,uuid"`
	LocationName *string  `json:"location_name,omitempty"`
	Address      *string  `json:"address,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
}

func (p adjustmentRequest) toInput(act actor, itemID uuid.UUID) (ledgersvc.ApplyAdjustmentInput, error) {
	action, err := enums.ParseStockAction(strings.TrimSpace(p.Action))
	if err != nil {
		return ledgersvc.ApplyAdjustmentInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action")
	}

	input := ledgersvc.ApplyAdjustmentInput{
		OrganizationID: act.OrganizationID,
		ItemID:         itemID,
		ActorID:        act.UserID,
		Action:         action,
		Quantity:       p.Quantity,
		Direction:      p.Direction,
		LocationName:   p.LocationName,
		Address:        p.Address,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		Notes:          p.Notes,
	}
	if p.LocationID != nil {
		locationID, err := uuid.Parse(*p.LocationID)
		if err != nil {
			return ledgersvc.ApplyAdjustmentInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location id")
		}
		input.LocationID = &locationID
	}
	return input, nil
}
