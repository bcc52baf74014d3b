package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/outstocked/outstocked-backend/api/responses"
	"github.com/outstocked/outstocked-backend/api/validators"
	requestsvc "github.com/outstocked/outstocked-backend/internal/requests"
	"github.com/outstocked/outstocked-backend/pkg/db/models"
	"github.com/outstocked/outstocked-backend/pkg/enums"
	pkgerrors "github.com/outstocked/outstocked-backend/pkg/errors"
	"github.com/outstocked/outstocked-backend/pkg/logger"
	"github.com/outstocked/outstocked-backend/pkg/pagination"
)

// RequestSubmit files an inventory request for a location the caller manages.
func RequestSubmit(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload submitRequestRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := uuid.Parse(payload.ItemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}
		locationID, err := uuid.Parse(payload.LocationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location id"))
			return
		}

		request, err := svc.Submit(r.Context(), requestsvc.SubmitInput{
			OrganizationID: act.OrganizationID,
			LocationID:     locationID,
			ItemID:         itemID,
			RequestedBy:    act.UserID,
			Quantity:       payload.Quantity,
			Notes:          payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// RequestApprove marks a pending request approved. Inventory is untouched;
// fulfilment is a separate adjustment. The service call stays inside the
// closure so handler construction never dereferences the service.
func RequestApprove(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return respondHandler(func(ctx context.Context, input requestsvc.RespondInput) (*models.InventoryRequest, error) {
		return svc.Approve(ctx, input)
	}, logg)
}

// RequestDeny marks a pending request denied.
func RequestDeny(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return respondHandler(func(ctx context.Context, input requestsvc.RespondInput) (*models.InventoryRequest, error) {
		return svc.Deny(ctx, input)
	}, logg)
}

// RequestList pages requests with optional status, location and requester
// filters.
func RequestList(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := requestsvc.ListFilter{OrganizationID: act.OrganizationID}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseRequestStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filter.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("location_id")); raw != "" {
			locationID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location id"))
				return
			}
			filter.LocationID = &locationID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("requested_by")); raw != "" {
			requestedBy, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid requester id"))
				return
			}
			filter.RequestedBy = &requestedBy
		}

		page, err := svc.List(r.Context(), requestsvc.ListInput{
			Filter: filter,
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

type submitRequestRequest struct {
	ItemID     string  `json:"item_id" validate:"required,uuid"`
	LocationID string  `json:"location_id" validate:"required,uuid"`
	Quantity   int     `json:"quantity" validate:"required,min=1"`
	Notes      *string `json:"notes,omitempty"`
}

type respondRequestRequest struct {
	Notes *string `json:"notes,omitempty"`
}

type respondFunc func(ctx context.Context, input requestsvc.RespondInput) (*models.InventoryRequest, error)

func respondHandler(respond respondFunc, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := pathUUID(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := respondRequestRequest{}
		if r.Body != nil && r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		request, err := respond(r.Context(), requestsvc.RespondInput{
			OrganizationID: act.OrganizationID,
			RequestID:      requestID,
			ResponderID:    act.UserID,
			Notes:          payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, request)
	}
}
