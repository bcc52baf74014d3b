package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/outstocked/outstocked-backend/api/responses"
	"github.com/outstocked/outstocked-backend/api/validators"
	itemsvc "github.com/outstocked/outstocked-backend/internal/items"
	"github.com/outstocked/outstocked-backend/pkg/logger"
	"github.com/outstocked/outstocked-backend/pkg/pagination"
)

// ItemCreate handles catalog item creation.
func ItemCreate(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), itemsvc.CreateItemInput{
			OrganizationID:  act.OrganizationID,
			Name:            validators.SanitizeString(payload.Name, 255),
			SKU:             payload.SKU,
			Category:        payload.Category,
			InitialQuantity: payload.InitialQuantity,
			CustomFields:    payload.CustomFields,
			CreatedBy:       act.UserID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// ItemUpdate mutates catalog attributes. Quantity is not accepted here; all
// quantity changes go through the adjustment endpoint.
func ItemUpdate(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), itemsvc.UpdateItemInput{
			OrganizationID: act.OrganizationID,
			ItemID:         itemID,
			Name:           payload.Name,
			SKU:            payload.SKU,
			Category:       payload.Category,
			CustomFields:   payload.CustomFields,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// ItemGet fetches a single item.
func ItemGet(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		item, err := svc.Get(r.Context(), act.OrganizationID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// ItemList pages the org catalog with optional search and category filters.
func ItemList(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		filter := itemsvc.ListFilter{
			OrganizationID: act.OrganizationID,
			Search:         strings.TrimSpace(r.URL.Query().Get("search")),
		}
		if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
			filter.Category = &category
		}

		page, err := svc.List(r.Context(), itemsvc.ListItemsInput{
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

// ItemDelete soft-deletes by default; purge=true removes the row for good.
func ItemDelete(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		purge, err := validators.ParseQueryBool(r, "purge")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), act.OrganizationID, itemID, purge); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type createItemRequest struct {
	Name            string          `json:"name" validate:"required"`
	SKU             *string         `json:"sku,omitempty"`
	Category        *string         `json:"category,omitempty"`
	InitialQuantity int             `json:"initial_quantity" validate:"min=0"`
	CustomFields    json.RawMessage `json:"custom_fields,omitempty"`
}

type updateItemRequest struct {
	Name         *string         `json:"name,omitempty"`
	SKU          *string         `json:"sku,omitempty"`
	Category     *string         `json:"category,omitempty"`
	CustomFields json.RawMessage `json:"custom_fields,omitempty"`
}
