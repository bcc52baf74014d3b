package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/outstocked/outstocked-backend/api/responses"
	"github.com/outstocked/outstocked-backend/api/validators"
	fieldsvc "github.com/outstocked/outstocked-backend/internal/fields"
	"github.com/outstocked/outstocked-backend/pkg/enums"
	pkgerrors "github.com/outstocked/outstocked-backend/pkg/errors"
	"github.com/outstocked/outstocked-backend/pkg/logger"
)

// FieldCreate defines a custom item field for the org.
func FieldCreate(svc fieldsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createFieldRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fieldType, err := enums.ParseFieldType(strings.TrimSpace(payload.FieldType))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid field type"))
			return
		}

		def, err := svc.Create(r.Context(), fieldsvc.CreateFieldInput{
			OrganizationID: act.OrganizationID,
			Name:           validators.SanitizeString(payload.Name, 100),
			Label:          validators.SanitizeString(payload.Label, 100),
			FieldType:      fieldType,
			Options:        payload.Options,
			IsRequired:     payload.IsRequired,
			DisplayOrder:   payload.DisplayOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, def)
	}
}

// FieldUpdate mutates a definition's label, options, requiredness or order.
func FieldUpdate(svc fieldsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fieldID, err := pathUUID(r, "fieldId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateFieldRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		def, err := svc.Update(r.Context(), fieldsvc.UpdateFieldInput{
			OrganizationID: act.OrganizationID,
			FieldID:        fieldID,
			Label:          payload.Label,
			Options:        payload.Options,
			IsRequired:     payload.IsRequired,
			DisplayOrder:   payload.DisplayOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, def)
	}
}

// FieldList returns the org's field definitions in display order.
func FieldList(svc fieldsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		defs, err := svc.List(r.Context(), act.OrganizationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"fields": defs})
	}
}

// FieldDelete removes a non-core definition.
func FieldDelete(svc fieldsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fieldID, err := pathUUID(r, "fieldId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), act.OrganizationID, fieldID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type createFieldRequest struct {
	Name         string          `json:"name" validate:"required"`
	Label        string          `json:"label,omitempty"`
	FieldType    string          `json:"field_type" validate:"required"`
	Options      json.RawMessage `json:"options,omitempty"`
	IsRequired   bool            `json:"is_required,omitempty"`
	DisplayOrder int             `json:"display_order,omitempty" validate:"omitempty,min=0"`
}

type updateFieldRequest struct {
	Label        *string         `json:"label,omitempty"`
	Options      json.RawMessage `json:"options,omitempty"`
	IsRequired   *bool           `json:"is_required,omitempty"`
	DisplayOrder *int            `json:"display_order,omitempty" validate:"omitempty,min=0"`
}
