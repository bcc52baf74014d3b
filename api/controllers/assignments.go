package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/outstocked/outstocked-backend/api/responses"
	"github.com/outstocked/outstocked-backend/api/validators"
	assignsvc "github.com/outstocked/outstocked-backend/internal/assignments"
	pkgerrors "github.com/outstocked/outstocked-backend/pkg/errors"
	"github.com/outstocked/outstocked-backend/pkg/logger"
)

// AssignmentCreate hands stock to a user or a location. Exactly one target
// must be set.
func AssignmentCreate(svc assignsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createAssignmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(act)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignment, err := svc.CreateAssignment(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, assignment)
	}
}

// AssignmentRevoke soft-revokes an assignment. Revoking twice is a no-op.
func AssignmentRevoke(svc assignsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := actorFromRequest(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignmentID, err := pathUUID(r, "assignmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Revoke(r.Context(), assignmentID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "revoked"})
	}
}

// AssignmentList returns the active assignments for an item.
func AssignmentList(svc assignsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		assignments, err := svc.ListForItem(r.Context(), act.OrganizationID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"assignments": assignments})
	}
}

// ItemAvailability reports live availability, recomputed on every call.
func ItemAvailability(svc assignsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		report, err := svc.Availability(r.Context(), act.OrganizationID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

type createAssignmentRequest struct {
	ItemID     string  `json:"item_id" validate:"required,uuid"`
	UserID     *string `json:"user_id,omitempty" validate:"omitempty,uuid"`
	LocationID *string `json:"location_id,omitempty" validate:"omitempty,uuid"`
	Quantity   *int    `json:"quantity,omitempty" validate:"omitempty,min=1"`
	Notes      *string `json:"notes,omitempty"`
}

func (p createAssignmentRequest) toInput(act actor) (assignsvc.CreateAssignmentInput, error) {
	itemID, err := uuid.Parse(p.ItemID)
	if err != nil {
		return assignsvc.CreateAssignmentInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id")
	}

	input := assignsvc.CreateAssignmentInput{
		OrganizationID: act.OrganizationID,
		ItemID:         itemID,
		AssignedBy:     act.UserID,
		Quantity:       p.Quantity,
		Notes:          p.Notes,
	}
	if p.UserID != nil {
		userID, err := uuid.Parse(*p.UserID)
		if err != nil {
			return assignsvc.CreateAssignmentInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
		}
		input.UserID = &userID
	}
	if p.LocationID != nil {
		locationID, err := uuid.Parse(*p.LocationID)
		if err != nil {
			return assignsvc.CreateAssignmentInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location id")
		}
		input.LocationID = &locationID
	}
	return input, nil
}
