package controllers

import (
	"net/http"

	"github.com/outstocked/outstocked-backend/api/responses"
	"github.com/outstocked/outstocked-backend/api/validators"
	invitesvc "github.com/outstocked/outstocked-backend/internal/invites"
	"github.com/outstocked/outstocked-backend/pkg/logger"
)

// InviteUsers creates member profiles for a batch of email addresses. The
// response reports per-address outcomes; a partial failure is not an error.
func InviteUsers(svc invitesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		act, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload inviteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Invite(r.Context(), invitesvc.InviteInput{
			OrganizationID: act.OrganizationID,
			InvitedBy:      act.UserID,
			Emails:         payload.Emails,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type inviteRequest struct {
	Emails []string `json:"emails" validate:"required,min=1,dive,required"`
}
